package engine

import (
	"errors"
	"fmt"
)

var ErrInvalidLayout = errors.New("invalid layout")

// TileMap is the maze grid. It answers the walkability and cost queries the
// pathfinder and the cat rely on, and owns the objects lying on each tile.
type TileMap struct {
	tiles  [][]Tile
	width  int
	height int
}

// NewTileMap parses layout rows into a tile map and returns the cat spawn.
// Layout characters: '#' wall, '.' floor, 'C' spawn, 'B' bone, 'D' dog, 'E' exit.
func NewTileMap(layout []string) (*TileMap, TileCoord, error) {
	var spawn TileCoord
	if len(layout) == 0 {
		return nil, spawn, fmt.Errorf("%w: empty layout", ErrInvalidLayout)
	}

	width := len(layout[0])
	tiles := make([][]Tile, len(layout))
	spawnFound := false

	for row, line := range layout {
		if len(line) != width {
			return nil, spawn, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidLayout, row+1, len(line), width)
		}
		tiles[row] = make([]Tile, width)
		for col := 0; col < width; col++ {
			t := Tile{Type: Floor}
			switch line[col] {
			case '.':
			case '#':
				t.Type = Wall
			case 'B':
				t.Object = Bone
			case 'D':
				t.Object = Dog
			case 'E':
				t.Object = Exit
			case 'C':
				if spawnFound {
					return nil, spawn, fmt.Errorf("%w: more than one cat spawn", ErrInvalidLayout)
				}
				spawn = TileCoord{Col: col, Row: row}
				spawnFound = true
			default:
				return nil, spawn, fmt.Errorf("%w: invalid character '%c' at row %d, col %d", ErrInvalidLayout, line[col], row+1, col+1)
			}
			tiles[row][col] = t
		}
	}

	if !spawnFound {
		return nil, spawn, fmt.Errorf("%w: no cat spawn (C)", ErrInvalidLayout)
	}

	return &TileMap{tiles: tiles, width: width, height: len(layout)}, spawn, nil
}

// NewTileMapFromTiles wraps an existing tile grid (used when restoring state)
func NewTileMapFromTiles(tiles [][]Tile) (*TileMap, error) {
	if len(tiles) == 0 {
		return nil, fmt.Errorf("%w: empty tile grid", ErrInvalidLayout)
	}
	width := len(tiles[0])
	for i, row := range tiles {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d tiles, want %d", ErrInvalidLayout, i+1, len(row), width)
		}
	}
	return &TileMap{tiles: tiles, width: width, height: len(tiles)}, nil
}

func (m *TileMap) Width() int      { return m.width }
func (m *TileMap) Height() int     { return m.height }
func (m *TileMap) Tiles() [][]Tile { return m.tiles }

// IsValid reports whether c lies inside the grid
func (m *TileMap) IsValid(c TileCoord) bool {
	return c.Col >= 0 && c.Col < m.width && c.Row >= 0 && c.Row < m.height
}

// IsWall reports whether c holds a wall
func (m *TileMap) IsWall(c TileCoord) bool {
	return m.IsValid(c) && m.tiles[c.Row][c.Col].Type == Wall
}

// IsWalkable reports whether the cat may stand on c. Dogs do not block.
func (m *TileMap) IsWalkable(c TileCoord) bool {
	return m.IsValid(c) && !m.IsWall(c)
}

// ObjectAt returns the object on c, or NoObject
func (m *TileMap) ObjectAt(c TileCoord) Object {
	if !m.IsValid(c) {
		return NoObject
	}
	return m.tiles[c.Row][c.Col].Object
}

// RemoveObject clears whatever object lies on c
func (m *TileMap) RemoveObject(c TileCoord) {
	if m.IsValid(c) {
		m.tiles[c.Row][c.Col].Object = NoObject
	}
}

// WalkableNeighbors returns the enterable tiles around c: orthogonal ones
// first (top, left, bottom, right), then diagonals whose two flanking
// orthogonal tiles are both enterable.
func (m *TileMap) WalkableNeighbors(c TileCoord) []TileCoord {
	canUp := m.IsWalkable(c.Top())
	canLeft := m.IsWalkable(c.Left())
	canDown := m.IsWalkable(c.Bottom())
	canRight := m.IsWalkable(c.Right())

	out := make([]TileCoord, 0, 8)
	if canUp {
		out = append(out, c.Top())
	}
	if canLeft {
		out = append(out, c.Left())
	}
	if canDown {
		out = append(out, c.Bottom())
	}
	if canRight {
		out = append(out, c.Right())
	}

	if canUp && canLeft && m.IsWalkable(c.TopLeft()) {
		out = append(out, c.TopLeft())
	}
	if canDown && canLeft && m.IsWalkable(c.BottomLeft()) {
		out = append(out, c.BottomLeft())
	}
	if canUp && canRight && m.IsWalkable(c.TopRight()) {
		out = append(out, c.TopRight())
	}
	if canDown && canRight && m.IsWalkable(c.BottomRight()) {
		out = append(out, c.BottomRight())
	}
	return out
}

// StepCost is 10 for an orthogonal step and 14 for a diagonal one, times ten
// when a dog currently stands on the destination.
func (m *TileMap) StepCost(from, to TileCoord) int {
	cost := OrthogonalCost
	if from.Col != to.Col && from.Row != to.Row {
		cost = DiagonalCost
	}
	if m.ObjectAt(to) == Dog {
		cost *= DogCostFactor
	}
	return cost
}

// Clone returns a deep copy of the map
func (m *TileMap) Clone() *TileMap {
	tiles := make([][]Tile, len(m.tiles))
	for i, row := range m.tiles {
		tiles[i] = append([]Tile(nil), row...)
	}
	return &TileMap{tiles: tiles, width: m.width, height: m.height}
}
