package engine

import "strings"

// ManhattanDistance calculates the Manhattan distance between two tiles
func ManhattanDistance(from, to TileCoord) int {
	return abs(to.Col-from.Col) + abs(to.Row-from.Row)
}

// RouteCost sums the step costs of walking route from start
func RouteCost(g Graph, start TileCoord, route []TileCoord) int {
	total := 0
	prev := start
	for _, c := range route {
		total += g.StepCost(prev, c)
		prev = c
	}
	return total
}

// CountObjects counts the tiles holding the given object
func CountObjects(tiles [][]Tile, obj Object) int {
	count := 0
	for _, row := range tiles {
		for _, t := range row {
			if t.Object == obj {
				count++
			}
		}
	}
	return count
}

// TileChar returns the layout character for a tile
func TileChar(t Tile) byte {
	if t.Type == Wall {
		return '#'
	}
	switch t.Object {
	case Bone:
		return 'B'
	case Dog:
		return 'D'
	case Exit:
		return 'E'
	}
	return '.'
}

// RenderMap draws the state as layout rows with the cat as 'C' and the
// remaining route as '*'
func RenderMap(state *GameState) []string {
	if state == nil {
		return nil
	}
	onRoute := make(map[TileCoord]bool, len(state.Route))
	for _, c := range state.Route {
		onRoute[c] = true
	}
	if state.StepTarget != nil {
		onRoute[*state.StepTarget] = true
	}

	lines := make([]string, 0, len(state.Tiles))
	for row, tiles := range state.Tiles {
		var b strings.Builder
		for col, t := range tiles {
			c := TileCoord{Col: col, Row: row}
			switch {
			case c == state.CatPos:
				b.WriteByte('C')
			case onRoute[c] && t.Object == NoObject:
				b.WriteByte('*')
			default:
				b.WriteByte(TileChar(t))
			}
		}
		lines = append(lines, b.String())
	}
	return lines
}

// LocalView3x3 returns the 3x3 neighbourhood around the cat; out of bounds
// reads as wall
func LocalView3x3(state *GameState) []string {
	if state == nil {
		return nil
	}
	lines := make([]string, 0, 3)
	for dr := -1; dr <= 1; dr++ {
		var row strings.Builder
		for dc := -1; dc <= 1; dc++ {
			c := state.CatPos.Add(TileCoord{Col: dc, Row: dr})
			if dc == 0 && dr == 0 {
				row.WriteByte('C')
				continue
			}
			if c.Row < 0 || c.Row >= len(state.Tiles) || c.Col < 0 || c.Col >= len(state.Tiles[c.Row]) {
				row.WriteByte('#')
				continue
			}
			row.WriteByte(TileChar(state.Tiles[c.Row][c.Col]))
		}
		lines = append(lines, row.String())
	}
	return lines
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
