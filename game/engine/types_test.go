package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFacingFor(t *testing.T) {
	tests := []struct {
		delta TileCoord
		want  Direction
	}{
		{TileCoord{1, 0}, Right},
		{TileCoord{-1, 0}, Left},
		{TileCoord{0, 1}, Down},
		{TileCoord{0, -1}, Up},
		{TileCoord{2, 1}, Right},
		{TileCoord{-2, 1}, Left},
		// exact diagonals face along the row axis
		{TileCoord{1, 1}, Down},
		{TileCoord{-1, 1}, Down},
		{TileCoord{1, -1}, Up},
		{TileCoord{-1, -1}, Up},
	}

	for _, tt := range tests {
		t.Run(tt.delta.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, FacingFor(tt.delta))
		})
	}
}

func TestParseDirection(t *testing.T) {
	for _, in := range []string{"up", "UP", " Up "} {
		d, err := ParseDirection(in)
		assert.NoError(t, err)
		assert.Equal(t, Up, d)
	}

	_, err := ParseDirection("north")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestDirectionNeighbor(t *testing.T) {
	c := TileCoord{3, 3}
	assert.Equal(t, TileCoord{3, 2}, Up.Neighbor(c))
	assert.Equal(t, TileCoord{3, 4}, Down.Neighbor(c))
	assert.Equal(t, TileCoord{2, 3}, Left.Neighbor(c))
	assert.Equal(t, TileCoord{4, 3}, Right.Neighbor(c))
}

func TestRenderMap(t *testing.T) {
	m := mustTileMap(t,
		"C..",
		"#.B",
	)
	state := &GameState{
		Tiles:  m.Tiles(),
		CatPos: TileCoord{0, 0},
		Route:  []TileCoord{{1, 0}, {2, 1}},
	}

	assert.Equal(t, []string{"C*.", "#.B"}, RenderMap(state))
	assert.Equal(t, []string{"###", "#C.", "##."}, LocalView3x3(state))
}
