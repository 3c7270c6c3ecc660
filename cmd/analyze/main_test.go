package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeLevel_Alley(t *testing.T) {
	var buf bytes.Buffer
	analyzeLevel(&buf, "../../levels/alley.yaml")
	out := buf.String()

	assert.Contains(t, out, "Name: Alley")
	assert.Contains(t, out, "Grid Size: 11 x 5")
	assert.Contains(t, out, "Cheapest Exit: (9,1), 12 steps, cost 120")
	assert.Contains(t, out, "Estimated Time: 3.6s")
	assert.Contains(t, out, "Route avoids every dog")

	// the route goes round the bottom of the alley
	assert.Contains(t, out, "   #C...D...E#\n")
	assert.Contains(t, out, "   #*#######*#\n")
	assert.Contains(t, out, "   #*********#\n")
}

func TestAnalyzeLevel_Backyard(t *testing.T) {
	var buf bytes.Buffer
	analyzeLevel(&buf, "../../levels/backyard.json")
	out := buf.String()

	assert.Contains(t, out, "Bones: 2  Dogs: 1  Exits: 1")
	assert.Contains(t, out, "Route meets 1 dog(s) with only 0 starting bone(s)")
	assert.NotContains(t, out, "cannot be reached")
}

func TestAnalyzeLevel_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		var buf bytes.Buffer
		analyzeLevel(&buf, filepath.Join(t.TempDir(), "nope.json"))
		assert.True(t, strings.HasPrefix(buf.String(), "Error:"))
	})

	t.Run("invalid json", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"name": "test", invalid json}`), 0644))

		var buf bytes.Buffer
		analyzeLevel(&buf, path)
		assert.Contains(t, buf.String(), "Error:")
		assert.NotContains(t, buf.String(), "Name:")
	})
}
