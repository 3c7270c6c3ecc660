package validate

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/catmaze/game/engine"
)

func writeLevel(t *testing.T, dir, name string, config *engine.LevelConfig) string {
	t.Helper()
	data, err := json.MarshalIndent(config, "", "  ")
	require.NoError(t, err)
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

func TestDir_ShippedLevels(t *testing.T) {
	results, err := Dir("../levels")
	require.NoError(t, err)
	require.Len(t, results, 3)

	for _, r := range results {
		assert.True(t, r.Valid, "%s: %v", r.File, r.Errors)
		require.NotNil(t, r.Analysis, r.File)
		assert.NotNil(t, r.Analysis.Exit, "%s has a reachable exit", r.File)
	}

	assert.Equal(t, "alley.yaml", results[0].File)
	assert.Equal(t, "backyard.json", results[1].File)
	assert.Equal(t, "kennel.yaml", results[2].File)
}

func TestFile_AlleyAvoidsDog(t *testing.T) {
	r := File("../levels/alley.yaml")
	require.True(t, r.Valid, r.Errors)

	a := r.Analysis
	assert.Equal(t, "Alley", a.Name)
	assert.Equal(t, 0, a.DogsOnRoute)
	assert.Equal(t, 12, a.Steps())
	assert.Equal(t, 120, a.RouteCost)
	assert.Equal(t, engine.TileCoord{Col: 9, Row: 1}, *a.Exit)
	assert.Empty(t, r.Notes)
}

func TestFile_BackyardNeedsBone(t *testing.T) {
	r := File("../levels/backyard.json")
	require.True(t, r.Valid, r.Errors)

	a := r.Analysis
	assert.Equal(t, 9, a.Width)
	assert.Equal(t, 7, a.Height)
	assert.Equal(t, 2, a.Bones)
	assert.Equal(t, 1, a.Dogs)
	assert.Equal(t, 1, a.DogsOnRoute)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, a.Spawn)
	require.Len(t, r.Notes, 1)
	assert.Contains(t, r.Notes[0], "1 dog(s) with 0 starting bone(s)")
}

func TestFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		r := File(filepath.Join(dir, "nope.json"))
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors[0], "failed to read file")
	})

	t.Run("bad json", func(t *testing.T) {
		path := filepath.Join(dir, "broken.json")
		require.NoError(t, os.WriteFile(path, []byte("{"), 0644))
		r := File(path)
		assert.False(t, r.Valid)
		assert.Contains(t, r.Errors[0], "failed to parse")
		assert.Nil(t, r.Analysis)
	})

	t.Run("invalid level", func(t *testing.T) {
		config := engine.DefaultLevelConfig()
		config.Messages.Win = ""
		r := File(writeLevel(t, dir, "nowin.json", config))
		assert.False(t, r.Valid)
		require.Len(t, r.Errors, 1)
		assert.Equal(t, "messages.win is required", r.Errors[0])
		assert.NotNil(t, r.Analysis, "layout is still analyzed")
	})

	t.Run("bad layout", func(t *testing.T) {
		config := engine.DefaultLevelConfig()
		config.Layout[2] = "#.#"
		r := File(writeLevel(t, dir, "ragged.json", config))
		assert.False(t, r.Valid)
		assert.Nil(t, r.Analysis)
	})
}

func TestFile_UnreachableBone(t *testing.T) {
	config := engine.DefaultLevelConfig()
	config.Layout = []string{
		"#######",
		"#C.E#B#",
		"#######",
	}
	r := File(writeLevel(t, t.TempDir(), "island.json", config))

	assert.True(t, r.Valid, r.Errors)
	assert.Equal(t, []engine.TileCoord{{Col: 5, Row: 1}}, r.Analysis.UnreachableBones)
	require.Len(t, r.Notes, 1)
	assert.Contains(t, r.Notes[0], "bone at (5,1) cannot be reached")
}

func TestDir(t *testing.T) {
	t.Run("skips other files", func(t *testing.T) {
		dir := t.TempDir()
		writeLevel(t, dir, "yard.json", engine.DefaultLevelConfig())
		require.NoError(t, os.WriteFile(filepath.Join(dir, "README.md"), []byte("#"), 0644))
		require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.json"), 0755))

		results, err := Dir(dir)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "yard.json", results[0].File)
	})

	t.Run("missing directory", func(t *testing.T) {
		_, err := Dir(filepath.Join(t.TempDir(), "nope"))
		assert.Error(t, err)
	})
}

func TestReport(t *testing.T) {
	t.Run("all valid", func(t *testing.T) {
		results, err := Dir("../levels")
		require.NoError(t, err)

		var buf bytes.Buffer
		assert.True(t, Report(&buf, results))
		out := buf.String()
		assert.Contains(t, out, "alley.yaml")
		assert.Contains(t, out, "exit (9,1) reachable in 12 steps (cost 120)")
		assert.Contains(t, out, "All levels are valid!")
	})

	t.Run("invalid", func(t *testing.T) {
		var buf bytes.Buffer
		ok := Report(&buf, []Result{{File: "x.json", Errors: []string{"boom"}}})
		assert.False(t, ok)
		assert.Contains(t, buf.String(), "❌ boom")
		assert.Contains(t, buf.String(), "Some levels have errors")
	})

	t.Run("empty", func(t *testing.T) {
		var buf bytes.Buffer
		assert.True(t, Report(&buf, nil))
		assert.Contains(t, buf.String(), "No level files found")
	})
}
