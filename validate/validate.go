// Package validate checks level files and reports on how they play.
//
// File and Dir run the same checks the level manager applies on load, plus
// a few playability notes the engine does not enforce: bones that can never
// be collected, and routes that meet more dogs than the cat starts with
// bones for. Analyze computes the route heuristics used by the analyze
// command.
package validate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/catmaze/game/engine"
)

// Extensions lists the level file extensions Dir picks up
var Extensions = []string{".json", ".yaml", ".yml"}

// Result is the outcome of validating one level file
type Result struct {
	File     string    `json:"file"`
	Valid    bool      `json:"valid"`
	Errors   []string  `json:"errors,omitempty"`
	Notes    []string  `json:"notes,omitempty"`
	Analysis *Analysis `json:"analysis,omitempty"`
}

// Analysis summarizes a level's layout and its cheapest escape route
type Analysis struct {
	Name          string `json:"name"`
	Width         int    `json:"width"`
	Height        int    `json:"height"`
	Bones         int    `json:"bones"`
	Dogs          int    `json:"dogs"`
	Exits         int    `json:"exits"`
	StartingBones int    `json:"starting_bones"`

	Spawn            engine.TileCoord   `json:"spawn"`
	Exit             *engine.TileCoord  `json:"exit,omitempty"`
	Route            []engine.TileCoord `json:"route,omitempty"`
	RouteCost        int                `json:"route_cost"`
	DogsOnRoute      int                `json:"dogs_on_route"`
	UnreachableBones []engine.TileCoord `json:"unreachable_bones,omitempty"`
}

// Steps is the number of tile transitions on the escape route
func (a *Analysis) Steps() int { return len(a.Route) }

// Analyze inspects a level without validating it. The escape route is the
// cheapest route to any exit, with dogs weighted the way the cat's
// pathfinding weighs them.
func Analyze(config *engine.LevelConfig) (*Analysis, error) {
	tiles, spawn, err := engine.NewTileMap(config.Layout)
	if err != nil {
		return nil, err
	}

	a := &Analysis{
		Name:          config.Name,
		Width:         tiles.Width(),
		Height:        tiles.Height(),
		Bones:         engine.CountObjects(tiles.Tiles(), engine.Bone),
		Dogs:          engine.CountObjects(tiles.Tiles(), engine.Dog),
		Exits:         engine.CountObjects(tiles.Tiles(), engine.Exit),
		StartingBones: config.StartingBones,
		Spawn:         spawn,
	}

	best := -1
	for row, line := range tiles.Tiles() {
		for col, t := range line {
			c := engine.TileCoord{Col: col, Row: row}
			switch t.Object {
			case engine.Exit:
				route, ok := engine.FindPath(tiles, spawn, c)
				if !ok {
					continue
				}
				cost := engine.RouteCost(tiles, spawn, route)
				if best < 0 || cost < best {
					best = cost
					exit := c
					a.Exit = &exit
					a.Route = route
					a.RouteCost = cost
				}
			case engine.Bone:
				if _, ok := engine.FindPath(tiles, spawn, c); !ok {
					a.UnreachableBones = append(a.UnreachableBones, c)
				}
			}
		}
	}

	for _, c := range a.Route {
		if tiles.ObjectAt(c) == engine.Dog {
			a.DogsOnRoute++
		}
	}
	return a, nil
}

// File validates a single level file
func File(path string) Result {
	result := Result{File: filepath.Base(path), Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read file: %v", err))
		return result
	}

	config, err := engine.DecodeLevelConfig(data, filepath.Ext(path))
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("failed to parse: %v", err))
		return result
	}

	if err := engine.ValidateLevelConfig(config); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, strings.TrimPrefix(err.Error(), engine.ErrInvalidLevel.Error()+": "))
	}

	analysis, err := Analyze(config)
	if err != nil {
		// layout errors are already reported by ValidateLevelConfig
		return result
	}
	result.Analysis = analysis

	for _, b := range analysis.UnreachableBones {
		result.Notes = append(result.Notes, fmt.Sprintf("bone at %s cannot be reached", b))
	}
	if analysis.Exit != nil && analysis.DogsOnRoute > analysis.StartingBones {
		result.Notes = append(result.Notes, fmt.Sprintf(
			"cheapest route meets %d dog(s) with %d starting bone(s); bones must be collected first",
			analysis.DogsOnRoute, analysis.StartingBones))
	}
	return result
}

// Dir validates every level file in dir, sorted by file name
func Dir(dir string) ([]Result, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	results := make([]Result, 0, len(names))
	for _, name := range names {
		results = append(results, File(filepath.Join(dir, name)))
	}
	return results, nil
}

func isLevelFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Report writes a human-readable summary and returns true when every
// result is valid
func Report(w io.Writer, results []Result) bool {
	allValid := true
	for _, r := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), r.File)
		if r.Valid {
			fmt.Fprintln(w, "✅ VALID")
		} else {
			fmt.Fprintln(w, "❌ INVALID")
			allValid = false
		}
		for _, e := range r.Errors {
			fmt.Fprintln(w, "  ❌ "+e)
		}
		for _, n := range r.Notes {
			fmt.Fprintln(w, "  ⚠️  "+n)
		}
		if a := r.Analysis; a != nil && a.Exit != nil {
			fmt.Fprintf(w, "  ✓ exit %s reachable in %d steps (cost %d)\n", *a.Exit, a.Steps(), a.RouteCost)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	switch {
	case len(results) == 0:
		fmt.Fprintln(w, "No level files found")
	case allValid:
		fmt.Fprintln(w, "✅ All levels are valid!")
	default:
		fmt.Fprintln(w, "❌ Some levels have errors")
	}
	return allValid
}
