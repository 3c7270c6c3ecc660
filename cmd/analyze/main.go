// Command analyze prints quick, human-readable heuristics about the level
// files in a directory: dimensions, bone and dog counts, and the cheapest
// escape route drawn over the layout.
//
//	go run ./cmd/analyze [levels-dir]
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/validate"
)

func main() {
	dir := "levels"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	results, err := validate.Dir(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, r := range results {
		fmt.Printf("\n=== Analyzing %s ===\n", r.File)
		analyzeLevel(os.Stdout, filepath.Join(dir, r.File))
	}
}

func analyzeLevel(w io.Writer, path string) {
	config, err := engine.LoadLevelConfig(path)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	a, err := validate.Analyze(config)
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Grid Size: %d x %d\n", a.Width, a.Height)
	fmt.Fprintf(w, "Cat Spawn: %s\n", a.Spawn)
	fmt.Fprintf(w, "Starting Bones: %d\n", a.StartingBones)
	fmt.Fprintf(w, "Bones: %d  Dogs: %d  Exits: %d\n", a.Bones, a.Dogs, a.Exits)
	fmt.Fprintf(w, "Step Duration: %s\n", config.StepDuration())

	if a.Exit == nil {
		fmt.Fprintf(w, "⚠️  CRITICAL: no exit is reachable from the spawn\n")
		return
	}

	fmt.Fprintf(w, "Cheapest Exit: %s, %d steps, cost %d\n", *a.Exit, a.Steps(), a.RouteCost)
	fmt.Fprintf(w, "Estimated Time: %s\n", config.StepDuration()*time.Duration(a.Steps()))
	switch {
	case a.DogsOnRoute == 0:
		fmt.Fprintf(w, "✅ Route avoids every dog\n")
	case a.DogsOnRoute <= a.StartingBones:
		fmt.Fprintf(w, "✅ Route meets %d dog(s), covered by starting bones\n", a.DogsOnRoute)
	default:
		fmt.Fprintf(w, "⚠️  Route meets %d dog(s) with only %d starting bone(s)\n", a.DogsOnRoute, a.StartingBones)
	}
	if n := len(a.UnreachableBones); n > 0 {
		fmt.Fprintf(w, "⚠️  %d bone(s) cannot be reached\n", n)
	}

	tiles, _, err := engine.NewTileMap(config.Layout)
	if err != nil {
		return
	}
	for _, line := range engine.RenderMap(&engine.GameState{
		Tiles:  tiles.Tiles(),
		CatPos: a.Spawn,
		Route:  a.Route,
	}) {
		fmt.Fprintf(w, "   %s\n", line)
	}
}
