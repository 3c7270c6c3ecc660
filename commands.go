package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/catmaze/game/config"
	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/validate"
)

// parseCoord parses "col,row"
func parseCoord(s string) (engine.TileCoord, error) {
	colStr, rowStr, ok := strings.Cut(strings.TrimSpace(s), ",")
	if !ok {
		return engine.TileCoord{}, fmt.Errorf("invalid tile %q: want col,row", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(colStr))
	if err != nil {
		return engine.TileCoord{}, fmt.Errorf("invalid column in %q: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(rowStr))
	if err != nil {
		return engine.TileCoord{}, fmt.Errorf("invalid row in %q: %w", s, err)
	}
	return engine.TileCoord{Col: col, Row: row}, nil
}

func runPathCommand(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 3 {
		return cli.Exit("usage: catmaze path <level> <col,row> <col,row>", 2)
	}

	configs, err := config.NewManager(cmd.String("levels-dir"))
	if err != nil {
		return err
	}
	return printPath(cmd.Root().Writer, configs, cmd.Args().Get(0), cmd.Args().Get(1), cmd.Args().Get(2))
}

// printPath writes the route from one tile to another over the level map.
// The cat is drawn on the start tile and the route as '*'.
func printPath(w io.Writer, configs *config.Manager, levelID, fromArg, toArg string) error {
	level, err := configs.LoadConfig(levelID)
	if err != nil {
		return fmt.Errorf("level %q: %w", levelID, err)
	}
	from, err := parseCoord(fromArg)
	if err != nil {
		return err
	}
	to, err := parseCoord(toArg)
	if err != nil {
		return err
	}

	tiles, _, err := engine.NewTileMap(level.Layout)
	if err != nil {
		return err
	}
	if !tiles.IsWalkable(from) {
		return fmt.Errorf("start %s is not a walkable tile", from)
	}

	route, ok := engine.FindPath(tiles, from, to)
	if !ok {
		fmt.Fprintf(w, "No path from %s to %s on %s\n", from, to, level.Name)
		return cli.Exit("", 1)
	}

	fmt.Fprintf(w, "%s: %s -> %s, %d steps, cost %d\n", level.Name, from, to, len(route), engine.RouteCost(tiles, from, route))
	for _, line := range engine.RenderMap(&engine.GameState{
		Tiles:  tiles.Tiles(),
		CatPos: from,
		Route:  route,
	}) {
		fmt.Fprintln(w, line)
	}
	return nil
}

func runValidateCommand(ctx context.Context, cmd *cli.Command) error {
	dir := cmd.String("levels-dir")
	if cmd.NArg() > 0 {
		dir = cmd.Args().First()
	}

	results, err := validate.Dir(dir)
	if err != nil {
		return err
	}
	if !validate.Report(cmd.Root().Writer, results) {
		return cli.Exit("", 1)
	}
	return nil
}
