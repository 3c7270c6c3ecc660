package mcp

import (
	"fmt"
	"strings"

	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/game/service"
)

const instructions = `Cat Maze - Instructions

OBJECTIVE:
Walk the cat (C) to any exit (E).

MAP LEGEND:
  #  wall (never walkable)
  .  floor
  B  bone, picked up when the cat steps on it
  D  dog
  E  exit
  C  the cat
  *  tiles on the cat's current route

MOVEMENT:
• move turns the cat and walks one tile up, down, left or right.
• move_to walks to any tile along the cheapest route.
• Routes may step diagonally, but never cut a wall corner: both tiles
  beside a diagonal step must be walkable.
• Costs: 10 per straight step, 14 per diagonal step, and entering a tile
  with a dog costs ten times as much. Routes avoid dogs when a detour is
  cheaper.
• A request made while a step is under way is remembered and starts once
  that step lands. Only the latest such request is kept.

DOGS AND BONES:
• Entering a dog's tile with a bone spends the bone and the dog leaves.
• Entering a dog's tile with no bones ends the game: the dog wins.

STEP MODES (set by the server):
• instant: each request walks the whole route before it returns.
• manual: steps land only when you call advance_step.
• realtime: steps land on a timer; poll game_state to follow along.

TIPS:
• Use find_path to preview a route and its cost before committing.
• Use describe_tile when unsure what a map character means.`

func formatSessionInfo(session *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", session.ID)
	fmt.Fprintf(&b, "Level: %s (%s)\n", session.LevelName, session.LevelID)
	fmt.Fprintf(&b, "Created: %s\n", session.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "Last accessed: %s\n\n", session.LastAccessedAt.Format("2006-01-02 15:04:05"))
	b.WriteString(formatGameState(session.GameState))
	return b.String()
}

func formatGameState(state *engine.GameState) string {
	if state == nil {
		return "No game state"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Level: %s\n", state.LevelName)
	fmt.Fprintf(&b, "Cat: %s facing %s\n", state.CatPos, state.Facing)
	if state.BoneStatus != "" {
		fmt.Fprintf(&b, "%s\n", state.BoneStatus)
	} else {
		fmt.Fprintf(&b, "Bones: %d\n", state.Bones)
	}
	fmt.Fprintf(&b, "Phase: %s\n", state.Phase)

	switch {
	case state.Victory:
		b.WriteString("Status: WON\n")
	case state.GameOver:
		b.WriteString("Status: LOST\n")
	}

	if state.StepTarget != nil {
		fmt.Fprintf(&b, "Stepping to: %s\n", *state.StepTarget)
	}
	if len(state.Route) > 0 {
		fmt.Fprintf(&b, "Route left: %s\n", formatRoute(state.Route))
	}
	if state.PendingTarget != nil {
		fmt.Fprintf(&b, "Next destination: %s\n", *state.PendingTarget)
	}
	if state.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", state.Message)
	}

	b.WriteString("\nMap:\n")
	b.WriteString(formatMap(engine.RenderMap(state)))

	if len(state.LocalView3x3) > 0 {
		b.WriteString("\nAround the cat:\n")
		for _, line := range state.LocalView3x3 {
			b.WriteString("  " + line + "\n")
		}
	}
	return b.String()
}

// formatMap prints rows with column and row indices
func formatMap(rows []string) string {
	if len(rows) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("    ")
	for col := range rows[0] {
		b.WriteByte(byte('0' + col%10))
	}
	b.WriteByte('\n')
	for row, line := range rows {
		fmt.Fprintf(&b, "%3d %s\n", row, line)
	}
	return b.String()
}

func formatRoute(route []engine.TileCoord) string {
	parts := make([]string, len(route))
	for i, c := range route {
		parts[i] = c.String()
	}
	return strings.Join(parts, " → ")
}

func formatMoveResult(result *service.MoveResult) string {
	var b strings.Builder

	status := "✗"
	if result.Success {
		status = "✓"
	}
	if result.Outcome != "" {
		fmt.Fprintf(&b, "%s Outcome: %s\n", status, result.Outcome)
	} else {
		fmt.Fprintf(&b, "%s Steps landed: %d\n", status, result.StepsLanded)
	}
	if result.Outcome != "" && result.StepsLanded > 0 {
		fmt.Fprintf(&b, "Steps landed: %d\n", result.StepsLanded)
	}
	if result.Message != "" {
		fmt.Fprintf(&b, "Message: %s\n", result.Message)
	}

	if len(result.Events) > 0 {
		b.WriteString("\nEvents:\n")
		for _, ev := range result.Events {
			if ev.Message != "" {
				fmt.Fprintf(&b, "  - %s at %s: %s\n", ev.Type, ev.Position, ev.Message)
			} else {
				fmt.Fprintf(&b, "  - %s at %s\n", ev.Type, ev.Position)
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(formatGameState(result.GameState))
	return b.String()
}

func formatPath(result *service.PathResult) string {
	if !result.Found {
		return fmt.Sprintf("No route from %s to %s.", result.From, result.To)
	}
	if len(result.Route) == 0 {
		return fmt.Sprintf("The cat is already at %s.", result.To)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Route from %s to %s: %d steps, cost %d\n", result.From, result.To, len(result.Route), result.Cost)
	fmt.Fprintf(&b, "%s\n\n", formatRoute(result.Route))
	b.WriteString(formatMap(result.Map))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Step History (Page %d/%d, Total: %d steps)\n\n",
		history.Page, history.TotalPages, history.TotalSteps)

	for _, step := range history.Steps {
		fmt.Fprintf(&b, "#%d: %s → %s facing %s, bones %d", step.StepNumber, step.From, step.To, step.Facing, step.Bones)
		if step.Object != engine.NoObject {
			fmt.Fprintf(&b, " [%s]", step.Object)
		}
		b.WriteString("\n")
	}

	if history.HasNext {
		fmt.Fprintf(&b, "\n(More steps available on page %d)", history.Page+1)
	}
	return b.String()
}

func describeTile(state *engine.GameState, at engine.TileCoord) string {
	tile := state.Tiles[at.Row][at.Col]

	var b strings.Builder
	fmt.Fprintf(&b, "Tile %s: '%c'\n", at, engine.TileChar(tile))

	if tile.Type == engine.Wall {
		b.WriteString("Terrain: wall\nWalkable: no\n")
		return b.String()
	}

	b.WriteString("Terrain: floor\nWalkable: yes\n")
	switch tile.Object {
	case engine.Bone:
		b.WriteString("Object: bone. The cat picks it up on entering.\n")
	case engine.Dog:
		b.WriteString("Object: dog. Entering spends a bone; with no bones the game is lost.\n")
		fmt.Fprintf(&b, "Entering cost: x%d\n", engine.DogCostFactor)
	case engine.Exit:
		b.WriteString("Object: exit. Entering wins the level.\n")
	default:
		b.WriteString("Object: none\n")
	}

	if at == state.CatPos {
		b.WriteString("The cat is here.\n")
	}
	if d := engine.ManhattanDistance(state.CatPos, at); d > 0 {
		fmt.Fprintf(&b, "Distance from the cat: %d tiles (Manhattan)\n", d)
	}
	return b.String()
}
