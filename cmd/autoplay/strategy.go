package main

import (
	"github.com/wricardo/catmaze/game/engine"
)

// Goal is the next tile the bot sends the cat to
type Goal struct {
	Target engine.TileCoord
	Reason string
	Cost   int
}

const (
	reasonExit = "exit"
	reasonBone = "bone"
)

// BoneFirstStrategy heads for the cheapest exit when the cat carries enough
// bones for the dogs on that route. Otherwise it fetches the cheapest bone
// it can reach without meeting more dogs than it has bones for.
type BoneFirstStrategy struct{}

func (BoneFirstStrategy) Next(state *engine.GameState) (Goal, bool) {
	if state == nil || state.GameOver {
		return Goal{}, false
	}

	tiles, err := engine.NewTileMapFromTiles(state.Tiles)
	if err != nil {
		return Goal{}, false
	}
	from := state.CatPos

	var exits, bones []engine.TileCoord
	for row, line := range state.Tiles {
		for col, t := range line {
			c := engine.TileCoord{Col: col, Row: row}
			switch t.Object {
			case engine.Exit:
				exits = append(exits, c)
			case engine.Bone:
				bones = append(bones, c)
			}
		}
	}

	exit, exitDogs, ok := cheapest(tiles, from, exits, -1)
	if !ok {
		return Goal{}, false
	}
	if exitDogs <= state.Bones {
		return Goal{Target: exit.Target, Reason: reasonExit, Cost: exit.Cost}, true
	}

	if bone, _, ok := cheapest(tiles, from, bones, state.Bones); ok {
		return Goal{Target: bone.Target, Reason: reasonBone, Cost: bone.Cost}, true
	}

	// nothing safer left, try the exit anyway
	return Goal{Target: exit.Target, Reason: reasonExit, Cost: exit.Cost}, true
}

// cheapest returns the reachable target with the lowest route cost and the
// number of dogs on its route. maxDogs < 0 means any number of dogs.
func cheapest(tiles *engine.TileMap, from engine.TileCoord, targets []engine.TileCoord, maxDogs int) (Goal, int, bool) {
	var best Goal
	bestDogs := 0
	found := false

	for _, target := range targets {
		route, ok := engine.FindPath(tiles, from, target)
		if !ok {
			continue
		}
		dogs := 0
		for _, c := range route {
			if tiles.ObjectAt(c) == engine.Dog {
				dogs++
			}
		}
		if maxDogs >= 0 && dogs > maxDogs {
			continue
		}
		cost := engine.RouteCost(tiles, from, route)
		if !found || cost < best.Cost {
			best = Goal{Target: target, Cost: cost}
			bestDogs = dogs
			found = true
		}
	}
	return best, bestDogs, found
}
