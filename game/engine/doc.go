// Package engine provides the core of the cat maze: the tile grid, A* route
// search and the cat's step-by-step motion.
//
// Core Types:
//
// TileMap is the grid. FindPath searches any Graph (TileMap is one) for the
// cheapest 8-way route, where diagonal moves may not cut wall corners and
// tiles holding a dog cost ten times as much to enter. Cat walks a route one
// tile at a time through a Host: it asks the host to animate each step and
// only moves on once the host reports the step finished. A destination
// requested mid-step is remembered and planned from the tile the step lands
// on.
//
// GameEngine is the host used by the server. It holds the step in flight
// until CompleteStep is called, so the caller decides how fast the cat moves.
//
// Usage:
//
//	config, err := engine.LoadLevelConfig("levels/backyard.json")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	e, err := engine.NewEngine(config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	e.MoveToward(engine.TileCoord{Col: 7, Row: 5})
//	e.Settle(0)
//	state := e.GetState()
//
// Game Rules:
//
// Walking onto a bone picks it up. Walking onto a dog spends a bone to chase
// it away; with no bones the game is lost. Reaching an exit wins.
package engine
