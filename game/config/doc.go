// Package config loads the maze levels served by the game.
//
// Levels live in one directory, one file per level, as JSON (.json) or YAML
// (.yaml, .yml). The file name without its extension is the level ID used
// to create sessions. Layout rows use:
//
//	#  wall
//	.  floor
//	C  cat spawn (exactly one)
//	B  bone
//	D  dog
//	E  exit (at least one, reachable from the spawn)
//
// Loaded levels are validated with engine.ValidateLevelConfig and cached.
// Watch keeps the cache in step with the directory while the server runs.
//
// Usage:
//
//	manager, err := config.NewManager("levels")
//	if err != nil {
//		log.Fatal(err)
//	}
//	go manager.Watch(ctx)
//
//	level, err := manager.LoadConfig("backyard")
//	id, level := manager.GetDefault()
//	levels, err := manager.ListConfigs()
package config
