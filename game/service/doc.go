// Package service provides the business logic layer of the cat maze server.
//
// GameService is the facade used by every transport (REST, WebSocket, MCP).
// It owns one GameEngine per session and decides when the cat's steps land:
//
//   - instant: every step lands before the request returns
//   - manual: steps land only through AdvanceStep, so a destination sent
//     mid-step stays visible as the pending target
//   - realtime: a timer lands each step after the level's step duration and
//     the Notifier receives the new state
//
// SessionManager and ConfigManager are implemented by the session and config
// packages.
//
// Usage:
//
//	sessions := session.NewManager()
//	levels, _ := config.NewManager("levels")
//	svc := service.NewGameService(sessions, levels, service.WithStepMode(service.StepManual))
//
//	info, err := svc.CreateSession(ctx, "backyard")
//	if err != nil {
//		log.Fatal(err)
//	}
//	res, err := svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
//	res, err = svc.AdvanceStep(ctx, info.ID, 1)
package service
