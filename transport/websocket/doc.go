// Package websocket pushes game updates to browsers watching a session.
//
// A single Hub goroutine owns every connection. Clients attach with
// GET /ws?session=<id> and then only receive; anything they send is read and
// discarded so that pong and close frames are handled.
//
// Outgoing frames are JSON Message values:
//
//	{"type": "state_update", "session_id": "ab12", "game_state": {...}, "events": [...]}
//	{"type": "event", "session_id": "ab12", "event": "...", "data": ...}
//
// Hub implements service.Notifier, so steps landed by the realtime clock are
// pushed without a request in flight. A client whose send buffer fills up is
// disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//	svc := service.NewGameService(sessions, levels, service.WithNotifier(hub))
package websocket
