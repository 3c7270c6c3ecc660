// Package api exposes the game service over HTTP.
//
// Routes (gorilla/mux):
//
//	POST   /api/sessions                  create a session {"level_id"}
//	GET    /api/sessions                  list sessions (?sort=created|accessed&order=&limit=)
//	GET    /api/sessions/{id}             session info
//	DELETE /api/sessions/{id}             delete a session
//	GET    /api/sessions/{id}/state       current game state
//	POST   /api/sessions/{id}/move        step one tile {"direction"}
//	POST   /api/sessions/{id}/move-to     walk to a tile {"col","row"}
//	POST   /api/sessions/{id}/advance     land in-flight steps {"steps"}
//	GET    /api/sessions/{id}/path        preview a route (?col=&row=)
//	POST   /api/sessions/{id}/reset       restart the level
//	GET    /api/sessions/{id}/history     landed steps (?page=&limit=&order=)
//	GET    /api/levels                    list levels
//	POST   /api/levels                    save a level {"level_id", "level"}
//	GET    /api/levels/{name}             one level
//	GET    /ws?session=<id>               websocket updates
//	GET    /healthz                       liveness
//
// Every response is JSON. Errors carry {"error": "..."} with 400 for bad
// input, 404 for unknown sessions or levels and 500 otherwise.
//
// Move responses embed the service MoveResult: the outcome of the request
// (started, queued, blocked, no_path, ...), the events it produced, the
// number of steps landed and the ASCII map. State-changing handlers also
// push the new state to websocket clients of the session.
package api
