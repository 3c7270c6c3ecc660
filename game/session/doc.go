// Package session keeps game sessions alive across requests and restarts.
//
// Manager holds sessions in memory, keyed case-insensitively by a short
// 4-hex-character ID, and writes each one through a SessionPersistence after
// mutating calls. FilePersistence stores a session as a JSON file holding
// the level ID and the engine's GameState snapshot; loading rebuilds the
// engine from the level and restores the snapshot with SetState, so the cat
// comes back at rest on its last tile.
//
// Sessions idle for longer than a retention window are dropped from memory by
// StartCleanup and reloaded lazily on the next Get. Watch prunes sessions
// whose files were removed from the sessions directory.
package session
