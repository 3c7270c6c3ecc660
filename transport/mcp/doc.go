// Package mcp exposes the game to AI agents as Model Context Protocol tools.
//
// Client holds an mcp-go MCPServer whose tools are thin proxies over the
// REST API: every call becomes an HTTP request against baseURL and the JSON
// response is rendered as text with an indexed ASCII map.
//
// Tools: create_session, list_sessions, get_session, game_state, move,
// move_to, advance_step, find_path, reset_game, step_history, list_levels,
// game_instructions, describe_tile.
//
// The server is served over stdio by the "mcp" command, or over HTTP at /mcp
// by the "server" command.
package mcp
