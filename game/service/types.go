package service

import (
	"time"

	"github.com/wricardo/catmaze/game/engine"
)

// StepMode decides when a begun step lands
type StepMode string

const (
	// StepInstant lands every step before the request returns
	StepInstant StepMode = "instant"
	// StepManual lands steps only through AdvanceStep
	StepManual StepMode = "manual"
	// StepRealtime lands each step after the level's step duration
	StepRealtime StepMode = "realtime"
)

// ParseStepMode validates a step mode name
func ParseStepMode(s string) (StepMode, error) {
	switch m := StepMode(s); m {
	case StepInstant, StepManual, StepRealtime:
		return m, nil
	}
	return "", ErrInvalidStepMode
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string              `json:"id"`
	LevelID        string              `json:"level_id"`
	LevelName      string              `json:"level_name"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	GameState      *engine.GameState   `json:"game_state"`
	Level          *engine.LevelConfig `json:"level"`
}

// MoveResult contains the result of a move request or step advance
type MoveResult struct {
	Outcome     engine.MoveOutcome `json:"outcome,omitempty"`
	Success     bool               `json:"success"`
	GameState   *engine.GameState  `json:"game_state"`
	Message     string             `json:"message"`
	Events      []engine.GameEvent `json:"events,omitempty"`
	StepsLanded int                `json:"steps_landed"`
	Map         []string           `json:"map,omitempty"`
}

// PathResult is a route preview
type PathResult struct {
	From  engine.TileCoord   `json:"from"`
	To    engine.TileCoord   `json:"to"`
	Found bool               `json:"found"`
	Route []engine.TileCoord `json:"route"`
	Cost  int                `json:"cost"`
	Map   []string           `json:"map,omitempty"`
}

// HistoryOptions configures step history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated step history
type HistoryResponse struct {
	Steps       []engine.StepEntry `json:"steps"`
	TotalSteps  int                `json:"total_steps"`
	Page        int                `json:"page"`
	PageSize    int                `json:"page_size"`
	TotalPages  int                `json:"total_pages"`
	HasNext     bool               `json:"has_next"`
	HasPrevious bool               `json:"has_previous"`
}

// LevelInfo provides information about a level file
type LevelInfo struct {
	Filename    string `json:"filename"`
	LevelID     string `json:"level_id"` // The identifier to use for session creation
	Name        string `json:"name"`     // Display name
	Description string `json:"description"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Bones       int    `json:"bones"`
	Dogs        int    `json:"dogs"`
}
