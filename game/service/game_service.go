package service

import (
	"context"
	"time"

	"github.com/wricardo/catmaze/game/engine"
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, levelID string) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	Move(ctx context.Context, sessionID, direction string) (*MoveResult, error)
	MoveTo(ctx context.Context, sessionID string, target engine.TileCoord) (*MoveResult, error)
	AdvanceStep(ctx context.Context, sessionID string, steps int) (*MoveResult, error)
	FindPath(ctx context.Context, sessionID string, target engine.TileCoord) (*PathResult, error)
	Reset(ctx context.Context, sessionID string) (*engine.GameState, error)

	// Game State
	GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error)
	GetStepHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Levels
	ListLevels(ctx context.Context) ([]*LevelInfo, error)
	LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error)
	SaveLevel(ctx context.Context, levelID string, config *engine.LevelConfig) error

	// Lifecycle
	StepMode() StepMode
	Close()
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id, levelID string, config *engine.LevelConfig) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ConfigManager handles level loading
type ConfigManager interface {
	LoadConfig(levelID string) (*engine.LevelConfig, error)
	ListConfigs() ([]*LevelInfo, error)
	GetDefault() (string, *engine.LevelConfig)
	SaveConfig(levelID string, config *engine.LevelConfig) error
}

// Notifier is told about state changes that happen outside a request, such
// as steps landed by the realtime clock
type Notifier interface {
	NotifyState(sessionID string, state *engine.GameState, events []engine.GameEvent)
}

// Session represents an active game session
type Session struct {
	ID             string
	LevelID        string
	Engine         *engine.GameEngine
	Config         *engine.LevelConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
