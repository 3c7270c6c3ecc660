package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/wricardo/catmaze/game/engine"
)

var (
	ErrLevelNotFound   = errors.New("level not found")
	ErrInvalidStepMode = errors.New("invalid step mode: want instant, manual or realtime")
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Option configures the game service
type Option func(*gameServiceImpl)

// WithStepMode sets when begun steps land
func WithStepMode(mode StepMode) Option {
	return func(s *gameServiceImpl) { s.mode = mode }
}

// WithNotifier registers the receiver of clock-driven updates
func WithNotifier(n Notifier) Option {
	return func(s *gameServiceImpl) { s.notifier = n }
}

// stepTimer lands the step in flight of one session in realtime mode.
// gen tells a fired timer whether it is still the current one.
type stepTimer struct {
	timer *time.Timer
	gen   uint64
}

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mode     StepMode
	notifier Notifier

	timers map[string]*stepTimer
	gen    uint64
	closed bool

	// write-held by every method that calls UpdateLastAccessed
	mu sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager, opts ...Option) GameService {
	s := &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
		mode:     StepInstant,
		timers:   make(map[string]*stepTimer),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// StepMode reports how the service lands steps
func (s *gameServiceImpl) StepMode() StepMode {
	return s.mode
}

// Close stops every realtime step timer
func (s *gameServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	for id, t := range s.timers {
		t.timer.Stop()
		delete(s.timers, id)
	}
}

// sessionInfo copies a session out for callers. Callers hold s.mu.
func (s *gameServiceImpl) sessionInfo(sess *Session) *SessionInfo {
	return &SessionInfo{
		ID:             sess.ID,
		LevelID:        sess.LevelID,
		LevelName:      sess.Config.Name,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		GameState:      sess.Engine.GetState(),
		Level:          sess.Config,
	}
}

// CreateSession creates a new game session on a level; an empty levelID
// picks the default level
func (s *gameServiceImpl) CreateSession(ctx context.Context, levelID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var config *engine.LevelConfig
	var err error
	if levelID != "" {
		config, err = s.configs.LoadConfig(levelID)
		if err != nil {
			if errors.Is(err, ErrLevelNotFound) {
				return nil, fmt.Errorf("%w: '%s'. Available levels: %v", ErrLevelNotFound, levelID, s.levelIDs())
			}
			return nil, fmt.Errorf("failed to load level %s: %w", levelID, err)
		}
	} else {
		levelID, config = s.configs.GetDefault()
	}

	// Let session manager generate a proper 4-character ID
	sess, err := s.sessions.Create("", levelID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	zap.L().Info("session created", zap.String("session", sess.ID), zap.String("level", levelID))
	return s.sessionInfo(sess), nil
}

func (s *gameServiceImpl) levelIDs() []string {
	levels, err := s.configs.ListConfigs()
	if err != nil {
		return nil
	}
	ids := make([]string, 0, len(levels))
	for _, l := range levels {
		ids = append(ids, l.LevelID)
	}
	return ids
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return s.sessionInfo(sess), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession removes a session
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, err := s.sessions.Get(sessionID); err == nil {
		s.cancelTimer(sess.ID)
	}
	return s.sessions.Delete(sessionID)
}

// Move turns the cat and asks it to walk one tile in direction
func (s *gameServiceImpl) Move(ctx context.Context, sessionID, direction string) (*MoveResult, error) {
	d, err := engine.ParseDirection(direction)
	if err != nil {
		return nil, err
	}
	return s.request(sessionID, func(e *engine.GameEngine) engine.MoveOutcome {
		return e.MoveInDirection(d)
	})
}

// MoveTo asks the cat to walk to target
func (s *gameServiceImpl) MoveTo(ctx context.Context, sessionID string, target engine.TileCoord) (*MoveResult, error) {
	return s.request(sessionID, func(e *engine.GameEngine) engine.MoveOutcome {
		return e.MoveToward(target)
	})
}

// request runs a move request and applies the step mode
func (s *gameServiceImpl) request(sessionID string, move func(*engine.GameEngine) engine.MoveOutcome) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	outcome := move(sess.Engine)

	landed := 0
	switch s.mode {
	case StepInstant:
		landed = sess.Engine.Settle(0)
	case StepRealtime:
		s.schedule(sess)
	}

	result := s.result(sess, landed)
	result.Outcome = outcome
	switch outcome {
	case engine.OutcomeStarted, engine.OutcomeArrived, engine.OutcomeQueued:
		result.Success = true
	}

	s.save(sessionID)
	return result, nil
}

// AdvanceStep lands up to steps steps in flight (at least one)
func (s *gameServiceImpl) AdvanceStep(ctx context.Context, sessionID string, steps int) (*MoveResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	if steps < 1 {
		steps = 1
	}

	s.cancelTimer(sess.ID)
	landed := sess.Engine.Settle(steps)
	if s.mode == StepRealtime {
		s.schedule(sess)
	}

	result := s.result(sess, landed)
	result.Success = landed > 0
	if landed == 0 {
		result.Message = "No step in flight"
	}

	s.save(sessionID)
	return result, nil
}

func (s *gameServiceImpl) result(sess *Session, landed int) *MoveResult {
	state := sess.Engine.GetState()
	return &MoveResult{
		GameState:   state,
		Message:     state.Message,
		Events:      sess.Engine.DrainEvents(),
		StepsLanded: landed,
		Map:         engine.RenderMap(state),
	}
}

// FindPath previews the route from the cat to target
func (s *gameServiceImpl) FindPath(ctx context.Context, sessionID string, target engine.TileCoord) (*PathResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	from := sess.Engine.GetCatPosition()
	route, cost, found := sess.Engine.FindPath(target)

	preview := sess.Engine.GetState()
	preview.Route = route
	preview.StepTarget = nil

	if route == nil {
		route = []engine.TileCoord{}
	}
	return &PathResult{
		From:  from,
		To:    target,
		Found: found,
		Route: route,
		Cost:  cost,
		Map:   engine.RenderMap(preview),
	}, nil
}

// Reset reloads the session's level
func (s *gameServiceImpl) Reset(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(sessionID)

	s.cancelTimer(sess.ID)
	state := sess.Engine.Reset()

	s.save(sessionID)
	return state, nil
}

// GetGameState returns the current state of a session
func (s *gameServiceImpl) GetGameState(ctx context.Context, sessionID string) (*engine.GameState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	s.sessions.UpdateLastAccessed(sessionID)
	return sess.Engine.GetState(), nil
}

// GetStepHistory returns paginated step history
func (s *gameServiceImpl) GetStepHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session not found: %w", err)
	}

	history := sess.Engine.GetStepHistory()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultHistoryLimit
	}
	if opts.Limit > maxHistoryLimit {
		opts.Limit = maxHistoryLimit
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	steps := []engine.StepEntry{}
	if start < total {
		if opts.Order == "desc" {
			// most recent first
			for i := total - 1 - start; i >= total-end; i-- {
				steps = append(steps, history[i])
			}
		} else {
			steps = append(steps, history[start:end]...)
		}
	}

	return &HistoryResponse{
		Steps:       steps,
		TotalSteps:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// ListLevels returns all available levels
func (s *gameServiceImpl) ListLevels(ctx context.Context) ([]*LevelInfo, error) {
	return s.configs.ListConfigs()
}

// LoadLevel loads a level by ID
func (s *gameServiceImpl) LoadLevel(ctx context.Context, levelID string) (*engine.LevelConfig, error) {
	return s.configs.LoadConfig(levelID)
}

// SaveLevel validates and stores a level
func (s *gameServiceImpl) SaveLevel(ctx context.Context, levelID string, config *engine.LevelConfig) error {
	return s.configs.SaveConfig(levelID, config)
}

func (s *gameServiceImpl) save(sessionID string) {
	if err := s.sessions.Save(sessionID); err != nil {
		zap.L().Warn("failed to persist session", zap.String("session", sessionID), zap.Error(err))
	}
}

// schedule arms the realtime timer for the session's step in flight.
// Callers hold s.mu.
func (s *gameServiceImpl) schedule(sess *Session) {
	if s.closed {
		return
	}
	if _, armed := s.timers[sess.ID]; armed {
		return
	}
	if _, ok := sess.Engine.StepInFlight(); !ok {
		return
	}

	s.gen++
	gen := s.gen
	id := sess.ID
	s.timers[id] = &stepTimer{
		gen:   gen,
		timer: time.AfterFunc(sess.Engine.StepDuration(), func() { s.tick(id, gen) }),
	}
}

// cancelTimer stops the realtime timer of a session. Callers hold s.mu.
func (s *gameServiceImpl) cancelTimer(sessionID string) {
	if t, ok := s.timers[sessionID]; ok {
		t.timer.Stop()
		delete(s.timers, sessionID)
	}
}

// tick lands one step when a realtime timer fires
func (s *gameServiceImpl) tick(sessionID string, gen uint64) {
	s.mu.Lock()
	t, ok := s.timers[sessionID]
	if !ok || t.gen != gen {
		s.mu.Unlock()
		return
	}
	delete(s.timers, sessionID)

	sess, err := s.sessions.Get(sessionID)
	if err != nil {
		s.mu.Unlock()
		return
	}

	if !sess.Engine.CompleteStep() {
		s.mu.Unlock()
		return
	}
	s.schedule(sess)

	state := sess.Engine.GetState()
	events := sess.Engine.DrainEvents()
	s.save(sessionID)
	notifier := s.notifier
	s.mu.Unlock()

	zap.L().Debug("step landed",
		zap.String("session", sessionID),
		zap.Stringer("tile", state.CatPos),
		zap.String("phase", string(state.Phase)),
	)
	if notifier != nil {
		notifier.NotifyState(sessionID, state, events)
	}
}
