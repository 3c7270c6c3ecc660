package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/game/service"
	"github.com/wricardo/catmaze/game/session"
)

var errMockNotFound = errors.New("session not found")

// MockSessionManager implements service.SessionManager for testing
type MockSessionManager struct {
	mu       sync.Mutex
	sessions map[string]*service.Session
	saves    int
}

func NewMockSessionManager() *MockSessionManager {
	return &MockSessionManager{
		sessions: make(map[string]*service.Session),
	}
}

func (m *MockSessionManager) Create(id, levelID string, config *engine.LevelConfig) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Generate ID if empty (mimics real session manager behavior)
	if id == "" {
		id = fmt.Sprintf("test_%d", len(m.sessions)+1)
	}

	eng, err := engine.NewEngine(config)
	if err != nil {
		return nil, err
	}

	session := &service.Session{
		ID:             id,
		LevelID:        levelID,
		Engine:         eng,
		Config:         config,
		CreatedAt:      time.Now(),
		LastAccessedAt: time.Now(),
	}
	m.sessions[id] = session
	return session, nil
}

func (m *MockSessionManager) Get(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, exists := m.sessions[id]
	if !exists {
		return nil, errMockNotFound
	}
	return session, nil
}

func (m *MockSessionManager) List() []*service.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		result = append(result, session)
	}
	return result
}

func (m *MockSessionManager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.sessions[id]; !exists {
		return errMockNotFound
	}
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionManager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if session, exists := m.sessions[id]; exists {
		session.LastAccessedAt = time.Now()
		return nil
	}
	return errMockNotFound
}

func (m *MockSessionManager) Save(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	return nil
}

// MockConfigManager implements service.ConfigManager for testing
type MockConfigManager struct {
	configs map[string]*engine.LevelConfig
}

func NewMockConfigManager() *MockConfigManager {
	fast := engine.DefaultLevelConfig()
	fast.Name = "Fast Backyard"
	fast.StepDurationMs = 5

	return &MockConfigManager{
		configs: map[string]*engine.LevelConfig{
			"backyard": engine.DefaultLevelConfig(),
			"fast":     fast,
		},
	}
}

func (m *MockConfigManager) LoadConfig(id string) (*engine.LevelConfig, error) {
	if config, ok := m.configs[id]; ok {
		return config, nil
	}
	return nil, service.ErrLevelNotFound
}

func (m *MockConfigManager) ListConfigs() ([]*service.LevelInfo, error) {
	var out []*service.LevelInfo
	for id, c := range m.configs {
		out = append(out, &service.LevelInfo{LevelID: id, Name: c.Name})
	}
	return out, nil
}

func (m *MockConfigManager) GetDefault() (string, *engine.LevelConfig) {
	return "backyard", m.configs["backyard"]
}

func (m *MockConfigManager) SaveConfig(id string, config *engine.LevelConfig) error {
	if err := engine.ValidateLevelConfig(config); err != nil {
		return err
	}
	m.configs[id] = config
	return nil
}

// recordingNotifier collects realtime updates
type recordingNotifier struct {
	mu     sync.Mutex
	states []*engine.GameState
}

func (n *recordingNotifier) NotifyState(sessionID string, state *engine.GameState, events []engine.GameEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.states = append(n.states, state)
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.states)
}

func newService(t *testing.T, opts ...service.Option) (service.GameService, *MockSessionManager) {
	t.Helper()
	sessions := NewMockSessionManager()
	svc := service.NewGameService(sessions, NewMockConfigManager(), opts...)
	t.Cleanup(svc.Close)
	return svc, sessions
}

func TestCreateSession(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "backyard", info.LevelID)
	assert.Equal(t, "Backyard", info.LevelName)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, info.GameState.CatPos)

	info, err = svc.CreateSession(ctx, "fast")
	require.NoError(t, err)
	assert.Equal(t, "fast", info.LevelID)

	_, err = svc.CreateSession(ctx, "moon")
	assert.ErrorIs(t, err, service.ErrLevelNotFound)
	assert.Contains(t, err.Error(), "backyard")

	sessions, err := svc.ListSessions(ctx)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestInstantMode(t *testing.T) {
	svc, sessions := newService(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	res, err := svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, engine.OutcomeStarted, res.Outcome)
	assert.Equal(t, 2, res.StepsLanded)
	assert.Equal(t, engine.TileCoord{Col: 3, Row: 1}, res.GameState.CatPos)
	assert.Equal(t, engine.PhaseIdle, res.GameState.Phase)
	assert.Equal(t, engine.EventArrived, res.Events[len(res.Events)-1].Type)
	assert.Equal(t, "#..C#..B#", res.Map[1])
	assert.Positive(t, sessions.saves)

	res, err = svc.Move(ctx, info.ID, "up")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, engine.OutcomeBlocked, res.Outcome)

	_, err = svc.Move(ctx, info.ID, "north")
	assert.ErrorIs(t, err, engine.ErrInvalidDirection)
}

func TestManualModeQueuesDestination(t *testing.T) {
	svc, _ := newService(t, service.WithStepMode(service.StepManual))
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	res, err := svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeStarted, res.Outcome)
	assert.Equal(t, 0, res.StepsLanded)
	require.NotNil(t, res.GameState.StepTarget)
	assert.Equal(t, engine.TileCoord{Col: 2, Row: 1}, *res.GameState.StepTarget)

	res, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 1, Row: 3})
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeQueued, res.Outcome)
	require.NotNil(t, res.GameState.PendingTarget)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 3}, *res.GameState.PendingTarget)

	res, err = svc.AdvanceStep(ctx, info.ID, 1)
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 1, res.StepsLanded)
	assert.Equal(t, engine.TileCoord{Col: 2, Row: 1}, res.GameState.CatPos)
	assert.Nil(t, res.GameState.PendingTarget)

	res, err = svc.AdvanceStep(ctx, info.ID, 100)
	require.NoError(t, err)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 3}, res.GameState.CatPos)
	assert.Equal(t, engine.PhaseIdle, res.GameState.Phase)

	res, err = svc.AdvanceStep(ctx, info.ID, 1)
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, 0, res.StepsLanded)
}

func TestRealtimeMode(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newService(t,
		service.WithStepMode(service.StepRealtime),
		service.WithNotifier(notifier),
	)
	assert.Equal(t, service.StepRealtime, svc.StepMode())

	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "fast")
	require.NoError(t, err)

	res, err := svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)
	assert.Equal(t, engine.OutcomeStarted, res.Outcome)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, res.GameState.CatPos)

	require.Eventually(t, func() bool {
		state, err := svc.GetGameState(ctx, info.ID)
		return err == nil && state.CatPos == engine.TileCoord{Col: 3, Row: 1} && state.Phase == engine.PhaseIdle
	}, 2*time.Second, 5*time.Millisecond)

	assert.Eventually(t, func() bool { return notifier.count() == 2 }, time.Second, 5*time.Millisecond)
}

func TestRealtimeResetCancelsStep(t *testing.T) {
	svc, _ := newService(t, service.WithStepMode(service.StepRealtime))
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	_, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.PhaseIdle, state.Phase)

	time.Sleep(3 * engine.DefaultStepDuration * time.Millisecond / 2)
	state, err = svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, state.CatPos)
	assert.Empty(t, state.StepHistory)
}

func TestFindPathPreview(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	res, err := svc.FindPath(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)
	assert.True(t, res.Found)
	assert.Equal(t, 20, res.Cost)
	assert.Equal(t, []engine.TileCoord{{Col: 2, Row: 1}, {Col: 3, Row: 1}}, res.Route)
	assert.Equal(t, "#C**#..B#", res.Map[1])

	res, err = svc.FindPath(ctx, info.ID, engine.TileCoord{Col: 0, Row: 0})
	require.NoError(t, err)
	assert.False(t, res.Found)
	assert.Empty(t, res.Route)

	state, err := svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, state.CatPos)
}

func TestStepHistoryPagination(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	_, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 1, Row: 5})
	require.NoError(t, err)

	all, err := svc.GetStepHistory(ctx, info.ID, service.HistoryOptions{Order: "asc", Limit: 100})
	require.NoError(t, err)
	require.Equal(t, 4, all.TotalSteps)
	assert.Equal(t, 1, all.Steps[0].StepNumber)

	page, err := svc.GetStepHistory(ctx, info.ID, service.HistoryOptions{Page: 2, Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)
	require.Len(t, page.Steps, 1)
	assert.Equal(t, 1, page.Steps[0].StepNumber)

	empty, err := svc.GetStepHistory(ctx, info.ID, service.HistoryOptions{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, empty.Steps)
}

func TestResetAndDelete(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	_, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	require.NoError(t, err)

	state, err := svc.Reset(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, state.CatPos)
	assert.Len(t, state.StepHistory, 2)

	require.NoError(t, svc.DeleteSession(ctx, info.ID))
	_, err = svc.GetSession(ctx, info.ID)
	assert.ErrorIs(t, err, errMockNotFound)
	_, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
	assert.Error(t, err)
}

func TestLevels(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	levels, err := svc.ListLevels(ctx)
	require.NoError(t, err)
	assert.Len(t, levels, 2)

	level, err := svc.LoadLevel(ctx, "backyard")
	require.NoError(t, err)
	assert.Equal(t, "Backyard", level.Name)

	assert.Error(t, svc.SaveLevel(ctx, "broken", &engine.LevelConfig{Name: "broken"}))
}

func TestParseStepMode(t *testing.T) {
	mode, err := service.ParseStepMode("manual")
	require.NoError(t, err)
	assert.Equal(t, service.StepManual, mode)

	_, err = service.ParseStepMode("warp")
	assert.ErrorIs(t, err, service.ErrInvalidStepMode)
}

func TestConcurrentReadsAndMoves(t *testing.T) {
	configs := NewMockConfigManager()
	persistence, err := session.NewFilePersistence(t.TempDir(), configs)
	require.NoError(t, err)
	sessions := session.NewManagerWithPersistence(persistence)

	svc := service.NewGameService(sessions, configs, service.WithStepMode(service.StepManual))
	t.Cleanup(svc.Close)
	ctx := context.Background()

	info, err := svc.CreateSession(ctx, "")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.GetSession(ctx, info.ID)
			assert.NoError(t, err)
			_, err = svc.GetGameState(ctx, info.ID)
			assert.NoError(t, err)
			_, err = svc.ListSessions(ctx)
			assert.NoError(t, err)
			if i%2 == 0 {
				_, err = svc.MoveTo(ctx, info.ID, engine.TileCoord{Col: 3, Row: 1})
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	state, err := svc.GetGameState(ctx, info.ID)
	require.NoError(t, err)
	assert.Equal(t, engine.TileCoord{Col: 1, Row: 1}, state.CatPos, "manual mode lands nothing without advance")
	assert.NoError(t, sessions.SaveAllSessions())
}
