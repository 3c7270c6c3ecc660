package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestConfig(layout ...string) *LevelConfig {
	return &LevelConfig{
		Name:        "Engine Test Level",
		Description: "Level for engine integration tests",
		Layout:      layout,
		Legend:      copyLegend(),
		Messages: LevelMessages{
			Welcome:   "Welcome to engine test!",
			BoneCount: "Bones: %d",
			Win:       "Out!",
			Lose:      "Caught!",
			HitWall:   "Bonk!",
			NoPath:    "Can't get there!",
		},
	}
}

func eventTypes(events []GameEvent) []string {
	types := make([]string, len(events))
	for i, ev := range events {
		types[i] = ev.Type
	}
	return types
}

func TestNewEngine(t *testing.T) {
	e := NewEngineWithDefaults()
	state := e.GetState()

	assert.Equal(t, TileCoord{1, 1}, state.CatPos)
	assert.Equal(t, Down, state.Facing)
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, 0, state.Bones)
	assert.Equal(t, "Backyard", state.LevelName)
	assert.Equal(t, e.GetConfig().Messages.Welcome, state.Message)
	assert.Equal(t, 9, state.Width)
	assert.Equal(t, 7, state.Height)
	assert.Len(t, state.LocalView3x3, 3)
	assert.Equal(t, "Bones: 0", state.BoneStatus)
	assert.False(t, e.IsGameOver())
	assert.Nil(t, e.GetLastStep())
}

func TestNewEngine_InvalidConfig(t *testing.T) {
	config := createTestConfig("C..", "...", "...")
	_, err := NewEngine(config)
	assert.ErrorIs(t, err, ErrInvalidLevel)
}

func TestEngine_StepsLandOnCompleteStep(t *testing.T) {
	e := NewEngineWithDefaults()

	assert.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{3, 1}))

	to, ok := e.StepInFlight()
	require.True(t, ok)
	assert.Equal(t, TileCoord{2, 1}, to)

	state := e.GetState()
	assert.Equal(t, TileCoord{1, 1}, state.CatPos)
	assert.Equal(t, PhaseStepping, state.Phase)
	require.NotNil(t, state.StepTarget)
	assert.Equal(t, TileCoord{2, 1}, *state.StepTarget)
	assert.Equal(t, []TileCoord{{3, 1}}, state.Route)

	require.True(t, e.CompleteStep())
	assert.Equal(t, TileCoord{2, 1}, e.GetCatPosition())

	assert.Equal(t, 1, e.Settle(0))
	assert.Equal(t, TileCoord{3, 1}, e.GetCatPosition())
	assert.False(t, e.CompleteStep())

	history := e.GetStepHistory()
	require.Len(t, history, 2)
	assert.Equal(t, 1, history[0].StepNumber)
	assert.Equal(t, 2, history[1].StepNumber)
	assert.NotEmpty(t, history[0].RouteID)
	assert.Equal(t, history[0].RouteID, history[1].RouteID)
	assert.Equal(t, TileCoord{2, 1}, history[1].From)
	assert.Equal(t, Right, history[1].Facing)

	events := e.DrainEvents()
	assert.Equal(t, []string{EventRoute, EventStep, EventStep, EventArrived}, eventTypes(events))
	assert.Empty(t, e.DrainEvents())
}

func TestEngine_QueuedDestinationReplans(t *testing.T) {
	e := NewEngineWithDefaults()

	require.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{3, 1}))
	assert.Equal(t, OutcomeQueued, e.MoveToward(TileCoord{1, 2}))

	state := e.GetState()
	require.NotNil(t, state.PendingTarget)
	assert.Equal(t, TileCoord{1, 2}, *state.PendingTarget)

	e.Settle(0)
	assert.Equal(t, TileCoord{1, 2}, e.GetCatPosition())

	history := e.GetStepHistory()
	require.Len(t, history, 3)
	assert.Equal(t, TileCoord{2, 1}, history[0].To)
	assert.NotEqual(t, history[0].RouteID, history[1].RouteID)
	assert.Equal(t, []string{EventRoute, EventQueued, EventStep, EventRoute, EventStep, EventStep, EventArrived},
		eventTypes(e.DrainEvents()))
}

func TestEngine_QueuedDestinationFailsWhenStepLands(t *testing.T) {
	config := createTestConfig(
		"#######",
		"#C..E##",
		"#####.#",
		"#######",
	)

	t.Run("no path", func(t *testing.T) {
		e, err := NewEngine(config)
		require.NoError(t, err)

		require.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{3, 1}))
		require.Equal(t, OutcomeQueued, e.MoveToward(TileCoord{5, 2}))
		e.Settle(0)

		state := e.GetState()
		assert.Equal(t, TileCoord{2, 1}, state.CatPos)
		assert.Equal(t, PhaseIdle, state.Phase)
		assert.Equal(t, "Can't get there!", state.Message)

		events := e.DrainEvents()
		assert.Equal(t, []string{EventRoute, EventQueued, EventStep, EventNoPath}, eventTypes(events))
		assert.Equal(t, TileCoord{5, 2}, events[len(events)-1].Position)
	})

	t.Run("already there", func(t *testing.T) {
		e, err := NewEngine(config)
		require.NoError(t, err)

		require.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{3, 1}))
		require.Equal(t, OutcomeQueued, e.MoveToward(TileCoord{2, 1}))
		e.Settle(0)

		assert.Equal(t, e.GetConfig().Messages.AlreadyThere, e.GetState().Message)
		assert.Equal(t, []string{EventRoute, EventQueued, EventStep, EventAlreadyThere}, eventTypes(e.DrainEvents()))
	})
}

func TestEngine_WinsDefaultLevel(t *testing.T) {
	e := NewEngineWithDefaults()

	require.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{7, 5}))
	e.Settle(0)

	assert.True(t, e.IsGameOver())
	assert.True(t, e.IsVictory())
	assert.Equal(t, TileCoord{7, 5}, e.GetCatPosition())
	assert.Equal(t, 0, e.GetBones())
	assert.Equal(t, e.GetConfig().Messages.Win, e.GetState().Message)
	assert.Equal(t, CueWin, e.LastCue())
	assert.Equal(t, PhaseTerminal, e.GetPhase())

	types := eventTypes(e.DrainEvents())
	assert.Contains(t, types, EventPickup)
	assert.Contains(t, types, EventDogDefeated)
	assert.Equal(t, EventWin, types[len(types)-1])

	assert.Equal(t, OutcomeIgnored, e.MoveToward(TileCoord{1, 1}))
}

func TestEngine_LosesToDog(t *testing.T) {
	e, err := NewEngine(createTestConfig(
		"#####",
		"#CDE#",
		"#####",
	))
	require.NoError(t, err)

	e.MoveToward(TileCoord{3, 1})
	e.Settle(0)

	assert.True(t, e.IsGameOver())
	assert.False(t, e.IsVictory())
	assert.Equal(t, TileCoord{2, 1}, e.GetCatPosition())
	assert.Equal(t, "Caught!", e.GetState().Message)
	assert.Len(t, e.GetStepHistory(), 1)
	assert.Equal(t, Dog, e.GetLastStep().Object)
}

func TestEngine_RejectedMoves(t *testing.T) {
	e, err := NewEngine(createTestConfig(
		"######",
		"#C.#.#",
		"#.E###",
		"######",
	))
	require.NoError(t, err)

	assert.Equal(t, OutcomeBlocked, e.MoveToward(TileCoord{0, 0}))
	assert.Equal(t, "Bonk!", e.GetState().Message)
	assert.Equal(t, CueHitWall, e.LastCue())

	assert.Equal(t, OutcomeNoPath, e.MoveToward(TileCoord{4, 1}))
	assert.Equal(t, "Can't get there!", e.GetState().Message)

	assert.Equal(t, OutcomeAlreadyThere, e.MoveToward(TileCoord{1, 1}))
	assert.Equal(t, e.GetConfig().Messages.AlreadyThere, e.GetState().Message)

	assert.Equal(t, []string{EventBlocked, EventNoPath, EventAlreadyThere}, eventTypes(e.DrainEvents()))
	assert.Empty(t, e.GetStepHistory())
}

func TestEngine_Move(t *testing.T) {
	e := NewEngineWithDefaults()

	outcome, err := e.Move("right")
	require.NoError(t, err)
	assert.Equal(t, OutcomeStarted, outcome)

	_, err = e.Move("sideways")
	assert.ErrorIs(t, err, ErrInvalidDirection)
}

func TestEngine_FindPathPreview(t *testing.T) {
	e := NewEngineWithDefaults()

	route, cost, ok := e.FindPath(TileCoord{3, 1})
	require.True(t, ok)
	assert.Equal(t, []TileCoord{{2, 1}, {3, 1}}, route)
	assert.Equal(t, 20, cost)
	assert.Equal(t, TileCoord{1, 1}, e.GetCatPosition())
	assert.Equal(t, PhaseIdle, e.GetPhase())

	_, _, ok = e.FindPath(TileCoord{0, 0})
	assert.False(t, ok)
}

func TestEngine_ResetKeepsHistory(t *testing.T) {
	e := NewEngineWithDefaults()

	e.MoveToward(TileCoord{7, 5})
	e.Settle(0)
	steps := len(e.GetStepHistory())
	require.Positive(t, steps)

	state := e.Reset()
	assert.Equal(t, TileCoord{1, 1}, state.CatPos)
	assert.False(t, state.GameOver)
	assert.Equal(t, Bone, state.Tiles[1][7].Object)
	assert.Equal(t, Dog, state.Tiles[3][7].Object)
	assert.Len(t, state.StepHistory, steps)
	assert.Equal(t, steps, state.TotalSteps)

	assert.Equal(t, OutcomeStarted, e.MoveToward(TileCoord{2, 1}))
	e.Settle(0)
	assert.Equal(t, steps+1, e.GetLastStep().StepNumber)
}

func TestEngine_ResetDropsStepInFlight(t *testing.T) {
	e := NewEngineWithDefaults()

	e.MoveToward(TileCoord{3, 1})
	e.Reset()

	_, ok := e.StepInFlight()
	assert.False(t, ok)
	assert.False(t, e.CompleteStep())
	assert.Equal(t, TileCoord{1, 1}, e.GetCatPosition())
}

func TestEngine_SetStateRoundTrip(t *testing.T) {
	e := NewEngineWithDefaults()
	e.MoveToward(TileCoord{7, 2})
	e.Settle(0)
	require.Equal(t, 1, e.GetBones())

	snapshot := e.GetState()

	restored := NewEngineWithDefaults()
	require.NoError(t, restored.SetState(snapshot))

	state := restored.GetState()
	assert.Equal(t, TileCoord{7, 2}, state.CatPos)
	assert.Equal(t, 1, state.Bones)
	assert.Equal(t, NoObject, state.Tiles[1][7].Object)
	assert.Equal(t, snapshot.StepHistory, state.StepHistory)
	assert.Equal(t, PhaseIdle, state.Phase)

	restored.MoveToward(TileCoord{7, 5})
	restored.Settle(0)
	assert.True(t, restored.IsVictory())
}

func TestEngine_SetStateFinishedGame(t *testing.T) {
	e := NewEngineWithDefaults()
	e.MoveToward(TileCoord{7, 5})
	e.Settle(0)
	require.True(t, e.IsGameOver())

	restored := NewEngineWithDefaults()
	require.NoError(t, restored.SetState(e.GetState()))

	assert.True(t, restored.IsGameOver())
	assert.Equal(t, PhaseTerminal, restored.GetPhase())
	assert.Equal(t, OutcomeIgnored, restored.MoveToward(TileCoord{1, 1}))
}

func TestEngine_SetStateErrors(t *testing.T) {
	e := NewEngineWithDefaults()

	assert.ErrorIs(t, e.SetState(nil), ErrNilState)

	state := e.GetState()
	state.CatPos = TileCoord{0, 0}
	assert.ErrorIs(t, e.SetState(state), ErrInvalidLayout)
}

func TestEngine_SettleLimit(t *testing.T) {
	e := NewEngineWithDefaults()

	e.MoveToward(TileCoord{7, 5})
	assert.Equal(t, 1, e.Settle(1))
	assert.Equal(t, PhaseStepping, e.GetPhase())
}

func TestEngine_SetConfig(t *testing.T) {
	e := NewEngineWithDefaults()

	assert.ErrorIs(t, e.SetConfig(createTestConfig("C")), ErrInvalidLevel)
	assert.Equal(t, "Backyard", e.GetConfig().Name)

	require.NoError(t, e.SetConfig(createTestConfig(
		"#####",
		"#C.E#",
		"#####",
	)))
	assert.Equal(t, "Engine Test Level", e.GetState().LevelName)
	assert.Equal(t, TileCoord{1, 1}, e.GetCatPosition())
	assert.Equal(t, "Bones: 0", e.GetState().BoneStatus)
}
