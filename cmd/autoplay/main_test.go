package main

import (
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wricardo/catmaze/api"
	"github.com/wricardo/catmaze/game/config"
	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/game/service"
	"github.com/wricardo/catmaze/game/session"
)

func newTestServer(t *testing.T, mode service.StepMode) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("../../levels")
	require.NoError(t, err)

	svc := service.NewGameService(session.NewManager(), configs, service.WithStepMode(mode))
	t.Cleanup(svc.Close)

	ts := httptest.NewServer(api.NewServer(svc, nil))
	t.Cleanup(ts.Close)
	return ts
}

func TestPlay_WinsShippedLevels(t *testing.T) {
	ts := newTestServer(t, service.StepInstant)
	ctx := context.Background()

	for _, level := range []string{"alley", "backyard", "kennel"} {
		t.Run(level, func(t *testing.T) {
			client := NewClient(ts.URL)
			state, err := client.CreateSession(ctx, level)
			require.NoError(t, err)

			state, err = play(ctx, client, state, 20, 0)
			require.NoError(t, err)
			assert.True(t, state.Victory, state.Message)
			assert.True(t, state.GameOver)
		})
	}
}

func TestPlay_ManualStepMode(t *testing.T) {
	ts := newTestServer(t, service.StepManual)
	ctx := context.Background()

	client := NewClient(ts.URL)
	state, err := client.CreateSession(ctx, "backyard")
	require.NoError(t, err)

	state, err = play(ctx, client, state, 20, 0)
	require.NoError(t, err)
	assert.True(t, state.Victory)
}

func TestPlay_MoveLimit(t *testing.T) {
	ts := newTestServer(t, service.StepInstant)
	ctx := context.Background()

	client := NewClient(ts.URL)
	state, err := client.CreateSession(ctx, "backyard")
	require.NoError(t, err)

	state, err = play(ctx, client, state, 1, 0)
	require.NoError(t, err)
	assert.False(t, state.GameOver, "one move only reaches the first bone")
	assert.Equal(t, 1, state.Bones)
}

func TestOpenSession(t *testing.T) {
	ts := newTestServer(t, service.StepInstant)
	ctx := context.Background()
	sessionFile := filepath.Join(t.TempDir(), ".session")

	first := NewClient(ts.URL)
	state, err := openSession(ctx, first, "", sessionFile, "alley")
	require.NoError(t, err)
	assert.Equal(t, "Alley", state.LevelName)

	data, err := os.ReadFile(sessionFile)
	require.NoError(t, err)
	assert.Equal(t, first.SessionID(), string(data))

	second := NewClient(ts.URL)
	_, err = openSession(ctx, second, "", sessionFile, "")
	require.NoError(t, err)
	assert.Equal(t, first.SessionID(), second.SessionID(), "remembered session is resumed")

	third := NewClient(ts.URL)
	_, err = openSession(ctx, third, "zzzz", "", "")
	require.NoError(t, err)
	assert.NotEqual(t, "zzzz", third.SessionID(), "unknown session falls back to a new one")
}

func TestClient_Errors(t *testing.T) {
	ts := newTestServer(t, service.StepInstant)
	ctx := context.Background()

	client := NewClient(ts.URL)
	_, err := client.CreateSession(ctx, "moon")
	assert.ErrorContains(t, err, "404")

	_, err = client.Resume(ctx, "abcd")
	assert.Error(t, err)
}

func TestClient_Reset(t *testing.T) {
	ts := newTestServer(t, service.StepInstant)
	ctx := context.Background()

	client := NewClient(ts.URL)
	_, err := client.CreateSession(ctx, "alley")
	require.NoError(t, err)

	state, err := play(ctx, client, mustState(t, client), 5, 0)
	require.NoError(t, err)
	require.True(t, state.Victory)

	state, err = client.Reset(ctx)
	require.NoError(t, err)
	assert.False(t, state.GameOver)
	assert.Equal(t, 1, state.CatPos.Col)
	assert.Equal(t, 1, state.CatPos.Row)
}

func mustState(t *testing.T, c *Client) *engine.GameState {
	t.Helper()
	state, err := c.GetState(context.Background())
	require.NoError(t, err)
	return state
}
