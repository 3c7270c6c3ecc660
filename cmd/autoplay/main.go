// Command autoplay plays a level through the REST API of a running server.
// It picks up bones when the way out is guarded by more dogs than the cat
// can pay off, then heads for the exit.
//
//	go run ./cmd/autoplay --url http://localhost:8080 --level kennel
package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/logging"
)

var errNoGoal = errors.New("no reachable goal")

func main() {
	cmd := &cli.Command{
		Name:  "autoplay",
		Usage: "play a level through the REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "game server URL", Sources: cli.EnvVars("CATMAZE_URL")},
			&cli.StringFlag{Name: "level", Usage: "level to play (server default when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "resume playing an existing session by ID"},
			&cli.StringFlag{Name: "session-file", Value: ".session", Usage: "file remembering the last session ID"},
			&cli.IntFlag{Name: "max-moves", Value: 200, Usage: "maximum move requests"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between move requests"},
			&cli.BoolFlag{Name: "debug", Usage: "enable debug logging"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	defer logging.Install(logging.Options{Debug: cmd.Bool("debug")})()

	client := NewClient(cmd.String("url"))
	state, err := openSession(ctx, client, cmd.String("continue"), cmd.String("session-file"), cmd.String("level"))
	if err != nil {
		return err
	}

	// always start from the spawn
	state, err = client.Reset(ctx)
	if err != nil {
		return err
	}

	state, err = play(ctx, client, state, int(cmd.Int("max-moves")), cmd.Duration("delay"))
	if err != nil && !errors.Is(err, errNoGoal) {
		return err
	}

	zap.L().Info("game finished",
		zap.String("session", client.SessionID()),
		zap.Bool("victory", state.Victory),
		zap.Int("steps", state.TotalSteps),
		zap.String("message", state.Message))
	if !state.Victory {
		return cli.Exit("the cat did not make it out", 1)
	}
	return nil
}

// openSession resumes the given or remembered session, or creates a new one
// and remembers it
func openSession(ctx context.Context, client *Client, sessionID, sessionFile, levelID string) (*engine.GameState, error) {
	if sessionID == "" && sessionFile != "" {
		if data, err := os.ReadFile(sessionFile); err == nil {
			sessionID = string(bytes.TrimSpace(data))
		}
	}

	if sessionID != "" {
		state, err := client.Resume(ctx, sessionID)
		if err == nil {
			zap.L().Info("resumed session", zap.String("session", client.SessionID()), zap.String("level", state.LevelName))
			return state, nil
		}
		zap.L().Warn("failed to resume session, creating a new one", zap.String("session", sessionID), zap.Error(err))
	}

	state, err := client.CreateSession(ctx, levelID)
	if err != nil {
		return nil, err
	}
	zap.L().Info("session created", zap.String("session", client.SessionID()), zap.String("level", state.LevelName))

	if sessionFile != "" {
		if err := os.WriteFile(sessionFile, []byte(client.SessionID()), 0644); err != nil {
			zap.L().Warn("failed to save session ID", zap.Error(err))
		}
	}
	return state, nil
}

// play sends the cat goal after goal until the game ends or maxMoves move
// requests were made. Steps left in flight are landed through the advance
// endpoint so the bot works in every step mode.
func play(ctx context.Context, client *Client, state *engine.GameState, maxMoves int, delay time.Duration) (*engine.GameState, error) {
	var strategy BoneFirstStrategy

	for moves := 0; moves < maxMoves && !state.GameOver; moves++ {
		goal, ok := strategy.Next(state)
		if !ok {
			return state, errNoGoal
		}
		zap.L().Debug("next goal",
			zap.String("reason", goal.Reason),
			zap.Stringer("target", goal.Target),
			zap.Int("cost", goal.Cost),
			zap.Int("bones", state.Bones))

		result, err := client.MoveTo(ctx, goal.Target)
		if err != nil {
			return state, err
		}
		state = result.GameState

		for state.Phase == engine.PhaseStepping {
			result, err = client.Advance(ctx, engine.MaxSettleSteps)
			if err != nil {
				return state, err
			}
			state = result.GameState
		}

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return state, ctx.Err()
			}
		}
	}
	return state, nil
}
