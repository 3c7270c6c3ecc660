package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNilState = errors.New("state cannot be nil")

// maxEvents bounds the undrained event buffer; older events are dropped.
const maxEvents = 256

// inFlightStep is a transition the cat has begun but not yet landed
type inFlightStep struct {
	from     TileCoord
	to       TileCoord
	facing   Direction
	duration time.Duration
	routeID  string
	done     func()
}

// GameEngine hosts a Cat on a level's tile map. It keeps the scoreboard,
// turns the cat's callbacks into messages and events, and holds the step in
// flight until CompleteStep lands it.
type GameEngine struct {
	config *LevelConfig
	tiles  *TileMap
	cat    *Cat
	state  *GameState

	inFlight    *inFlightStep
	events      []GameEvent
	routeSerial int
	routeID     string
	lastCue     Cue
}

// NewEngine creates a new game engine for the provided level
func NewEngine(config *LevelConfig) (*GameEngine, error) {
	if err := ValidateLevelConfig(config); err != nil {
		return nil, err
	}
	ApplyMessageDefaults(&config.Messages)

	e := &GameEngine{config: config}
	if err := e.load(); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates a new game engine on the built-in level
func NewEngineWithDefaults() *GameEngine {
	e, err := NewEngine(DefaultLevelConfig())
	if err != nil {
		panic(fmt.Sprintf("default level is invalid: %v", err))
	}
	return e
}

// load builds a fresh map, cat and scoreboard from the level
func (e *GameEngine) load() error {
	tiles, spawn, err := NewTileMap(e.config.Layout)
	if err != nil {
		return err
	}

	e.tiles = tiles
	e.inFlight = nil
	e.routeSerial = 0
	e.routeID = ""
	e.cat = NewCat(tiles, host{e}, spawn,
		WithBones(e.config.StartingBones),
		WithStepDuration(e.config.StepDuration()),
	)
	e.state = &GameState{
		Width:       tiles.Width(),
		Height:      tiles.Height(),
		Bones:       e.config.StartingBones,
		Message:     e.config.Messages.Welcome,
		LevelName:   e.config.Name,
		StepHistory: []StepEntry{},
	}
	return nil
}

// GetState returns a snapshot of the current game state
func (e *GameEngine) GetState() *GameState {
	s := *e.state
	s.Tiles = e.tiles.Clone().Tiles()
	s.Width = e.tiles.Width()
	s.Height = e.tiles.Height()
	s.CatPos = e.cat.Tile()
	s.Facing = e.cat.Facing()
	s.Bones = e.cat.Bones()
	s.BoneStatus = e.BoneStatus()
	s.Phase = e.cat.Phase()
	s.Route = e.cat.Route()
	s.StepTarget = nil
	if e.inFlight != nil {
		to := e.inFlight.to
		s.StepTarget = &to
	}
	s.PendingTarget = nil
	if p, ok := e.cat.Pending(); ok {
		s.PendingTarget = &p
	}
	s.StepHistory = append([]StepEntry{}, e.state.StepHistory...)
	s.LocalView3x3 = LocalView3x3(&s)
	return &s
}

// SetState restores a snapshot (used for persistence loading). The cat comes
// back at rest on its recorded tile; a finished game stays finished.
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return ErrNilState
	}

	grid := make([][]Tile, len(state.Tiles))
	for i, row := range state.Tiles {
		grid[i] = append([]Tile(nil), row...)
	}
	tiles, err := NewTileMapFromTiles(grid)
	if err != nil {
		return err
	}
	if !tiles.IsWalkable(state.CatPos) {
		return fmt.Errorf("%w: cat position %s is not walkable", ErrInvalidLayout, state.CatPos)
	}

	opts := []CatOption{
		WithBones(state.Bones),
		WithFacing(state.Facing),
		WithStepDuration(e.config.StepDuration()),
	}
	if state.GameOver {
		opts = append(opts, Halted())
	}

	e.tiles = tiles
	e.inFlight = nil
	e.routeSerial = 0
	e.routeID = ""
	e.cat = NewCat(tiles, host{e}, state.CatPos, opts...)

	restored := *state
	restored.Tiles = nil
	restored.Route = nil
	restored.StepTarget = nil
	restored.PendingTarget = nil
	restored.LocalView3x3 = nil
	restored.BoneStatus = ""
	restored.Width = tiles.Width()
	restored.Height = tiles.Height()
	if restored.StepHistory == nil {
		restored.StepHistory = []StepEntry{}
	}
	e.state = &restored
	return nil
}

// Reset reloads the level. Step history and totals carry over.
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.StepHistory
	prevTotal := e.state.TotalSteps

	if err := e.load(); err != nil {
		// the level was validated when it was set
		panic(err)
	}

	e.state.StepHistory = prevHistory
	e.state.TotalSteps = prevTotal
	e.emit(EventReset, e.state.Message, e.cat.Tile())

	return e.GetState()
}

func (e *GameEngine) IsGameOver() bool          { return e.state.GameOver }
func (e *GameEngine) IsVictory() bool           { return e.state.Victory }
func (e *GameEngine) GetBones() int             { return e.cat.Bones() }
func (e *GameEngine) GetCatPosition() TileCoord { return e.cat.Tile() }
func (e *GameEngine) GetPhase() Phase           { return e.cat.Phase() }
func (e *GameEngine) LastCue() Cue              { return e.lastCue }

// MoveToward asks the cat to walk to target
func (e *GameEngine) MoveToward(target TileCoord) MoveOutcome {
	return e.report(target, e.cat.MoveToward(target))
}

// MoveInDirection turns the cat and asks it to walk one tile in d
func (e *GameEngine) MoveInDirection(d Direction) MoveOutcome {
	return e.report(d.Neighbor(e.cat.Tile()), e.cat.MoveInDirection(d))
}

// Move is MoveInDirection for user supplied direction names
func (e *GameEngine) Move(direction string) (MoveOutcome, error) {
	d, err := ParseDirection(direction)
	if err != nil {
		return "", err
	}
	return e.MoveInDirection(d), nil
}

func (e *GameEngine) report(target TileCoord, outcome MoveOutcome) MoveOutcome {
	msgs := e.config.Messages
	switch outcome {
	case OutcomeQueued:
		e.emit(EventQueued, fmt.Sprintf("Next destination %s", target), target)
	case OutcomeAlreadyThere:
		e.state.Message = msgs.AlreadyThere
		e.emit(EventAlreadyThere, msgs.AlreadyThere, target)
	case OutcomeNoPath:
		e.state.Message = msgs.NoPath
		e.emit(EventNoPath, msgs.NoPath, target)
	}
	return outcome
}

// CompleteStep lands the step in flight. It reports false when there was none.
func (e *GameEngine) CompleteStep() bool {
	step := e.inFlight
	if step == nil {
		return false
	}
	e.inFlight = nil

	entry := StepEntry{
		RouteID:    step.routeID,
		From:       step.from,
		To:         step.to,
		Facing:     step.facing,
		Object:     e.tiles.ObjectAt(step.to),
		Timestamp:  time.Now().Unix(),
		StepNumber: e.state.TotalSteps + 1,
	}
	e.emitRoute(EventStep, fmt.Sprintf("Stepped %s to %s", step.facing, step.to), step.to, step.routeID)

	step.done()

	entry.Bones = e.cat.Bones()
	e.state.StepHistory = append(e.state.StepHistory, entry)
	e.state.TotalSteps++
	return true
}

// Settle lands steps until the cat is at rest or limit steps have landed.
// A limit <= 0 means MaxSettleSteps.
func (e *GameEngine) Settle(limit int) int {
	if limit <= 0 {
		limit = MaxSettleSteps
	}
	n := 0
	for n < limit && e.CompleteStep() {
		n++
	}
	return n
}

// StepInFlight returns the destination of the step being animated
func (e *GameEngine) StepInFlight() (TileCoord, bool) {
	if e.inFlight == nil {
		return TileCoord{}, false
	}
	return e.inFlight.to, true
}

// StepDuration is how long the step in flight takes, or the level's step
// duration when the cat is at rest
func (e *GameEngine) StepDuration() time.Duration {
	if e.inFlight != nil {
		return e.inFlight.duration
	}
	return e.cat.StepDuration()
}

// FindPath previews the route from the cat's tile to target and its cost
// without moving the cat
func (e *GameEngine) FindPath(target TileCoord) ([]TileCoord, int, bool) {
	from := e.cat.Tile()
	route, ok := FindPath(e.tiles, from, target)
	if !ok {
		return nil, 0, false
	}
	return route, RouteCost(e.tiles, from, route), true
}

// GetConfig returns the current level
func (e *GameEngine) GetConfig() *LevelConfig {
	return e.config
}

// SetConfig switches to a new level and resets the game
func (e *GameEngine) SetConfig(config *LevelConfig) error {
	if err := ValidateLevelConfig(config); err != nil {
		return err
	}
	ApplyMessageDefaults(&config.Messages)

	prev := e.config
	e.config = config
	if err := e.load(); err != nil {
		e.config = prev
		return err
	}
	return nil
}

// GetStepHistory returns every landed step, across resets
func (e *GameEngine) GetStepHistory() []StepEntry {
	return e.state.StepHistory
}

// GetLastStep returns the last landed step, or nil if there is none
func (e *GameEngine) GetLastStep() *StepEntry {
	if len(e.state.StepHistory) == 0 {
		return nil
	}
	return &e.state.StepHistory[len(e.state.StepHistory)-1]
}

// DrainEvents returns and clears the events recorded since the last drain
func (e *GameEngine) DrainEvents() []GameEvent {
	events := e.events
	e.events = nil
	return events
}

func (e *GameEngine) emit(kind, msg string, at TileCoord) {
	e.emitRoute(kind, msg, at, "")
}

func (e *GameEngine) emitRoute(kind, msg string, at TileCoord, routeID string) {
	e.events = append(e.events, GameEvent{
		Type:      kind,
		Message:   msg,
		Timestamp: time.Now().Unix(),
		Position:  at,
		RouteID:   routeID,
	})
	if over := len(e.events) - maxEvents; over > 0 {
		e.events = append([]GameEvent(nil), e.events[over:]...)
	}
}

// syncRoute assigns an ID to a route the cat has just planned
func (e *GameEngine) syncRoute(first TileCoord) {
	if e.cat.RouteSerial() == e.routeSerial {
		return
	}
	e.routeSerial = e.cat.RouteSerial()
	e.routeID = uuid.NewString()

	rest := e.cat.Route()
	goal := first
	if len(rest) > 0 {
		goal = rest[len(rest)-1]
	}
	e.emitRoute(EventRoute, fmt.Sprintf("Route of %d steps to %s", len(rest)+1, goal), goal, e.routeID)
}

// host adapts the engine to the cat's presentation callbacks
type host struct {
	e *GameEngine
}

func (h host) PlayCue(cue Cue) {
	e := h.e
	e.lastCue = cue
	msgs := e.config.Messages
	switch cue {
	case CueHitWall:
		e.state.Message = msgs.HitWall
		e.emit(EventBlocked, msgs.HitWall, e.cat.Tile())
	case CuePickup:
		e.state.Message = msgs.BonePickup
		e.emit(EventPickup, msgs.BonePickup, e.cat.Tile())
	case CueCatAttack:
		e.state.Message = msgs.DogDefeated
		e.emit(EventDogDefeated, msgs.DogDefeated, e.cat.Tile())
	}
}

func (h host) BeginStep(to TileCoord, facing Direction, duration time.Duration, done func()) {
	e := h.e
	e.syncRoute(to)
	e.inFlight = &inFlightStep{
		from:     e.cat.Tile(),
		to:       to,
		facing:   facing,
		duration: duration,
		routeID:  e.routeID,
		done:     done,
	}
}

func (h host) UpdateBoneCount(bones int) {
	h.e.state.Bones = bones
}

func (h host) Arrived(at TileCoord) {
	h.e.emitRoute(EventArrived, fmt.Sprintf("Arrived at %s", at), at, h.e.routeID)
}

func (h host) Replanned(target TileCoord, outcome MoveOutcome) {
	h.e.report(target, outcome)
}

func (h host) WinGame() {
	e := h.e
	e.lastCue = CueWin
	e.state.GameOver = true
	e.state.Victory = true
	e.state.Message = e.config.Messages.Win
	e.emit(EventWin, e.state.Message, e.cat.Tile())
}

func (h host) LoseGame() {
	e := h.e
	e.lastCue = CueLose
	e.state.GameOver = true
	e.state.Victory = false
	e.state.Message = e.config.Messages.Lose
	e.emit(EventLose, e.state.Message, e.cat.Tile())
}

// BoneStatus renders the level's bone count message
func (e *GameEngine) BoneStatus() string {
	return fmt.Sprintf(e.config.Messages.BoneCount, e.cat.Bones())
}
