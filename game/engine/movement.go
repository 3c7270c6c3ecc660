package engine

import "time"

// World is what the cat may ask about the maze it walks in
type World interface {
	Graph
	IsWalkable(c TileCoord) bool
	ObjectAt(c TileCoord) Object
	RemoveObject(c TileCoord)
}

// Host receives the presentation side effects of the cat's movement.
// BeginStep must call done exactly once, after the cat has visually arrived
// on to; it may not call it synchronously. Replanned reports what became of a
// destination queued during a step once that step has landed.
type Host interface {
	PlayCue(cue Cue)
	BeginStep(to TileCoord, facing Direction, duration time.Duration, done func())
	UpdateBoneCount(bones int)
	Arrived(at TileCoord)
	Replanned(target TileCoord, outcome MoveOutcome)
	WinGame()
	LoseGame()
}

// MoveOutcome reports what a move request did
type MoveOutcome string

const (
	OutcomeStarted      MoveOutcome = "started"
	OutcomeArrived      MoveOutcome = "arrived"
	OutcomeQueued       MoveOutcome = "queued"
	OutcomeAlreadyThere MoveOutcome = "already_there"
	OutcomeBlocked      MoveOutcome = "blocked"
	OutcomeNoPath       MoveOutcome = "no_path"
	OutcomeIgnored      MoveOutcome = "ignored"
)

// Cat follows routes through the maze one tile at a time.
//
// A request made while a step is in flight only records the destination;
// the search runs when that step lands. The last request wins.
type Cat struct {
	world World
	host  Host

	tile   TileCoord
	facing Direction
	bones  int

	route    []TileCoord
	stepping bool
	pending  *TileCoord
	terminal bool

	stepDuration time.Duration
	routeSerial  int
}

// CatOption configures a Cat
type CatOption func(*Cat)

// WithBones sets the cat's starting bone count
func WithBones(n int) CatOption {
	return func(c *Cat) { c.bones = n }
}

// WithStepDuration sets how long each tile transition takes
func WithStepDuration(d time.Duration) CatOption {
	return func(c *Cat) { c.stepDuration = d }
}

// WithFacing sets the direction the cat starts out facing
func WithFacing(d Direction) CatOption {
	return func(c *Cat) {
		if d != "" {
			c.facing = d
		}
	}
}

// Halted starts the cat in its terminal state, for restoring a finished game
func Halted() CatOption {
	return func(c *Cat) { c.terminal = true }
}

// NewCat places a resting cat on spawn
func NewCat(world World, host Host, spawn TileCoord, opts ...CatOption) *Cat {
	c := &Cat{
		world:        world,
		host:         host,
		tile:         spawn,
		facing:       Down,
		stepDuration: DefaultStepDuration * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Cat) Tile() TileCoord             { return c.tile }
func (c *Cat) Facing() Direction           { return c.facing }
func (c *Cat) Bones() int                  { return c.bones }
func (c *Cat) Stepping() bool              { return c.stepping }
func (c *Cat) Terminal() bool              { return c.terminal }
func (c *Cat) StepDuration() time.Duration { return c.stepDuration }

// RouteSerial increases every time a new route is planned
func (c *Cat) RouteSerial() int { return c.routeSerial }

// Route returns a copy of the remaining route
func (c *Cat) Route() []TileCoord {
	if c.route == nil {
		return nil
	}
	return append([]TileCoord(nil), c.route...)
}

// Pending returns the destination queued during the current step
func (c *Cat) Pending() (TileCoord, bool) {
	if c.pending == nil {
		return TileCoord{}, false
	}
	return *c.pending, true
}

// Phase summarises the motion state
func (c *Cat) Phase() Phase {
	switch {
	case c.terminal:
		return PhaseTerminal
	case c.stepping:
		return PhaseStepping
	}
	return PhaseIdle
}

// MoveInDirection turns the cat and heads for the adjacent tile in d
func (c *Cat) MoveInDirection(d Direction) MoveOutcome {
	if c.terminal {
		return OutcomeIgnored
	}
	if !c.stepping {
		c.facing = d
	}
	return c.MoveToward(d.Neighbor(c.tile))
}

// MoveToward asks the cat to walk to target
func (c *Cat) MoveToward(target TileCoord) MoveOutcome {
	if c.terminal {
		return OutcomeIgnored
	}

	if c.stepping {
		c.pending = &target
		return OutcomeQueued
	}

	if target == c.tile {
		return OutcomeAlreadyThere
	}

	if !c.world.IsWalkable(target) {
		c.host.PlayCue(CueHitWall)
		return OutcomeBlocked
	}

	route, ok := FindPath(c.world, c.tile, target)
	if !ok {
		c.route = nil
		return OutcomeNoPath
	}

	c.route = route
	c.routeSerial++
	c.popStepAndAnimate()
	if c.stepping {
		return OutcomeStarted
	}
	return OutcomeArrived
}

// popStepAndAnimate is the step-advance transition, run when a step lands
// and when a fresh route is ready.
func (c *Cat) popStepAndAnimate() {
	c.stepping = false

	if c.pending != nil {
		target := *c.pending
		c.pending = nil
		c.route = nil
		c.host.Replanned(target, c.MoveToward(target))
		return
	}

	if len(c.route) == 0 {
		c.route = nil
		c.facing = Down
		c.host.Arrived(c.tile)
		return
	}

	next := c.route[0]
	c.route = c.route[1:]
	c.facing = FacingFor(next.Sub(c.tile))
	c.stepping = true

	c.host.BeginStep(next, c.facing, c.stepDuration, func() {
		c.tile = next
		if gameOver := c.updateState(); !gameOver {
			c.popStepAndAnimate()
		}
	})
}

// updateState applies the effect of the tile the cat just entered and
// reports whether the game ended.
func (c *Cat) updateState() bool {
	switch c.world.ObjectAt(c.tile) {
	case Bone:
		c.bones++
		c.host.UpdateBoneCount(c.bones)
		c.world.RemoveObject(c.tile)
		c.host.PlayCue(CuePickup)

	case Dog:
		if c.bones == 0 {
			c.halt()
			c.host.LoseGame()
			return true
		}
		c.bones--
		c.host.UpdateBoneCount(c.bones)
		c.world.RemoveObject(c.tile)
		c.host.PlayCue(CueCatAttack)

	case Exit:
		c.halt()
		c.host.WinGame()
		return true

	default:
		c.host.PlayCue(CueStep)
	}
	return false
}

// halt puts the cat in its terminal state
func (c *Cat) halt() {
	c.terminal = true
	c.stepping = false
	c.pending = nil
	c.route = nil
}
