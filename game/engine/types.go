package engine

import (
	"errors"
	"fmt"
	"strings"
)

// TileType represents the terrain of a grid tile
type TileType string

const (
	Floor TileType = "floor"
	Wall  TileType = "wall"
)

// Object is the thing (if any) sitting on a tile
type Object string

const (
	NoObject Object = ""
	Bone     Object = "bone"
	Dog      Object = "dog"
	Exit     Object = "exit"
)

// Cue identifies a sound/visual cue the host should play
type Cue string

const (
	CueHitWall   Cue = "hit_wall"
	CuePickup    Cue = "pickup"
	CueCatAttack Cue = "cat_attack"
	CueStep      Cue = "step"
	CueWin       Cue = "win"
	CueLose      Cue = "lose"
)

// Phase is the cat's motion state as seen from outside
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseStepping Phase = "stepping"
	PhaseTerminal Phase = "terminal"
)

const (
	// Movement costs
	OrthogonalCost = 10
	DiagonalCost   = 14
	DogCostFactor  = 10

	// Validation constants
	MinGridSize         = 3
	MaxGridSize         = 64
	MaxStepDurationMs   = 5000
	DefaultStepDuration = 400 // ms
	MaxStartingBones    = 99
	MaxSettleSteps      = 10000
)

var ErrInvalidDirection = errors.New("invalid direction")

// TileCoord is a (column, row) address on the maze grid. Rows grow downwards.
type TileCoord struct {
	Col int `json:"col" yaml:"col"`
	Row int `json:"row" yaml:"row"`
}

func (c TileCoord) Top() TileCoord         { return TileCoord{c.Col, c.Row - 1} }
func (c TileCoord) Bottom() TileCoord      { return TileCoord{c.Col, c.Row + 1} }
func (c TileCoord) Left() TileCoord        { return TileCoord{c.Col - 1, c.Row} }
func (c TileCoord) Right() TileCoord       { return TileCoord{c.Col + 1, c.Row} }
func (c TileCoord) TopLeft() TileCoord     { return TileCoord{c.Col - 1, c.Row - 1} }
func (c TileCoord) TopRight() TileCoord    { return TileCoord{c.Col + 1, c.Row - 1} }
func (c TileCoord) BottomLeft() TileCoord  { return TileCoord{c.Col - 1, c.Row + 1} }
func (c TileCoord) BottomRight() TileCoord { return TileCoord{c.Col + 1, c.Row + 1} }

// Add returns c offset by d
func (c TileCoord) Add(d TileCoord) TileCoord {
	return TileCoord{c.Col + d.Col, c.Row + d.Row}
}

// Sub returns the delta from o to c
func (c TileCoord) Sub(o TileCoord) TileCoord {
	return TileCoord{c.Col - o.Col, c.Row - o.Row}
}

func (c TileCoord) String() string {
	return fmt.Sprintf("(%d,%d)", c.Col, c.Row)
}

// Direction is one of the four cardinal directions
type Direction string

const (
	Up    Direction = "up"
	Down  Direction = "down"
	Left  Direction = "left"
	Right Direction = "right"
)

// ParseDirection converts user input ("up", "Left", ...) into a Direction
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Up:
		return Up, nil
	case Down:
		return Down, nil
	case Left:
		return Left, nil
	case Right:
		return Right, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Neighbor returns the tile adjacent to c in direction d
func (d Direction) Neighbor(c TileCoord) TileCoord {
	switch d {
	case Up:
		return c.Top()
	case Down:
		return c.Bottom()
	case Left:
		return c.Left()
	case Right:
		return c.Right()
	}
	return c
}

// FacingFor picks the direction the cat faces when stepping by delta.
// The column axis wins only when its magnitude is strictly larger; exact
// diagonals face up or down.
func FacingFor(delta TileCoord) Direction {
	if abs(delta.Col) > abs(delta.Row) {
		if delta.Col > 0 {
			return Right
		}
		return Left
	}
	if delta.Row > 0 {
		return Down
	}
	return Up
}

// Tile represents a single grid tile
type Tile struct {
	Type   TileType `json:"type"`
	Object Object   `json:"object,omitempty"`
}

// LevelMessages holds the texts shown to the player
type LevelMessages struct {
	Welcome      string `json:"welcome" yaml:"welcome"`
	BoneCount    string `json:"bone_count" yaml:"bone_count"`
	BonePickup   string `json:"bone_pickup" yaml:"bone_pickup"`
	DogDefeated  string `json:"dog_defeated" yaml:"dog_defeated"`
	Win          string `json:"win" yaml:"win"`
	Lose         string `json:"lose" yaml:"lose"`
	HitWall      string `json:"hit_wall" yaml:"hit_wall"`
	AlreadyThere string `json:"already_there" yaml:"already_there"`
	NoPath       string `json:"no_path" yaml:"no_path"`
}

// LevelConfig represents a maze level as stored on disk
type LevelConfig struct {
	Name           string            `json:"name" yaml:"name"`
	Description    string            `json:"description" yaml:"description"`
	Layout         []string          `json:"layout" yaml:"layout"`
	Legend         map[string]string `json:"legend" yaml:"legend"`
	StepDurationMs int               `json:"step_duration_ms,omitempty" yaml:"step_duration_ms,omitempty"`
	StartingBones  int               `json:"starting_bones,omitempty" yaml:"starting_bones,omitempty"`
	Messages       LevelMessages     `json:"messages" yaml:"messages"`
}

// GameState represents the complete, serialisable game state
type GameState struct {
	Tiles         [][]Tile    `json:"tiles"`
	Width         int         `json:"width"`
	Height        int         `json:"height"`
	CatPos        TileCoord   `json:"cat_pos"`
	Facing        Direction   `json:"facing"`
	Bones         int         `json:"bones"`
	BoneStatus    string      `json:"bone_status,omitempty"`
	Phase         Phase       `json:"phase"`
	Route         []TileCoord `json:"route,omitempty"`
	StepTarget    *TileCoord  `json:"step_target,omitempty"`
	PendingTarget *TileCoord  `json:"pending_target,omitempty"`
	Message       string      `json:"message"`
	GameOver      bool        `json:"game_over"`
	Victory       bool        `json:"victory"`
	LevelName     string      `json:"level_name"`
	StepHistory   []StepEntry `json:"step_history"`
	TotalSteps    int         `json:"total_steps"`

	// Computed helper view (not required for core game logic)
	LocalView3x3 []string `json:"local_view_3x3,omitempty"`
}

// StepEntry records one landed step
type StepEntry struct {
	RouteID    string    `json:"route_id,omitempty"`
	From       TileCoord `json:"from"`
	To         TileCoord `json:"to"`
	Facing     Direction `json:"facing"`
	Object     Object    `json:"object,omitempty"`
	Bones      int       `json:"bones"`
	Timestamp  int64     `json:"timestamp"`
	StepNumber int       `json:"step_number"`
}

// Event types recorded by the engine
const (
	EventRoute        = "route"
	EventQueued       = "queued"
	EventStep         = "step"
	EventPickup       = "pickup"
	EventDogDefeated  = "dog_defeated"
	EventBlocked      = "blocked"
	EventNoPath       = "no_path"
	EventAlreadyThere = "already_there"
	EventArrived      = "arrived"
	EventWin          = "win"
	EventLose         = "lose"
	EventReset        = "reset"
)

// GameEvent represents something that happened during play
type GameEvent struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp int64     `json:"timestamp"`
	Position  TileCoord `json:"position"`
	RouteID   string    `json:"route_id,omitempty"`
}
