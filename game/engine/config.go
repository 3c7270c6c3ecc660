package engine

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var ErrInvalidLevel = errors.New("invalid level")

// RequiredLegend is the legend every level must declare
var RequiredLegend = map[string]string{
	"#": "wall",
	".": "floor",
	"C": "cat",
	"B": "bone",
	"D": "dog",
	"E": "exit",
}

// StepDuration returns the time one tile transition takes on this level
func (c *LevelConfig) StepDuration() time.Duration {
	if c == nil || c.StepDurationMs <= 0 {
		return DefaultStepDuration * time.Millisecond
	}
	return time.Duration(c.StepDurationMs) * time.Millisecond
}

// ValidateLevelConfig validates a level for correctness and playability
func ValidateLevelConfig(config *LevelConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidLevel)
	}

	// Required fields
	if config.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidLevel)
	}
	if config.Description == "" {
		return fmt.Errorf("%w: description is required", ErrInvalidLevel)
	}

	// Grid size
	rows := len(config.Layout)
	if rows < MinGridSize || rows > MaxGridSize {
		return fmt.Errorf("%w: layout must have between %d and %d rows, got %d", ErrInvalidLevel, MinGridSize, MaxGridSize, rows)
	}
	cols := len(config.Layout[0])
	if cols < MinGridSize || cols > MaxGridSize {
		return fmt.Errorf("%w: layout rows must have between %d and %d tiles, got %d", ErrInvalidLevel, MinGridSize, MaxGridSize, cols)
	}

	// Characters, shape and spawn
	tiles, spawn, err := NewTileMap(config.Layout)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLevel, err)
	}

	var exits []TileCoord
	for row, line := range tiles.Tiles() {
		for col, t := range line {
			if t.Object == Exit {
				exits = append(exits, TileCoord{Col: col, Row: row})
			}
		}
	}
	if len(exits) == 0 {
		return fmt.Errorf("%w: layout must contain at least one exit (E)", ErrInvalidLevel)
	}

	// Tuning
	if config.StepDurationMs < 0 || config.StepDurationMs > MaxStepDurationMs {
		return fmt.Errorf("%w: step_duration_ms must be between 0 and %d, got %d", ErrInvalidLevel, MaxStepDurationMs, config.StepDurationMs)
	}
	if config.StartingBones < 0 || config.StartingBones > MaxStartingBones {
		return fmt.Errorf("%w: starting_bones must be between 0 and %d, got %d", ErrInvalidLevel, MaxStartingBones, config.StartingBones)
	}

	// Legend
	for key, expected := range RequiredLegend {
		if value, ok := config.Legend[key]; !ok || value != expected {
			return fmt.Errorf("%w: legend['%s'] must be '%s', got '%s'", ErrInvalidLevel, key, expected, value)
		}
	}

	// Messages
	if config.Messages.Welcome == "" {
		return fmt.Errorf("%w: messages.welcome is required", ErrInvalidLevel)
	}
	if config.Messages.Win == "" {
		return fmt.Errorf("%w: messages.win is required", ErrInvalidLevel)
	}
	if config.Messages.Lose == "" {
		return fmt.Errorf("%w: messages.lose is required", ErrInvalidLevel)
	}
	if msg := config.Messages.BoneCount; msg != "" && strings.Contains(fmt.Sprintf(msg, 0), "%!") {
		return fmt.Errorf("%w: messages.bone_count must take exactly one %%d for the bone count", ErrInvalidLevel)
	}

	// Solvability
	for _, exit := range exits {
		if _, ok := FindPath(tiles, spawn, exit); ok {
			return nil
		}
	}
	return fmt.Errorf("%w: no exit is reachable from the cat spawn %s", ErrInvalidLevel, spawn)
}

// ApplyMessageDefaults fills the optional messages a level left empty
func ApplyMessageDefaults(m *LevelMessages) {
	set := func(s *string, v string) {
		if *s == "" {
			*s = v
		}
	}
	set(&m.BoneCount, "Bones: %d")
	set(&m.BonePickup, "Found a bone!")
	set(&m.DogDefeated, "The dog ran off with a bone.")
	set(&m.HitWall, "Can't go there, that's a wall.")
	set(&m.AlreadyThere, "Already there.")
	set(&m.NoPath, "No way to get there.")
}

// DecodeLevelConfig parses level data; ext selects YAML (".yaml", ".yml")
// or JSON (anything else). The result is not validated.
func DecodeLevelConfig(data []byte, ext string) (*LevelConfig, error) {
	var config LevelConfig
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&config); err != nil {
			return nil, err
		}
	}
	ApplyMessageDefaults(&config.Messages)
	return &config, nil
}

// LoadLevelConfig loads and validates a level file
func LoadLevelConfig(filename string) (*LevelConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}

	config, err := DecodeLevelConfig(data, filepath.Ext(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to parse level file '%s': %w", filename, err)
	}

	if err := ValidateLevelConfig(config); err != nil {
		return nil, fmt.Errorf("invalid level '%s': %w", filename, err)
	}

	return config, nil
}

// DefaultLevelConfig returns the built-in level
func DefaultLevelConfig() *LevelConfig {
	config := &LevelConfig{
		Name:        "Backyard",
		Description: "A small yard with one dog between the cat and the gate",
		Layout: []string{
			"#########",
			"#C..#..B#",
			"#.#.#.#.#",
			"#.#...#D#",
			"#B###.#.#",
			"#.....#E#",
			"#########",
		},
		Legend:         copyLegend(),
		StepDurationMs: DefaultStepDuration,
		Messages: LevelMessages{
			Welcome: "Get the cat to the gate. Dogs cost a bone.",
			Win:     "The cat made it out!",
			Lose:    "A dog caught the cat with no bone to spare.",
		},
	}
	ApplyMessageDefaults(&config.Messages)
	return config
}

func copyLegend() map[string]string {
	legend := make(map[string]string, len(RequiredLegend))
	for k, v := range RequiredLegend {
		legend[k] = v
	}
	return legend
}
