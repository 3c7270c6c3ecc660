package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/wricardo/catmaze/game/engine"
	"github.com/wricardo/catmaze/game/service"
)

var (
	ErrConfigNotFound = service.ErrLevelNotFound
	ErrInvalidConfig  = errors.New("invalid level configuration")
)

// DefaultLevelID is the level used when a session does not name one
const DefaultLevelID = "backyard"

// levelExts are the recognised level file extensions, in lookup order
var levelExts = []string{".json", ".yaml", ".yml"}

// Manager handles level loading and caching
type Manager struct {
	levelsDir     string
	defaultID     string
	defaultConfig *engine.LevelConfig
	configs       map[string]*engine.LevelConfig
	mu            sync.RWMutex
}

// NewManager creates a new level manager over levelsDir
func NewManager(levelsDir string) (*Manager, error) {
	// Ensure levels directory exists
	if _, err := os.Stat(levelsDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("levels directory does not exist: %s", levelsDir)
	}

	m := &Manager{
		levelsDir: levelsDir,
		configs:   make(map[string]*engine.LevelConfig),
	}

	if err := m.loadDefaultConfig(); err != nil {
		return nil, fmt.Errorf("failed to load default level: %w", err)
	}

	return m, nil
}

// Dir returns the levels directory
func (m *Manager) Dir() string {
	return m.levelsDir
}

// levelID strips a level file extension
func levelID(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range levelExts {
		if ext == e {
			return strings.TrimSuffix(name, filepath.Ext(name))
		}
	}
	return name
}

func isLevelFile(name string) bool {
	return levelID(name) != name
}

func validID(id string) bool {
	return id != "" && !strings.ContainsAny(id, `/\`) && id != "." && id != ".."
}

// findFile locates the file holding a level
func (m *Manager) findFile(id string) (string, error) {
	for _, ext := range levelExts {
		path := filepath.Join(m.levelsDir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrConfigNotFound
}

// LoadConfig loads a level by ID (file name without extension)
func (m *Manager) LoadConfig(name string) (*engine.LevelConfig, error) {
	id := levelID(name)
	if !validID(id) {
		return nil, ErrConfigNotFound
	}

	m.mu.RLock()
	// Check cache first
	if config, exists := m.configs[id]; exists {
		m.mu.RUnlock()
		return config, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if config, exists := m.configs[id]; exists {
		return config, nil
	}

	path, err := m.findFile(id)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read level file: %w", err)
	}

	config, err := engine.DecodeLevelConfig(data, filepath.Ext(path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse level: %w", err)
	}

	if err := engine.ValidateLevelConfig(config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	m.configs[id] = config
	return config, nil
}

// ListConfigs returns information about all valid levels, sorted by ID
func (m *Manager) ListConfigs() ([]*service.LevelInfo, error) {
	entries, err := os.ReadDir(m.levelsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read levels directory: %w", err)
	}

	var levels []*service.LevelInfo
	seen := make(map[string]bool)

	for _, entry := range entries {
		if entry.IsDir() || !isLevelFile(entry.Name()) {
			continue
		}

		id := levelID(entry.Name())
		if seen[id] {
			continue
		}
		seen[id] = true

		config, err := m.LoadConfig(id)
		if err != nil {
			zap.L().Debug("skipping invalid level", zap.String("file", entry.Name()), zap.Error(err))
			continue
		}

		tiles, _, _ := engine.NewTileMap(config.Layout)
		levels = append(levels, &service.LevelInfo{
			Filename:    entry.Name(),
			LevelID:     id,
			Name:        config.Name,
			Description: config.Description,
			Width:       tiles.Width(),
			Height:      tiles.Height(),
			Bones:       engine.CountObjects(tiles.Tiles(), engine.Bone),
			Dogs:        engine.CountObjects(tiles.Tiles(), engine.Dog),
		})
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].LevelID < levels[j].LevelID })
	return levels, nil
}

// GetDefault returns the default level and its ID
func (m *Manager) GetDefault() (string, *engine.LevelConfig) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID, m.defaultConfig
}

// RefreshCache drops all cached levels and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.configs = make(map[string]*engine.LevelConfig)
	m.mu.Unlock()

	return m.loadDefaultConfig()
}

// Invalidate drops one cached level and re-resolves the default, which may
// have been that level or may now be a different file
func (m *Manager) Invalidate(name string) {
	id := levelID(filepath.Base(name))

	m.mu.Lock()
	delete(m.configs, id)
	m.mu.Unlock()

	if err := m.loadDefaultConfig(); err != nil {
		zap.L().Warn("failed to reload default level", zap.Error(err))
	}
}

// loadDefaultConfig picks the default level: backyard if present, else the
// first valid level, else the built-in one
func (m *Manager) loadDefaultConfig() error {
	id := DefaultLevelID
	config, err := m.LoadConfig(id)
	if err != nil {
		levels, listErr := m.ListConfigs()
		if listErr != nil || len(levels) == 0 {
			m.setDefault("default", engine.DefaultLevelConfig())
			return nil
		}

		id = levels[0].LevelID
		config, err = m.LoadConfig(id)
		if err != nil {
			m.setDefault("default", engine.DefaultLevelConfig())
			return nil
		}
	}

	m.setDefault(id, config)
	return nil
}

func (m *Manager) setDefault(id string, config *engine.LevelConfig) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	m.defaultConfig = config
}

// SaveConfig validates a level and writes it to the levels directory. An ID
// ending in .yaml or .yml is written as YAML, anything else as JSON.
func (m *Manager) SaveConfig(name string, config *engine.LevelConfig) error {
	id := levelID(name)
	if !validID(id) {
		return fmt.Errorf("%w: bad level id %q", ErrInvalidConfig, name)
	}

	if err := engine.ValidateLevelConfig(config); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	ext := strings.ToLower(filepath.Ext(name))
	var data []byte
	var err error
	switch ext {
	case ".yaml", ".yml":
		data, err = yaml.Marshal(config)
	default:
		ext = ".json"
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("failed to marshal level: %w", err)
	}

	// one file per level ID
	if existing, err := m.findFile(id); err == nil && filepath.Ext(existing) != ext {
		if err := os.Remove(existing); err != nil {
			return fmt.Errorf("failed to replace level file: %w", err)
		}
	}

	path := filepath.Join(m.levelsDir, id+ext)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write level file: %w", err)
	}

	m.mu.Lock()
	m.configs[id] = config
	m.mu.Unlock()

	return nil
}

// Watch invalidates cached levels when their files change, until ctx is done
func (m *Manager) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(m.levelsDir); err != nil {
		return err
	}

	for {
		select {
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			if !isLevelFile(filepath.Base(event.Name)) {
				continue
			}
			zap.L().Info("level file changed", zap.String("file", event.Name), zap.Stringer("op", event.Op))
			m.Invalidate(event.Name)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			zap.L().Warn("level watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}
