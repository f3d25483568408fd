package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"

	"github.com/brettbedarf/doctree/internal/util"
)

// Default configuration constants. See [Config] for field descriptions.
const (
	// DefaultCollisionAttempts bounds the numeric-suffix search when an
	// insertion's preferred name is taken.
	DefaultCollisionAttempts = 100

	// DefaultIDMapName is the reserved hidden entry for the identifier map.
	DefaultIDMapName = ".FileMap"

	// DefaultUndoDepth bounds the whole-tree undo stack. 0 means unbounded.
	DefaultUndoDepth = 100

	DefaultLogLvl = util.InfoLevel
)

var hiddenEntry = regexp.MustCompile(`^\.`)

// Config contains runtime configuration values for a document tree.
type Config struct {
	CollisionAttempts int           // Insertion rename attempts before declining (Default 100)
	IDMapName         string        // Reserved identifier-map entry name; must be hidden (Default ".FileMap")
	UndoDepth         int           // Max undo checkpoints kept; 0 = unbounded (Default 100)
	LogLvl            util.LogLevel // Log verbosity (Default info)
}

// ConfigOverride uses pointer fields to distinguish between unset and zero
// values when loading partial configuration. See [Config] for field
// descriptions.
type ConfigOverride struct {
	CollisionAttempts *int           `yaml:"collision_attempts,omitempty" json:"collision_attempts,omitempty"`
	IDMapName         *string        `yaml:"id_map_name,omitempty" json:"id_map_name,omitempty"`
	UndoDepth         *int           `yaml:"undo_depth,omitempty" json:"undo_depth,omitempty"`
	LogLvl            *util.LogLevel `yaml:"log_level,omitempty" json:"log_level,omitempty"`
}

// NewDefaultConfig creates a new Config with all default values.
func NewDefaultConfig() *Config {
	return &Config{
		CollisionAttempts: DefaultCollisionAttempts,
		IDMapName:         DefaultIDMapName,
		UndoDepth:         DefaultUndoDepth,
		LogLvl:            DefaultLogLvl,
	}
}

// NewConfig creates a Config from defaults plus an optional override.
func NewConfig(override *ConfigOverride) *Config {
	cfg := NewDefaultConfig()
	if override != nil {
		cfg.Merge(override)
	}
	return cfg
}

// Merge applies non-nil values from override onto this Config.
func (c *Config) Merge(override *ConfigOverride) {
	if override.CollisionAttempts != nil {
		c.CollisionAttempts = *override.CollisionAttempts
	}
	if override.IDMapName != nil {
		c.IDMapName = *override.IDMapName
	}
	if override.UndoDepth != nil {
		c.UndoDepth = *override.UndoDepth
	}
	if override.LogLvl != nil {
		c.LogLvl = *override.LogLvl
	}
}

// Validate checks the configuration values.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.CollisionAttempts, validation.Required, validation.Min(1), validation.Max(10000)),
		validation.Field(&c.IDMapName, validation.Required,
			validation.Match(hiddenEntry).Error("must be a hidden entry (leading dot)")),
		validation.Field(&c.UndoDepth, validation.Min(0)),
	)
}

// LoadConfigOverrideFile loads configuration overrides from a file without
// merging. Supports both YAML (.yaml, .yml) and JSON (.json) formats.
func LoadConfigOverrideFile(path string) (*ConfigOverride, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var override ConfigOverride

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &override); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown config file extension: %s", path)
	}

	return &override, nil
}

// NewConfigFromFile creates a validated Config by merging file overrides
// with defaults.
func NewConfigFromFile(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	override, err := LoadConfigOverrideFile(path)
	if err != nil {
		return nil, err
	}
	cfg.Merge(override)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}
