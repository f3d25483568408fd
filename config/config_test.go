package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brettbedarf/doctree/internal/util"
)

// TestNewConfig_WithNilOverride tests that NewConfig creates a config with
// all default values when no override is provided.
func TestNewConfig_WithNilOverride(t *testing.T) {
	t.Parallel()

	cfg := NewConfig(nil)

	require.NotNil(t, cfg)
	assert.Equal(t, NewDefaultConfig(), cfg, "must use default values when no config provided")
}

func TestConfig_Merge_PartialOverride(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		CollisionAttempts: util.Pointer(7),
	}
	cfg := NewConfig(override)

	assert.Equal(t, 7, cfg.CollisionAttempts)
	assert.Equal(t, DefaultIDMapName, cfg.IDMapName, "unset fields keep defaults")
	assert.Equal(t, DefaultUndoDepth, cfg.UndoDepth)
}

func TestConfig_Merge_AllFields(t *testing.T) {
	t.Parallel()

	override := &ConfigOverride{
		CollisionAttempts: util.Pointer(50),
		IDMapName:         util.Pointer(".ids"),
		UndoDepth:         util.Pointer(10),
		LogLvl:            util.Pointer(util.DebugLevel),
	}
	cfg := NewConfig(override)

	expCfg := &Config{
		CollisionAttempts: 50,
		IDMapName:         ".ids",
		UndoDepth:         10,
		LogLvl:            util.DebugLevel,
	}
	assert.Equal(t, expCfg, cfg)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, NewDefaultConfig().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero_attempts", func(c *Config) { c.CollisionAttempts = 0 }},
		{"negative_attempts", func(c *Config) { c.CollisionAttempts = -1 }},
		{"huge_attempts", func(c *Config) { c.CollisionAttempts = 1 << 20 }},
		{"empty_idmap_name", func(c *Config) { c.IDMapName = "" }},
		{"visible_idmap_name", func(c *Config) { c.IDMapName = "FileMap" }},
		{"negative_undo_depth", func(c *Config) { c.UndoDepth = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoadConfigOverrideFile_YAML(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collision_attempts: 5\nid_map_name: .map\n"), 0o644))

	override, err := LoadConfigOverrideFile(path)
	require.NoError(t, err)
	require.NotNil(t, override.CollisionAttempts)
	assert.Equal(t, 5, *override.CollisionAttempts)
	require.NotNil(t, override.IDMapName)
	assert.Equal(t, ".map", *override.IDMapName)
	assert.Nil(t, override.UndoDepth)
}

func TestLoadConfigOverrideFile_JSON(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"undo_depth": 3}`), 0o644))

	override, err := LoadConfigOverrideFile(path)
	require.NoError(t, err)
	require.NotNil(t, override.UndoDepth)
	assert.Equal(t, 3, *override.UndoDepth)
}

func TestLoadConfigOverrideFile_UnknownExtension(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("x = 1"), 0o644))

	_, err := LoadConfigOverrideFile(path)
	assert.Error(t, err)
}

func TestNewConfigFromFile_ValidationFailure(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("collision_attempts: 0\n"), 0o644))

	_, err := NewConfigFromFile(path)
	assert.Error(t, err)
}
