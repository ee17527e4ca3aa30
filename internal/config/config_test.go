package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDefaults(t *testing.T) {
	// A specific but missing config file falls back to defaults.
	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))
	c := Get()

	assert.Equal(t, 1200, c.Game.Map.Width)
	assert.Equal(t, 800, c.Game.Map.Height)
	assert.Equal(t, 60, c.Game.Map.TerritoryCount)
	assert.Equal(t, 10.0, c.Game.Map.CellSize)
	assert.Equal(t, 0.7, c.Game.Map.MinDistanceFactor)
	assert.Equal(t, 45000, c.Game.Rules.TurnTimeLimitMs)
	assert.Equal(t, 45*time.Second, c.Game.Rules.TurnTimeLimit())
	assert.Equal(t, 1, c.Game.Rules.TroopGenerationRate)
	assert.Equal(t, "medium", c.Game.AI.DefaultDifficulty)
	assert.Equal(t, 8080, c.Server.Port)
	assert.Equal(t, 100, c.Server.MaxMatches)
}

func TestInitFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte(`
game:
  map:
    territory_count: 24
  rules:
    turn_time_limit_ms: 10000
server:
  port: 9999
`)
	require.NoError(t, os.WriteFile(path, content, 0o644))

	require.NoError(t, Init(path))
	c := Get()

	assert.Equal(t, 24, c.Game.Map.TerritoryCount)
	assert.Equal(t, 10000, c.Game.Rules.TurnTimeLimitMs)
	assert.Equal(t, 9999, c.Server.Port)
	assert.Equal(t, 1200, c.Game.Map.Width, "unset keys keep defaults")
}

func TestInitEnvOverride(t *testing.T) {
	t.Setenv("DOMINION_SERVER_PORT", "7777")
	require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))

	assert.Equal(t, 7777, Get().Server.Port)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		require.NoError(t, Init(filepath.Join(t.TempDir(), "missing.yaml")))
		c := *Get()
		return &c
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"ZeroMapWidth", func(c *Config) { c.Game.Map.Width = 0 }},
		{"ZeroTerritories", func(c *Config) { c.Game.Map.TerritoryCount = 0 }},
		{"NegativeCellSize", func(c *Config) { c.Game.Map.CellSize = -1 }},
		{"TinyHullThreshold", func(c *Config) { c.Game.Map.HullThreshold = 2 }},
		{"ZeroTurnLimit", func(c *Config) { c.Game.Rules.TurnTimeLimitMs = 0 }},
		{"NegativeTroopRate", func(c *Config) { c.Game.Rules.TroopGenerationRate = -1 }},
		{"BadDifficulty", func(c *Config) { c.Game.AI.DefaultDifficulty = "brutal" }},
		{"BadPort", func(c *Config) { c.Server.Port = 70000 }},
		{"ZeroMaxMatches", func(c *Config) { c.Server.MaxMatches = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			assert.Error(t, Validate(c))
		})
	}

	t.Run("DefaultsAreValid", func(t *testing.T) {
		assert.NoError(t, Validate(base()))
	})
}
