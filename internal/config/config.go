package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game   GameConfig   `mapstructure:"game"`
	Server ServerConfig `mapstructure:"server"`
}

// GameConfig holds game mechanics configuration
type GameConfig struct {
	Map   MapConfig   `mapstructure:"map"`
	Rules RulesConfig `mapstructure:"rules"`
	AI    AIConfig    `mapstructure:"ai"`
}

// MapConfig holds map generation settings
type MapConfig struct {
	Width             int     `mapstructure:"width"`
	Height            int     `mapstructure:"height"`
	TerritoryCount    int     `mapstructure:"territory_count"`
	CellSize          float64 `mapstructure:"cell_size"`
	MinDistanceFactor float64 `mapstructure:"min_distance_factor"`
	AdjacencyFactor   float64 `mapstructure:"adjacency_factor"`
	MaxSeedAttempts   int     `mapstructure:"max_seed_attempts"`
	HullThreshold     int     `mapstructure:"hull_threshold"`
}

// RulesConfig holds turn and combat settings
type RulesConfig struct {
	TurnTimeLimitMs     int `mapstructure:"turn_time_limit_ms"`
	TroopGenerationRate int `mapstructure:"troop_generation_rate"`
}

// TurnTimeLimit returns the configured limit as a duration.
func (r RulesConfig) TurnTimeLimit() time.Duration {
	return time.Duration(r.TurnTimeLimitMs) * time.Millisecond
}

// AIConfig holds bot settings
type AIConfig struct {
	DefaultDifficulty string `mapstructure:"default_difficulty"`
	TurnDelayMs       int    `mapstructure:"turn_delay_ms"`
	MaxAttacksPerTurn int    `mapstructure:"max_attacks_per_turn"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host               string `mapstructure:"host"`
	Port               int    `mapstructure:"port"`
	LogLevel           string `mapstructure:"log_level"`
	LogFormat          string `mapstructure:"log_format"`
	MaxMatches         int    `mapstructure:"max_matches"`
	IdleTimeoutMinutes int    `mapstructure:"idle_timeout_minutes"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Map defaults
	v.SetDefault("game.map.width", 1200)
	v.SetDefault("game.map.height", 800)
	v.SetDefault("game.map.territory_count", 60)
	v.SetDefault("game.map.cell_size", 10.0)
	v.SetDefault("game.map.min_distance_factor", 0.7)
	v.SetDefault("game.map.adjacency_factor", 1.5)
	v.SetDefault("game.map.max_seed_attempts", 30)
	v.SetDefault("game.map.hull_threshold", 8)

	// Rule defaults
	v.SetDefault("game.rules.turn_time_limit_ms", 45000)
	v.SetDefault("game.rules.troop_generation_rate", 1)

	// AI defaults
	v.SetDefault("game.ai.default_difficulty", "medium")
	v.SetDefault("game.ai.turn_delay_ms", 750)
	v.SetDefault("game.ai.max_attacks_per_turn", 8)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "console")
	v.SetDefault("server.max_matches", 100)
	v.SetDefault("server.idle_timeout_minutes", 30)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	// Set defaults before loading any config
	setViperDefaults(v)

	// Set config file
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		// Default config locations
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/dominion")
	}

	// Set environment variable prefix
	v.SetEnvPrefix("DOMINION")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if configPath != "" {
			// Specific file requested but not found - that's ok, use defaults
		} else if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// For default locations, only ignore ConfigFileNotFoundError
			return fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; use defaults
	}

	// Unmarshal into config struct
	cfg = &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Validate configuration
	if err := Validate(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		// Initialize with defaults if not already initialized
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// WatchConfig enables hot-reloading of config file
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		// Re-unmarshal on change
		v.Unmarshal(cfg)
		if onChange != nil {
			onChange()
		}
	})
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Map.Width <= 0 || c.Game.Map.Height <= 0 {
		return fmt.Errorf("game.map dimensions must be positive")
	}
	if c.Game.Map.TerritoryCount < 1 {
		return fmt.Errorf("game.map.territory_count must be at least 1")
	}
	if c.Game.Map.CellSize <= 0 {
		return fmt.Errorf("game.map.cell_size must be positive")
	}
	if c.Game.Map.MinDistanceFactor <= 0 {
		return fmt.Errorf("game.map.min_distance_factor must be positive")
	}
	if c.Game.Map.AdjacencyFactor <= 0 {
		return fmt.Errorf("game.map.adjacency_factor must be positive")
	}
	if c.Game.Map.MaxSeedAttempts < 1 {
		return fmt.Errorf("game.map.max_seed_attempts must be at least 1")
	}
	if c.Game.Map.HullThreshold < 3 {
		return fmt.Errorf("game.map.hull_threshold must be at least 3")
	}

	if c.Game.Rules.TurnTimeLimitMs <= 0 {
		return fmt.Errorf("game.rules.turn_time_limit_ms must be positive")
	}
	if c.Game.Rules.TroopGenerationRate < 0 {
		return fmt.Errorf("game.rules.troop_generation_rate must be non-negative")
	}

	switch c.Game.AI.DefaultDifficulty {
	case "easy", "medium", "hard":
	default:
		return fmt.Errorf("game.ai.default_difficulty must be easy, medium or hard")
	}
	if c.Game.AI.TurnDelayMs < 0 {
		return fmt.Errorf("game.ai.turn_delay_ms must be non-negative")
	}
	if c.Game.AI.MaxAttacksPerTurn < 1 {
		return fmt.Errorf("game.ai.max_attacks_per_turn must be at least 1")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if c.Server.MaxMatches <= 0 {
		return fmt.Errorf("server.max_matches must be positive")
	}
	if c.Server.IdleTimeoutMinutes <= 0 {
		return fmt.Errorf("server.idle_timeout_minutes must be positive")
	}

	return nil
}
