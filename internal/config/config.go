package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for the scheduler binaries.
type Config struct {
	Port     string `mapstructure:"PORT"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// DatabaseURL enables run persistence when set; empty keeps the
	// server purely in-memory.
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	RulesPath     string `mapstructure:"RULES_PATH"`
	OverridesPath string `mapstructure:"OVERRIDES_PATH"`

	StoreOpen  string `mapstructure:"STORE_OPEN"`
	StoreClose string `mapstructure:"STORE_CLOSE"`

	// IncludeLobby adds the Lobby position to the catalog.
	IncludeLobby bool `mapstructure:"INCLUDE_LOBBY"`

	// Solver hardening bounds. A zero permutation cap means unbounded; a
	// zero timeout disables the deadline.
	MaxPermutations int `mapstructure:"MAX_PERMUTATIONS"`
	SolveTimeoutSec int `mapstructure:"SOLVE_TIMEOUT_SEC"`
}

// Load reads configuration from config.yaml (if present) and environment
// variables, with environment taking precedence.
func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("RULES_PATH", "rules.yaml")
	viper.SetDefault("OVERRIDES_PATH", "overrides.yaml")
	viper.SetDefault("STORE_OPEN", "7:30 AM")
	viper.SetDefault("STORE_CLOSE", "10:00 PM")
	viper.SetDefault("INCLUDE_LOBBY", false)
	viper.SetDefault("MAX_PERMUTATIONS", 50000)
	viper.SetDefault("SOLVE_TIMEOUT_SEC", 30)
}
