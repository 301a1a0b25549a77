// Package config provides configuration helpers and TOML parsing.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// FileConfig represents the TOML configuration file.
type FileConfig struct {
	Reader ReaderConfig `toml:"reader"`
	Reward RewardConfig `toml:"reward"`
}

// ReaderConfig maps reader-related settings.
type ReaderConfig struct {
	WidthPct  *float64 `toml:"width"`
	Threshold *float64 `toml:"threshold"`
	Observer  *string  `toml:"observer"`
	Poll      *string  `toml:"poll"`
	Watch     *bool    `toml:"watch"`
	Debug     *bool    `toml:"debug"`
}

// RewardConfig maps reward-related settings.
type RewardConfig struct {
	Base       *float64 `toml:"base"`
	Multiplier *float64 `toml:"multiplier"`
}

// LoadConfig reads a TOML config from the given path. Missing file is not an error.
func LoadConfig(path string) (FileConfig, error) {
	if path == "" {
		return FileConfig{}, fmt.Errorf("config path is empty")
	}
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to stat config: %w", err)
	}
	var cfg FileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return FileConfig{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
