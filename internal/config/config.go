// Package config loads runtime settings from ottobrew.yaml, the environment
// and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/hammamikhairi/ottobrew/internal/logger"
	"github.com/hammamikhairi/ottobrew/internal/repository"
)

// EnvPrefix is prepended to every environment override, e.g.
// OTTOBREW_DATA_FILE.
const EnvPrefix = "OTTOBREW"

// MemoryDataFile selects the in-memory store instead of a file.
const MemoryDataFile = ":memory:"

// Config holds the runtime settings.
type Config struct {
	DataFile              string `yaml:"data_file" mapstructure:"data_file"`
	LogLevel              string `yaml:"log_level" mapstructure:"log_level"`
	LogFile               string `yaml:"log_file" mapstructure:"log_file"`
	OnCorrupt             string `yaml:"on_corrupt" mapstructure:"on_corrupt"`
	RollbackOnSaveFailure bool   `yaml:"rollback_on_save_failure" mapstructure:"rollback_on_save_failure"`
}

// DefaultConfig returns the settings used when nothing overrides them.
func DefaultConfig() *Config {
	return &Config{
		DataFile:  "cervejaria.json",
		LogLevel:  "normal",
		LogFile:   ".ottobrew-logs/ottobrew.log",
		OnCorrupt: "reset",
	}
}

// Load reads ottobrew.yaml from the working directory or the user config
// dir, then applies OTTOBREW_* environment overrides. A non-empty path
// names the config file explicitly and must exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetDefault("data_file", cfg.DataFile)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_file", cfg.LogFile)
	v.SetDefault("on_corrupt", cfg.OnCorrupt)
	v.SetDefault("rollback_on_save_failure", cfg.RollbackOnSaveFailure)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ottobrew")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			v.AddConfigPath(filepath.Join(xdg, "ottobrew"))
		}
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "ottobrew"))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: reading: %w", err)
		}
		// No config file; defaults and env only.
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: decoding: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DataFile) == "" {
		return fmt.Errorf("config: data_file is required")
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := repository.ParseCorruptionPolicy(c.OnCorrupt); err != nil {
		return fmt.Errorf("config: on_corrupt: %w", err)
	}
	return nil
}

// Level returns the parsed log level. Call after Validate.
func (c *Config) Level() logger.Level {
	l, _ := logger.ParseLevel(c.LogLevel)
	return l
}

// CorruptionPolicy returns the parsed corruption policy. Call after Validate.
func (c *Config) CorruptionPolicy() repository.CorruptionPolicy {
	p, _ := repository.ParseCorruptionPolicy(c.OnCorrupt)
	return p
}

// InMemory reports whether the catalog should live in memory only.
func (c *Config) InMemory() bool {
	return c.DataFile == MemoryDataFile
}
