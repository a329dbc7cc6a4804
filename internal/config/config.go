// Package config loads service configuration from defaults, an optional JSON
// config file, and REC_* environment variables, in that order of precedence
// (env wins).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

type Config struct {
	Server  ServerConfig
	Storage StorageConfig
	Model   ModelConfig
	Log     LogConfig
	API     APIConfig
}

type ServerConfig struct {
	Port int
}

type StorageConfig struct {
	DataDir string
}

type ModelConfig struct {
	// Path is where the trained artifact is read from and written to.
	Path string
	// Type selects the predictive model implementation.
	Type string
	// ReloadInterval is how often the artifact file is polled for changes,
	// as a Go duration string.
	ReloadInterval string
}

type LogConfig struct {
	Level string
}

type APIConfig struct {
	// Token, when set, gates the debug endpoints behind bearer auth.
	// Only settable via environment, never persisted in the config file.
	Token string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 8000,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Model: ModelConfig{
			Path:           "models/recommendation_model.json",
			Type:           "logreg",
			ReloadInterval: "30s",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

func defaultDataDir() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".local", "share")
		} else {
			return "recsvc-data"
		}
	}
	return filepath.Join(dir, "recsvc")
}

// Load reads configuration from the JSON config file at
// $XDG_CONFIG_HOME/recsvc/config.json (if present) and applies REC_*
// environment overrides on top of the defaults.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b backend) (Config, error) {
	cfg := defaults()

	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}

	applyEnvOverrides(&cfg)

	if _, err := time.ParseDuration(cfg.Model.ReloadInterval); err != nil {
		return Config{}, fmt.Errorf("invalid model reload interval %q: %w", cfg.Model.ReloadInterval, err)
	}
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return Config{}, fmt.Errorf("invalid server port %d", cfg.Server.Port)
	}

	return cfg, nil
}

// ReloadIntervalDuration returns the parsed poll interval. Load validated it.
func (c ModelConfig) ReloadIntervalDuration() time.Duration {
	d, err := time.ParseDuration(c.ReloadInterval)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

func configFilePath() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = "."
		}
	}
	return filepath.Join(dir, "recsvc", "config.json")
}
