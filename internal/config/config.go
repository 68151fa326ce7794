package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Worms configures access to the WoRMS REST API.
type Worms struct {
	BaseURL          string `toml:"base_url"`
	TimeoutSeconds   int    `toml:"timeout_seconds"`
	RetryMaxAttempts int    `toml:"retry_max_attempts"`
}

// Check configures the batch orchestrator.
type Check struct {
	Workers int `toml:"workers"`
}

// Cache configures the persistent lookup cache.
type Cache struct {
	Enabled bool   `toml:"enabled"`
	Dir     string `toml:"dir"`
	TTLDays int    `toml:"ttl_days"`
}

// Config is the full obisqc runtime configuration.
type Config struct {
	Worms     Worms  `toml:"worms"`
	Check     Check  `toml:"check"`
	Cache     Cache  `toml:"cache"`
	LogLevel  string `toml:"log_level"`
	LogFormat string `toml:"log_format"`
}

// Load reads the configuration file at path, falling back to defaults when
// path is empty and no file exists at the default location.
func Load(path string) (*Config, error) {
	cfg := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		if _, err := os.Stat(defaultPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return finalize(&cfg)
			}
			return nil, fmt.Errorf("stat config file: %w", err)
		}
		path = defaultPath
	} else {
		expanded, err := ExpandPath(path)
		if err != nil {
			return nil, err
		}
		path = expanded
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return finalize(&cfg)
}

func finalize(cfg *Config) (*Config, error) {
	if cfg.Cache.Dir != "" {
		expanded, err := ExpandPath(cfg.Cache.Dir)
		if err != nil {
			return nil, err
		}
		cfg.Cache.Dir = expanded
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// DefaultConfigPath returns the standard location of the config file.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "obisqc", "config.toml"), nil
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("determine home directory: %w", err)
		}
		return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
	}
	return path, nil
}

// CreateSample writes the embedded sample configuration to target.
func CreateSample(target string) error {
	if err := os.WriteFile(target, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
