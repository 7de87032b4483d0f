// Package config loads the client settings from ~/.ftracker/config.yaml, an
// optional .env file and FTRACKER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL        = "https://be-ftracker.eka-dev.cloud/"
	DefaultTimeout        = 30 * time.Second
	DefaultRefreshTimeout = 15 * time.Second
	DefaultMaxAttempts    = 3
	DefaultView           = "Month"

	EnvAPIURL  = "FTRACKER_API_URL"
	EnvDBPath  = "FTRACKER_DB_PATH"
	EnvTimeout = "FTRACKER_TIMEOUT"
	EnvConfig  = "FTRACKER_CONFIG"
)

// Config holds the client settings.
type Config struct {
	API     APIConfig     `yaml:"api"`
	Storage StorageConfig `yaml:"storage"`
	Display DisplayConfig `yaml:"display"`
}

type APIConfig struct {
	BaseURL           string        `yaml:"base_url"`
	Timeout           time.Duration `yaml:"timeout"`
	RefreshTimeout    time.Duration `yaml:"refresh_timeout"`
	MaxAttempts       int           `yaml:"max_attempts"`
	RequestsPerSecond float64       `yaml:"requests_per_second"`
}

type StorageConfig struct {
	// DBPath overrides the sqlite database location.
	DBPath string `yaml:"db_path"`
}

type DisplayConfig struct {
	DefaultView string `yaml:"default_view"`
	Timezone    string `yaml:"timezone"`
}

// DefaultPath returns the config file location, honoring FTRACKER_CONFIG.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".ftracker", "config.yaml")
	}
	return filepath.Join(home, ".ftracker", "config.yaml")
}

// Load reads the config file at path (a missing file is not an error), then
// applies .env values, defaults and environment overrides.
func Load(path string) (Config, error) {
	// Load .env from the working directory if there is one
	_ = godotenv.Load()

	var cfg Config
	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config yaml: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	cfg, err = applyEnv(applyDefaults(cfg))
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in settings without reading any file or variable.
func Default() Config {
	return applyDefaults(Config{})
}

func applyDefaults(cfg Config) Config {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = DefaultBaseURL
	}
	if cfg.API.Timeout == 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.API.RefreshTimeout == 0 {
		cfg.API.RefreshTimeout = DefaultRefreshTimeout
	}
	if cfg.API.MaxAttempts == 0 {
		cfg.API.MaxAttempts = DefaultMaxAttempts
	}
	if cfg.Display.DefaultView == "" {
		cfg.Display.DefaultView = DefaultView
	}
	return cfg
}

func applyEnv(cfg Config) (Config, error) {
	if val := os.Getenv(EnvAPIURL); val != "" {
		cfg.API.BaseURL = val
	}
	if val := os.Getenv(EnvDBPath); val != "" {
		cfg.Storage.DBPath = val
	}
	if val := os.Getenv(EnvTimeout); val != "" {
		d, err := parseDuration(val)
		if err != nil {
			return cfg, fmt.Errorf("invalid %s: %w", EnvTimeout, err)
		}
		cfg.API.Timeout = d
	}
	return cfg, nil
}

// parseDuration accepts Go durations ("45s") and plain seconds ("45").
func parseDuration(val string) (time.Duration, error) {
	if secs, err := strconv.Atoi(val); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(val)
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.base_url must be an absolute URL, got %q", c.API.BaseURL)
	}
	if c.API.Timeout < 0 || c.API.RefreshTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.API.MaxAttempts < 1 {
		return fmt.Errorf("api.max_attempts must be at least 1, got %d", c.API.MaxAttempts)
	}
	if c.API.RequestsPerSecond < 0 {
		return fmt.Errorf("api.requests_per_second must not be negative")
	}
	if c.Display.Timezone != "" {
		if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
			return fmt.Errorf("display.timezone: %w", err)
		}
	}
	return nil
}

// Location returns the configured display time zone, or time.Local.
func (c Config) Location() *time.Location {
	if c.Display.Timezone == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(c.Display.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

// Save writes cfg as YAML to path, creating the directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config yaml: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}
