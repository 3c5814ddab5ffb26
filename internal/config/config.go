// Package config handles sylgraph configuration.
//
// Values are resolved in order: built-in defaults, the YAML config file, then
// environment variables (a .env file in the working directory is loaded first).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/syllabus-viz/sylgraph/internal/logger"
	"github.com/syllabus-viz/sylgraph/internal/viz"
)

// Config is the resolved configuration.
type Config struct {
	Syllabus     string        `yaml:"syllabus"`  // path or http(s) URL of the syllabus CSV
	Relations    string        `yaml:"relations"` // path or http(s) URL of the relation CSV
	Addr         string        `yaml:"addr"`
	LogLevel     string        `yaml:"log_level"`
	LogPretty    bool          `yaml:"log_pretty"`
	FetchTimeout time.Duration `yaml:"fetch_timeout"`
	Watch        bool          `yaml:"watch"`
	Layout       string        `yaml:"layout"`
	Title        string        `yaml:"title"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "sylgraph"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
)

// Environment variable overrides.
const (
	EnvSyllabus  = "SYLGRAPH_SYLLABUS"
	EnvRelations = "SYLGRAPH_RELATIONS"
	EnvAddr      = "SYLGRAPH_ADDR"
	EnvLogLevel  = "SYLGRAPH_LOG_LEVEL"
)

// Defaults.
const (
	DefaultSyllabus     = "data/syllabus.csv"
	DefaultRelations    = "data/relations.csv"
	DefaultAddr         = ":8080"
	DefaultFetchTimeout = 30 * time.Second
)

// Validation errors.
var (
	ErrInvalidLogLevel = errors.New("invalid log_level")
	ErrInvalidTimeout  = errors.New("fetch_timeout must be positive")
)

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Syllabus:     DefaultSyllabus,
		Relations:    DefaultRelations,
		Addr:         DefaultAddr,
		LogLevel:     logger.InfoLevel,
		LogPretty:    true,
		FetchTimeout: DefaultFetchTimeout,
		Layout:       viz.LayoutPhysics,
		Title:        viz.DefaultTitle,
	}
}

// DefaultPath returns the path to the user config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/sylgraph/config.yml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load resolves configuration from path. An empty path means DefaultPath. A missing
// file is not an error; defaults and environment overrides still apply.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	if path == "" {
		path = DefaultPath()
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides fields from non-empty environment variables.
func (c *Config) applyEnv() {
	for env, field := range map[string]*string{
		EnvSyllabus:  &c.Syllabus,
		EnvRelations: &c.Relations,
		EnvAddr:      &c.Addr,
		EnvLogLevel:  &c.LogLevel,
	} {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}

// Validate checks field values.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.LogLevel)
	}
	if err := viz.ValidateLayout(c.Layout); err != nil {
		return err
	}
	if c.FetchTimeout <= 0 {
		return ErrInvalidTimeout
	}
	return nil
}
