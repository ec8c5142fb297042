// Package config loads project-level loader settings from dataload.yaml,
// with environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/dataload-go/dataload/pkg/dataload"
)

// ErrConfigNotFound is returned when the config file does not exist.
// Callers can check for this with errors.Is(err, config.ErrConfigNotFound).
var ErrConfigNotFound = errors.New("config file not found")

// ConfigFileName is the project configuration file looked up at the root.
const ConfigFileName = "dataload.yaml"

// Environment variables overriding individual settings. A .env file in the
// working directory is honored via godotenv.
const (
	EnvDirName = "DATALOAD_DIR_NAME"
	EnvRootDir = "DATALOAD_ROOT_DIR"
	EnvStrip   = "DATALOAD_STRIP_TRAILING_WHITESPACE"
	EnvVerbose = "DATALOAD_VERBOSE"
)

// Config are the project-level loader settings. Pointer fields distinguish
// "not set" from an explicit value.
type Config struct {
	// LoaderDirName overrides the data directory name searched near tests.
	LoaderDirName string `yaml:"loader_dir_name"`
	// RootDir overrides the directory the upward search stops at.
	RootDir string `yaml:"root_dir"`
	// StripTrailingWhitespace toggles whitespace normalization for text data.
	StripTrailingWhitespace *bool `yaml:"strip_trailing_whitespace"`
	// Verbose enables diagnostic logging from the loaders.
	Verbose bool `yaml:"verbose"`
}

// EffectiveDirName returns the configured directory name or the default.
func (c *Config) EffectiveDirName() string {
	if c != nil && c.LoaderDirName != "" {
		return c.LoaderDirName
	}
	return dataload.DefaultLoaderDirName
}

// EffectiveStrip returns the strip setting, defaulting to enabled.
func (c *Config) EffectiveStrip() bool {
	if c != nil && c.StripTrailingWhitespace != nil {
		return *c.StripTrailingWhitespace
	}
	return true
}

// Load reads and validates dataload.yaml from rootDir and applies
// environment overrides. A missing file yields defaults, not an error;
// callers only see ErrConfigNotFound from LoadFile directly.
func Load(rootDir string) (*Config, error) {
	cfg, err := LoadFile(rootDir)
	if err != nil {
		if errors.Is(err, ErrConfigNotFound) {
			cfg = &Config{}
		} else {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and validates dataload.yaml from rootDir, without
// environment overrides.
func LoadFile(rootDir string) (*Config, error) {
	configPath := filepath.Join(rootDir, ConfigFileName)
	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}
	return Parse(data)
}

// Parse validates raw YAML against the embedded schema and decodes it.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, fmt.Errorf("%w: %s", dataload.ErrInvalidConfig, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %s", dataload.ErrInvalidConfig, err)
	}
	if cfg.LoaderDirName != "" {
		if err := validateDirName(cfg.LoaderDirName); err != nil {
			return nil, err
		}
	}
	return &cfg, nil
}

// validateDirName rejects loader directory names that would turn every
// ancestor into a loader directory or escape the search path: empty, ".",
// "..", and anything containing a path separator.
func validateDirName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" || trimmed == "." || trimmed == ".." ||
		strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: invalid loader_dir_name %q: must be a single directory name",
			dataload.ErrInvalidConfig, name)
	}
	return nil
}

func (c *Config) applyEnv() error {
	_ = godotenv.Load()

	if v := os.Getenv(EnvDirName); v != "" {
		if err := validateDirName(v); err != nil {
			return err
		}
		c.LoaderDirName = v
	}
	if v := os.Getenv(EnvRootDir); v != "" {
		c.RootDir = v
	}
	if v := os.Getenv(EnvStrip); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.StripTrailingWhitespace = &b
		}
	}
	if v := os.Getenv(EnvVerbose); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Verbose = b
		}
	}
	return nil
}
