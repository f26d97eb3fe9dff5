// Package config loads the dashboard CLI configuration: a YAML file at
// ~/.pointsdash/config.yaml, optionally overridden by environment
// variables, with a .env file honored for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigDir is the directory under the user's home for CLI state.
const DefaultConfigDir = ".pointsdash"

// DefaultConfigFile is the config file name within the config directory.
const DefaultConfigFile = "config.yaml"

// DefaultBaseURL points at a locally running stub backend.
const DefaultBaseURL = "http://localhost:8095"

// Environment variables that override the config file.
const (
	EnvBaseURL = "POINTSDASH_API_URL"
	EnvToken   = "POINTSDASH_TOKEN"
)

// Config holds the CLI configuration.
type Config struct {
	BaseURL string `yaml:"base_url"`
	Token   string `yaml:"token,omitempty"`
}

func configPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("determining home directory: %w", err)
	}
	return filepath.Join(home, DefaultConfigDir, DefaultConfigFile), nil
}

// Load reads the configuration. Precedence, lowest to highest: defaults,
// config file, environment (a .env file in the working directory is loaded
// into the environment first). A missing config file is not an error.
func Load() (*Config, error) {
	// Ignore a missing .env; it only exists in dev checkouts.
	_ = godotenv.Load()

	cfg := &Config{BaseURL: DefaultBaseURL}

	path, err := configPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults stand
	default:
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if v := os.Getenv(EnvBaseURL); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv(EnvToken); v != "" {
		cfg.Token = v
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	return cfg, nil
}

// Save writes the configuration to ~/.pointsdash/config.yaml, creating the
// directory if needed.
func Save(cfg *Config) error {
	path, err := configPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}
