package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	gosync "sync"

	"github.com/go-playground/validator/v10"

	"taskbridge/backend/sync"
)

import _ "embed"

//go:embed config.sample.json
var sampleConfig []byte

const (
	CONFIG_DIR_PATH  = "taskbridge"
	CONFIG_FILE_PATH = "config.json"
	CONFIG_DIR_PERM  = 0755
	CONFIG_FILE_PERM = 0644
)

var (
	globalConfig *Config
	configErr    error
	configOnce   gosync.Once
)

// Config is the user-level configuration file.
type Config struct {
	// Registry is the path to the YAML provider registry. Relative paths
	// resolve against the config directory.
	Registry string `json:"registry" validate:"required"`

	// Database overrides the default task database location.
	Database string `json:"database,omitempty"`

	// Preferences are handed to the sync driver.
	Preferences sync.Preferences `json:"preferences"`
}

// Validate checks the configuration
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	return c.Preferences.Validate()
}

// RegistryPath resolves the provider registry location.
func (c Config) RegistryPath() (string, error) {
	if filepath.IsAbs(c.Registry) {
		return c.Registry, nil
	}
	configPath, err := GetConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(configPath), c.Registry), nil
}

// GetConfig loads the user config once per process, writing the sample on
// first use.
func GetConfig() (*Config, error) {
	configOnce.Do(func() {
		globalConfig, configErr = loadUserOrSampleConfig()
	})
	return globalConfig, configErr
}

// GetConfigPath returns the path of the user config file
func GetConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(dir, CONFIG_DIR_PATH, CONFIG_FILE_PATH), nil
}

func loadUserOrSampleConfig() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		data, err = writeSampleConfig(configPath)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses and validates config bytes
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

func writeSampleConfig(configPath string) ([]byte, error) {
	if err := os.MkdirAll(filepath.Dir(configPath), CONFIG_DIR_PERM); err != nil {
		return nil, fmt.Errorf("failed to create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, sampleConfig, CONFIG_FILE_PERM); err != nil {
		return nil, fmt.Errorf("failed to write sample config: %w", err)
	}
	return sampleConfig, nil
}
