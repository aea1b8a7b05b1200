package config

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/oleg578/swiftline"
)

const (
	configDirName = "swiftline"
	defaultConfig = ".config"
)

var configFiles = []string{
	"config.yaml",
	"config.yml",
}

// Config represents the structure of the configuration file.
type Config struct {
	Reader swiftline.Options `yaml:"reader"`
}

// newDefaultConfig creates a configuration holding the reader defaults.
func newDefaultConfig() *Config {
	return &Config{Reader: swiftline.DefaultOptions()}
}

// getConfigPath retrieves the configuration directory based on XDG_CONFIG_HOME.
func getConfigPath() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "failed to get user home directory")
		}
		configHome = filepath.Join(home, defaultConfig)
	}

	return filepath.Join(configHome, configDirName), nil
}

// LoadFile loads the configuration at path. Keys missing from the file keep
// their defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := newDefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to parse config file %s", path)
	}
	if err := cfg.Reader.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}

	return cfg, nil
}

// Load reads path when it is set, otherwise the first config file found in
// the user configuration directory. Without any file the defaults are used.
func Load(path string) (*Config, error) {
	if path != "" {
		cfg, err := LoadFile(path)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load config")
		}
		return cfg, nil
	}

	configDir, err := getConfigPath()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get config path")
	}

	// Return default config early if directory doesn't exist
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		return newDefaultConfig(), nil
	}

	for _, filename := range configFiles {
		cfg, err := LoadFile(filepath.Join(configDir, filename))
		if err == nil {
			return cfg, nil
		}
		if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "failed to load config from %s", filename)
		}
	}

	return newDefaultConfig(), nil
}
