// Package config reads and writes the optional flakelab app config.
package config

import (
	"os"
	"path/filepath"

	"flakelab/internal/common"
	"flakelab/pkg/errors"
	"flakelab/pkg/models"
	"gopkg.in/yaml.v3"
)

// EnvConfigFile overrides the config file location
const EnvConfigFile = "FLAKELAB_CONFIG"

func GetConfigPath() string {
	// Check for environment variable first
	if configPath := os.Getenv(EnvConfigFile); configPath != "" {
		return filepath.Dir(configPath)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".flakelab")
}

func GetConfigFile() string {
	// Check for environment variable first
	if configFile := os.Getenv(EnvConfigFile); configFile != "" {
		// Validate the path to prevent directory traversal
		cleaned, err := common.CleanPath(configFile)
		if err != nil {
			// Fall back to default if invalid
			return filepath.Join(GetConfigPath(), "config.yaml")
		}
		return cleaned
	}
	return filepath.Join(GetConfigPath(), "config.yaml")
}

// HistoryFile is the run ledger location, history_path when set
func HistoryFile(cfg *models.Config) string {
	if cfg != nil && cfg.HistoryPath != "" {
		return cfg.HistoryPath
	}
	return filepath.Join(GetConfigPath(), "history.db")
}

// Load reads the config file. A missing file yields the defaults.
func Load() (*models.Config, error) {
	return LoadFile(GetConfigFile())
}

// LoadFile reads the config at path, applying defaults
func LoadFile(path string) (*models.Config, error) {
	cleanedPath, err := common.CleanPath(path)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "invalid config file path").
			WithContext("path", path)
	}

	config := &models.Config{}
	data, err := os.ReadFile(cleanedPath) // #nosec G304 - path is validated
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, errors.Wrap(err, errors.ErrCodeConfigPermission, "failed to read config file").
				WithContext("path", cleanedPath)
		}
		config.ApplyDefaults()
		return config, nil
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "failed to parse config file").
			WithContext("path", cleanedPath).
			WithSuggestions("Check the YAML syntax of " + cleanedPath)
	}
	config.ApplyDefaults()
	return config, nil
}

func Save(config *models.Config) error {
	configPath := GetConfigPath()
	if err := os.MkdirAll(configPath, common.DirPermissionSecure); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigPermission, "failed to create config directory").
			WithContext("path", configPath)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "failed to marshal config")
	}

	configFile := GetConfigFile()
	if err := os.WriteFile(configFile, data, common.FilePermissionSecure); err != nil {
		return errors.Wrap(err, errors.ErrCodeConfigPermission, "failed to write config file").
			WithContext("path", configFile)
	}
	return nil
}

func Exists() bool {
	_, err := os.Stat(GetConfigFile())
	return err == nil
}
