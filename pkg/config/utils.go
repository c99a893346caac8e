package config

import (
	"fmt"
	"os"
	"path/filepath"

	"pipdock/pkg/logger"
)

// DefaultPath returns the config file location under the user config dir.
func DefaultPath() (string, error) {
	homeConfigDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeConfigDir, "pipdock", "config.json"), nil
}

// initializeConfig creates or loads the configuration.
func initializeConfig(providedPath string, defaultPath string, log *logger.Logger) (*Config, error) {
	// Try provided path first if specified
	if providedPath != "" {
		config, err := loadConfigFromPath(providedPath, log)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from provided path: %w", err)
		}
		return config, nil
	}

	// Try default path, create if doesn't exist
	if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
		config := DefaultConfig(log)
		if err := config.Save(defaultPath); err != nil {
			log.Warn("Could not write default config", "path", defaultPath, "error", err)
		} else {
			config.path = defaultPath
		}
		return config, nil
	}

	config, err := loadConfigFromPath(defaultPath, log)
	if err != nil {
		log.Error("Falling back to default configuration", err, "path", defaultPath)
		return DefaultConfig(log), nil
	}
	return config, nil
}

// FindConfig locates and initializes the configuration. An explicit path
// must load cleanly; the default location is created on first run and a
// broken default file degrades to built-in defaults.
func FindConfig(providedPath string, log *logger.Logger) (*Config, error) {
	log.Info("Looking for configuration", "provided_path", providedPath)

	defaultConfigPath, err := DefaultPath()
	if err != nil {
		log.Error("Failed to get user config directory", err)
		return nil, err
	}

	log.Debug("Configuration paths", "config_path", defaultConfigPath)

	return initializeConfig(providedPath, defaultConfigPath, log)
}
