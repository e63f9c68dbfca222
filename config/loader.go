package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// ProjectConfigFile is the name of the project-level config file.
	ProjectConfigFile = "sparqlassist.yaml"
	// UserConfigDir is the directory for user-level config.
	UserConfigDir = ".config/sparqlassist"
	// UserConfigFile is the name of the user-level config file.
	UserConfigFile = "config.yaml"
)

// Loader loads configuration with layered precedence.
type Loader struct {
	logger *slog.Logger
}

// NewLoader creates a configuration loader.
func NewLoader(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// Load resolves configuration in precedence order: defaults, the user
// config, then the project config found in the current or a parent
// directory. Environment overrides NATS_URL and the provider API keys are
// read where they are used.
func (l *Loader) Load() (*Config, error) {
	config := DefaultConfig()

	userConfigPath := l.userConfigPath()
	if userConfigPath != "" {
		if layer, err := loadLayer(userConfigPath); err == nil {
			l.logger.Debug("Loaded user config", slog.String("path", userConfigPath))
			config.Merge(layer)
		} else if !errors.Is(err, os.ErrNotExist) {
			l.logger.Warn("Failed to load user config",
				slog.String("path", userConfigPath),
				slog.String("error", err.Error()))
		}
	}

	if projectConfigPath := l.findProjectConfig(); projectConfigPath != "" {
		if layer, err := loadLayer(projectConfigPath); err == nil {
			l.logger.Debug("Loaded project config", slog.String("path", projectConfigPath))
			config.Merge(layer)
		} else {
			l.logger.Warn("Failed to load project config",
				slog.String("path", projectConfigPath),
				slog.String("error", err.Error()))
		}
	}

	if natsURL := os.Getenv("NATS_URL"); natsURL != "" {
		config.NATS.URL = natsURL
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// loadLayer reads one config layer into a zero Config. Unlike LoadFromFile
// it does not start from the defaults, so merging the layer only overrides
// the fields the file actually sets.
func loadLayer(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var layer Config
	if err := yaml.Unmarshal(data, &layer); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &layer, nil
}

// EnsureUserConfig creates the user config file with defaults if absent.
func (l *Loader) EnsureUserConfig() error {
	userConfigPath := l.userConfigPath()
	if userConfigPath == "" {
		return nil
	}
	if _, err := os.Stat(userConfigPath); err == nil {
		return nil
	}

	if err := DefaultConfig().SaveToFile(userConfigPath); err != nil {
		return err
	}
	l.logger.Info("Created default user config", slog.String("path", userConfigPath))
	return nil
}

// userConfigPath returns the path to the user config file.
func (l *Loader) userConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, UserConfigDir, UserConfigFile)
}

// findProjectConfig searches for the project config in current and parent
// directories.
func (l *Loader) findProjectConfig() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		configPath := filepath.Join(dir, ProjectConfigFile)
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
