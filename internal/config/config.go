package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when no --config flag is given.
const DefaultPath = "captioner.yaml"

// DefaultTriggerWord is the caption given to images without one.
const DefaultTriggerWord = "p3rs0n"

// Config holds the settings shared by every command.
type Config struct {
	Directory   string `yaml:"directory"`
	TriggerWord string `yaml:"trigger_word"`
	Port        string `yaml:"port"`
	Provider    string `yaml:"provider"`
	Model       string `yaml:"model"`
	SessionDB   string `yaml:"session_db"`
	LogFile     string `yaml:"log_file"`
	LogLevel    string `yaml:"log_level"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		TriggerWord: DefaultTriggerWord,
		Port:        "8888",
		Provider:    "ollama",
		LogLevel:    "info",
	}
}

// Load reads the YAML file at path on top of the defaults, then applies
// environment overrides. A missing file is not an error unless required.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
		slog.Debug("Loaded config file", "path", path)
	case errors.Is(err, os.ErrNotExist) && !required:
	default:
		return cfg, fmt.Errorf("failed to read config %s: %w", path, err)
	}

	cfg.applyEnv()

	if cfg.TriggerWord == "" {
		cfg.TriggerWord = DefaultTriggerWord
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"CAPTIONER_DIRECTORY":    &c.Directory,
		"CAPTIONER_TRIGGER_WORD": &c.TriggerWord,
		"PORT":                   &c.Port,
		"CAPTIONING_PROVIDER":    &c.Provider,
		"CAPTIONING_MODEL":       &c.Model,
		"CAPTIONER_SESSION_DB":   &c.SessionDB,
		"LOG_FILE":               &c.LogFile,
		"LOG_LEVEL":              &c.LogLevel,
	}
	for env, field := range overrides {
		if v := os.Getenv(env); v != "" {
			*field = v
		}
	}
}
