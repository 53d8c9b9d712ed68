package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	// ConfigDir is the default config directory name.
	ConfigDir = ".dialectiq"
	// ConfigFile is the default config file name.
	ConfigFile = "config.json"
)

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("DIALECTIQ_CONFIG")); explicit != "" {
		if strings.HasPrefix(explicit, "~") {
			home, err := resolveHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(home, explicit[1:]), nil
		}
		return explicit, nil
	}
	home, err := resolveHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ConfigDir, ConfigFile), nil
}

func resolveHomeDir() (string, error) {
	if h := strings.TrimSpace(os.Getenv("DIALECTIQ_HOME")); h != "" {
		if strings.HasPrefix(h, "~") {
			base, err := os.UserHomeDir()
			if err != nil {
				return "", err
			}
			return filepath.Join(base, h[1:]), nil
		}
		return h, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return home, nil
}

// Default returns a Config populated with sensible defaults.
func Default() Config {
	home, _ := os.UserHomeDir()
	workspace := filepath.Join(home, ConfigDir)
	return Config{
		Paths: PathsConfig{
			Workspace: workspace,
			DBPath:    filepath.Join(workspace, "dialectiq.db"),
		},
		Model: ModelConfig{
			Name:           "gpt-4o",
			EmbeddingModel: "text-embedding-3-small",
			MaxTokens:      4096,
			Temperature:    0.7,
		},
		Provider: ProviderConfig{
			APIBase: "https://api.openai.com/v1",
		},
		Dialogue: DialogueConfig{
			DebateRounds: 3,
		},
		Scheduler: SchedulerConfig{
			LearningEnabled: true,
			TrainingEnabled: true,
			RetryDelay:      time.Hour,
		},
		Events: EventsConfig{
			Enabled: false,
			Topic:   "dialectiq.events",
		},
	}
}

// Load reads the config file (if present), then applies environment
// overrides with the DIALECTIQ_ prefix. Missing file is not an error;
// defaults apply.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return nil, fmt.Errorf("resolve config path: %w", err)
	}
	data, err := os.ReadFile(path)
	if err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := envconfig.Process("dialectiq", &cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	if cfg.Dialogue.DebateRounds < 1 {
		cfg.Dialogue.DebateRounds = 3
	}
	if cfg.Scheduler.RetryDelay <= 0 {
		cfg.Scheduler.RetryDelay = time.Hour
	}
	return &cfg, nil
}

// Save writes the config as indented JSON, creating the directory if needed.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}
