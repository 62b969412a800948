package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadFromFile reads and parses a config file, trying YAML first (the
// project's native format) and falling back to JSON.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jsonErr := json.Unmarshal(data, cfg); jsonErr != nil {
			return nil, fmt.Errorf("parse config file (tried YAML and JSON): %w", err)
		}
	}

	setDefaults(cfg)
	return cfg, nil
}

// SaveToFile writes cfg back out, choosing JSON or YAML by the file
// extension.
func SaveToFile(cfg *Config, path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".json") {
		data, err = json.MarshalIndent(cfg, "", "  ")
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func setDefaults(cfg *Config) {
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	if cfg.Router.Capacity == 0 {
		cfg.Router.Capacity = 4096
	}
	if cfg.Router.TimeToIdle == 0 {
		cfg.Router.TimeToIdle = 30 * time.Minute
	}

	if cfg.Inbox.Capacity == 0 {
		cfg.Inbox.Capacity = 4096
	}
	if cfg.Inbox.TimeToIdle == 0 {
		cfg.Inbox.TimeToIdle = 24 * time.Hour
	}
	if cfg.Inbox.MaxPerRecipient == 0 {
		cfg.Inbox.MaxPerRecipient = 256
	}
	if cfg.Inbox.MaxMessageBytes == 0 {
		cfg.Inbox.MaxMessageBytes = 1 << 20
	}

	if cfg.Transport.ListenAddress == "" {
		cfg.Transport.ListenAddress = ":7700"
	}

	if cfg.Traversal.Interval == 0 {
		cfg.Traversal.Interval = 5 * time.Minute
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
	if cfg.Logging.Output == "" {
		cfg.Logging.Output = "stdout"
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	if cfg.Metrics.Address == "" {
		cfg.Metrics.Address = ":9090"
	}
}
