package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the top-level ledgerline.yaml configuration.
type Config struct {
	Account AccountConfig `yaml:"account"`
	Log     LogConfig     `yaml:"log"`
}

// AccountConfig describes the bank-account partition a run processes.
type AccountConfig struct {
	Scheme   string `yaml:"scheme"`   // parsing-rule scheme for this statement source
	Currency string `yaml:"currency"` // the account's own currency code, e.g. "GEL"
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// Load reads a ledgerline.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if cfg.Account.Scheme == "" {
		return nil, fmt.Errorf("config: account.scheme is required")
	}
	if cfg.Account.Currency == "" {
		return nil, fmt.Errorf("config: account.currency is required")
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(scheme, currency string) *Config {
	return &Config{
		Account: AccountConfig{
			Scheme:   scheme,
			Currency: currency,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
