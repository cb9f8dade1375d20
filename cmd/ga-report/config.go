package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the ga-report configuration file.
type Config struct {
	// UserAgent identifies this tool in API requests.
	UserAgent string `yaml:"user_agent"`

	// Auth selects the credential source. Exactly one of ServiceAccountKey
	// or ClientSecrets must be set.
	Auth struct {
		// ServiceAccountKey is the path to a service-account key JSON file.
		ServiceAccountKey string `yaml:"service_account_key"`

		// ClientSecrets is the path to an installed-application
		// client-secrets JSON file.
		ClientSecrets string `yaml:"client_secrets"`

		// TokenFile is where the authorized token is persisted for the
		// client-secrets flow. Ignored for service accounts.
		TokenFile string `yaml:"token_file"`
	} `yaml:"auth"`

	// Redis enables the shared daily quota tracker when an address is set.
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	// DailyLimit overrides the default daily request budget. 0 keeps the
	// API default.
	DailyLimit int `yaml:"daily_limit"`

	Logging struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"logging"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	var cfg Config
	cfg.UserAgent = "ga-report/1.0"
	cfg.Logging.Level = "info"
	return cfg
}

// LoadConfig reads and validates a YAML configuration file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the credential configuration.
func (c Config) Validate() error {
	if c.UserAgent == "" {
		return fmt.Errorf("user_agent must not be empty")
	}
	if c.Auth.ServiceAccountKey != "" && c.Auth.ClientSecrets != "" {
		return fmt.Errorf("configure either service_account_key or client_secrets, not both")
	}
	if c.Auth.ClientSecrets != "" && c.Auth.TokenFile == "" && c.Redis.Addr == "" {
		return fmt.Errorf("client_secrets flow needs token_file or redis for token storage")
	}
	return nil
}
