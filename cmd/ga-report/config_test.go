package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
user_agent: "my-reporting-tool/2.0 (ops@example.com)"
auth:
  service_account_key: /etc/ga/key.json
redis:
  addr: localhost:6379
  db: 3
daily_limit: 10000
logging:
  level: debug
  pretty: true
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.UserAgent != "my-reporting-tool/2.0 (ops@example.com)" {
		t.Errorf("UserAgent = %q", cfg.UserAgent)
	}
	if cfg.Auth.ServiceAccountKey != "/etc/ga/key.json" {
		t.Errorf("ServiceAccountKey = %q", cfg.Auth.ServiceAccountKey)
	}
	if cfg.Redis.Addr != "localhost:6379" || cfg.Redis.DB != 3 {
		t.Errorf("Redis = %+v", cfg.Redis)
	}
	if cfg.DailyLimit != 10000 {
		t.Errorf("DailyLimit = %d, want 10000", cfg.DailyLimit)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Pretty {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `
auth:
  service_account_key: /etc/ga/key.json
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.UserAgent == "" {
		t.Error("UserAgent default missing")
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("default log level = %q, want info", cfg.Logging.Level)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestLoadConfig_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "user_agent: [unbalanced")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected parse error for malformed YAML")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "service account only",
			mutate:  func(c *Config) { c.Auth.ServiceAccountKey = "/etc/ga/key.json" },
			wantErr: false,
		},
		{
			name: "client secrets with token file",
			mutate: func(c *Config) {
				c.Auth.ClientSecrets = "/etc/ga/secrets.json"
				c.Auth.TokenFile = "/var/lib/ga/token.json"
			},
			wantErr: false,
		},
		{
			name: "client secrets with redis store",
			mutate: func(c *Config) {
				c.Auth.ClientSecrets = "/etc/ga/secrets.json"
				c.Redis.Addr = "localhost:6379"
			},
			wantErr: false,
		},
		{
			name: "both credential sources",
			mutate: func(c *Config) {
				c.Auth.ServiceAccountKey = "/etc/ga/key.json"
				c.Auth.ClientSecrets = "/etc/ga/secrets.json"
			},
			wantErr: true,
		},
		{
			name: "client secrets without token storage",
			mutate: func(c *Config) {
				c.Auth.ClientSecrets = "/etc/ga/secrets.json"
			},
			wantErr: true,
		},
		{
			name:    "empty user agent",
			mutate:  func(c *Config) { c.UserAgent = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)

			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
