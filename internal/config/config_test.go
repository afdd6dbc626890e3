package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return cfgPath
}

func TestLoad(t *testing.T) {
	content := `
server:
  hostname: "editor.test.com"

api:
  listen_addr: ":9080"
  api_key: "test-api-key"
  read_timeout: 15s

storage:
  path: "/tmp/test-templates.db"

logging:
  level: "debug"
  format: "text"

metrics:
  enabled: true
  listen_addr: ":9190"

delivery:
  enabled: true
  host: "smtp.test.com"
  port: 2587
  username: "mailer"
  password: "secret"
  from: "previews@test.com"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Hostname != "editor.test.com" {
		t.Errorf("Hostname = %v, want editor.test.com", cfg.Server.Hostname)
	}
	if cfg.API.ListenAddr != ":9080" {
		t.Errorf("API.ListenAddr = %v, want :9080", cfg.API.ListenAddr)
	}
	if cfg.API.APIKey != "test-api-key" {
		t.Errorf("API.APIKey = %v, want test-api-key", cfg.API.APIKey)
	}
	if cfg.API.ReadTimeout != 15*time.Second {
		t.Errorf("API.ReadTimeout = %v, want 15s", cfg.API.ReadTimeout)
	}
	if cfg.Storage.Path != "/tmp/test-templates.db" {
		t.Errorf("Storage.Path = %v, want /tmp/test-templates.db", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %v, want debug", cfg.Logging.Level)
	}
	if !cfg.Metrics.Enabled {
		t.Error("Metrics.Enabled = false, want true")
	}
	if cfg.Metrics.ListenAddr != ":9190" {
		t.Errorf("Metrics.ListenAddr = %v, want :9190", cfg.Metrics.ListenAddr)
	}
	if cfg.Delivery.Host != "smtp.test.com" {
		t.Errorf("Delivery.Host = %v, want smtp.test.com", cfg.Delivery.Host)
	}
	if cfg.Delivery.Port != 2587 {
		t.Errorf("Delivery.Port = %v, want 2587", cfg.Delivery.Port)
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "server:\n  hostname: test\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.ListenAddr != ":8080" {
		t.Errorf("API.ListenAddr = %v, want :8080", cfg.API.ListenAddr)
	}
	if cfg.API.MaxHeaderBytes != 1<<20 {
		t.Errorf("API.MaxHeaderBytes = %v, want 1MB", cfg.API.MaxHeaderBytes)
	}
	if cfg.API.WriteTimeout != 30*time.Second {
		t.Errorf("API.WriteTimeout = %v, want 30s", cfg.API.WriteTimeout)
	}
	if cfg.Storage.Path != "/var/lib/monketer/templates.db" {
		t.Errorf("Storage.Path = %v, want default", cfg.Storage.Path)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %v/%v, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Metrics.ListenAddr != ":9090" || cfg.Metrics.Path != "/metrics" {
		t.Errorf("Metrics = %v %v, want :9090 /metrics", cfg.Metrics.ListenAddr, cfg.Metrics.Path)
	}
	if cfg.Delivery.Port != 587 {
		t.Errorf("Delivery.Port = %v, want 587", cfg.Delivery.Port)
	}
	if cfg.Delivery.Timeout != 30*time.Second {
		t.Errorf("Delivery.Timeout = %v, want 30s", cfg.Delivery.Timeout)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() with missing file should fail")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "api: [broken")); err == nil {
		t.Error("Load() with invalid YAML should fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{
			name:    "defaults are valid",
			mutate:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: true,
		},
		{
			name:    "invalid log format",
			mutate:  func(c *Config) { c.Logging.Format = "xml" },
			wantErr: true,
		},
		{
			name: "both key and key hash",
			mutate: func(c *Config) {
				c.API.APIKey = "k"
				c.API.APIKeyHash = "$2a$10$abc"
			},
			wantErr: true,
		},
		{
			name: "delivery without host",
			mutate: func(c *Config) {
				c.Delivery.Enabled = true
				c.Delivery.From = "a@b.test"
			},
			wantErr: true,
		},
		{
			name: "delivery without from",
			mutate: func(c *Config) {
				c.Delivery.Enabled = true
				c.Delivery.Host = "smtp.test.com"
			},
			wantErr: true,
		},
		{
			name: "dkim without key file",
			mutate: func(c *Config) {
				c.Delivery.Enabled = true
				c.Delivery.Host = "smtp.test.com"
				c.Delivery.From = "a@b.test"
				c.Delivery.DKIM = DKIMConfig{Enabled: true, Domain: "b.test", Selector: "mail"}
			},
			wantErr: true,
		},
		{
			name: "complete delivery config",
			mutate: func(c *Config) {
				c.Delivery.Enabled = true
				c.Delivery.Host = "smtp.test.com"
				c.Delivery.From = "a@b.test"
				c.Delivery.DKIM = DKIMConfig{Enabled: true, Domain: "b.test", Selector: "mail", KeyFile: "/k.pem"}
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
