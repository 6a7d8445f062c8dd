package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("addr = %q, want default :8080", cfg.Server.Addr)
	}
	if cfg.Store.Backend != "memory" {
		t.Errorf("backend = %q, want default memory", cfg.Store.Backend)
	}
	if cfg.LLM.BaseURL == "" || cfg.LLM.Model == "" {
		t.Error("LLM defaults should be populated")
	}
}

func TestLoadParsesYAMLAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte(`
server:
  addr: ":9090"
store:
  backend: sqlite
  sqlite_path: /tmp/test.db
logger:
  level: debug
  format: json
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("KRISHI_GROQ_API_KEY", "gsk_test")
	t.Setenv("KRISHI_ADDR", ":7070")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Backend != "sqlite" || cfg.Store.SQLitePath != "/tmp/test.db" {
		t.Errorf("store = %+v", cfg.Store)
	}
	if cfg.Logger.Format != "json" {
		t.Errorf("logger format = %q, want json", cfg.Logger.Format)
	}
	if cfg.LLM.APIKey != "gsk_test" {
		t.Errorf("api key = %q, want env override", cfg.LLM.APIKey)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("addr = %q, env override should win over file", cfg.Server.Addr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "dynamo" }},
		{"redis without url", func(c *Config) { c.Store.Backend = "redis"; c.Store.RedisURL = "" }},
		{"sqlite without path", func(c *Config) { c.Store.Backend = "sqlite"; c.Store.SQLitePath = "" }},
		{"bad logger format", func(c *Config) { c.Logger.Format = "xml" }},
		{"empty addr", func(c *Config) { c.Server.Addr = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
