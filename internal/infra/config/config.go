package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Logger LoggerConfig `yaml:"logger"`
	Tracer TracerConfig `yaml:"tracer"`
	LLM    LLMConfig    `yaml:"llm"`
	Store  StoreConfig  `yaml:"store"`
}

// ServerConfig holds the HTTP gateway settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`             // e.g. ":8080"
	AllowedOrigins []string `yaml:"allowed_origins"`  // CORS allowlist; empty = allow all
	RequestsPerMin int      `yaml:"requests_per_min"` // per-IP rate limit; 0 = default
	BurstSize      int      `yaml:"burst_size"`
}

// LoggerConfig holds structured logging settings.
type LoggerConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text, json
	Output string `yaml:"output"` // stdout, stderr, or file path
}

// TracerConfig holds OpenTelemetry settings.
type TracerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Exporter string `yaml:"exporter"` // "stdout" or "noop"
}

// LLMConfig holds the text-generation collaborator settings. BaseURL
// defaults to Groq's OpenAI-compatible endpoint; with no API key the
// template fallback is used.
type LLMConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// StoreConfig selects and configures the context store backend.
type StoreConfig struct {
	Backend       string        `yaml:"backend"`  // redis, sqlite, memory
	RedisURL      string        `yaml:"redis_url"`
	SQLitePath    string        `yaml:"sqlite_path"`
	SweepSchedule string        `yaml:"sweep_schedule"` // cron spec for expiry sweeps
	DialTimeout   time.Duration `yaml:"dial_timeout"`
}

// Default returns a configuration with working local defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr:           ":8080",
			RequestsPerMin: 100,
			BurstSize:      20,
		},
		Logger: LoggerConfig{Level: "info", Format: "text", Output: "stderr"},
		Tracer: TracerConfig{Enabled: false, Exporter: "noop"},
		LLM: LLMConfig{
			BaseURL: "https://api.groq.com/openai/v1",
			Model:   "llama-3.1-8b-instant",
		},
		Store: StoreConfig{
			Backend:       "memory",
			RedisURL:      "redis://localhost:6379",
			SQLitePath:    "./krishi.db",
			SweepSchedule: "@every 10m",
			DialTimeout:   5 * time.Second,
		},
	}
}

// Load reads the YAML config at path, applies environment overrides, and
// validates the result. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// fall through to env overrides
	case err != nil:
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides secrets and connection strings from the environment so
// they can stay out of the config file.
func applyEnv(cfg *Config) {
	if v := os.Getenv("KRISHI_GROQ_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("KRISHI_REDIS_URL"); v != "" {
		cfg.Store.RedisURL = v
	}
	if v := os.Getenv("KRISHI_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.Store.Backend {
	case "redis", "sqlite", "memory":
	default:
		return fmt.Errorf("store.backend must be redis, sqlite, or memory, got %q", c.Store.Backend)
	}
	if c.Store.Backend == "redis" && c.Store.RedisURL == "" {
		return fmt.Errorf("store.redis_url is required for the redis backend")
	}
	if c.Store.Backend == "sqlite" && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for the sqlite backend")
	}
	switch c.Logger.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("logger.format must be text or json, got %q", c.Logger.Format)
	}
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	return nil
}
