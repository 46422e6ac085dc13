package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.GetHTTPAddr() != ":8080" || cfg.GetGRPCAddr() != ":9090" {
		t.Errorf("unexpected addresses %s %s", cfg.GetHTTPAddr(), cfg.GetGRPCAddr())
	}
	if cfg.Redis.Enabled() {
		t.Error("redis must be disabled without REDIS_ADDR")
	}
	if cfg.Sessions.ResultTTL != 24*time.Hour {
		t.Errorf("expected 24h result TTL, got %v", cfg.Sessions.ResultTTL)
	}
	if len(cfg.Providers) != 4 {
		t.Fatalf("expected 4 built-in providers, got %d", len(cfg.Providers))
	}

	for _, p := range cfg.Providers {
		if p.MaxTokens != 1024 {
			t.Errorf("%s: expected default max tokens, got %d", p.Name, p.MaxTokens)
		}
		if p.Name == "Claude" && p.APIKey != "sk-test" {
			t.Errorf("expected Claude API key from environment, got %q", p.APIKey)
		}
		if p.Name == "Grok" && p.BaseURL != "https://api.grok.ai/v1" {
			t.Errorf("unexpected Grok base URL %q", p.BaseURL)
		}
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("SESSION_ABANDON_GRACE", "0s")
	t.Setenv("GROK_API_URL", "http://grok.local/v1")
	t.Setenv("LLM_OFFLINE", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.HTTPPort != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.HTTPPort)
	}
	if !cfg.Redis.Enabled() {
		t.Error("expected redis to be enabled")
	}
	if cfg.Sessions.AbandonGrace != 0 {
		t.Errorf("expected abandonment disabled, got %v", cfg.Sessions.AbandonGrace)
	}
	if !cfg.LLM.Offline {
		t.Error("expected offline mode")
	}
	for _, p := range cfg.Providers {
		if p.Name == "Grok" && p.BaseURL != "http://grok.local/v1" {
			t.Errorf("expected overridden Grok URL, got %q", p.BaseURL)
		}
	}
}

func TestLoad_ProvidersFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "providers.yaml")
	catalog := `providers:
  - name: Local
    kind: openai
    model: llama3
    base_url: http://localhost:11434/v1
    api_key_env: LOCAL_KEY
    max_tokens: 256
  - name: Echo
    kind: echo
`
	if err := os.WriteFile(path, []byte(catalog), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("PROVIDERS_FILE", path)
	t.Setenv("LOCAL_KEY", "local-secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.Providers) != 2 {
		t.Fatalf("expected 2 providers, got %d", len(cfg.Providers))
	}
	local := cfg.Providers[0]
	if local.APIKey != "local-secret" || local.MaxTokens != 256 || local.Model != "llama3" {
		t.Errorf("unexpected provider %+v", local)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			HTTPPort:  8080,
			GRPCPort:  9090,
			LogLevel:  "info",
			Workers:   WorkerConfig{PoolSize: 1},
			Sessions:  SessionConfig{SweepInterval: time.Second},
			Providers: DefaultProviders(LLMConfig{OpenAIAPIURL: "http://o", GrokAPIURL: "http://g"}),
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTPPort = 0 }, "invalid HTTP port"},
		{"bad log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"empty pool", func(c *Config) { c.Workers.PoolSize = 0 }, "pool size"},
		{"no providers", func(c *Config) { c.Providers = nil }, "catalog is empty"},
		{"duplicate provider", func(c *Config) {
			c.Providers = append(c.Providers, ProviderConfig{Name: "claude", Kind: ProviderKindAnthropic})
		}, "duplicate provider"},
		{"unknown kind", func(c *Config) {
			c.Providers = []ProviderConfig{{Name: "X", Kind: "smtp"}}
		}, "unsupported kind"},
		{"openai without url", func(c *Config) {
			c.Providers = []ProviderConfig{{Name: "X", Kind: ProviderKindOpenAI}}
		}, "base_url"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}
