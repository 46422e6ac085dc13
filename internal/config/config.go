package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the debate hub
type Config struct {
	// Server configuration
	HTTPPort int    `env:"HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Redis configuration
	Redis RedisConfig

	// LLM configuration
	LLM LLMConfig

	// Worker configuration
	Workers WorkerConfig

	// Session lifecycle
	Sessions SessionConfig

	// Progress delivery
	Delivery DeliveryConfig

	// Tracing
	Tracing TracingConfig

	// Timeouts
	Timeouts TimeoutConfig

	// Providers is the provider catalog, built in or read from LLM.ProvidersFile
	Providers []ProviderConfig
}

// RedisConfig holds Redis connection configuration. An empty address selects
// the in-memory adapters.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	// Progress event streams
	StreamMaxLen int64 `env:"REDIS_STREAM_MAXLEN" envDefault:"1000"`
}

// Enabled reports whether Redis adapters should be used
func (r RedisConfig) Enabled() bool {
	return r.Addr != ""
}

// LLMConfig holds LLM provider configuration
type LLMConfig struct {
	OpenAIAPIURL     string        `env:"OPENAI_API_URL" envDefault:"https://api.openai.com/v1"`
	GrokAPIURL       string        `env:"GROK_API_URL" envDefault:"https://api.grok.ai/v1"`
	DefaultMaxTokens int           `env:"LLM_DEFAULT_MAX_TOKENS" envDefault:"1024"`
	ProvidersFile    string        `env:"PROVIDERS_FILE"`
	Offline          bool          `env:"LLM_OFFLINE" envDefault:"false"`
	OfflineDelay     time.Duration `env:"LLM_OFFLINE_DELAY" envDefault:"0s"`
}

// WorkerConfig holds worker pool configuration
type WorkerConfig struct {
	PoolSize            int           `env:"WORKER_POOL_SIZE" envDefault:"5"`
	MaxRetries          int           `env:"WORKER_MAX_RETRIES" envDefault:"3"`
	RetryDelay          time.Duration `env:"WORKER_RETRY_DELAY" envDefault:"1s"`
	HealthCheckInterval time.Duration `env:"WORKER_HEALTH_CHECK_INTERVAL" envDefault:"30s"`
}

// SessionConfig holds session lifecycle configuration
type SessionConfig struct {
	Retention     time.Duration `env:"SESSION_RETENTION" envDefault:"1h"`
	ResultTTL     time.Duration `env:"SESSION_RESULT_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"30s"`
	AbandonGrace  time.Duration `env:"SESSION_ABANDON_GRACE" envDefault:"10m"`
}

// DeliveryConfig holds progress delivery configuration
type DeliveryConfig struct {
	SubscriberBuffer int           `env:"DELIVERY_SUBSCRIBER_BUFFER" envDefault:"16"`
	SSEKeepAlive     time.Duration `env:"DELIVERY_SSE_KEEPALIVE" envDefault:"15s"`
}

// TracingConfig holds OpenTelemetry configuration
type TracingConfig struct {
	Enabled      bool   `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	ServiceName  string `env:"OTEL_SERVICE_NAME" envDefault:"debatehub"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	WorkflowTimeout time.Duration `env:"TIMEOUT_WORKFLOW" envDefault:"1800s"` // 30 minutes
	StepTimeout     time.Duration `env:"TIMEOUT_STEP" envDefault:"120s"`      // per provider call
	ShutdownTimeout time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// ProviderConfig describes one selectable LLM provider
type ProviderConfig struct {
	Name      string `yaml:"name"`
	Kind      string `yaml:"kind"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env"`
	MaxTokens int    `yaml:"max_tokens,omitempty"`

	// APIKey is resolved from APIKeyEnv at load time
	APIKey string `yaml:"-"`
}

// Provider kinds
const (
	ProviderKindOpenAI    = "openai"
	ProviderKindAnthropic = "anthropic"
	ProviderKindGemini    = "gemini"
	ProviderKindEcho      = "echo"
)

type catalogFile struct {
	Providers []ProviderConfig `yaml:"providers"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	providers, err := loadProviders(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("failed to load provider catalog: %w", err)
	}
	cfg.Providers = providers

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// DefaultProviders returns the built-in provider catalog
func DefaultProviders(llm LLMConfig) []ProviderConfig {
	return []ProviderConfig{
		{Name: "ChatGPT", Kind: ProviderKindOpenAI, Model: "gpt-4", BaseURL: llm.OpenAIAPIURL, APIKeyEnv: "OPENAI_API_KEY"},
		{Name: "Claude", Kind: ProviderKindAnthropic, Model: "claude-3-opus-20240229", APIKeyEnv: "ANTHROPIC_API_KEY"},
		{Name: "Gemini", Kind: ProviderKindGemini, Model: "gemini-2.0-flash", APIKeyEnv: "GOOGLE_GEMINI_API_KEY"},
		{Name: "Grok", Kind: ProviderKindOpenAI, Model: "grok-1", BaseURL: llm.GrokAPIURL, APIKeyEnv: "GROK_API_KEY"},
	}
}

// loadProviders reads the catalog file when set, falls back to the built-in
// catalog and resolves API keys from the environment
func loadProviders(llm LLMConfig) ([]ProviderConfig, error) {
	providers := DefaultProviders(llm)

	if llm.ProvidersFile != "" {
		data, err := os.ReadFile(llm.ProvidersFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", llm.ProvidersFile, err)
		}
		var file catalogFile
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", llm.ProvidersFile, err)
		}
		providers = file.Providers
	}

	for i := range providers {
		if providers[i].MaxTokens == 0 {
			providers[i].MaxTokens = llm.DefaultMaxTokens
		}
		if providers[i].APIKeyEnv != "" {
			providers[i].APIKey = os.Getenv(providers[i].APIKeyEnv)
		}
	}
	return providers, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}

	// Validate provider catalog
	if len(c.Providers) == 0 {
		return fmt.Errorf("provider catalog is empty")
	}
	seen := make(map[string]bool, len(c.Providers))
	for _, p := range c.Providers {
		if p.Name == "" {
			return fmt.Errorf("provider name is required")
		}
		key := strings.ToLower(p.Name)
		if seen[key] {
			return fmt.Errorf("duplicate provider: %s", p.Name)
		}
		seen[key] = true

		switch p.Kind {
		case ProviderKindOpenAI:
			if p.BaseURL == "" {
				return fmt.Errorf("provider %s: base_url is required", p.Name)
			}
		case ProviderKindAnthropic, ProviderKindGemini, ProviderKindEcho:
		default:
			return fmt.Errorf("provider %s: unsupported kind %q", p.Name, p.Kind)
		}
	}

	// Validate worker config
	if c.Workers.PoolSize < 1 {
		return fmt.Errorf("worker pool size must be at least 1")
	}
	if c.Workers.MaxRetries < 0 {
		return fmt.Errorf("worker max retries must not be negative")
	}

	// Validate session config
	if c.Sessions.SweepInterval <= 0 {
		return fmt.Errorf("session sweep interval must be positive")
	}
	if c.Sessions.Retention < 0 || c.Sessions.AbandonGrace < 0 {
		return fmt.Errorf("session retention and abandon grace must not be negative")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
