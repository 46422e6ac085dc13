package llm

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/aescanero/debatehub/pkg/domain"
	"github.com/aescanero/debatehub/pkg/ports"
	"go.uber.org/zap"
)

// Provider kinds
const (
	KindAnthropic = "anthropic"
	KindGemini    = "gemini"
	KindOpenAI    = "openai"
	KindEcho      = "echo"
)

// Config holds LLM client configuration
type Config struct {
	Name      string
	Kind      string
	Model     string
	BaseURL   string
	APIKey    string
	MaxTokens int

	// Offline replaces the provider with an echo client
	Offline      bool
	OfflineDelay time.Duration

	HTTPClient *http.Client
	Logger     *zap.Logger
}

// NewClient creates a new LLM client based on provider kind. A provider
// without an API key yields a client that fails every call with a 401.
func NewClient(ctx context.Context, cfg *Config) (ports.LLMClient, error) {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Offline || cfg.Kind == KindEcho {
		return NewEchoClient(cfg.Name, cfg.OfflineDelay), nil
	}
	if cfg.APIKey == "" {
		cfg.Logger.Warn("provider has no API key, calls will be rejected",
			zap.String("provider", cfg.Name))
		return &unconfiguredClient{name: cfg.Name}, nil
	}

	switch cfg.Kind {
	case KindAnthropic:
		return NewAnthropicClient(cfg), nil
	case KindGemini:
		return NewGeminiClient(ctx, cfg)
	case KindOpenAI:
		return NewOpenAIClient(cfg, cfg.HTTPClient), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider kind: %s", cfg.Kind)
	}
}

// Registry is the provider catalog keyed by case-insensitive name
type Registry struct {
	clients map[string]ports.LLMClient
}

// NewRegistry creates a registry holding clients
func NewRegistry(clients ...ports.LLMClient) *Registry {
	r := &Registry{clients: make(map[string]ports.LLMClient, len(clients))}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

// Register adds or replaces a client under its name
func (r *Registry) Register(client ports.LLMClient) {
	r.clients[strings.ToLower(client.Name())] = client
}

// Resolve returns the canonical catalog name for name
func (r *Registry) Resolve(name string) (string, error) {
	client, err := r.Client(name)
	if err != nil {
		return "", err
	}
	return client.Name(), nil
}

// Client returns the client registered under name
func (r *Registry) Client(name string) (ports.LLMClient, error) {
	client, ok := r.clients[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
	}
	return client, nil
}

// Names returns the canonical provider names in sorted order
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.clients))
	for _, c := range r.clients {
		names = append(names, c.Name())
	}
	sort.Strings(names)
	return names
}
