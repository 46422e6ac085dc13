package llm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// EchoClient answers every prompt with a deterministic line derived from the
// prompt. It stands in for every provider in offline mode.
type EchoClient struct {
	name  string
	delay time.Duration
}

// NewEchoClient creates a new echo client that waits delay before answering
func NewEchoClient(name string, delay time.Duration) *EchoClient {
	return &EchoClient{name: name, delay: delay}
}

// Name returns the catalog name of the provider
func (c *EchoClient) Name() string {
	return c.name
}

// Generate returns the first non-empty prompt line tagged with the provider name
func (c *EchoClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.delay > 0 {
		timer := time.NewTimer(c.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}

	line := ""
	for _, l := range strings.Split(prompt, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			line = l
			break
		}
	}
	return fmt.Sprintf("[%s] %s", c.name, line), nil
}

// unconfiguredClient fails every call because the provider has no API key
type unconfiguredClient struct {
	name string
}

func (c *unconfiguredClient) Name() string {
	return c.name
}

func (c *unconfiguredClient) Generate(ctx context.Context, prompt string) (string, error) {
	return "", &APIError{Provider: c.name, StatusCode: 401, Message: "API key not configured"}
}
