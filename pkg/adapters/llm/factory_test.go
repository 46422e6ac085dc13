package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
)

func TestNewClient_Offline(t *testing.T) {
	client, err := NewClient(context.Background(), &Config{Name: "Claude", Kind: KindAnthropic, Offline: true})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	if _, ok := client.(*EchoClient); !ok {
		t.Fatalf("expected echo client in offline mode, got %T", client)
	}

	out, err := client.Generate(context.Background(), "\n  Argue against: tea\nmore")
	if err != nil {
		t.Fatal(err)
	}
	if out != "[Claude] Argue against: tea" {
		t.Errorf("unexpected echo output %q", out)
	}
}

func TestNewClient_MissingKeyIsRejected(t *testing.T) {
	client, err := NewClient(context.Background(), &Config{Name: "Gemini", Kind: KindGemini})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.Generate(context.Background(), "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 APIError, got %v", err)
	}
	if Classify(err) != domain.FailureProviderRejected {
		t.Errorf("expected provider_rejected, got %s", Classify(err))
	}
}

func TestNewClient_UnknownKind(t *testing.T) {
	if _, err := NewClient(context.Background(), &Config{Name: "X", Kind: "cohere", APIKey: "k"}); err == nil {
		t.Fatal("expected error for unsupported kind")
	}
}

func TestRegistry_Resolve(t *testing.T) {
	r := NewRegistry(NewEchoClient("ChatGPT", 0), NewEchoClient("Grok", 0))

	name, err := r.Resolve("  grok ")
	if err != nil || name != "Grok" {
		t.Errorf("expected Grok, got %q (%v)", name, err)
	}
	if _, err := r.Resolve("Eliza"); !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}
	if got := strings.Join(r.Names(), ","); got != "ChatGPT,Grok" {
		t.Errorf("unexpected names %s", got)
	}
}
