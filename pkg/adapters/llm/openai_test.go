package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"
)

func TestOpenAIClient_Generate(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer secret" {
			t.Errorf("unexpected authorization %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"cats win"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(&Config{
		Name: "ChatGPT", Model: "gpt-4", BaseURL: srv.URL + "/", APIKey: "secret", MaxTokens: 64, Logger: zap.NewNop(),
	}, srv.Client())

	out, err := c.Generate(context.Background(), "Argue in favor of: cats")
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if out != "cats win" {
		t.Errorf("unexpected output %q", out)
	}
	if got.Model != "gpt-4" || got.MaxTokens != 64 || len(got.Messages) != 1 || got.Messages[0].Role != "user" {
		t.Errorf("unexpected request %+v", got)
	}
}

func TestOpenAIClient_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := NewOpenAIClient(&Config{Name: "Grok", BaseURL: srv.URL, APIKey: "k", Logger: zap.NewNop()}, nil)

	_, err := c.Generate(context.Background(), "hi")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 APIError, got %v", err)
	}
	if apiErr.Message != "slow down" {
		t.Errorf("unexpected message %q", apiErr.Message)
	}
	if !IsRetryable(err) {
		t.Error("429 must be retryable")
	}
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewOpenAIClient(&Config{Name: "ChatGPT", BaseURL: srv.URL, APIKey: "k", Logger: zap.NewNop()}, nil)
	if _, err := c.Generate(context.Background(), "hi"); err == nil {
		t.Fatal("expected error for empty choices")
	}
}
