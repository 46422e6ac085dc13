package orchestrator

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aescanero/debatehub/pkg/domain"
)

type catalogResolver map[string]string

func (c catalogResolver) Resolve(name string) (string, error) {
	if canonical, ok := c[strings.ToLower(name)]; ok {
		return canonical, nil
	}
	return "", fmt.Errorf("%w: %s", domain.ErrUnknownProvider, name)
}

var testCatalog = catalogResolver{
	"chatgpt": "ChatGPT",
	"claude":  "Claude",
	"gemini":  "Gemini",
	"grok":    "Grok",
}

func TestValidator_DebateDefaults(t *testing.T) {
	v := NewValidator(testCatalog)

	req, err := v.ValidateDebate(domain.DebateRequest{Topic: "  Cats vs dogs  "})
	if err != nil {
		t.Fatalf("ValidateDebate failed: %v", err)
	}

	if req.Topic != "Cats vs dogs" {
		t.Errorf("expected trimmed topic, got %q", req.Topic)
	}
	if req.Rounds != DefaultRounds {
		t.Errorf("expected %d rounds, got %d", DefaultRounds, req.Rounds)
	}
	if req.ProLLM != "ChatGPT" || req.ConLLM != "Claude" || req.JudgeLLM != "Gemini" {
		t.Errorf("unexpected default providers %+v", req)
	}
	if req.RoleA != DefaultRoleA || req.RoleB != DefaultRoleB {
		t.Errorf("unexpected default roles %s/%s", req.RoleA, req.RoleB)
	}
}

func TestValidator_ProviderNamesAreCaseInsensitive(t *testing.T) {
	v := NewValidator(testCatalog)

	req, err := v.ValidateDebate(domain.DebateRequest{Topic: "x", ProLLM: "grok", ConLLM: "CLAUDE"})
	if err != nil {
		t.Fatalf("ValidateDebate failed: %v", err)
	}
	if req.ProLLM != "Grok" || req.ConLLM != "Claude" {
		t.Errorf("expected canonical names, got %s/%s", req.ProLLM, req.ConLLM)
	}
}

func TestValidator_UnknownProvider(t *testing.T) {
	v := NewValidator(testCatalog)

	_, err := v.ValidateDebate(domain.DebateRequest{Topic: "x", JudgeLLM: "Eliza"})
	if !errors.Is(err, domain.ErrInvalidRequest) || !errors.Is(err, domain.ErrUnknownProvider) {
		t.Errorf("expected invalid request wrapping unknown provider, got %v", err)
	}
}

func TestValidator_Business(t *testing.T) {
	v := NewValidator(testCatalog)

	tests := []struct {
		name    string
		req     domain.BusinessRequest
		wantErr bool
		ideas   int
	}{
		{"defaults", domain.BusinessRequest{Topic: "farming"}, false, DefaultNumIdeas},
		{"max ideas", domain.BusinessRequest{Topic: "farming", NumIdeas: MaxNumIdeas}, false, MaxNumIdeas},
		{"too many ideas", domain.BusinessRequest{Topic: "farming", NumIdeas: MaxNumIdeas + 1}, true, 0},
		{"missing topic", domain.BusinessRequest{NumIdeas: 2}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := v.ValidateBusiness(tt.req)
			if tt.wantErr {
				if !errors.Is(err, domain.ErrInvalidRequest) {
					t.Errorf("expected ErrInvalidRequest, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if req.NumIdeas != tt.ideas {
				t.Errorf("expected %d ideas, got %d", tt.ideas, req.NumIdeas)
			}
		})
	}
}
