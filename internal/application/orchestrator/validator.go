package orchestrator

import (
	"fmt"
	"strings"

	"github.com/aescanero/debatehub/pkg/domain"
)

// Request defaults and limits
const (
	DefaultRounds   = 2
	MaxRounds       = 5
	DefaultNumIdeas = 3
	MaxNumIdeas     = 5

	DefaultProLLM   = "ChatGPT"
	DefaultConLLM   = "Claude"
	DefaultJudgeLLM = "Gemini"
	DefaultRoleA    = "pro"
	DefaultRoleB    = "con"
)

// ProviderResolver maps a provider name to its canonical catalog name
type ProviderResolver interface {
	Resolve(name string) (string, error)
}

// Validator validates and normalizes workflow requests
type Validator struct {
	providers ProviderResolver
}

// NewValidator creates a new request validator
func NewValidator(providers ProviderResolver) *Validator {
	return &Validator{providers: providers}
}

// ValidateDebate fills defaults and validates a debate request
func (v *Validator) ValidateDebate(req domain.DebateRequest) (domain.DebateRequest, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, fmt.Errorf("%w: topic is required", domain.ErrInvalidRequest)
	}

	if req.Rounds == 0 {
		req.Rounds = DefaultRounds
	}
	if req.Rounds < 1 || req.Rounds > MaxRounds {
		return req, fmt.Errorf("%w: rounds must be between 1 and %d", domain.ErrInvalidRequest, MaxRounds)
	}

	req.RoleA = orDefault(req.RoleA, DefaultRoleA)
	req.RoleB = orDefault(req.RoleB, DefaultRoleB)
	if strings.EqualFold(req.RoleA, req.RoleB) {
		return req, fmt.Errorf("%w: role names must differ", domain.ErrInvalidRequest)
	}

	var err error
	if req.ProLLM, err = v.resolve(req.ProLLM, DefaultProLLM); err != nil {
		return req, err
	}
	if req.ConLLM, err = v.resolve(req.ConLLM, DefaultConLLM); err != nil {
		return req, err
	}
	if req.JudgeLLM, err = v.resolve(req.JudgeLLM, DefaultJudgeLLM); err != nil {
		return req, err
	}

	return req, nil
}

// ValidateBusiness fills defaults and validates a business idea request
func (v *Validator) ValidateBusiness(req domain.BusinessRequest) (domain.BusinessRequest, error) {
	req.Topic = strings.TrimSpace(req.Topic)
	if req.Topic == "" {
		return req, fmt.Errorf("%w: topic is required", domain.ErrInvalidRequest)
	}

	if req.NumIdeas == 0 {
		req.NumIdeas = DefaultNumIdeas
	}
	if req.NumIdeas < 1 || req.NumIdeas > MaxNumIdeas {
		return req, fmt.Errorf("%w: num_ideas must be between 1 and %d", domain.ErrInvalidRequest, MaxNumIdeas)
	}

	var err error
	if req.GeneratorLLM, err = v.resolve(req.GeneratorLLM, DefaultProLLM); err != nil {
		return req, err
	}
	if req.CriticLLM, err = v.resolve(req.CriticLLM, DefaultConLLM); err != nil {
		return req, err
	}
	if req.RefinerLLM, err = v.resolve(req.RefinerLLM, DefaultProLLM); err != nil {
		return req, err
	}
	if req.JudgeLLM, err = v.resolve(req.JudgeLLM, DefaultJudgeLLM); err != nil {
		return req, err
	}

	return req, nil
}

// resolve validates a provider name against the catalog
func (v *Validator) resolve(name, fallback string) (string, error) {
	name = orDefault(name, fallback)
	if v.providers == nil {
		return name, nil
	}
	canonical, err := v.providers.Resolve(name)
	if err != nil {
		return "", fmt.Errorf("%w: invalid LLM selection: %w", domain.ErrInvalidRequest, err)
	}
	return canonical, nil
}

func orDefault(s, fallback string) string {
	if s = strings.TrimSpace(s); s == "" {
		return fallback
	}
	return s
}
