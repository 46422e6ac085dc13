package llm

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiClient implements LLMClient using the Gemini API
type GeminiClient struct {
	name      string
	client    *genai.Client
	model     string
	maxTokens int32
	logger    *zap.Logger
}

// NewGeminiClient creates a new Gemini client
func NewGeminiClient(ctx context.Context, cfg *Config) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiClient{
		name:      cfg.Name,
		client:    client,
		model:     cfg.Model,
		maxTokens: int32(cfg.MaxTokens),
		logger:    cfg.Logger,
	}, nil
}

// Name returns the catalog name of the provider
func (c *GeminiClient) Name() string {
	return c.name
}

// Generate sends prompt as a single user turn
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), &genai.GenerateContentConfig{
		MaxOutputTokens: c.maxTokens,
	})
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{Provider: c.name, StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := resp.Text()
	c.logger.Debug("gemini response received",
		zap.String("provider", c.name),
		zap.String("model", c.model),
		zap.Int("length", len(text)))

	return text, nil
}
