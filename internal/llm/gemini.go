package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GeminiClient implements Client on the google genai SDK.
type GeminiClient struct {
	client      *genai.Client
	model       string
	maxTokens   int
	temperature float64
}

// NewGeminiClient creates a Gemini-backed client.
func NewGeminiClient(ctx context.Context, apiKey, model string, maxTokens int, temperature float64) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	if maxTokens == 0 {
		maxTokens = 4096
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
	}, nil
}

// Name identifies the provider.
func (c *GeminiClient) Name() string { return "gemini" }

// Complete sends a system and user prompt and returns the completion.
func (c *GeminiClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(c.maxTokens),
		Temperature:     genai.Ptr(float32(c.temperature)),
	}
	if systemPrompt != "" {
		cfg.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(userPrompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}
	return strings.TrimSpace(text), nil
}
