package llm

import (
	"context"
	"fmt"

	"fraudlens/internal/config"
)

// New builds the Client for the configured provider, wrapped with the
// configured rate limit. An empty provider or missing credential yields the
// offline client rather than an error; investigation still works without a
// model.
func New(ctx context.Context, cfg *config.Config) (Client, error) {
	llmCfg := cfg.LLM

	var client Client
	switch llmCfg.Provider {
	case "", "offline":
		return Offline{}, nil

	case "openai", "zai":
		if llmCfg.APIKey == "" {
			return Offline{}, nil
		}
		client = NewOpenAIClient(OpenAIConfig{
			APIKey:      llmCfg.APIKey,
			BaseURL:     llmCfg.BaseURL,
			Model:       llmCfg.Model,
			MaxTokens:   llmCfg.MaxTokens,
			Temperature: llmCfg.Temperature,
			Timeout:     cfg.GetLLMTimeout(),
		})

	case "gemini":
		if llmCfg.APIKey == "" {
			return Offline{}, nil
		}
		var err error
		client, err = NewGeminiClient(ctx, llmCfg.APIKey, llmCfg.Model, llmCfg.MaxTokens, llmCfg.Temperature)
		if err != nil {
			return nil, err
		}

	default:
		return nil, fmt.Errorf("unknown llm provider %q", llmCfg.Provider)
	}

	return NewLimiter(client, llmCfg.RequestsPerMinute), nil
}
