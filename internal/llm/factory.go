package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/agenthands/wordmap/internal/config"
)

func NewEmbedder(ctx context.Context, cfg config.LLMConfig) (EmbedderClient, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		return NewOpenAIClient(cfg.APIKey, cfg.EmbeddingModel, cfg.BaseURL), nil

	case "gemini":
		return NewGeminiClient(ctx, cfg.APIKey, cfg.EmbeddingModel)

	case "ollama":
		// Ollama serves an OpenAI-compatible API under /v1.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama, required by the client
		}
		model := cfg.EmbeddingModel
		if model == "" {
			model = "nomic-embed-text"
		}
		slog.Info("using ollama via OpenAI-compatible API", "base_url", baseURL, "model", model)
		return NewOpenAIClient(apiKey, model, baseURL), nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
