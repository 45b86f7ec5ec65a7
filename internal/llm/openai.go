package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

const DefaultOpenAIEmbeddingModel = string(openai.SmallEmbedding3)

type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey string, model string, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIEmbeddingModel
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIClient{
		client: client,
		model:  model,
	}
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.model),
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("openai embedding failed: %w", err)
	}
	if len(resp.Data) > 0 {
		return resp.Data[0].Embedding, nil
	}
	return nil, fmt.Errorf("no embedding data")
}
