package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/agenthands/cardmatch/internal/config"
)

// Clients bundles what a provider can offer. Generator and Vision are nil
// for the local provider; Embedder is never nil.
type Clients struct {
	Generator LLMClient
	Vision    VisionClient
	Embedder  EmbedderClient

	closer func() error
}

// Close releases the provider connection, if the provider holds one.
func (c *Clients) Close() error {
	if c.closer == nil {
		return nil
	}
	return c.closer()
}

func NewClients(ctx context.Context, cfg config.LLMConfig) (*Clients, error) {
	provider := strings.ToLower(cfg.Provider)

	switch provider {
	case "openai":
		c := NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.EmbeddingModel, cfg.BaseURL)
		return &Clients{Generator: c, Vision: c, Embedder: c}, nil

	case "gemini":
		c, err := NewGeminiClient(ctx, cfg.APIKey, cfg.Model, cfg.EmbeddingModel)
		if err != nil {
			return nil, err
		}
		return &Clients{Generator: c, Vision: c, Embedder: c, closer: c.Close}, nil

	case "claude":
		// Anthropic has no embeddings endpoint; matching falls back to the
		// local hashing embedder.
		c := NewClaudeClient(cfg.APIKey, cfg.Model, cfg.BaseURL)
		return &Clients{Generator: c, Vision: c, Embedder: NewHashingEmbedder(cfg.Dimensions)}, nil

	case "ollama":
		// Ollama is reached through its OpenAI-compatible API.
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/v1") {
			baseURL = fmt.Sprintf("%s/v1", strings.TrimRight(baseURL, "/"))
		}
		apiKey := cfg.APIKey
		if apiKey == "" {
			apiKey = "ollama" // ignored by Ollama, required by the client
		}
		c := NewOpenAIClient(apiKey, cfg.Model, cfg.EmbeddingModel, baseURL)
		return &Clients{Generator: c, Vision: c, Embedder: c}, nil

	case "local":
		return &Clients{Embedder: NewHashingEmbedder(cfg.Dimensions)}, nil

	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", provider)
	}
}
