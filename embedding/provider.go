package embedding

import (
	"context"
	"fmt"
	"strings"

	"github.com/rfpcruncher/engine/config"
)

// Provider generates vector embeddings for text.
type Provider interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	GetProviderType() string
}

// NewProvider creates an embedding provider from configuration.
func NewProvider(cfg config.EmbeddingConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
