package vectordb

import (
	"context"
	"fmt"
	"strings"

	"github.com/rfpcruncher/engine/config"
	"github.com/rfpcruncher/engine/schema"
)

// VectorStoreProvider is the unified interface over vector database backends.
type VectorStoreProvider interface {
	GetProviderType() string
	// Init prepares the backing collection for the given vector dimensionality.
	Init(ctx context.Context, dimensions int) error
	AddDocs(ctx context.Context, docs []schema.Document) error
	SearchDocs(ctx context.Context, vector []float32, opts *schema.SearchOptions) ([]schema.SearchResult, error)
	// DeleteBySource removes every chunk ingested from the named source file.
	DeleteBySource(ctx context.Context, source string) error
	Close() error
}

// NewProvider creates a vector store provider from configuration.
func NewProvider(cfg config.VectorDBConfig) (VectorStoreProvider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "milvus":
		return NewMilvusProvider(cfg)
	case "qdrant":
		return NewQdrantProvider(cfg)
	case "memory":
		return NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported vectordb provider: %s", cfg.Provider)
	}
}
