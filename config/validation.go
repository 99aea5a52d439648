package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("config validation error [%s]: %s", e.Field, e.Message)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	if len(errs) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("found %d configuration error(s):\n", len(errs)))
	for i, err := range errs {
		b.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Message))
	}
	return b.String()
}

// Validate validates the complete configuration
func (c *Config) Validate() error {
	var errs ValidationErrors

	if err := c.validateStore(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateMatching(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateLLM(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateEmbedding(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateVectorDB(); err != nil {
		errs = append(errs, err...)
	}
	if err := c.validateRAG(); err != nil {
		errs = append(errs, err...)
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (c *Config) validateStore() ValidationErrors {
	var errs ValidationErrors

	if c.Store.Path == "" {
		errs = append(errs, ValidationError{
			Field:   "store.path",
			Message: "qa store path is required",
		})
	}

	return errs
}

func (c *Config) validateMatching() ValidationErrors {
	var errs ValidationErrors

	if c.Matching.EmbeddingThreshold < 0 || c.Matching.EmbeddingThreshold > 1 {
		errs = append(errs, ValidationError{
			Field:   "matching.embedding_threshold",
			Message: fmt.Sprintf("matching.embedding_threshold must be in [0, 1], got %.2f", c.Matching.EmbeddingThreshold),
		})
	}

	if c.Matching.FuzzyThreshold < 0 || c.Matching.FuzzyThreshold > 100 {
		errs = append(errs, ValidationError{
			Field:   "matching.fuzzy_threshold",
			Message: fmt.Sprintf("matching.fuzzy_threshold must be in [0, 100], got %d", c.Matching.FuzzyThreshold),
		})
	}

	return errs
}

func (c *Config) validateLLM() ValidationErrors {
	var errs ValidationErrors

	if c.LLM.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: "llm provider is required",
		})
	}

	if c.LLM.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "llm.model",
			Message: "llm model is required",
		})
	}

	switch strings.ToLower(c.LLM.Provider) {
	case "", "openai", "ollama", "cli":
	default:
		errs = append(errs, ValidationError{
			Field:   "llm.provider",
			Message: fmt.Sprintf("unknown llm provider %q (expected openai, ollama or cli)", c.LLM.Provider),
		})
	}

	return errs
}

// validateEmbedding validates embedding configuration
func (c *Config) validateEmbedding() ValidationErrors {
	var errs ValidationErrors

	if c.Embedding.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.provider",
			Message: "embedding provider is required",
		})
	}

	if c.Embedding.Model == "" {
		errs = append(errs, ValidationError{
			Field:   "embedding.model",
			Message: "embedding model is required",
		})
	}

	if c.Embedding.Dimensions <= 0 {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions must be positive, got %d", c.Embedding.Dimensions),
		})
	}

	// Validate dimensions are reasonable (typical range: 128-4096)
	if c.Embedding.Dimensions > 0 && (c.Embedding.Dimensions < 128 || c.Embedding.Dimensions > 4096) {
		errs = append(errs, ValidationError{
			Field:   "embedding.dimensions",
			Message: fmt.Sprintf("embedding dimensions %d is outside typical range [128, 4096]", c.Embedding.Dimensions),
		})
	}

	return errs
}

// validateVectorDB validates vector database configuration
func (c *Config) validateVectorDB() ValidationErrors {
	var errs ValidationErrors

	if c.VectorDB.Provider == "" {
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: "vectordb provider is required",
		})
	}

	// Provider-specific validations
	switch strings.ToLower(c.VectorDB.Provider) {
	case "milvus", "qdrant":
		if c.VectorDB.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.host",
				Message: fmt.Sprintf("vectordb host is required for %s provider", c.VectorDB.Provider),
			})
		}
		if c.VectorDB.Collection == "" {
			errs = append(errs, ValidationError{
				Field:   "vectordb.collection",
				Message: fmt.Sprintf("collection name is required for %s provider", c.VectorDB.Provider),
			})
		}
	case "memory", "":
	default:
		errs = append(errs, ValidationError{
			Field:   "vectordb.provider",
			Message: fmt.Sprintf("unknown vectordb provider %q (expected milvus, qdrant or memory)", c.VectorDB.Provider),
		})
	}

	return errs
}

// validateRAG validates retrieval configuration
func (c *Config) validateRAG() ValidationErrors {
	var errs ValidationErrors

	if c.RAG.TopK <= 0 {
		errs = append(errs, ValidationError{
			Field:   "rag.top_k",
			Message: fmt.Sprintf("rag.top_k must be positive, got %d", c.RAG.TopK),
		})
	}

	if c.RAG.TopK > 100 {
		errs = append(errs, ValidationError{
			Field:   "rag.top_k",
			Message: fmt.Sprintf("rag.top_k %d is too large (max recommended: 100)", c.RAG.TopK),
		})
	}

	if c.RAG.Splitter.ChunkSize <= 0 {
		errs = append(errs, ValidationError{
			Field:   "rag.splitter.chunk_size",
			Message: fmt.Sprintf("rag.splitter.chunk_size must be positive, got %d", c.RAG.Splitter.ChunkSize),
		})
	}

	return errs
}
