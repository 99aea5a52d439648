package config

// Config represents the main configuration structure for the answering engine
type Config struct {
	Server    ServerConfig    `json:"server" yaml:"server"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Matching  MatchingConfig  `json:"matching" yaml:"matching"`
	RAG       RAGConfig       `json:"rag" yaml:"rag"`
	LLM       LLMConfig       `json:"llm" yaml:"llm"`
	Embedding EmbeddingConfig `json:"embedding" yaml:"embedding"`
	VectorDB  VectorDBConfig  `json:"vectordb" yaml:"vectordb"`
	Verify    VerifyConfig    `json:"verify" yaml:"verify"`
	Batch     BatchConfig     `json:"batch" yaml:"batch"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr            string `json:"addr,omitempty" yaml:"addr,omitempty"`
	ShutdownSeconds int    `json:"shutdown_seconds,omitempty" yaml:"shutdown_seconds,omitempty"`
}

// StoreConfig defines the curated QA workbook location
type StoreConfig struct {
	Path  string `json:"path" yaml:"path"`
	Sheet string `json:"sheet,omitempty" yaml:"sheet,omitempty"`
}

// MatchingConfig contains thresholds for the question matching cascade
type MatchingConfig struct {
	EmbeddingThreshold float64 `json:"embedding_threshold,omitempty" yaml:"embedding_threshold,omitempty"`
	FuzzyThreshold     int     `json:"fuzzy_threshold,omitempty" yaml:"fuzzy_threshold,omitempty"`
	CacheSize          int     `json:"cache_size,omitempty" yaml:"cache_size,omitempty"`
	CacheTTLSeconds    int     `json:"cache_ttl_seconds,omitempty" yaml:"cache_ttl_seconds,omitempty"`
}

// RAGConfig contains configuration for documentation retrieval
type RAGConfig struct {
	TopK     int            `json:"top_k,omitempty" yaml:"top_k,omitempty"`
	Splitter SplitterConfig `json:"splitter" yaml:"splitter"`
}

// SplitterConfig defines document splitter configuration
type SplitterConfig struct {
	ChunkSize int `json:"chunk_size,omitempty" yaml:"chunk_size,omitempty"`
}

// LLMConfig defines configuration for the generation model
type LLMConfig struct {
	Provider       string  `json:"provider" yaml:"provider"` // Available options: openai, ollama, cli
	APIKey         string  `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL        string  `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model          string  `json:"model" yaml:"model"`
	Temperature    float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens      int     `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TimeoutSeconds int     `json:"timeout_seconds,omitempty" yaml:"timeout_seconds,omitempty"`
}

// EmbeddingConfig defines configuration for embedding models
type EmbeddingConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: openai, ollama
	APIKey     string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	BaseURL    string `json:"base_url,omitempty" yaml:"base_url,omitempty"`
	Model      string `json:"model,omitempty" yaml:"model,omitempty"`
	Dimensions int    `json:"dimensions,omitempty" yaml:"dimensions,omitempty"`
}

// VectorDBConfig defines configuration for vector databases
type VectorDBConfig struct {
	Provider   string `json:"provider" yaml:"provider"` // Available options: milvus, qdrant, memory
	Host       string `json:"host,omitempty" yaml:"host,omitempty"`
	Port       int    `json:"port,omitempty" yaml:"port,omitempty"`
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`
	Username   string `json:"username,omitempty" yaml:"username,omitempty"`
	Password   string `json:"password,omitempty" yaml:"password,omitempty"`
}

// VerifyConfig controls the answer verification pass
type VerifyConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
}

// BatchConfig controls batch query processing
type BatchConfig struct {
	Workers int `json:"workers,omitempty" yaml:"workers,omitempty"`
}

// Default values applied by ApplyDefaults. Thresholds and fan-out mirror the
// curated values the product team settled on.
const (
	DefaultEmbeddingThreshold = 0.70
	DefaultFuzzyThreshold     = 90
	DefaultTopK               = 5
	DefaultChunkSize          = 300
	DefaultLLMTimeoutSeconds  = 120
	DefaultBatchWorkers       = 4
	DefaultServerAddr         = ":8000"
	DefaultStoreSheet         = "Sheet1"
)

// ApplyDefaults fills unset fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultServerAddr
	}
	if c.Server.ShutdownSeconds <= 0 {
		c.Server.ShutdownSeconds = 10
	}
	if c.Store.Sheet == "" {
		c.Store.Sheet = DefaultStoreSheet
	}
	if c.Matching.EmbeddingThreshold == 0 {
		c.Matching.EmbeddingThreshold = DefaultEmbeddingThreshold
	}
	if c.Matching.FuzzyThreshold == 0 {
		c.Matching.FuzzyThreshold = DefaultFuzzyThreshold
	}
	if c.Matching.CacheSize <= 0 {
		c.Matching.CacheSize = 4096
	}
	if c.RAG.TopK <= 0 {
		c.RAG.TopK = DefaultTopK
	}
	if c.RAG.Splitter.ChunkSize <= 0 {
		c.RAG.Splitter.ChunkSize = DefaultChunkSize
	}
	if c.LLM.TimeoutSeconds <= 0 {
		c.LLM.TimeoutSeconds = DefaultLLMTimeoutSeconds
	}
	if c.Batch.Workers <= 0 {
		c.Batch.Workers = DefaultBatchWorkers
	}
}
