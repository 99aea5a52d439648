package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rfpcruncher/engine/common/httpx"
	"github.com/rfpcruncher/engine/config"
)

const defaultOllamaBaseURL = "http://localhost:11434/api"

// OllamaProvider generates embeddings via a local Ollama server.
type OllamaProvider struct {
	baseURL    string
	model      string
	httpClient *httpx.Client
}

type ollamaEmbedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// NewOllamaProvider creates an Ollama embedding provider.
func NewOllamaProvider(cfg config.EmbeddingConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   cfg.Model,
		httpClient: httpx.New(httpx.Options{
			Timeout: 2 * time.Minute,
			Retry:   1,
		}),
	}
}

func (p *OllamaProvider) GetProviderType() string { return "ollama" }

func (p *OllamaProvider) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	reqBody, err := json.Marshal(ollamaEmbedRequest{Model: p.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/embeddings", bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ollama embedding: send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ollama embedding: API error (status %d): %s", resp.StatusCode, body)
	}

	var embedResp ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&embedResp); err != nil {
		return nil, fmt.Errorf("ollama embedding: parse response: %w", err)
	}
	if len(embedResp.Embedding) == 0 {
		return nil, fmt.Errorf("ollama embedding: empty embedding for model %s", p.model)
	}
	return embedResp.Embedding, nil
}
