package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rfpcruncher/engine/common/httpx"
	"github.com/rfpcruncher/engine/config"
)

const defaultOllamaBaseURL = "http://localhost:11434/api"

// OllamaProvider generates completions via a local Ollama server.
type OllamaProvider struct {
	baseURL    string
	model      string
	options    ollamaOptions
	httpClient *httpx.Client
}

type ollamaRequest struct {
	Model   string        `json:"model"`
	Prompt  string        `json:"prompt"`
	Options ollamaOptions `json:"options,omitempty"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	MaxTokens   int     `json:"num_predict,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// NewOllamaProvider creates an Ollama completion provider.
func NewOllamaProvider(cfg config.LLMConfig) *OllamaProvider {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultOllamaBaseURL
	}
	return &OllamaProvider{
		baseURL: baseURL,
		model:   cfg.Model,
		options: ollamaOptions{
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		httpClient: httpx.New(httpx.Options{
			Timeout: 5 * time.Minute,
		}),
	}
}

func (p *OllamaProvider) GetProviderType() string { return "ollama" }

func (p *OllamaProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	reqBody, err := json.Marshal(ollamaRequest{
		Model:   p.model,
		Prompt:  prompt,
		Options: p.options,
	})
	if err != nil {
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/generate", bytes.NewReader(reqBody))
	if err != nil {
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("create request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("send request: %w", err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("API error (status %d): %s", resp.StatusCode, body)}
	}

	// Ollama streams one JSON object per line; concatenate the chunks.
	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		var chunk ollamaResponse
		if err := json.Unmarshal([]byte(line), &chunk); err != nil {
			return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("parse response chunk: %w", err)}
		}
		full.WriteString(chunk.Response)
	}
	if err := scanner.Err(); err != nil {
		return "", &GenerationError{Provider: "ollama", Err: fmt.Errorf("read response stream: %w", err)}
	}

	out := strings.TrimSpace(full.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}
