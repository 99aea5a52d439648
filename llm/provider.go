package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rfpcruncher/engine/config"
)

// Provider generates text completions.
type Provider interface {
	GenerateCompletion(ctx context.Context, prompt string) (string, error)
	GetProviderType() string
}

// ErrEmptyOutput is returned when the model produced no text at all.
var ErrEmptyOutput = errors.New("llm: model returned empty output")

// GenerationError wraps a backend failure during completion.
type GenerationError struct {
	Provider string
	Err      error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("llm: %s generation failed: %v", e.Provider, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NewProvider creates an LLM provider from configuration.
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return NewOpenAIProvider(cfg), nil
	case "ollama":
		return NewOllamaProvider(cfg), nil
	case "cli":
		return NewCLIProvider(cfg), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
}
