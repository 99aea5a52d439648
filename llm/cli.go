package llm

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rfpcruncher/engine/config"
)

// CLIProvider runs the model through the local `ollama run <model>` binary,
// writing the prompt to stdin and reading the completion from stdout.
// The caller's context deadline kills the process on timeout.
type CLIProvider struct {
	binary string
	model  string
}

// NewCLIProvider creates a provider backed by the ollama CLI.
func NewCLIProvider(cfg config.LLMConfig) *CLIProvider {
	return &CLIProvider{
		binary: "ollama",
		model:  cfg.Model,
	}
}

func (p *CLIProvider) GetProviderType() string { return "cli" }

func (p *CLIProvider) GenerateCompletion(ctx context.Context, prompt string) (string, error) {
	cmd := exec.CommandContext(ctx, p.binary, "run", p.model)
	cmd.Stdin = strings.NewReader(prompt)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", &GenerationError{Provider: "cli", Err: ctx.Err()}
		}
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", &GenerationError{Provider: "cli", Err: &cliError{msg: msg, cause: err}}
		}
		return "", &GenerationError{Provider: "cli", Err: err}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return "", ErrEmptyOutput
	}
	return out, nil
}

type cliError struct {
	msg   string
	cause error
}

func (e *cliError) Error() string { return e.msg }
func (e *cliError) Unwrap() error { return e.cause }

// StripEcho removes a leading prompt echo from model output. Some backends
// repeat the prompt before the completion; everything up to and including
// the last occurrence of delimiter is dropped.
func StripEcho(output, delimiter string) string {
	if delimiter == "" {
		return strings.TrimSpace(output)
	}
	if i := strings.LastIndex(output, delimiter); i >= 0 {
		return strings.TrimSpace(output[i+len(delimiter):])
	}
	return strings.TrimSpace(output)
}
