package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-themes/internal/config"
)

// Client is the language-model collaborator. A failed call is
// recoverable and localized to one invocation; callers decide whether
// to skip or substitute.
type Client interface {
	Generate(ctx context.Context, prompt string, temperature float64) (string, error)
}

type langchainClient struct {
	model   llms.Model
	timeout time.Duration
}

func NewClient(cfg *config.LLMConfig) (Client, error) {
	var model llms.Model
	var err error
	switch cfg.Provider {
	case "ollama":
		model, err = ollama.New(
			ollama.WithServerURL(cfg.BaseURL),
			ollama.WithModel(cfg.Model),
		)
	case "openai", "":
		model, err = openai.New(
			openai.WithBaseURL(cfg.BaseURL),
			openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
			openai.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}

	return &langchainClient{
		model:   model,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

func (c *langchainClient) Generate(ctx context.Context, prompt string, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	out, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, llms.WithTemperature(temperature))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("model request timed out after %s: %w", c.timeout, err)
		}
		return "", err
	}
	return out, nil
}
