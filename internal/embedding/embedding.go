package embedding

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"document-themes/internal/config"
)

// Embedder maps text to a fixed-dimension vector. Deterministic for
// identical input; retrieval relies on that across ingest and query.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewEmbedder builds an embedder for the configured provider with a
// per-call timeout.
func NewEmbedder(cfg *config.LLMConfig) (Embedder, error) {
	var impl *embeddings.EmbedderImpl
	var err error
	switch cfg.Provider {
	case "ollama":
		impl, err = newOllamaEmbedder(cfg)
	case "openai", "":
		impl, err = newOpenAIEmbedder(cfg)
	default:
		return nil, fmt.Errorf("unknown embedding provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return &timeoutEmbedder{
		inner:   impl,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

func newOpenAIEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(strings.TrimPrefix(cfg.Key, "Bearer ")),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding LLM: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

func newOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding LLM: %w", err)
	}
	return embeddings.NewEmbedder(llm)
}

// timeoutEmbedder bounds every provider call so one hung request cannot
// block an upload or query indefinitely.
type timeoutEmbedder struct {
	inner   *embeddings.EmbedderImpl
	timeout time.Duration
}

func (e *timeoutEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	vec, err := e.inner.EmbedQuery(ctx, text)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("embedding request timed out after %s: %w", e.timeout, err)
		}
		return nil, err
	}
	return vec, nil
}
