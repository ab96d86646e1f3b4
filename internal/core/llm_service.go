package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"dbadvisor.io/chat-gateway/internal/config"
)

// Completer sends an ordered prompt to a completion provider and returns the
// generated text. An empty string with a nil error means the provider
// produced no content.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// NewCompleter builds the backend selected by cfg.Provider. The returned
// value is safe for concurrent use and is meant to be shared by all requests.
func NewCompleter(ctx context.Context, cfg *config.Config) (Completer, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAICompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	case config.ProviderGemini:
		return NewGeminiCompleter(ctx, cfg.APIKey, cfg.Model, cfg.MaxTokens, cfg.Temperature)
	case config.ProviderAnthropic:
		return NewAnthropicCompleter(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.MaxTokens, cfg.Temperature), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.Provider)
	}
}

// CloseCompleter releases backend resources for completers that hold them.
func CloseCompleter(c Completer) {
	closer, ok := c.(io.Closer)
	if !ok {
		return
	}
	if err := closer.Close(); err != nil {
		slog.Error("error closing completion client", "error", err)
	} else {
		slog.Info("completion client closed")
	}
}
