// Package llm talks to hosted language models: analysis of source material
// and generation of assignment text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"scribe/config"
)

var (
	// ErrNoAPIKey is returned when assistant is configured without API key.
	ErrNoAPIKey = errors.New("assistant API key is not configured")
	// ErrEmptyResponse is returned when model answered with no text.
	ErrEmptyResponse = errors.New("empty response from language model")
)

// Role of the conversation turn.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single message of the conversation.
type Turn struct {
	Role    Role
	Content string
}

// Invoker sends conversation to the model and returns text of the answer.
type Invoker interface {
	Invoke(ctx context.Context, turns []Turn) (string, error)
}

// NewInvoker creates client for configured provider.
func NewInvoker(cfg *config.AssistantConfig, log *zap.Logger) (Invoker, error) {
	if len(cfg.APIKey) == 0 {
		return nil, ErrNoAPIKey
	}

	switch cfg.Provider {
	case config.ProviderOpenrouter:
		return newOpenRouter(cfg, log.Named("openrouter")), nil
	case config.ProviderAnthropic:
		return newAnthropic(cfg, log.Named("anthropic")), nil
	}
	return nil, fmt.Errorf("unsupported assistant provider %q", cfg.Provider)
}

// withTimeout limits single model call when timeout is configured.
func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
