package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"go.uber.org/zap"

	"scribe/config"
)

const defaultAnthropicMaxTokens = 4096

type anthropicClient struct {
	client      *anthropic.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	log         *zap.Logger
}

func newAnthropic(cfg *config.AssistantConfig, log *zap.Logger) *anthropicClient {
	opts := []option.RequestOption{
		option.WithAPIKey(string(cfg.APIKey)),
		option.WithMaxRetries(0),
	}
	if len(cfg.BaseURL) > 0 {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		// required by messages API
		maxTokens = defaultAnthropicMaxTokens
	}
	return &anthropicClient{
		client:      anthropic.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   maxTokens,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

func (c *anthropicClient) Invoke(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	var (
		system   []anthropic.TextBlockParam
		messages []anthropic.MessageParam
	)
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			system = append(system, anthropic.NewTextBlock(t.Content))
		case RoleAssistant:
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Content)))
		default:
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Content)))
		}
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.F(anthropic.Model(c.model)),
		MaxTokens:   anthropic.F(int64(c.maxTokens)),
		Messages:    anthropic.F(messages),
		Temperature: anthropic.F(c.temperature),
	}
	if len(system) > 0 {
		params.System = anthropic.F(system)
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}
	c.log.Debug("Model responded", zap.String("model", string(msg.Model)), zap.Int64("output_tokens", msg.Usage.OutputTokens), zap.Duration("elapsed", time.Since(start)))

	var b strings.Builder
	for _, block := range msg.Content {
		b.WriteString(block.Text)
	}
	text := strings.TrimSpace(b.String())
	if len(text) == 0 {
		return "", ErrEmptyResponse
	}
	return text, nil
}
