package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"scribe/config"
	"scribe/misc"
)

const defaultOpenRouterURL = "https://openrouter.ai/api/v1"

// openRouter speaks OpenAI compatible chat completions API.
type openRouter struct {
	client      openai.Client
	model       string
	temperature float64
	maxTokens   int
	timeout     time.Duration
	log         *zap.Logger
}

func newOpenRouter(cfg *config.AssistantConfig, log *zap.Logger) *openRouter {
	baseURL := cfg.BaseURL
	if len(baseURL) == 0 {
		baseURL = defaultOpenRouterURL
	}
	return &openRouter{
		client: openai.NewClient(
			option.WithAPIKey(string(cfg.APIKey)),
			option.WithBaseURL(baseURL),
			option.WithMaxRetries(0),
			option.WithHeader("X-Title", misc.GetAppName()),
		),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     cfg.Timeout,
		log:         log,
	}
}

func (c *openRouter) Invoke(ctx context.Context, turns []Turn) (string, error) {
	ctx, cancel := withTimeout(ctx, c.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    make([]openai.ChatCompletionMessageParamUnion, 0, len(turns)),
		Temperature: openai.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(c.maxTokens))
	}
	for _, t := range turns {
		switch t.Role {
		case RoleSystem:
			params.Messages = append(params.Messages, openai.SystemMessage(t.Content))
		case RoleAssistant:
			params.Messages = append(params.Messages, openai.AssistantMessage(t.Content))
		default:
			params.Messages = append(params.Messages, openai.UserMessage(t.Content))
		}
	}

	start := time.Now()
	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openrouter request failed: %w", err)
	}
	c.log.Debug("Model responded", zap.String("model", resp.Model), zap.Int64("tokens", resp.Usage.TotalTokens), zap.Duration("elapsed", time.Since(start)))

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}
	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if len(text) == 0 {
		return "", ErrEmptyResponse
	}
	return text, nil
}
