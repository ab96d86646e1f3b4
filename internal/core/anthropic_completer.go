package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	anthropicopt "github.com/anthropics/anthropic-sdk-go/option"
)

type AnthropicCompleter struct {
	client      *anthropic.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewAnthropicCompleter(apiKey, baseURL, model string, maxTokens int, temperature float64) *AnthropicCompleter {
	opts := []anthropicopt.RequestOption{anthropicopt.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, anthropicopt.WithBaseURL(baseURL))
	}
	cl := anthropic.NewClient(opts...)

	return &AnthropicCompleter{
		client:      &cl,
		model:       model,
		maxTokens:   int64(maxTokens),
		temperature: temperature,
	}
}

func (a *AnthropicCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	system, turns := toAnthropicMessages(messages)
	if len(turns) == 0 {
		return "", errors.New("anthropic: prompt has no conversation turns")
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(a.model),
		MaxTokens:   a.maxTokens,
		Messages:    turns,
		Temperature: anthropic.Float(a.temperature),
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic messages request failed: %w", err)
	}

	var b strings.Builder
	for _, cb := range msg.Content {
		if tb, ok := cb.AsAny().(anthropic.TextBlock); ok {
			b.WriteString(tb.Text)
		}
	}
	return b.String(), nil
}

func toAnthropicMessages(messages []Message) (string, []anthropic.MessageParam) {
	var system []string
	turns := make([]anthropic.MessageParam, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			system = append(system, m.Content)
		case RoleAssistant:
			turns = append(turns, anthropic.NewAssistantMessage(anthropic.NewTextBlock(m.Content)))
		default:
			turns = append(turns, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return strings.Join(system, "\n\n"), turns
}
