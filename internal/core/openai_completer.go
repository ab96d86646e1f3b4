package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// OpenAICompleter talks to any OpenAI-compatible chat completions endpoint,
// including Gemini's compatibility layer.
type OpenAICompleter struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
}

func NewOpenAICompleter(apiKey, baseURL, model string, maxTokens int, temperature float64) *OpenAICompleter {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(baseURL, "/")
	}

	return &OpenAICompleter{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       model,
		maxTokens:   maxTokens,
		temperature: float32(temperature),
	}
}

func (c *OpenAICompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openai: prompt is empty")
	}

	chatMessages := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		chatMessages = append(chatMessages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    chatMessages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("openai chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}

	return resp.Choices[0].Message.Content, nil
}
