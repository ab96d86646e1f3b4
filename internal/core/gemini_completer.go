package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const geminiRoleModel = "model"

// GeminiCompleter uses the native Gemini SDK instead of the OpenAI
// compatibility endpoint.
type GeminiCompleter struct {
	client      *genai.Client
	model       string
	maxTokens   int32
	temperature float32
}

func NewGeminiCompleter(ctx context.Context, apiKey, model string, maxTokens int, temperature float64) (*GeminiCompleter, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GeminiCompleter{
		client:      client,
		model:       model,
		maxTokens:   int32(maxTokens),
		temperature: float32(temperature),
	}, nil
}

func (c *GeminiCompleter) Close() error {
	return c.client.Close()
}

func (c *GeminiCompleter) Complete(ctx context.Context, messages []Message) (string, error) {
	system, contents := toGeminiContents(messages)
	if len(contents) == 0 {
		return "", fmt.Errorf("gemini: prompt has no conversation turns")
	}

	last := contents[len(contents)-1]
	if last.Role != RoleUser {
		return "", fmt.Errorf("gemini: last prompt message is from %q, not 'user'", last.Role)
	}

	model := c.client.GenerativeModel(c.model)
	model.SystemInstruction = system

	maxTokens := c.maxTokens
	temp := c.temperature
	model.GenerationConfig = genai.GenerationConfig{
		MaxOutputTokens: &maxTokens,
		Temperature:     &temp,
	}

	session := model.StartChat()
	session.History = contents[:len(contents)-1]

	resp, err := session.SendMessage(ctx, last.Parts...)
	if err != nil {
		return "", fmt.Errorf("gemini chat SendMessage failed: %w", err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", nil
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			text.WriteString(string(txt))
		} else {
			slog.DebugContext(ctx, "skipping non-text gemini response part", "type", fmt.Sprintf("%T", part))
		}
	}
	return text.String(), nil
}

// toGeminiContents splits the prompt into a system instruction and the
// conversation. Gemini calls the assistant role "model".
func toGeminiContents(messages []Message) (*genai.Content, []*genai.Content) {
	var system *genai.Content
	contents := make([]*genai.Content, 0, len(messages))

	for _, m := range messages {
		switch m.Role {
		case RoleSystem:
			if system == nil {
				system = &genai.Content{}
			}
			system.Parts = append(system.Parts, genai.Text(m.Content))
		case RoleAssistant:
			contents = append(contents, &genai.Content{Role: geminiRoleModel, Parts: []genai.Part{genai.Text(m.Content)}})
		default:
			contents = append(contents, &genai.Content{Role: RoleUser, Parts: []genai.Part{genai.Text(m.Content)}})
		}
	}
	return system, contents
}
