package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
)

// chatCompleter is the subset of *openai.Client used here.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// OpenAIGenerator implements ports.TextGenerator with the chat completions API and a
// JSON-object response format.
type OpenAIGenerator struct {
	client chatCompleter
	model  string
	logger zerolog.Logger
}

// NewOpenAIGenerator creates a text generator. baseURL may point at any
// OpenAI-compatible endpoint.
func NewOpenAIGenerator(apiKey, baseURL, model string, logger zerolog.Logger) *OpenAIGenerator {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

func (g *OpenAIGenerator) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			g.logger.Warn().
				Int("status", apiErr.HTTPStatusCode).
				Str("type", apiErr.Type).
				Str("message", apiErr.Message).
				Msg("Chat completion rejected")
		}
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	g.logger.Debug().
		Str("model", resp.Model).
		Int("promptTokens", resp.Usage.PromptTokens).
		Int("completionTokens", resp.Usage.CompletionTokens).
		Msg("Chat completion done")
	return resp.Choices[0].Message.Content, nil
}
