package services

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
)

// Fixed sampling parameters for comparison answers. These are not
// query-dependent; temperature is tuned for punchy but factual output.
const (
	completionModel     = "meta-llama-3.1-8b-instruct"
	completionMaxTokens = 128
	completionTemp      = 0.8
	completionTopP      = 1
	completionPresence  = 0
)

// TextGenerator produces a completion for a system/user message pair.
type TextGenerator interface {
	Generate(ctx context.Context, systemMessage, userMessage string) (string, error)
}

// llamaGenerator calls an OpenAI-compatible chat-completion endpoint.
// It does not retry; retry policy belongs to the caller.
type llamaGenerator struct {
	client openai.Client
	model  string
}

// NewTextGenerator wraps an OpenAI-compatible client with the fixed
// model and sampling parameters used for comparison answers.
func NewTextGenerator(client openai.Client) TextGenerator {
	return &llamaGenerator{client: client, model: completionModel}
}

func (g *llamaGenerator) Generate(ctx context.Context, systemMessage, userMessage string) (string, error) {
	completion, err := g.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: g.model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemMessage),
			openai.UserMessage(userMessage),
		},
		MaxTokens:       openai.Int(completionMaxTokens),
		Temperature:     openai.Float(completionTemp),
		TopP:            openai.Float(completionTopP),
		PresencePenalty: openai.Float(completionPresence),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion call failed: %w", err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("chat completion returned no usable choices")
	}
	return completion.Choices[0].Message.Content, nil
}
