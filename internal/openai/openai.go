// Package openai is the fallback narration provider, used when the
// Gemini quota is exhausted and OPENAI_API_KEY is set.
package openai

import (
	"context"
	"errors"
	"os"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/signalforge/signalforge/internal/metrics"
)

// Available reports whether a fallback key is configured.
func Available() bool {
	return os.Getenv("OPENAI_API_KEY") != ""
}

// Narrate sends the prompt to the chat completion API.
func Narrate(ctx context.Context, prompt string) (string, error) {
	token := os.Getenv("OPENAI_API_KEY")
	if token == "" {
		return "", errors.New("OPENAI_API_KEY is not set")
	}

	client := openai.NewClient(token)

	ctx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	metrics.Global.IncrementAIRequests()
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxCompletionTokens: 2000,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
