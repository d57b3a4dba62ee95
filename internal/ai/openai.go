package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI forwards prompts to an OpenAI-compatible completion endpoint.
type OpenAI struct {
	llm     llms.LLM
	timeout time.Duration
}

func NewOpenAI(baseURL, token, model string, timeout time.Duration) (*OpenAI, error) {
	llm, err := openai.New(
		openai.WithToken(token),
		openai.WithBaseURL(baseURL),
		openai.WithModel(model),
	)
	if err != nil {
		return nil, err
	}
	return &OpenAI{llm: llm, timeout: timeout}, nil
}

func (o *OpenAI) GenerateResponse(ctx context.Context, prompt string) (string, error) {
	// A hung model call must not block the request forever.
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	completion, err := llms.GenerateFromSinglePrompt(ctx, o.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate completion: %w", err)
	}
	return completion, nil
}
