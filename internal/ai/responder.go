// Package ai provides the response-generation seam: a deterministic stub
// for tests and offline operation, and a live client for an
// OpenAI-compatible endpoint. The variant is chosen once at startup.
package ai

import (
	"context"
	"fmt"
)

type Responder interface {
	GenerateResponse(ctx context.Context, prompt string) (string, error)
}

// Stub always answers with a fixed template embedding the prompt.
type Stub struct{}

func (Stub) GenerateResponse(_ context.Context, prompt string) (string, error) {
	return fmt.Sprintf("Mock AI Response: I received your message '%s'. This is a simulated response for testing purposes.", prompt), nil
}
