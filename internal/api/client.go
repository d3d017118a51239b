package api

import (
	"context"

	"github.com/quocvuong92/gemini-chat/internal/history"
)

// Request is everything the model needs to answer one chat turn
type Request struct {
	// History holds the prior turns, oldest first, excluding Prompt
	History     []history.Turn
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// AIClient defines the interface for the remote model call.
// Implementations make exactly one attempt; retries belong to RetryPolicy.
type AIClient interface {
	// Generate returns the reply text for req
	Generate(ctx context.Context, req Request) (string, error)

	// Close releases any resources held by the client
	Close()
}

// Ensure the Gemini client implements AIClient interface
var _ AIClient = (*GeminiClient)(nil)
