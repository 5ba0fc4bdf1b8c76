package driven

import (
	"context"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// LLMService synthesises an answer from an assembled, cited context.
// The service is opaque to the core; its failures surface as synthesis
// failures.
//
// Implementations may include:
//   - Anthropic (Claude)
//   - OpenAI (GPT-4o and friends)
type LLMService interface {
	// Complete produces an answer to the question grounded in the
	// provided context. History carries prior conversation turns for
	// multi-turn sessions; it may be empty.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)

	// ModelName returns the name of the model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}

// CompletionRequest carries everything the synthesis collaborator needs.
type CompletionRequest struct {
	// Context is the assembled, citation-tagged context block.
	Context string

	// Question is the user's current question.
	Question string

	// History is the conversation window, oldest first.
	History []domain.Turn

	// MaxTokens caps the generated answer length. Zero means the
	// adapter's default.
	MaxTokens int
}

// CompletionResult is the synthesis output.
type CompletionResult struct {
	// Text is the generated answer.
	Text string

	// TokensUsed is the total token usage reported by the provider.
	TokensUsed int
}
