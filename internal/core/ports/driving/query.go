package driving

import (
	"context"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// QueryService answers natural-language questions from the catalog.
type QueryService interface {
	// Ask retrieves the k most relevant chunks, assembles a cited
	// context, and synthesises an answer. A retrieval or synthesis
	// failure aborts the question; no degraded answer is produced.
	Ask(ctx context.Context, question string, k int) (*domain.Answer, error)

	// AskInConversation is Ask with conversational grounding: the
	// history window is fed into context assembly and the synthesis call.
	AskInConversation(ctx context.Context, question string, history []domain.Turn, k int) (*domain.Answer, error)
}
