package services

import (
	"fmt"
	"strings"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/logger"
)

// DefaultContextBudget is the default context size budget in characters.
// Character count is the size proxy; exact token accounting is not
// required, monotonic greedy inclusion is.
const DefaultContextBudget = 2000

// ContextAssembler turns ranked chunks into a size-bounded, attributed
// context block plus a parallel citation list.
type ContextAssembler struct {
	budget int
}

// NewContextAssembler creates an assembler with the given character
// budget. A non-positive budget falls back to DefaultContextBudget.
func NewContextAssembler(budget int) *ContextAssembler {
	if budget <= 0 {
		budget = DefaultContextBudget
	}
	return &ContextAssembler{budget: budget}
}

// Assemble greedily includes ranked chunks, highest similarity first,
// until adding the next chunk would exceed the budget. Chunks are
// atomic: a chunk is either included whole or not at all, so output
// never overruns the budget by more than one chunk. Each included chunk
// is tagged with a citation marker carrying the item title and, for
// timed content, an MM:SS timestamp; the citation list mirrors
// inclusion order.
func (a *ContextAssembler) Assemble(ranked []domain.RetrievedChunk) (string, []domain.Citation) {
	var b strings.Builder
	var citations []domain.Citation

	size := 0
	for _, rc := range ranked {
		if size >= a.budget {
			break
		}

		n := len(citations) + 1
		ts := ""
		if rc.Chunk.Start != nil {
			ts = domain.FormatTimestamp(*rc.Chunk.Start)
		}

		tag := fmt.Sprintf("[%d] %s", n, rc.ItemTitle)
		if ts != "" {
			tag += " @ " + ts
		}
		block := tag + "\n" + rc.Chunk.Content + "\n\n"

		b.WriteString(block)
		size += len(block)
		citations = append(citations, domain.Citation{
			Index:      n,
			Title:      rc.ItemTitle,
			Timestamp:  ts,
			Similarity: rc.Similarity,
		})
	}

	logger.Debug("Assembled context: %d chars, %d citations (budget %d)",
		size, len(citations), a.budget)
	return strings.TrimRight(b.String(), "\n"), citations
}

// Grounding renders the conversation window as prepended framing for
// the synthesis prompt. The history is read-only input here: it is
// never embedded or retrieved.
func (a *ContextAssembler) Grounding(history []domain.Turn) string {
	if len(history) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("Prior conversation:\n")
	for _, t := range history {
		fmt.Fprintf(&b, "%s: %s\n", t.Role, t.Content)
	}
	return b.String()
}
