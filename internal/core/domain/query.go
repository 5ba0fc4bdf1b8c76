package domain

import "fmt"

// RetrievedChunk is one retrieval candidate: a chunk with its owning
// item's title and the similarity score reported by the vector index.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// ItemTitle is the owning item's title, used for citations.
	ItemTitle string

	// Similarity is the cosine similarity to the question (0-1).
	Similarity float64
}

// Citation references one chunk included in an assembled context.
// The citation list mirrors context inclusion order.
type Citation struct {
	// Index is the 1-based citation marker used inline in the context.
	Index int

	// Title is the owning item's title.
	Title string

	// Timestamp is the chunk start formatted as MM:SS, empty for
	// content without time offsets.
	Timestamp string

	// Similarity is the retrieval score, for display.
	Similarity float64
}

// Label renders the citation for display, e.g.
// "Deep Learning Basics @ 12:34 (sim: 0.87)".
func (c Citation) Label() string {
	if c.Timestamp != "" {
		return fmt.Sprintf("%s @ %s (sim: %.2f)", c.Title, c.Timestamp, c.Similarity)
	}
	return fmt.Sprintf("%s (sim: %.2f)", c.Title, c.Similarity)
}

// Answer is a synthesised response with its supporting citations.
type Answer struct {
	// Text is the synthesised answer.
	Text string

	// Citations lists the chunks the context was assembled from, in
	// inclusion order.
	Citations []Citation

	// TokensUsed is the synthesis collaborator's reported token usage.
	TokensUsed int
}

// FormatTimestamp renders a second offset as MM:SS (hours fold into
// minutes, matching how players display long-video offsets).
func FormatTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
