package domain

import (
	"fmt"
	"time"
)

// TimedSegment is one raw speech-to-text segment before chunking.
// Segments arrive in non-decreasing start order.
type TimedSegment struct {
	// Text is the transcribed text of the segment.
	Text string

	// Start is the offset in seconds from the beginning of the media.
	Start float64

	// End is the offset in seconds where the segment ends.
	End float64
}

// ChunkDraft is a chunk before persistence: content, ordinal position
// and optional time offsets, but no identity or embedding yet.
type ChunkDraft struct {
	// Content is the chunk text. Never empty for a valid draft.
	Content string

	// Index is the zero-based position within the item.
	Index int

	// Start is the offset in seconds of the first merged segment.
	// Nil for text-only content.
	Start *float64

	// End is the offset in seconds of the last merged segment.
	// Nil for text-only content.
	End *float64
}

// Chunk is a contiguous, independently retrievable span of an item's
// content. Chunks are created in one batch per item and mutated exactly
// once, to attach the embedding.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// ItemID links to the owning Item. Exclusively owned: deleting the
	// item deletes its chunks.
	ItemID string

	// Content is the chunk text.
	Content string

	// Index is the zero-based position within the item. Indices are
	// contiguous starting at 0 and insertion order is meaningful.
	Index int

	// Start is the offset in seconds, present for time-based content.
	Start *float64

	// End is the offset in seconds, present for time-based content.
	End *float64

	// Embedding is the vector representation. Nil until the embedding
	// gateway has processed the chunk; an unembedded chunk is invisible
	// to the vector index.
	Embedding []float32

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// Validate checks the draft's own invariants: non-empty content and,
// when time offsets are present, 0 <= start <= end.
func (d *ChunkDraft) Validate() error {
	if d.Content == "" {
		return fmt.Errorf("%w: chunk %d has empty content", ErrDataIntegrity, d.Index)
	}
	if (d.Start == nil) != (d.End == nil) {
		return fmt.Errorf("%w: chunk %d has a partial time range", ErrDataIntegrity, d.Index)
	}
	if d.Start != nil {
		if *d.Start < 0 || *d.End < 0 {
			return fmt.Errorf("%w: chunk %d has a negative time offset", ErrDataIntegrity, d.Index)
		}
		if *d.Start > *d.End {
			return fmt.Errorf("%w: chunk %d has start %.2f after end %.2f",
				ErrDataIntegrity, d.Index, *d.Start, *d.End)
		}
	}
	return nil
}

// ValidateDrafts checks the batch invariants for one item: each draft is
// valid, indices are exactly 0..N-1, and start offsets never decrease.
func ValidateDrafts(drafts []ChunkDraft) error {
	prevStart := -1.0
	for i := range drafts {
		if err := drafts[i].Validate(); err != nil {
			return err
		}
		if drafts[i].Index != i {
			return fmt.Errorf("%w: chunk index %d at position %d breaks contiguity",
				ErrDataIntegrity, drafts[i].Index, i)
		}
		if drafts[i].Start != nil {
			if *drafts[i].Start < prevStart {
				return fmt.Errorf("%w: chunk %d starts at %.2f before previous chunk",
					ErrDataIntegrity, i, *drafts[i].Start)
			}
			prevStart = *drafts[i].Start
		}
	}
	return nil
}
