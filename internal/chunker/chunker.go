// Package chunker converts raw harvested content into ordered chunk
// drafts within a character budget.
package chunker

import (
	"regexp"
	"strings"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// DefaultBudget is the default target chunk size in characters.
const DefaultBudget = 400

// sentenceSplitter breaks flat text on sentence boundaries.
var sentenceSplitter = regexp.MustCompile(`(?m)(?U)([^.!?]+[.!?]+)`)

// Chunker segments content into bounded-size chunk drafts. Drafts are
// assigned contiguous indices 0..N-1 in emission order; an empty or
// whitespace-only input yields zero drafts, which is not an error.
type Chunker struct {
	budget int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithBudget sets the target chunk size in characters.
func WithBudget(n int) Option {
	return func(c *Chunker) {
		if n > 0 {
			c.budget = n
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{budget: DefaultBudget}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Budget returns the configured character budget.
func (c *Chunker) Budget() int {
	return c.budget
}

// SegmentTimed merges consecutive transcript segments into drafts
// within the budget. A raw segment is never split across drafts: a
// draft is emitted as soon as adding the next segment would exceed the
// budget, unless the draft is still empty, so a single oversized
// segment becomes its own draft. A draft's start is its first
// constituent segment's start and its end is its last constituent
// segment's end.
func (c *Chunker) SegmentTimed(segments []domain.TimedSegment) ([]domain.ChunkDraft, error) {
	var drafts []domain.ChunkDraft
	var parts []string
	var start, end float64

	flush := func() {
		if len(parts) == 0 {
			return
		}
		s, e := start, end
		drafts = append(drafts, domain.ChunkDraft{
			Content: strings.Join(parts, " "),
			Index:   len(drafts),
			Start:   &s,
			End:     &e,
		})
		parts = nil
	}

	size := 0
	for _, seg := range segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		if len(parts) > 0 && size+1+len(text) > c.budget {
			flush()
			size = 0
		}
		if len(parts) == 0 {
			start = seg.Start
			size = len(text)
		} else {
			size += 1 + len(text)
		}
		parts = append(parts, text)
		end = seg.End
	}
	flush()

	if err := domain.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// SegmentText splits article text into drafts within the budget.
// Paragraph boundaries are preferred; paragraphs larger than the budget
// are split on sentence boundaries. No time offsets are attached.
func (c *Chunker) SegmentText(text string) ([]domain.ChunkDraft, error) {
	var units []string
	for _, para := range strings.Split(text, "\n\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}
		if len(para) <= c.budget {
			units = append(units, para)
			continue
		}
		units = append(units, splitSentences(para)...)
	}

	var drafts []domain.ChunkDraft
	var parts []string
	size := 0
	flush := func() {
		if len(parts) == 0 {
			return
		}
		drafts = append(drafts, domain.ChunkDraft{
			Content: strings.Join(parts, " "),
			Index:   len(drafts),
		})
		parts = nil
		size = 0
	}

	for _, unit := range units {
		if len(parts) > 0 && size+1+len(unit) > c.budget {
			flush()
		}
		if len(parts) == 0 {
			size = len(unit)
		} else {
			size += 1 + len(unit)
		}
		parts = append(parts, unit)
	}
	flush()

	if err := domain.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	return drafts, nil
}

// splitSentences breaks a paragraph into sentences, falling back to the
// whole paragraph when no sentence boundary is found.
func splitSentences(para string) []string {
	bounds := sentenceSplitter.FindAllStringIndex(para, -1)
	if len(bounds) == 0 {
		return []string{para}
	}
	sentences := make([]string, 0, len(bounds))
	consumed := 0
	for _, b := range bounds {
		// Matches need not be contiguous; carry skipped text forward
		// with the sentence that follows it.
		if s := strings.TrimSpace(para[consumed:b[1]]); s != "" {
			sentences = append(sentences, s)
		}
		consumed = b[1]
	}
	// Keep any trailing text without a terminator.
	if rest := strings.TrimSpace(para[consumed:]); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}
