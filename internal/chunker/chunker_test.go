package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

func seg(text string, start, end float64) domain.TimedSegment {
	return domain.TimedSegment{Text: text, Start: start, End: end}
}

func TestSegmentTimed_MergesWithinBudget(t *testing.T) {
	// Budget fits "a b" but not a third segment.
	c := New(WithBudget(3))

	drafts, err := c.SegmentTimed([]domain.TimedSegment{
		seg("a", 0, 5),
		seg("b", 5, 9),
		seg("c", 9, 20),
	})
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "a b", drafts[0].Content)
	assert.Equal(t, 0, drafts[0].Index)
	require.NotNil(t, drafts[0].Start)
	require.NotNil(t, drafts[0].End)
	assert.Equal(t, 0.0, *drafts[0].Start)
	assert.Equal(t, 9.0, *drafts[0].End)

	assert.Equal(t, "c", drafts[1].Content)
	assert.Equal(t, 1, drafts[1].Index)
	assert.Equal(t, 9.0, *drafts[1].Start)
	assert.Equal(t, 20.0, *drafts[1].End)
}

func TestSegmentTimed_EmptyInput(t *testing.T) {
	c := New()

	drafts, err := c.SegmentTimed(nil)
	require.NoError(t, err)
	assert.Empty(t, drafts)

	drafts, err = c.SegmentTimed([]domain.TimedSegment{seg("   ", 0, 1)})
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestSegmentTimed_OversizedSegmentIsOwnDraft(t *testing.T) {
	c := New(WithBudget(5))

	drafts, err := c.SegmentTimed([]domain.TimedSegment{
		seg("short", 0, 2),
		seg("this segment is far beyond the budget", 2, 30),
		seg("tail", 30, 31),
	})
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	assert.Equal(t, "this segment is far beyond the budget", drafts[1].Content)
}

func TestSegmentTimed_NeverSplitsASegment(t *testing.T) {
	c := New(WithBudget(15))
	segments := []domain.TimedSegment{
		seg("one two", 0, 3),
		seg("three four", 3, 6),
		seg("five six seven", 6, 9),
	}

	drafts, err := c.SegmentTimed(segments)
	require.NoError(t, err)

	// Every raw segment appears whole in exactly one draft.
	joined := ""
	for _, d := range drafts {
		joined += d.Content + " "
	}
	for _, s := range segments {
		assert.Contains(t, joined, s.Text)
	}
}

func TestSegmentTimed_IndicesContiguousAndTimesMonotonic(t *testing.T) {
	c := New(WithBudget(12))
	var segments []domain.TimedSegment
	for i := 0; i < 20; i++ {
		segments = append(segments, seg("word word", float64(i), float64(i+1)))
	}

	drafts, err := c.SegmentTimed(segments)
	require.NoError(t, err)
	require.NotEmpty(t, drafts)

	prevStart := -1.0
	for i, d := range drafts {
		assert.Equal(t, i, d.Index)
		require.NotNil(t, d.Start)
		require.NotNil(t, d.End)
		assert.GreaterOrEqual(t, *d.Start, prevStart)
		assert.LessOrEqual(t, *d.Start, *d.End)
		prevStart = *d.Start
	}
}

func TestSegmentText_ParagraphsWithinBudget(t *testing.T) {
	c := New(WithBudget(50))

	drafts, err := c.SegmentText("First paragraph here.\n\nSecond paragraph here.")
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	assert.Equal(t, "First paragraph here. Second paragraph here.", drafts[0].Content)
	assert.Nil(t, drafts[0].Start)
	assert.Nil(t, drafts[0].End)
}

func TestSegmentText_OversizedParagraphSplitsOnSentences(t *testing.T) {
	c := New(WithBudget(30))
	para := "This is sentence one. This is sentence two. This is sentence three."

	drafts, err := c.SegmentText(para)
	require.NoError(t, err)
	require.Greater(t, len(drafts), 1)

	for _, d := range drafts {
		assert.NotEmpty(t, strings.TrimSpace(d.Content))
	}
	assert.Contains(t, drafts[0].Content, "sentence one.")
}

func TestSplitSentences_StrayTerminatorLosesNoText(t *testing.T) {
	// The orphan "." between matches must ride along with the next
	// sentence, not be dropped while a matched character is re-read.
	assert.Equal(t, []string{"a.", ". b.", "c"}, splitSentences("a.. b. c"))

	assert.Equal(t, []string{"One sentence."}, splitSentences("One sentence."))
	assert.Equal(t, []string{"no terminator at all"}, splitSentences("no terminator at all"))
}

func TestSegmentText_TrailingTextWithoutTerminator(t *testing.T) {
	c := New(WithBudget(20))

	drafts, err := c.SegmentText("A full sentence here. and a trailing fragment with no period")
	require.NoError(t, err)

	joined := ""
	for _, d := range drafts {
		joined += d.Content + " "
	}
	assert.Contains(t, joined, "trailing fragment")
}

func TestSegmentText_EmptyInput(t *testing.T) {
	c := New()

	drafts, err := c.SegmentText("")
	require.NoError(t, err)
	assert.Empty(t, drafts)

	drafts, err = c.SegmentText("\n\n   \n\n")
	require.NoError(t, err)
	assert.Empty(t, drafts)
}

func TestWithBudget_IgnoresNonPositive(t *testing.T) {
	c := New(WithBudget(0))
	assert.Equal(t, DefaultBudget, c.Budget())

	c = New(WithBudget(-5))
	assert.Equal(t, DefaultBudget, c.Budget())
}
