package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

func retrieved(title, content string, start *float64, sim float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk:      domain.Chunk{ID: content, Content: content, Start: start, End: start},
		ItemTitle:  title,
		Similarity: sim,
	}
}

func TestAssemble_TagsAndCitationsMirrorInclusion(t *testing.T) {
	a := NewContextAssembler(1000)
	start := 65.0

	text, citations := a.Assemble([]domain.RetrievedChunk{
		retrieved("Video One", "timed content", &start, 0.9),
		retrieved("Article Two", "flat content", nil, 0.8),
	})

	assert.Contains(t, text, "[1] Video One @ 1:05\ntimed content")
	assert.Contains(t, text, "[2] Article Two\nflat content")

	require.Len(t, citations, 2)
	assert.Equal(t, 1, citations[0].Index)
	assert.Equal(t, "1:05", citations[0].Timestamp)
	assert.Equal(t, 0.9, citations[0].Similarity)
	assert.Equal(t, 2, citations[1].Index)
	assert.Empty(t, citations[1].Timestamp)
}

func TestAssemble_StopsAtBudget(t *testing.T) {
	// Each block is ~60 chars; a 100-char budget fits the first block
	// and stops before a third.
	a := NewContextAssembler(100)

	long := strings.Repeat("x", 50)
	text, citations := a.Assemble([]domain.RetrievedChunk{
		retrieved("A", long, nil, 0.9),
		retrieved("B", long, nil, 0.8),
		retrieved("C", long, nil, 0.7),
	})

	// Inclusion is greedy: the budget may be overrun by at most one
	// chunk, never more.
	require.Len(t, citations, 2)
	assert.Contains(t, text, "[1] A")
	assert.Contains(t, text, "[2] B")
	assert.NotContains(t, text, "[3]")
}

func TestAssemble_SingleOversizedChunkIncluded(t *testing.T) {
	a := NewContextAssembler(10)

	text, citations := a.Assemble([]domain.RetrievedChunk{
		retrieved("Big", strings.Repeat("y", 100), nil, 0.9),
		retrieved("Next", "more", nil, 0.8),
	})

	// The first chunk always goes in whole; the overrun blocks the rest.
	require.Len(t, citations, 1)
	assert.Contains(t, text, "[1] Big")
}

func TestAssemble_Empty(t *testing.T) {
	a := NewContextAssembler(0)

	text, citations := a.Assemble(nil)
	assert.Empty(t, text)
	assert.Empty(t, citations)
}

func TestGrounding(t *testing.T) {
	a := NewContextAssembler(0)

	assert.Empty(t, a.Grounding(nil))

	g := a.Grounding([]domain.Turn{
		{Role: domain.RoleUser, Content: "what is a monad"},
		{Role: domain.RoleAssistant, Content: "a monoid in the category of endofunctors"},
	})
	assert.True(t, strings.HasPrefix(g, "Prior conversation:\n"))
	assert.Contains(t, g, "user: what is a monad")
	assert.Contains(t, g, "assistant: a monoid")
}
