package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

func TestVectorIndex_QueryRanksDescending(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "far", []float32{0, 1, 0}))
	require.NoError(t, index.Upsert(ctx, "near", []float32{1, 0, 0}))
	require.NoError(t, index.Upsert(ctx, "mid", []float32{1, 1, 0}))

	hits, err := index.Query(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	assert.Equal(t, "near", hits[0].ChunkID)
	assert.Equal(t, "mid", hits[1].ChunkID)
	assert.Equal(t, "far", hits[2].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestVectorIndex_KLimitsResults(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, index.Upsert(ctx, id, []float32{1, 0}))
	}

	hits, err := index.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	assert.Len(t, hits, 2)

	// Fewer vectors than k returns what exists.
	hits, err = index.Query(ctx, []float32{1, 0}, 100)
	require.NoError(t, err)
	assert.Len(t, hits, 4)
}

func TestVectorIndex_UpsertReplaces(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "x", []float32{0, 1}))
	require.NoError(t, index.Upsert(ctx, "x", []float32{1, 0}))
	assert.Equal(t, 1, index.Len())

	hits, err := index.Query(ctx, []float32{1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
}

func TestVectorIndex_DimensionMismatch(t *testing.T) {
	index := NewVectorIndex()
	ctx := context.Background()

	require.NoError(t, index.Upsert(ctx, "x", []float32{1, 0, 0}))

	_, err := index.Query(ctx, []float32{1, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestVectorIndex_Empty(t *testing.T) {
	index := NewVectorIndex()

	hits, err := index.Query(context.Background(), []float32{1, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
