package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func seedItem(t *testing.T, store *Store, url string) *domain.Item {
	t.Helper()
	ctx := context.Background()

	source, err := store.GetOrCreateSource(ctx, domain.SourceWebsite, "example.com", "https://example.com")
	require.NoError(t, err)

	item := &domain.Item{
		SourceID: source.ID,
		Kind:     domain.ItemArticle,
		Title:    "Seeded",
		URL:      url,
		Metadata: map[string]any{"author": "someone"},
	}
	require.NoError(t, store.CreateItem(ctx, item))
	return item
}

func TestStore_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// Reopening reruns migrate against an up-to-date schema.
	store, err = NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	stats, err := store.Stats(context.Background())
	require.NoError(t, err)
	assert.Zero(t, stats.Sources)
}

func TestStore_GetOrCreateSource(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.GetOrCreateSource(ctx, domain.SourceYouTubeChannel, "SomeChannel", "https://youtube.com/@some")
	require.NoError(t, err)

	second, err := store.GetOrCreateSource(ctx, domain.SourceYouTubeChannel, "Renamed", "https://youtube.com/@some")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "SomeChannel", second.Name)

	_, err = store.GetOrCreateSource(ctx, domain.SourceKind("bogus"), "x", "https://x.com")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_ItemRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item := seedItem(t, store, "https://example.com/post")

	found, err := store.FindItemByURL(ctx, "https://example.com/post")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)
	assert.Equal(t, "Seeded", found.Title)
	assert.Equal(t, "someone", found.Metadata["author"])

	_, err = store.FindItemByURL(ctx, "https://example.com/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	dup := &domain.Item{SourceID: item.SourceID, Kind: domain.ItemArticle, Title: "Dup", URL: item.URL}
	assert.ErrorIs(t, store.CreateItem(ctx, dup), domain.ErrDataIntegrity)
}

func TestStore_ChunkBatchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedItem(t, store, "https://example.com/chunks")

	start, end := 0.0, 9.5
	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{
		{Content: "timed part", Index: 0, Start: &start, End: &end},
		{Content: "text part", Index: 1},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	listed, err := store.ListChunks(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	assert.Equal(t, "timed part", listed[0].Content)
	require.NotNil(t, listed[0].Start)
	assert.Equal(t, 0.0, *listed[0].Start)
	assert.Equal(t, 9.5, *listed[0].End)
	assert.Nil(t, listed[1].Start)
	assert.Nil(t, listed[0].Embedding)
}

func TestStore_CreateChunksRejectsBrokenBatch(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "https://example.com/broken")

	_, err := store.CreateChunks(context.Background(), item.ID, []domain.ChunkDraft{
		{Content: "a", Index: 0},
		{Content: "b", Index: 2},
	})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)

	listed, listErr := store.ListChunks(context.Background(), item.ID)
	require.NoError(t, listErr)
	assert.Empty(t, listed)
}

func TestStore_DeleteItemCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedItem(t, store, "https://example.com/cascade")

	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{{Content: "c", Index: 0}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteItem(ctx, item.ID))

	_, err = store.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, chunks[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteItem(ctx, item.ID), domain.ErrNotFound)
}

func TestStore_EmbeddingRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedItem(t, store, "https://example.com/embed")

	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{{Content: "c", Index: 0}})
	require.NoError(t, err)

	vector := []float32{0.25, -1.5, 3.0}
	require.NoError(t, store.AttachEmbedding(ctx, chunks[0].ID, vector))

	got, err := store.GetChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, vector, got.Embedding)

	assert.ErrorIs(t, store.AttachEmbedding(ctx, "missing", vector), domain.ErrNotFound)
}

func TestStore_VectorQuery(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedItem(t, store, "https://example.com/vectors")

	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{
		{Content: "near", Index: 0},
		{Content: "far", Index: 1},
		{Content: "unembedded", Index: 2},
	})
	require.NoError(t, err)

	require.NoError(t, store.Upsert(ctx, chunks[0].ID, []float32{1, 0, 0}))
	require.NoError(t, store.Upsert(ctx, chunks[1].ID, []float32{0, 1, 0}))

	hits, err := store.Query(ctx, []float32{1, 0, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	// The unembedded chunk never appears; ranking is descending.
	assert.Equal(t, chunks[0].ID, hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Similarity, 1e-6)
	assert.Equal(t, chunks[1].ID, hits[1].ChunkID)

	hits, err = store.Query(ctx, []float32{1, 0, 0}, 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = store.Query(ctx, []float32{1, 0, 0}, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStore_Stats(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	item := seedItem(t, store, "https://example.com/stats")

	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{
		{Content: "a", Index: 0},
		{Content: "b", Index: 1},
	})
	require.NoError(t, err)
	require.NoError(t, store.AttachEmbedding(ctx, chunks[0].ID, []float32{1}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Sources)
	assert.Equal(t, 1, stats.Items)
	assert.Equal(t, 2, stats.Chunks)
	assert.Equal(t, 1, stats.Embedded)
}

func TestVectorCodec(t *testing.T) {
	vector := []float32{0, 1.5, -2.25, 3.14159}

	decoded, err := decodeVector(encodeVector(vector))
	require.NoError(t, err)
	assert.Equal(t, vector, decoded)

	_, err = decodeVector([]byte{1, 2, 3})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestCosineSimilarity(t *testing.T) {
	sim := func(a, b []float32) float64 {
		s, err := cosineSimilarity(a, b)
		require.NoError(t, err)
		return s
	}
	assert.InDelta(t, 1.0, sim([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 0.0, sim([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, -1.0, sim([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Zero(t, sim([]float32{0, 0}, []float32{1, 1}))

	_, err := cosineSimilarity([]float32{1, 0}, []float32{1, 0, 0})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestQuery_DimensionMismatch(t *testing.T) {
	store := newTestStore(t)
	item := seedItem(t, store, "https://example.com/mismatched")

	chunks, err := store.CreateChunks(context.Background(), item.ID, []domain.ChunkDraft{
		{Content: "embedded with a three dimensional model", Index: 0},
	})
	require.NoError(t, err)
	require.NoError(t, store.AttachEmbedding(context.Background(), chunks[0].ID, []float32{1, 0, 0}))

	_, err = store.Query(context.Background(), []float32{1, 0}, 5)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}
