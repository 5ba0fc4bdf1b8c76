package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

func TestGetOrCreateSource_Dedup(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	first, err := store.GetOrCreateSource(ctx, domain.SourceWebsite, "example.com", "https://example.com")
	require.NoError(t, err)

	second, err := store.GetOrCreateSource(ctx, domain.SourceWebsite, "different name", "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "example.com", second.Name)

	_, err = store.GetOrCreateSource(ctx, domain.SourceKind("bogus"), "x", "https://x.com")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestCreateItem_DuplicateURL(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "One", URL: "https://example.com/a"}
	require.NoError(t, store.CreateItem(ctx, item))
	assert.NotEmpty(t, item.ID)

	dup := &domain.Item{Kind: domain.ItemArticle, Title: "Two", URL: "https://example.com/a"}
	err := store.CreateItem(ctx, dup)
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestFindItemByURL(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "Find Me", URL: "https://example.com/b"}
	require.NoError(t, store.CreateItem(ctx, item))

	found, err := store.FindItemByURL(ctx, "https://example.com/b")
	require.NoError(t, err)
	assert.Equal(t, item.ID, found.ID)

	_, err = store.FindItemByURL(ctx, "https://example.com/missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateChunks_BatchAndOrder(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "X", URL: "https://example.com/c"}
	require.NoError(t, store.CreateItem(ctx, item))

	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{
		{Content: "first", Index: 0},
		{Content: "second", Index: 1},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	listed, err := store.ListChunks(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, "first", listed[0].Content)
	assert.Equal(t, "second", listed[1].Content)
}

func TestCreateChunks_RejectsBrokenBatch(t *testing.T) {
	store := NewCatalogStore()

	_, err := store.CreateChunks(context.Background(), "item-1", []domain.ChunkDraft{
		{Content: "first", Index: 0},
		{Content: "third", Index: 2},
	})
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestCreateChunks_AtomicOnFailure(t *testing.T) {
	store := NewCatalogStore()
	store.FailChunkIndex = 1
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "X", URL: "https://example.com/d"}
	require.NoError(t, store.CreateItem(ctx, item))

	_, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{
		{Content: "first", Index: 0},
		{Content: "second", Index: 1},
	})
	require.Error(t, err)

	// No partial batch is ever visible.
	listed, err := store.ListChunks(ctx, item.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestDeleteItem_CascadesToChunks(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "X", URL: "https://example.com/e"}
	require.NoError(t, store.CreateItem(ctx, item))
	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{{Content: "c", Index: 0}})
	require.NoError(t, err)

	require.NoError(t, store.DeleteItem(ctx, item.ID))

	_, err = store.GetItem(ctx, item.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = store.GetChunk(ctx, chunks[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	assert.ErrorIs(t, store.DeleteItem(ctx, item.ID), domain.ErrNotFound)
}

func TestAttachEmbedding(t *testing.T) {
	store := NewCatalogStore()
	ctx := context.Background()

	item := &domain.Item{Kind: domain.ItemArticle, Title: "X", URL: "https://example.com/f"}
	require.NoError(t, store.CreateItem(ctx, item))
	chunks, err := store.CreateChunks(ctx, item.ID, []domain.ChunkDraft{{Content: "c", Index: 0}})
	require.NoError(t, err)

	require.NoError(t, store.AttachEmbedding(ctx, chunks[0].ID, []float32{1, 2, 3}))

	got, err := store.GetChunk(ctx, chunks[0].ID)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 2, 3}, got.Embedding)

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Embedded)

	assert.ErrorIs(t, store.AttachEmbedding(ctx, "missing", nil), domain.ErrNotFound)
}
