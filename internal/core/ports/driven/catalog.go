package driven

import (
	"context"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// CatalogStore persists sources, items and chunks.
// All URL lookups are exact-match; callers pass canonical URLs.
type CatalogStore interface {
	// FindSourceByURL retrieves a source by its canonical URL.
	// Returns domain.ErrNotFound if absent.
	FindSourceByURL(ctx context.Context, url string) (*domain.Source, error)

	// GetOrCreateSource returns the source with the given URL, creating
	// it lazily on first reference. URL uniqueness is the sole dedup key.
	GetOrCreateSource(ctx context.Context, kind domain.SourceKind, name, url string) (*domain.Source, error)

	// FindItemByURL retrieves an item by its canonical URL.
	// Returns domain.ErrNotFound if absent.
	FindItemByURL(ctx context.Context, url string) (*domain.Item, error)

	// CreateItem stores a new item. The item's ID and CreatedAt are
	// assigned by the store. A duplicate URL is a data integrity error.
	CreateItem(ctx context.Context, item *domain.Item) error

	// GetItem retrieves an item by ID.
	GetItem(ctx context.Context, id string) (*domain.Item, error)

	// DeleteItem removes an item and cascades to all its chunks.
	DeleteItem(ctx context.Context, id string) error

	// CreateChunks persists one item's chunk batch atomically: all
	// drafts are created together or none are, preserving the
	// contiguous-index invariant under partial failure. Drafts violating
	// batch invariants are rejected with domain.ErrDataIntegrity.
	CreateChunks(ctx context.Context, itemID string, drafts []domain.ChunkDraft) ([]domain.Chunk, error)

	// AttachEmbedding records a chunk's embedding vector. This is the
	// chunk's single permitted mutation.
	AttachEmbedding(ctx context.Context, chunkID string, embedding []float32) error

	// GetChunk retrieves a chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// ListChunks returns an item's chunks in index order.
	ListChunks(ctx context.Context, itemID string) ([]domain.Chunk, error)

	// Stats returns catalog-wide entity counts.
	Stats(ctx context.Context) (*domain.CatalogStats, error)

	// Close releases resources.
	Close() error
}
