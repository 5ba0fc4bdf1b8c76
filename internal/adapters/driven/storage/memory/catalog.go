// Package memory provides in-memory implementations of the storage
// ports for tests and offline experimentation.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// Ensure CatalogStore implements the interface.
var _ driven.CatalogStore = (*CatalogStore)(nil)

// CatalogStore is an in-memory implementation of driven.CatalogStore.
type CatalogStore struct {
	mu      sync.RWMutex
	sources map[string]domain.Source
	items   map[string]domain.Item
	chunks  map[string]domain.Chunk

	// FailChunkIndex makes CreateChunks fail after persisting the given
	// number of chunks, for atomicity tests. Negative disables.
	FailChunkIndex int
}

// NewCatalogStore creates an empty in-memory catalog.
func NewCatalogStore() *CatalogStore {
	return &CatalogStore{
		sources:        make(map[string]domain.Source),
		items:          make(map[string]domain.Item),
		chunks:         make(map[string]domain.Chunk),
		FailChunkIndex: -1,
	}
}

// FindSourceByURL retrieves a source by its canonical URL.
func (s *CatalogStore) FindSourceByURL(_ context.Context, url string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, src := range s.sources {
		if src.URL == url {
			out := src
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetOrCreateSource returns the source with the given URL, creating it
// on first reference.
func (s *CatalogStore) GetOrCreateSource(
	_ context.Context, kind domain.SourceKind, name, url string,
) (*domain.Source, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, src := range s.sources {
		if src.URL == url {
			out := src
			return &out, nil
		}
	}
	source := domain.Source{
		ID:        uuid.New().String(),
		Kind:      kind,
		Name:      name,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	s.sources[source.ID] = source
	return &source, nil
}

// FindItemByURL retrieves an item by its canonical URL.
func (s *CatalogStore) FindItemByURL(_ context.Context, url string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.URL == url && url != "" {
			out := item
			return &out, nil
		}
	}
	return nil, domain.ErrNotFound
}

// GetItem retrieves an item by ID.
func (s *CatalogStore) GetItem(_ context.Context, id string) (*domain.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &item, nil
}

// CreateItem stores a new item.
func (s *CatalogStore) CreateItem(_ context.Context, item *domain.Item) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown item kind %q", domain.ErrInvalidInput, item.Kind)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.URL != "" {
		for _, existing := range s.items {
			if existing.URL == item.URL {
				return fmt.Errorf("%w: item URL %q already exists", domain.ErrDataIntegrity, item.URL)
			}
		}
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now().UTC()
	s.items[item.ID] = *item
	return nil
}

// DeleteItem removes an item and cascades to its chunks.
func (s *CatalogStore) DeleteItem(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.items, id)
	for chunkID, chunk := range s.chunks {
		if chunk.ItemID == id {
			delete(s.chunks, chunkID)
		}
	}
	return nil
}

// CreateChunks persists one item's chunk batch atomically: either every
// draft becomes visible or none does.
func (s *CatalogStore) CreateChunks(
	_ context.Context, itemID string, drafts []domain.ChunkDraft,
) ([]domain.Chunk, error) {
	if err := domain.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, 0, len(drafts))
	for i, draft := range drafts {
		if s.FailChunkIndex >= 0 && i == s.FailChunkIndex {
			// Nothing has been published yet, so the batch stays invisible.
			return nil, fmt.Errorf("injected chunk persistence failure at %d", i)
		}
		chunks = append(chunks, domain.Chunk{
			ID:        uuid.New().String(),
			ItemID:    itemID,
			Content:   draft.Content,
			Index:     draft.Index,
			Start:     draft.Start,
			End:       draft.End,
			CreatedAt: now,
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, chunk := range chunks {
		s.chunks[chunk.ID] = chunk
	}
	return chunks, nil
}

// AttachEmbedding records a chunk's embedding vector.
func (s *CatalogStore) AttachEmbedding(_ context.Context, chunkID string, embedding []float32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	chunk, ok := s.chunks[chunkID]
	if !ok {
		return domain.ErrNotFound
	}
	chunk.Embedding = embedding
	s.chunks[chunkID] = chunk
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *CatalogStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &chunk, nil
}

// ListChunks returns an item's chunks in index order.
func (s *CatalogStore) ListChunks(_ context.Context, itemID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var chunks []domain.Chunk
	for _, chunk := range s.chunks {
		if chunk.ItemID == itemID {
			chunks = append(chunks, chunk)
		}
	}
	sort.Slice(chunks, func(i, j int) bool { return chunks[i].Index < chunks[j].Index })
	return chunks, nil
}

// Stats returns catalog-wide entity counts.
func (s *CatalogStore) Stats(_ context.Context) (*domain.CatalogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := &domain.CatalogStats{
		Sources: len(s.sources),
		Items:   len(s.items),
		Chunks:  len(s.chunks),
	}
	for _, chunk := range s.chunks {
		if chunk.Embedding != nil {
			stats.Embedded++
		}
	}
	return stats, nil
}

// Close releases resources.
func (s *CatalogStore) Close() error {
	return nil
}
