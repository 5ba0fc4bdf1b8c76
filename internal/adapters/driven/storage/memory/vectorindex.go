package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is an in-memory brute-force cosine similarity index.
type VectorIndex struct {
	mu      sync.RWMutex
	order   []string
	vectors map[string][]float32
}

// NewVectorIndex creates an empty in-memory index.
func NewVectorIndex() *VectorIndex {
	return &VectorIndex{vectors: make(map[string][]float32)}
}

// Upsert inserts or replaces the vector for the given chunk ID.
func (v *VectorIndex) Upsert(_ context.Context, chunkID string, embedding []float32) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.vectors[chunkID]; !ok {
		v.order = append(v.order, chunkID)
	}
	v.vectors[chunkID] = embedding
	return nil
}

// Query returns the k nearest vectors by cosine similarity, descending.
// Insertion order breaks score ties so results are reproducible.
func (v *VectorIndex) Query(_ context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}
	v.mu.RLock()
	defer v.mu.RUnlock()

	hits := make([]driven.VectorHit, 0, len(v.order))
	for _, id := range v.order {
		similarity, err := cosine(query, v.vectors[id])
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", id, err)
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: similarity,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of indexed vectors.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.vectors)
}

// Close releases resources.
func (v *VectorIndex) Close() error {
	return nil
}

func cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: embedding dimension %d does not match query dimension %d",
			domain.ErrDataIntegrity, len(b), len(a))
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
