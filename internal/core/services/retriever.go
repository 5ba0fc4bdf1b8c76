package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
	"github.com/distillyzer/dz-cli/internal/logger"
)

// Retriever turns a natural-language question into a ranked,
// deduplicated set of candidate chunks with similarity scores.
type Retriever struct {
	catalog  driven.CatalogStore
	embedder driven.EmbeddingService
	index    driven.VectorIndex
}

// NewRetriever creates a retriever over the given collaborators.
func NewRetriever(
	catalog driven.CatalogStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
) *Retriever {
	return &Retriever{
		catalog:  catalog,
		embedder: embedder,
		index:    index,
	}
}

// Retrieve returns up to k chunks relevant to the question, ranked
// descending by similarity. An embedding or index failure fails the
// whole retrieval; there is no silent empty-result fallback. k requests
// a maximum, not a guarantee: an index holding fewer vectors returns
// fewer hits.
func (r *Retriever) Retrieve(ctx context.Context, question string, k int) ([]domain.RetrievedChunk, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive, got %d", domain.ErrInvalidInput, k)
	}

	logger.Stage("Retrieval")
	logger.Debug("Question: %q, k=%d", question, k)

	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, domain.StageErr(domain.StageRetrieval, fmt.Errorf("embedding question: %w", err))
	}

	hits, err := r.index.Query(ctx, vector, k)
	if err != nil {
		return nil, domain.StageErr(domain.StageRetrieval, fmt.Errorf("querying index: %w", err))
	}
	logger.Debug("Index returned %d hits", len(hits))

	// Dedup by chunk identity, keeping the first (highest-ranked) hit.
	// Defensive: an index should not return the same chunk twice.
	seen := make(map[string]bool, len(hits))
	results := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		if seen[hit.ChunkID] {
			logger.Warn("Index returned duplicate chunk %s", hit.ChunkID)
			continue
		}
		seen[hit.ChunkID] = true

		chunk, err := r.catalog.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			return nil, domain.StageErr(domain.StageRetrieval,
				fmt.Errorf("loading chunk %s: %w", hit.ChunkID, err))
		}
		item, err := r.catalog.GetItem(ctx, chunk.ItemID)
		if err != nil {
			return nil, domain.StageErr(domain.StageRetrieval,
				fmt.Errorf("loading item %s: %w", chunk.ItemID, err))
		}

		results = append(results, domain.RetrievedChunk{
			Chunk:      *chunk,
			ItemTitle:  item.Title,
			Similarity: hit.Similarity,
		})
	}

	// The index already ranks descending by similarity. Keep that key,
	// breaking ties by creation time then ID so output is reproducible.
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity != results[j].Similarity {
			return results[i].Similarity > results[j].Similarity
		}
		if !results[i].Chunk.CreatedAt.Equal(results[j].Chunk.CreatedAt) {
			return results[i].Chunk.CreatedAt.Before(results[j].Chunk.CreatedAt)
		}
		return results[i].Chunk.ID < results[j].Chunk.ID
	})

	logger.Info("Retrieved %d chunks", len(results))
	return results, nil
}
