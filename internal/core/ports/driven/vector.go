package driven

import "context"

// VectorIndex provides similarity search over chunk embeddings.
//
// The score metric is cosine similarity and is fixed for the lifetime
// of one index; embeddings must be computed under the same metric. A
// chunk only enters the index when its embedding is attached, so a
// created-but-not-yet-embedded chunk can never appear in query results.
type VectorIndex interface {
	// Upsert inserts or replaces the vector for the given chunk ID.
	Upsert(ctx context.Context, chunkID string, embedding []float32) error

	// Query finds the k nearest chunk vectors to the query vector,
	// ranked descending by cosine similarity. Returns fewer than k hits
	// when the index holds fewer vectors.
	Query(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// Similarity is the cosine similarity score (0-1).
	Similarity float64
}
