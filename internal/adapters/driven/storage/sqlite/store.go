// Package sqlite implements the catalog store and vector index on a
// single SQLite database. Chunk embeddings are stored as BLOB-encoded
// float32 vectors and similarity queries scan embedded chunks with
// brute-force cosine, which is plenty at personal-knowledge-base scale.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/distillyzer/dz-cli/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// Ensure Store implements both interfaces.
var (
	_ driven.CatalogStore = (*Store)(nil)
	_ driven.VectorIndex  = (*Store)(nil)
)

// Store is the SQLite-backed catalog.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.dz/data/catalog.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".dz", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "catalog.db")

	// WAL keeps the read path usable while an ingestion is writing.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	s := &Store{db: db, path: dbPath}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys embed.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}
	return nil
}

// ==================== Sources ====================

// FindSourceByURL retrieves a source by its canonical URL.
func (s *Store) FindSourceByURL(ctx context.Context, url string) (*domain.Source, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, kind, name, url, metadata, created_at
		FROM sources WHERE url = ?
	`, url)
	return scanSource(row)
}

// GetOrCreateSource returns the source with the given URL, creating it
// on first reference. The UNIQUE constraint on url backstops the
// check-then-create race: a concurrent insert is resolved by re-reading.
func (s *Store) GetOrCreateSource(
	ctx context.Context, kind domain.SourceKind, name, url string,
) (*domain.Source, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: unknown source kind %q", domain.ErrInvalidInput, kind)
	}

	source, err := s.FindSourceByURL(ctx, url)
	if err == nil {
		return source, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	source = &domain.Source{
		ID:        uuid.New().String(),
		Kind:      kind,
		Name:      name,
		URL:       url,
		CreatedAt: time.Now().UTC(),
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sources (id, kind, name, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, source.ID, string(source.Kind), source.Name, source.URL, "{}", source.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return s.FindSourceByURL(ctx, url)
		}
		return nil, fmt.Errorf("creating source: %w", err)
	}
	return source, nil
}

// ==================== Items ====================

// FindItemByURL retrieves an item by its canonical URL.
func (s *Store) FindItemByURL(ctx context.Context, url string) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, kind, title, url, metadata, created_at
		FROM items WHERE url = ?
	`, url)
	return scanItem(row)
}

// GetItem retrieves an item by ID.
func (s *Store) GetItem(ctx context.Context, id string) (*domain.Item, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, source_id, kind, title, url, metadata, created_at
		FROM items WHERE id = ?
	`, id)
	return scanItem(row)
}

// CreateItem stores a new item. A duplicate URL is a data integrity
// violation: callers are expected to have deduplicated first.
func (s *Store) CreateItem(ctx context.Context, item *domain.Item) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: unknown item kind %q", domain.ErrInvalidInput, item.Kind)
	}
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	item.CreatedAt = time.Now().UTC()

	metadataJSON, err := json.Marshal(item.Metadata)
	if err != nil {
		return fmt.Errorf("marshalling metadata: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO items (id, source_id, kind, title, url, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.ID, item.SourceID, string(item.Kind), item.Title,
		nullString(item.URL), string(metadataJSON), item.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: item URL %q already exists", domain.ErrDataIntegrity, item.URL)
		}
		return fmt.Errorf("creating item: %w", err)
	}
	return nil
}

// DeleteItem removes an item; the foreign key cascades to its chunks.
func (s *Store) DeleteItem(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ==================== Chunks ====================

// CreateChunks persists one item's chunk batch in a single transaction:
// all chunks are created together or none are.
func (s *Store) CreateChunks(
	ctx context.Context, itemID string, drafts []domain.ChunkDraft,
) ([]domain.Chunk, error) {
	if err := domain.ValidateDrafts(drafts); err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	chunks := make([]domain.Chunk, 0, len(drafts))
	for _, draft := range drafts {
		chunk := domain.Chunk{
			ID:        uuid.New().String(),
			ItemID:    itemID,
			Content:   draft.Content,
			Index:     draft.Index,
			Start:     draft.Start,
			End:       draft.End,
			CreatedAt: now,
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO chunks (id, item_id, content, chunk_index, start_sec, end_sec, embedding, created_at)
			VALUES (?, ?, ?, ?, ?, ?, NULL, ?)
		`, chunk.ID, chunk.ItemID, chunk.Content, chunk.Index,
			nullFloat(chunk.Start), nullFloat(chunk.End), chunk.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("inserting chunk %d: %w", draft.Index, err)
		}
		chunks = append(chunks, chunk)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing chunks: %w", err)
	}
	return chunks, nil
}

// AttachEmbedding records a chunk's embedding vector.
func (s *Store) AttachEmbedding(ctx context.Context, chunkID string, embedding []float32) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chunks SET embedding = ? WHERE id = ?
	`, encodeVector(embedding), chunkID)
	if err != nil {
		return fmt.Errorf("attaching embedding: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// GetChunk retrieves a chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, item_id, content, chunk_index, start_sec, end_sec, embedding, created_at
		FROM chunks WHERE id = ?
	`, id)
	return scanChunk(row)
}

// ListChunks returns an item's chunks in index order.
func (s *Store) ListChunks(ctx context.Context, itemID string) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, item_id, content, chunk_index, start_sec, end_sec, embedding, created_at
		FROM chunks WHERE item_id = ? ORDER BY chunk_index
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// Stats returns catalog-wide entity counts.
func (s *Store) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	stats := &domain.CatalogStats{}
	row := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM sources),
			(SELECT COUNT(*) FROM items),
			(SELECT COUNT(*) FROM chunks),
			(SELECT COUNT(*) FROM chunks WHERE embedding IS NOT NULL)
	`)
	if err := row.Scan(&stats.Sources, &stats.Items, &stats.Chunks, &stats.Embedded); err != nil {
		return nil, fmt.Errorf("counting catalog: %w", err)
	}
	return stats, nil
}

// ==================== Vector Index ====================

// Upsert stores the vector for the given chunk ID. Equivalent to
// AttachEmbedding; the index lives in the chunks table.
func (s *Store) Upsert(ctx context.Context, chunkID string, embedding []float32) error {
	return s.AttachEmbedding(ctx, chunkID, embedding)
}

// Query scans embedded chunks and returns the k nearest by cosine
// similarity, descending. Chunks without an attached embedding are
// excluded by construction.
func (s *Store) Query(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("%w: k must be positive", domain.ErrInvalidInput)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, embedding FROM chunks
		WHERE embedding IS NOT NULL
		ORDER BY created_at, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying embeddings: %w", err)
	}
	defer rows.Close()

	var hits []driven.VectorHit //nolint:prealloc // size unknown from query
	for rows.Next() {
		var id string
		var blob []byte
		if err := rows.Scan(&id, &blob); err != nil {
			return nil, fmt.Errorf("scanning embedding: %w", err)
		}
		vector, err := decodeVector(blob)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", id, err)
		}
		similarity, err := cosineSimilarity(query, vector)
		if err != nil {
			return nil, fmt.Errorf("chunk %s: %w", id, err)
		}
		hits = append(hits, driven.VectorHit{
			ChunkID:    id,
			Similarity: similarity,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating embeddings: %w", err)
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Similarity > hits[j].Similarity
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// ==================== Helpers ====================

// encodeVector packs float32s into a little-endian byte blob.
func encodeVector(v []float32) []byte {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

// decodeVector unpacks a little-endian byte blob into float32s.
func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("%w: embedding blob length %d", domain.ErrDataIntegrity, len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return v, nil
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// The vectors must share a dimension; a mismatch means the index holds
// embeddings from a different model than the query.
func cosineSimilarity(a, b []float32) (float64, error) {
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

// isUniqueViolation reports whether err is a UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullString converts an empty string to NULL for storage.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// nullFloat converts a nil float pointer to NULL for storage.
func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// rowScanner abstracts sql.Row and sql.Rows for the scan helpers.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanSource(row rowScanner) (*domain.Source, error) {
	var source domain.Source
	var kind, metadataJSON string
	var createdAt sql.NullTime
	if err := row.Scan(&source.ID, &kind, &source.Name, &source.URL, &metadataJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning source: %w", err)
	}
	source.Kind = domain.SourceKind(kind)
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &source.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		source.CreatedAt = createdAt.Time
	}
	return &source, nil
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var item domain.Item
	var kind, metadataJSON string
	var url sql.NullString
	var createdAt sql.NullTime
	if err := row.Scan(&item.ID, &item.SourceID, &kind, &item.Title, &url, &metadataJSON, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning item: %w", err)
	}
	item.Kind = domain.ItemKind(kind)
	item.URL = url.String
	if metadataJSON != "" {
		if err := json.Unmarshal([]byte(metadataJSON), &item.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshaling metadata: %w", err)
		}
	}
	if createdAt.Valid {
		item.CreatedAt = createdAt.Time
	}
	return &item, nil
}

func scanChunk(row rowScanner) (*domain.Chunk, error) {
	var chunk domain.Chunk
	var start, end sql.NullFloat64
	var blob []byte
	var createdAt sql.NullTime
	if err := row.Scan(&chunk.ID, &chunk.ItemID, &chunk.Content, &chunk.Index,
		&start, &end, &blob, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	if start.Valid {
		chunk.Start = &start.Float64
	}
	if end.Valid {
		chunk.End = &end.Float64
	}
	if len(blob) > 0 {
		vector, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		chunk.Embedding = vector
	}
	if createdAt.Valid {
		chunk.CreatedAt = createdAt.Time
	}
	return &chunk, nil
}
