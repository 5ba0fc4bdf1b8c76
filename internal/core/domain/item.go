package domain

import "time"

// ItemKind identifies the content category of a harvested item.
type ItemKind string

// Supported item kinds.
const (
	ItemVideo   ItemKind = "video"
	ItemArticle ItemKind = "article"
	ItemFile    ItemKind = "file"
)

// Valid reports whether the kind is one of the supported variants.
func (k ItemKind) Valid() bool {
	switch k {
	case ItemVideo, ItemArticle, ItemFile:
		return true
	}
	return false
}

// Item represents one harvested unit of content: a video, an article,
// or a repository file. Items are immutable after creation. Deleting
// an item cascades to its chunks; the owning source is left in place.
type Item struct {
	// ID is the unique identifier for the item.
	ID string

	// SourceID links to the owning Source.
	SourceID string

	// Kind identifies the content category.
	Kind ItemKind

	// Title is the human-readable title.
	Title string

	// URL is the canonical content URL and the dedup key. Harvesting a
	// URL that is already present short-circuits to the existing item.
	// Empty only for content with no natural URL.
	URL string

	// Metadata contains kind-specific key-value pairs
	// (channel, duration, author, file path).
	Metadata map[string]any

	// CreatedAt is when the item was harvested.
	CreatedAt time.Time
}

// CatalogStats holds entity counts for the whole catalog.
type CatalogStats struct {
	// Sources is the number of distinct origins.
	Sources int

	// Items is the number of harvested content units.
	Items int

	// Chunks is the number of searchable segments.
	Chunks int

	// Embedded is the number of chunks with an attached embedding.
	Embedded int
}
