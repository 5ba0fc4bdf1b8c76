package domain

import "time"

// SourceKind identifies the origin category of a source.
// It is a closed set; unknown kinds are rejected at creation time.
type SourceKind string

// Supported source kinds.
const (
	SourceYouTubeChannel SourceKind = "youtube_channel"
	SourceWebsite        SourceKind = "website"
	SourceRepository     SourceKind = "repository"
)

// Valid reports whether the kind is one of the supported variants.
func (k SourceKind) Valid() bool {
	switch k {
	case SourceYouTubeChannel, SourceWebsite, SourceRepository:
		return true
	}
	return false
}

// Source represents an origin of harvested content: a YouTube channel,
// a website, or a code repository. A source may be shared by many items
// and outlives all of them.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Kind identifies the origin category.
	Kind SourceKind

	// Name is the human-readable name (channel name, site name, repo name).
	Name string

	// URL is the canonical origin URL. It is the sole dedup key:
	// two sources never share a URL.
	URL string

	// Metadata contains kind-specific key-value pairs.
	Metadata map[string]any

	// CreatedAt is when the source was first referenced.
	CreatedAt time.Time
}
