package driving

import (
	"context"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// HarvestResult reports the outcome of one harvest.
type HarvestResult struct {
	// Item is the created or pre-existing item. For repository
	// harvests, the first indexed file's item.
	Item *domain.Item

	// Chunks is the number of chunks created by this harvest.
	Chunks int

	// Items is the number of items created (greater than one only for
	// repository harvests).
	Items int

	// AlreadyExists is true when the URL had been harvested before and
	// the harvest short-circuited without creating anything.
	AlreadyExists bool
}

// HarvestService ingests external content into the catalog.
type HarvestService interface {
	// Harvest detects the content kind from the URL (YouTube video,
	// article, repository), acquires it, chunks it, persists it, and
	// embeds and indexes the chunks. Harvesting an already-present URL
	// short-circuits to the existing item.
	Harvest(ctx context.Context, url string) (*HarvestResult, error)

	// SearchVideos searches YouTube for harvest candidates.
	SearchVideos(ctx context.Context, query string, limit int) ([]driven.VideoInfo, error)

	// ListChannel lists a channel's recent videos for selective harvesting.
	ListChannel(ctx context.Context, channelURL string, limit int) ([]driven.VideoInfo, error)

	// Stats returns catalog-wide entity counts.
	Stats(ctx context.Context) (*domain.CatalogStats, error)
}
