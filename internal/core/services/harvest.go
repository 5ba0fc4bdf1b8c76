package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/distillyzer/dz-cli/internal/chunker"
	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
	"github.com/distillyzer/dz-cli/internal/core/ports/driving"
	"github.com/distillyzer/dz-cli/internal/logger"
	"github.com/distillyzer/dz-cli/internal/retry"
)

// Ensure HarvestService implements the driving interface.
var _ driving.HarvestService = (*HarvestService)(nil)

// MaxRepoDocs caps how many documentation files one repository harvest
// indexes.
const MaxRepoDocs = 25

// videoURLPatterns match YouTube watch URLs.
var videoURLPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/)([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
}

// HarvestService ingests external content: it detects the content kind
// from the URL, acquires raw content, chunks it, persists it, and
// embeds and indexes the chunks. Ingestion of one item runs to
// completion before the next begins; a failure is scoped to the single
// item being processed.
type HarvestService struct {
	catalog     driven.CatalogStore
	videos      driven.VideoProvider
	transcriber driven.Transcriber
	articles    driven.ArticleFetcher
	repos       driven.RepoProvider
	embedder    driven.EmbeddingService
	index       driven.VectorIndex
	chunker     *chunker.Chunker
	policy      retry.Policy
}

// NewHarvestService creates a harvest service over the given
// collaborators. Acquisition collaborators may be nil; harvesting a URL
// whose collaborator is missing fails with an acquisition error.
func NewHarvestService(
	catalog driven.CatalogStore,
	videos driven.VideoProvider,
	transcriber driven.Transcriber,
	articles driven.ArticleFetcher,
	repos driven.RepoProvider,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	ch *chunker.Chunker,
	policy retry.Policy,
) *HarvestService {
	return &HarvestService{
		catalog:     catalog,
		videos:      videos,
		transcriber: transcriber,
		articles:    articles,
		repos:       repos,
		embedder:    embedder,
		index:       index,
		chunker:     ch,
		policy:      policy,
	}
}

// Harvest ingests the content behind the given URL.
func (s *HarvestService) Harvest(ctx context.Context, rawURL string) (*driving.HarvestResult, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL", domain.ErrInvalidInput)
	}

	switch {
	case isVideoURL(rawURL):
		return s.harvestVideo(ctx, rawURL)
	case isRepoURL(rawURL):
		return s.harvestRepo(ctx, rawURL)
	default:
		return s.harvestArticle(ctx, rawURL)
	}
}

// harvestVideo ingests one YouTube video: metadata, audio download,
// transcription, timed chunking.
func (s *HarvestService) harvestVideo(ctx context.Context, videoURL string) (*driving.HarvestResult, error) {
	logger.Stage("Harvest Video")

	if existing, err := s.findExisting(ctx, videoURL); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if s.videos == nil || s.transcriber == nil {
		return nil, domain.StageErr(domain.StageAcquisition,
			errors.New("video harvesting is not configured"))
	}

	info, err := s.videos.Info(ctx, videoURL)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	logger.Info("Video: %q by %s (%.0fs)", info.Title, info.Channel, info.Duration)

	tempDir, err := os.MkdirTemp("", "dz-harvest-")
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, fmt.Errorf("creating temp dir: %w", err))
	}
	defer os.RemoveAll(tempDir)

	audioPath, err := s.videos.DownloadAudio(ctx, videoURL, tempDir)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}

	segments, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	logger.Debug("Transcript: %d segments", len(segments))

	drafts, err := s.chunker.SegmentTimed(segments)
	if err != nil {
		return nil, domain.StageErr(domain.StageChunking, err)
	}
	if len(drafts) == 0 {
		return nil, domain.StageErr(domain.StageChunking,
			fmt.Errorf("%w: transcript is empty", domain.ErrUnextractable))
	}

	channelURL := info.ChannelURL
	if channelURL == "" {
		channelURL = "https://youtube.com/@" + info.Channel
	}
	source, err := s.catalog.GetOrCreateSource(ctx, domain.SourceYouTubeChannel, info.Channel, channelURL)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		SourceID: source.ID,
		Kind:     domain.ItemVideo,
		Title:    info.Title,
		URL:      videoURL,
		Metadata: map[string]any{
			"channel":  info.Channel,
			"duration": info.Duration,
			"video_id": info.ID,
		},
	}
	chunks, err := s.persistChunks(ctx, item, drafts)
	if err != nil {
		return nil, err
	}

	s.embedAndIndex(ctx, chunks)
	return &driving.HarvestResult{Item: item, Chunks: len(chunks), Items: 1}, nil
}

// harvestArticle ingests one web article as flat text.
func (s *HarvestService) harvestArticle(ctx context.Context, articleURL string) (*driving.HarvestResult, error) {
	logger.Stage("Harvest Article")

	if existing, err := s.findExisting(ctx, articleURL); err != nil {
		return nil, err
	} else if existing != nil {
		return existing, nil
	}

	if s.articles == nil {
		return nil, domain.StageErr(domain.StageAcquisition,
			errors.New("article harvesting is not configured"))
	}

	article, err := s.articles.Fetch(ctx, articleURL)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	logger.Info("Article: %q from %s (%d chars)", article.Title, article.SiteName, len(article.Text))

	drafts, err := s.chunker.SegmentText(article.Text)
	if err != nil {
		return nil, domain.StageErr(domain.StageChunking, err)
	}
	if len(drafts) == 0 {
		return nil, domain.StageErr(domain.StageChunking,
			fmt.Errorf("%w: article has no text content", domain.ErrUnextractable))
	}

	siteURL, siteName := siteOrigin(articleURL, article.SiteName)
	source, err := s.catalog.GetOrCreateSource(ctx, domain.SourceWebsite, siteName, siteURL)
	if err != nil {
		return nil, err
	}

	item := &domain.Item{
		SourceID: source.ID,
		Kind:     domain.ItemArticle,
		Title:    article.Title,
		URL:      articleURL,
		Metadata: map[string]any{
			"author":   article.Author,
			"sitename": article.SiteName,
		},
	}
	chunks, err := s.persistChunks(ctx, item, drafts)
	if err != nil {
		return nil, err
	}

	s.embedAndIndex(ctx, chunks)
	return &driving.HarvestResult{Item: item, Chunks: len(chunks), Items: 1}, nil
}

// harvestRepo ingests a repository's documentation files, one item per
// file. Files already present are skipped, so re-harvesting a repo only
// picks up new files.
func (s *HarvestService) harvestRepo(ctx context.Context, repoURL string) (*driving.HarvestResult, error) {
	logger.Stage("Harvest Repository")

	if s.repos == nil {
		return nil, domain.StageErr(domain.StageAcquisition,
			errors.New("repository harvesting is not configured"))
	}

	info, err := s.repos.Info(ctx, repoURL)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	logger.Info("Repository: %s/%s", info.Owner, info.Name)

	source, err := s.catalog.GetOrCreateSource(ctx, domain.SourceRepository,
		info.Owner+"/"+info.Name, info.URL)
	if err != nil {
		return nil, err
	}

	files, err := s.repos.FetchDocs(ctx, info, MaxRepoDocs)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}

	result := &driving.HarvestResult{}
	for _, file := range files {
		fileURL := info.URL + "/blob/HEAD/" + file.Path

		if existing, err := s.findExisting(ctx, fileURL); err != nil {
			return nil, err
		} else if existing != nil {
			logger.Debug("Skipping already harvested %s", file.Path)
			if result.Item == nil {
				result.Item = existing.Item
			}
			continue
		}

		drafts, err := s.chunker.SegmentText(file.Content)
		if err != nil {
			return nil, domain.StageErr(domain.StageChunking, err)
		}
		if len(drafts) == 0 {
			logger.Debug("Skipping empty file %s", file.Path)
			continue
		}

		item := &domain.Item{
			SourceID: source.ID,
			Kind:     domain.ItemFile,
			Title:    info.Owner + "/" + info.Name + ": " + file.Path,
			URL:      fileURL,
			Metadata: map[string]any{"path": file.Path},
		}
		chunks, err := s.persistChunks(ctx, item, drafts)
		if err != nil {
			return nil, err
		}
		s.embedAndIndex(ctx, chunks)

		if result.Item == nil {
			result.Item = item
		}
		result.Items++
		result.Chunks += len(chunks)
	}

	if result.Items == 0 && result.Item != nil {
		result.AlreadyExists = true
	}
	return result, nil
}

// findExisting returns a short-circuit result when the URL has been
// harvested before, nil when it has not.
func (s *HarvestService) findExisting(ctx context.Context, url string) (*driving.HarvestResult, error) {
	item, err := s.catalog.FindItemByURL(ctx, url)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	logger.Info("Already harvested: %q", item.Title)
	return &driving.HarvestResult{Item: item, AlreadyExists: true}, nil
}

// persistChunks creates the item and its chunk batch.
func (s *HarvestService) persistChunks(
	ctx context.Context, item *domain.Item, drafts []domain.ChunkDraft,
) ([]domain.Chunk, error) {
	item.ID = uuid.New().String()
	if err := s.catalog.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	chunks, err := s.catalog.CreateChunks(ctx, item.ID, drafts)
	if err != nil {
		return nil, err
	}
	logger.Info("Stored %d chunks for %q", len(chunks), item.Title)
	return chunks, nil
}

// embedAndIndex attaches embeddings and indexes each chunk. Transient
// gateway failures are retried per the policy; a permanently failing
// chunk is skipped with a warning and stays out of the vector index,
// without aborting the rest of the batch.
func (s *HarvestService) embedAndIndex(ctx context.Context, chunks []domain.Chunk) {
	if s.embedder == nil || s.index == nil {
		logger.Warn("Embedding not configured; %d chunks left unembedded", len(chunks))
		return
	}

	logger.Stage("Embedding")
	embedded := 0
	for i := range chunks {
		var vector []float32
		err := s.policy.Do(ctx, func(ctx context.Context) error {
			var embedErr error
			vector, embedErr = s.embedder.Embed(ctx, chunks[i].Content)
			return embedErr
		})
		if err != nil {
			logger.Warn("Skipping chunk %d: %v", chunks[i].Index, err)
			continue
		}
		if err := s.catalog.AttachEmbedding(ctx, chunks[i].ID, vector); err != nil {
			logger.Warn("Attaching embedding for chunk %d: %v", chunks[i].Index, err)
			continue
		}
		if err := s.index.Upsert(ctx, chunks[i].ID, vector); err != nil {
			logger.Warn("Indexing chunk %d: %v", chunks[i].Index, err)
			continue
		}
		embedded++
	}
	logger.Info("Embedded %d/%d chunks", embedded, len(chunks))
}

// SearchVideos searches YouTube for harvest candidates.
func (s *HarvestService) SearchVideos(ctx context.Context, query string, limit int) ([]driven.VideoInfo, error) {
	if s.videos == nil {
		return nil, domain.StageErr(domain.StageAcquisition,
			errors.New("video search is not configured"))
	}
	videos, err := s.videos.Search(ctx, query, limit)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	return videos, nil
}

// ListChannel lists a channel's recent videos.
func (s *HarvestService) ListChannel(ctx context.Context, channelURL string, limit int) ([]driven.VideoInfo, error) {
	if s.videos == nil {
		return nil, domain.StageErr(domain.StageAcquisition,
			errors.New("video listing is not configured"))
	}
	videos, err := s.videos.ListChannel(ctx, channelURL, limit)
	if err != nil {
		return nil, domain.StageErr(domain.StageAcquisition, err)
	}
	return videos, nil
}

// Stats returns catalog-wide entity counts.
func (s *HarvestService) Stats(ctx context.Context) (*domain.CatalogStats, error) {
	return s.catalog.Stats(ctx)
}

// isVideoURL reports whether the URL is a YouTube watch URL.
func isVideoURL(u string) bool {
	for _, p := range videoURLPatterns {
		if p.MatchString(u) {
			return true
		}
	}
	return false
}

// isRepoURL reports whether the URL points at a GitHub repository.
func isRepoURL(u string) bool {
	return strings.Contains(u, "github.com/")
}

// siteOrigin derives the canonical site URL and a display name from an
// article URL. The site name falls back to the host when extraction
// produced none.
func siteOrigin(articleURL, siteName string) (string, string) {
	parsed, err := url.Parse(articleURL)
	if err != nil || parsed.Host == "" {
		if siteName == "" {
			siteName = articleURL
		}
		return articleURL, siteName
	}
	if siteName == "" {
		siteName = parsed.Host
	}
	return "https://" + parsed.Host, siteName
}
