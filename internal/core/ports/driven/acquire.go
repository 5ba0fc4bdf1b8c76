package driven

import (
	"context"

	"github.com/distillyzer/dz-cli/internal/core/domain"
)

// Acquisition collaborators turn a URL into raw content plus metadata.
// They signal distinctly: domain.ErrContentNotFound when the remote
// content does not exist, domain.ErrAccessDenied when the source
// refuses access, and domain.ErrUnextractable when no usable text can
// be produced.

// VideoInfo is the metadata for one video.
type VideoInfo struct {
	// ID is the provider's video ID.
	ID string

	// Title is the video title.
	Title string

	// Channel is the publishing channel's display name.
	Channel string

	// ChannelURL is the publishing channel's canonical URL.
	ChannelURL string

	// URL is the canonical watch URL.
	URL string

	// Duration is the video length in seconds.
	Duration float64
}

// VideoProvider acquires video metadata and audio.
type VideoProvider interface {
	// Info fetches metadata for a single video URL.
	Info(ctx context.Context, url string) (*VideoInfo, error)

	// Search returns up to limit videos matching the query.
	Search(ctx context.Context, query string, limit int) ([]VideoInfo, error)

	// ListChannel returns up to limit recent videos from a channel.
	ListChannel(ctx context.Context, channelURL string, limit int) ([]VideoInfo, error)

	// DownloadAudio fetches the video's audio track into dir and
	// returns the file path. The caller owns cleanup.
	DownloadAudio(ctx context.Context, url, dir string) (string, error)
}

// Transcriber converts an audio file to time-aligned text segments,
// ordered by non-decreasing start offset.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]domain.TimedSegment, error)
}

// Article is an extracted web page.
type Article struct {
	// Title is the page title.
	Title string

	// SiteName is the publishing site's display name.
	SiteName string

	// Author is the byline, empty when unknown.
	Author string

	// Text is the extracted main content, paragraphs separated by
	// blank lines.
	Text string
}

// ArticleFetcher acquires and extracts web articles.
type ArticleFetcher interface {
	Fetch(ctx context.Context, url string) (*Article, error)
}

// RepoInfo is the metadata for one repository.
type RepoInfo struct {
	// Owner is the repository owner login.
	Owner string

	// Name is the repository name.
	Name string

	// Description is the repository description.
	Description string

	// URL is the canonical repository URL.
	URL string
}

// RepoFile is one documentation file fetched from a repository.
type RepoFile struct {
	// Path is the file path within the repository.
	Path string

	// Content is the file's text content.
	Content string
}

// RepoProvider acquires repository documentation.
type RepoProvider interface {
	// Info fetches repository metadata for a repo URL.
	Info(ctx context.Context, url string) (*RepoInfo, error)

	// FetchDocs returns the repository's documentation files
	// (README and markdown docs), up to limit files.
	FetchDocs(ctx context.Context, info *RepoInfo, limit int) ([]RepoFile, error)
}
