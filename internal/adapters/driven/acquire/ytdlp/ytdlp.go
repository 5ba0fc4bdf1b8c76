// Package ytdlp provides a video acquisition adapter backed by the
// yt-dlp command line tool.
package ytdlp

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
	"github.com/distillyzer/dz-cli/internal/logger"
)

// Ensure Provider implements the interface.
var _ driven.VideoProvider = (*Provider)(nil)

// DefaultBinary is the yt-dlp executable name resolved from PATH.
const DefaultBinary = "yt-dlp"

// Provider acquires video metadata and audio via yt-dlp.
type Provider struct {
	binary string
}

// Option configures the provider.
type Option func(*Provider)

// WithBinary overrides the yt-dlp executable path.
func WithBinary(path string) Option {
	return func(p *Provider) {
		if path != "" {
			p.binary = path
		}
	}
}

// New creates a yt-dlp provider.
func New(opts ...Option) *Provider {
	p := &Provider{binary: DefaultBinary}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// videoJSON is the subset of yt-dlp's --dump-json output we consume.
type videoJSON struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	Channel    string  `json:"channel"`
	Uploader   string  `json:"uploader"`
	ChannelURL string  `json:"channel_url"`
	Duration   float64 `json:"duration"`
}

// Info fetches metadata for a single video URL.
func (p *Provider) Info(ctx context.Context, url string) (*driven.VideoInfo, error) {
	out, err := p.run(ctx, "--dump-json", "--no-download", url)
	if err != nil {
		return nil, err
	}

	var meta videoJSON
	if err := json.Unmarshal(out, &meta); err != nil {
		return nil, fmt.Errorf("%w: parsing yt-dlp output: %v", domain.ErrUnextractable, err)
	}
	return toVideoInfo(meta), nil
}

// Search returns up to limit videos matching the query, using yt-dlp's
// ytsearch pseudo-URL.
func (p *Provider) Search(ctx context.Context, query string, limit int) ([]driven.VideoInfo, error) {
	if limit <= 0 {
		limit = 10
	}
	out, err := p.run(ctx,
		"--dump-json", "--flat-playlist", "--no-download",
		fmt.Sprintf("ytsearch%d:%s", limit, query))
	if err != nil {
		return nil, err
	}
	return parseLines(out), nil
}

// ListChannel returns up to limit recent videos from a channel.
func (p *Provider) ListChannel(ctx context.Context, channelURL string, limit int) ([]driven.VideoInfo, error) {
	if limit <= 0 {
		limit = 50
	}
	out, err := p.run(ctx,
		"--dump-json", "--flat-playlist", "--no-download",
		"--playlist-end", fmt.Sprint(limit), channelURL)
	if err != nil {
		return nil, err
	}
	return parseLines(out), nil
}

// DownloadAudio fetches the audio track as a small mono mp3 into dir.
// 64kbps mono at 16kHz keeps files under transcription upload limits
// and is plenty for speech.
func (p *Provider) DownloadAudio(ctx context.Context, url, dir string) (string, error) {
	template := filepath.Join(dir, "%(id)s.%(ext)s")
	_, err := p.run(ctx,
		"-x",
		"--audio-format", "mp3",
		"--audio-quality", "9",
		"--postprocessor-args", "ffmpeg:-ac 1 -ar 16000",
		"-o", template,
		url)
	if err != nil {
		return "", err
	}

	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("%w: audio file not found after download", domain.ErrUnextractable)
	}
	return matches[0], nil
}

// run executes yt-dlp and maps failures onto the acquisition error
// taxonomy.
func (p *Provider) run(ctx context.Context, args ...string) ([]byte, error) {
	logger.Debug("Running %s %s", p.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, p.binary, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, fmt.Errorf("yt-dlp is not installed or not found in PATH")
		}
		return nil, classifyStderr(stderr.String(), err)
	}
	return stdout.Bytes(), nil
}

// classifyStderr maps yt-dlp's error output onto the acquisition error
// taxonomy: not-found, access-denied, or unextractable.
func classifyStderr(stderr string, err error) error {
	msg := strings.TrimSpace(stderr)
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "video unavailable"),
		strings.Contains(lower, "404"),
		strings.Contains(lower, "does not exist"):
		return fmt.Errorf("%w: %s", domain.ErrContentNotFound, msg)
	case strings.Contains(lower, "private video"),
		strings.Contains(lower, "sign in"),
		strings.Contains(lower, "403"),
		strings.Contains(lower, "age-restricted"):
		return fmt.Errorf("%w: %s", domain.ErrAccessDenied, msg)
	default:
		return fmt.Errorf("yt-dlp failed: %s: %w", msg, err)
	}
}

// parseLines decodes yt-dlp's line-delimited JSON, skipping malformed
// lines.
func parseLines(out []byte) []driven.VideoInfo {
	var videos []driven.VideoInfo
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var meta videoJSON
		if err := json.Unmarshal(line, &meta); err != nil {
			logger.Warn("Skipping malformed yt-dlp line: %v", err)
			continue
		}
		videos = append(videos, *toVideoInfo(meta))
	}
	return videos
}

// toVideoInfo converts yt-dlp metadata to the port type, deriving the
// canonical watch URL from the video ID.
func toVideoInfo(meta videoJSON) *driven.VideoInfo {
	channel := meta.Channel
	if channel == "" {
		channel = meta.Uploader
	}
	return &driven.VideoInfo{
		ID:         meta.ID,
		Title:      meta.Title,
		Channel:    channel,
		ChannelURL: meta.ChannelURL,
		URL:        "https://youtube.com/watch?v=" + meta.ID,
		Duration:   meta.Duration,
	}
}
