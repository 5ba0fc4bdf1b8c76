package services

import (
	"context"
	"errors"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// fakeEmbedder returns a fixed vector per text, or a configured error.
type fakeEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func newFakeEmbedder() *fakeEmbedder {
	return &fakeEmbedder{vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{1, 0, 0}, nil
}

func (f *fakeEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for _, t := range texts {
		v, err := f.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int              { return 3 }
func (f *fakeEmbedder) ModelName() string            { return "fake-embedder" }
func (f *fakeEmbedder) Ping(_ context.Context) error { return nil }
func (f *fakeEmbedder) Close() error                 { return nil }

// fakeLLM echoes the request or returns a configured error.
type fakeLLM struct {
	response string
	tokens   int
	err      error
	lastReq  driven.CompletionRequest
}

func (f *fakeLLM) Complete(_ context.Context, req driven.CompletionRequest) (*driven.CompletionResult, error) {
	f.lastReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &driven.CompletionResult{Text: f.response, TokensUsed: f.tokens}, nil
}

func (f *fakeLLM) ModelName() string            { return "fake-llm" }
func (f *fakeLLM) Ping(_ context.Context) error { return nil }
func (f *fakeLLM) Close() error                 { return nil }

// fakeVideoProvider serves canned video metadata and a canned audio
// file path.
type fakeVideoProvider struct {
	info      *driven.VideoInfo
	videos    []driven.VideoInfo
	audioPath string
	err       error
}

func (f *fakeVideoProvider) Info(_ context.Context, _ string) (*driven.VideoInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeVideoProvider) Search(_ context.Context, _ string, limit int) ([]driven.VideoInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit < len(f.videos) {
		return f.videos[:limit], nil
	}
	return f.videos, nil
}

func (f *fakeVideoProvider) ListChannel(ctx context.Context, _ string, limit int) ([]driven.VideoInfo, error) {
	return f.Search(ctx, "", limit)
}

func (f *fakeVideoProvider) DownloadAudio(_ context.Context, _, _ string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.audioPath, nil
}

// fakeTranscriber returns canned segments.
type fakeTranscriber struct {
	segments []domain.TimedSegment
	err      error
}

func (f *fakeTranscriber) Transcribe(_ context.Context, _ string) ([]domain.TimedSegment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.segments, nil
}

// fakeArticleFetcher returns a canned article.
type fakeArticleFetcher struct {
	article *driven.Article
	err     error
}

func (f *fakeArticleFetcher) Fetch(_ context.Context, _ string) (*driven.Article, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.article, nil
}

// fakeRepoProvider returns canned repository docs.
type fakeRepoProvider struct {
	info  *driven.RepoInfo
	files []driven.RepoFile
	err   error
}

func (f *fakeRepoProvider) Info(_ context.Context, _ string) (*driven.RepoInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.info, nil
}

func (f *fakeRepoProvider) FetchDocs(_ context.Context, _ *driven.RepoInfo, limit int) ([]driven.RepoFile, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && limit < len(f.files) {
		return f.files[:limit], nil
	}
	return f.files, nil
}

// errTransient is a reusable transient embedding failure.
var errTransient = &domain.EmbeddingError{Transient: true, Err: errors.New("rate limited")}

// errPermanent is a reusable permanent embedding failure.
var errPermanent = &domain.EmbeddingError{Transient: false, Err: errors.New("input too long")}
