// Package github provides a repository documentation acquisition
// adapter backed by the GitHub API.
package github

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// Ensure Provider implements the interface.
var _ driven.RepoProvider = (*Provider)(nil)

const (
	// DefaultTimeout is the HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// maxFileSize skips blobs larger than this.
	maxFileSize = 1 << 20
)

// Provider acquires repository documentation via the GitHub API.
type Provider struct {
	gh      *gh.Client
	limiter *rateLimiter
}

// New creates a repository provider. An empty token uses anonymous
// access with its much smaller API quota.
func New(ctx context.Context, token string) *Provider {
	var httpClient *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(ctx, ts)
	} else {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = DefaultTimeout

	return &Provider{
		gh:      gh.NewClient(httpClient),
		limiter: newRateLimiter(token != ""),
	}
}

// Info fetches repository metadata for a repository URL.
func (p *Provider) Info(ctx context.Context, repoURL string) (*driven.RepoInfo, error) {
	owner, name, err := parseRepoURL(repoURL)
	if err != nil {
		return nil, err
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	repo, resp, err := p.gh.Repositories.Get(ctx, owner, name)
	if err != nil {
		return nil, p.wrapError(err, resp, repoURL)
	}
	p.updateLimiter(resp)

	return &driven.RepoInfo{
		Owner:       repo.GetOwner().GetLogin(),
		Name:        repo.GetName(),
		Description: repo.GetDescription(),
		URL:         repo.GetHTMLURL(),
	}, nil
}

// FetchDocs walks the default branch tree and returns documentation
// files, READMEs first, up to limit.
func (p *Provider) FetchDocs(ctx context.Context, info *driven.RepoInfo, limit int) ([]driven.RepoFile, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	tree, resp, err := p.gh.Git.GetTree(ctx, info.Owner, info.Name, "HEAD", true)
	if err != nil {
		return nil, p.wrapError(err, resp, info.URL)
	}
	p.updateLimiter(resp)

	var paths []treeEntry
	for _, entry := range tree.Entries {
		if entry.GetType() != "blob" || !isDocFile(entry.GetPath()) {
			continue
		}
		if entry.GetSize() > maxFileSize {
			continue
		}
		paths = append(paths, treeEntry{path: entry.GetPath(), sha: entry.GetSHA()})
	}
	sortDocsFirst(paths)

	if limit > 0 && len(paths) > limit {
		paths = paths[:limit]
	}

	files := make([]driven.RepoFile, 0, len(paths))
	for _, entry := range paths {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		content, err := p.fetchBlob(ctx, info, entry.sha)
		if err != nil {
			// Unreadable blobs are skipped rather than failing the
			// whole harvest.
			continue
		}
		if strings.TrimSpace(content) == "" {
			continue
		}
		files = append(files, driven.RepoFile{Path: entry.path, Content: content})
	}
	return files, nil
}

type treeEntry struct {
	path string
	sha  string
}

// fetchBlob retrieves and decodes one blob's content.
func (p *Provider) fetchBlob(ctx context.Context, info *driven.RepoInfo, sha string) (string, error) {
	if err := p.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}

	blob, resp, err := p.gh.Git.GetBlob(ctx, info.Owner, info.Name, sha)
	if err != nil {
		return "", p.wrapError(err, resp, info.URL)
	}
	p.updateLimiter(resp)

	if blob.GetEncoding() == "base64" {
		raw := strings.ReplaceAll(blob.GetContent(), "\n", "")
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return "", fmt.Errorf("decoding blob: %w", err)
		}
		return string(decoded), nil
	}
	return blob.GetContent(), nil
}

func (p *Provider) updateLimiter(resp *gh.Response) {
	if resp != nil {
		p.limiter.Update(resp.Response)
	}
}

// wrapError maps GitHub API errors onto the acquisition error
// taxonomy.
func (p *Provider) wrapError(err error, resp *gh.Response, repoURL string) error {
	p.updateLimiter(resp)

	if resp != nil {
		switch resp.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: repository %s", domain.ErrContentNotFound, repoURL)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: repository %s", domain.ErrAccessDenied, repoURL)
		}
	}
	return fmt.Errorf("github api: %w", err)
}

// parseRepoURL extracts owner and repo name from a GitHub URL.
func parseRepoURL(repoURL string) (owner, name string, err error) {
	parsed, err := url.Parse(repoURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) < 2 {
		return "", "", fmt.Errorf("%w: %s is not a repository URL", domain.ErrInvalidInput, repoURL)
	}
	name = strings.TrimSuffix(segments[1], ".git")
	return segments[0], name, nil
}

// isDocFile reports whether the path looks like documentation.
func isDocFile(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	if strings.HasPrefix(base, "readme") {
		return true
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown", ".rst", ".txt":
	default:
		return false
	}
	// Changelogs and licenses add noise, not knowledge.
	switch {
	case strings.HasPrefix(base, "changelog"),
		strings.HasPrefix(base, "license"),
		strings.HasPrefix(base, "notice"),
		strings.HasPrefix(base, "code_of_conduct"):
		return false
	}
	return true
}

// sortDocsFirst orders README files before everything else, keeping
// each group in tree order.
func sortDocsFirst(entries []treeEntry) {
	var readmes, rest []treeEntry
	for _, e := range entries {
		if strings.HasPrefix(strings.ToLower(filepath.Base(e.path)), "readme") {
			readmes = append(readmes, e)
		} else {
			rest = append(rest, e)
		}
	}
	copy(entries, append(readmes, rest...))
}
