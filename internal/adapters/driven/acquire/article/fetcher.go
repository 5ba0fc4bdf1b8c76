// Package article provides a web article acquisition adapter: it
// fetches a page over HTTP and extracts its readable text.
package article

import (
	"context"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/distillyzer/dz-cli/internal/core/domain"
	"github.com/distillyzer/dz-cli/internal/core/ports/driven"
)

// Ensure Fetcher implements the interface.
var _ driven.ArticleFetcher = (*Fetcher)(nil)

// Default configuration values.
const (
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent avoids blocks from sites that reject unknown
	// clients.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

	// MinContentLength is the minimum extracted text length to count
	// as a real article.
	MinContentLength = 100
)

// Fetcher acquires and extracts web articles.
type Fetcher struct {
	client    *http.Client
	userAgent string
}

// New creates an article fetcher.
func New() *Fetcher {
	return &Fetcher{
		client:    &http.Client{Timeout: DefaultTimeout},
		userAgent: DefaultUserAgent,
	}
}

// Pre-compiled regular expressions for HTML extraction.
var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	metaSiteName  = regexp.MustCompile(`(?is)<meta[^>]+property=["']og:site_name["'][^>]+content=["']([^"']+)["']`)
	metaAuthor    = regexp.MustCompile(`(?is)<meta[^>]+name=["']author["'][^>]+content=["']([^"']+)["']`)
	scriptTag     = regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`)
	styleTag      = regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`)
	noscriptTag   = regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`)
	headTag       = regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`)
	svgTag        = regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`)
	navTag        = regexp.MustCompile(`(?is)<(nav|header|footer|aside)[^>]*>.*?</(nav|header|footer|aside)>`)
	htmlComments  = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockClose    = regexp.MustCompile(`(?i)</(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)>`)
	blockOpen     = regexp.MustCompile(`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)[^>]*>`)
	brTags        = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	allTags       = regexp.MustCompile(`<[^>]+>`)
	multiSpaces   = regexp.MustCompile(`[ \t]+`)
	multiNewlines = regexp.MustCompile(`\n{3,}`)
)

// Fetch downloads the page and extracts title, site metadata and the
// main text, paragraphs separated by blank lines.
func (f *Fetcher) Fetch(ctx context.Context, pageURL string) (*driven.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", pageURL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrContentNotFound, pageURL, resp.StatusCode)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusUnauthorized:
		return nil, fmt.Errorf("%w: %s returned status %d", domain.ErrAccessDenied, pageURL, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("fetching %s: status %d", pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pageURL, err)
	}
	page := string(body)

	text := extractText(page)
	if len(text) < MinContentLength {
		return nil, fmt.Errorf("%w: no meaningful content at %s", domain.ErrUnextractable, pageURL)
	}

	return &driven.Article{
		Title:    extractTitle(page, pageURL),
		SiteName: firstMatch(metaSiteName, page),
		Author:   firstMatch(metaAuthor, page),
		Text:     text,
	}, nil
}

// extractTitle pulls the <title> tag, falling back to a title derived
// from the URL path.
func extractTitle(page, pageURL string) string {
	if matches := titleTag.FindStringSubmatch(page); len(matches) > 1 {
		if title := strings.TrimSpace(html.UnescapeString(matches[1])); title != "" {
			return title
		}
	}
	return titleFromURL(pageURL)
}

// titleFromURL derives a readable title from the last URL path segment.
func titleFromURL(pageURL string) string {
	parsed, err := url.Parse(pageURL)
	if err != nil {
		return "Untitled Article"
	}
	segments := strings.FieldsFunc(parsed.Path, func(r rune) bool { return r == '/' })
	if len(segments) == 0 {
		return "Untitled Article"
	}
	title := segments[len(segments)-1]
	title = strings.NewReplacer("-", " ", "_", " ").Replace(title)
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}

// extractText removes non-content markup and collapses the remainder
// into blank-line separated paragraphs.
func extractText(page string) string {
	page = scriptTag.ReplaceAllString(page, "")
	page = styleTag.ReplaceAllString(page, "")
	page = noscriptTag.ReplaceAllString(page, "")
	page = headTag.ReplaceAllString(page, "")
	page = svgTag.ReplaceAllString(page, "")
	page = navTag.ReplaceAllString(page, "")
	page = htmlComments.ReplaceAllString(page, "")

	// Block boundaries become paragraph breaks.
	page = blockOpen.ReplaceAllString(page, "\n\n")
	page = blockClose.ReplaceAllString(page, "\n\n")
	page = brTags.ReplaceAllString(page, "\n")

	page = allTags.ReplaceAllString(page, "")
	page = html.UnescapeString(page)
	page = multiSpaces.ReplaceAllString(page, " ")

	// Trim lines, drop empties, keep paragraph breaks.
	lines := strings.Split(page, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	page = strings.Join(lines, "\n")
	page = multiNewlines.ReplaceAllString(page, "\n\n")

	var paragraphs []string
	for _, para := range strings.Split(page, "\n\n") {
		para = strings.TrimSpace(strings.ReplaceAll(para, "\n", " "))
		if para != "" {
			paragraphs = append(paragraphs, para)
		}
	}
	return strings.Join(paragraphs, "\n\n")
}

// firstMatch returns the first capture group or empty.
func firstMatch(re *regexp.Regexp, page string) string {
	if matches := re.FindStringSubmatch(page); len(matches) > 1 {
		return strings.TrimSpace(html.UnescapeString(matches[1]))
	}
	return ""
}
