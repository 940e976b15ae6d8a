package repo

import (
	"context"
	"io"

	"github.com/saltiyazan/charmhub-scrape/pkg/errors"
)

// Link labels searched on a landing page, in priority order.
const (
	HomepageLabel = "Homepage"
	BugLabel      = "Submit a bug"
)

// PageFetcher retrieves a landing page. Implementations return an error for
// unreachable pages and non-success statuses.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (io.ReadCloser, error)
}

// Resolver maps landing pages to source repository URLs.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	pages PageFetcher
}

// NewResolver creates a Resolver that fetches landing pages through pages.
func NewResolver(pages PageFetcher) *Resolver {
	return &Resolver{pages: pages}
}

// Resolve fetches landingURL and selects a repository URL from its links.
//
// Returns:
//   - the repository URL on success
//   - an [errors.ErrCodeFetch] error if the page cannot be retrieved
//   - an [errors.ErrCodeParse] error if the page is not parseable HTML
//   - an [errors.ErrCodeUnresolved] error if no usable link exists
func (r *Resolver) Resolve(ctx context.Context, landingURL string) (string, error) {
	body, err := r.pages.FetchPage(ctx, landingURL)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeFetch, err, "fetch landing page %s", landingURL)
	}
	defer body.Close()

	links, err := ExtractLinks(body)
	if err != nil {
		return "", errors.Wrap(errors.ErrCodeParse, err, "parse landing page %s", landingURL)
	}

	u, ok := Select(links)
	if !ok {
		return "", errors.New(errors.ErrCodeUnresolved, "no repository link on %s", landingURL)
	}
	return u, nil
}

// Select applies the Homepage and Submit-a-bug heuristics to links.
// It returns ok=false when neither yields a link to a known source host.
func Select(links []Link) (string, bool) {
	if l, ok := firstLabelled(links, HomepageLabel); ok && IsSourceHost(l.Href) {
		return normalizeHost(TrimTrailingSlash(l.Href)), true
	}

	if l, ok := firstLabelled(links, BugLabel); ok && IsSourceHost(l.Href) {
		u := l.Href
		if HasDomain(u, ForgeDomain) {
			u = StripIssues(u)
		}
		return normalizeHost(u), true
	}

	return "", false
}
