package charmhub

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"
	"time"

	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/integrations"
	"github.com/saltiyazan/charmhub-scrape/pkg/observability"
)

// Defaults for [Options].
const (
	DefaultBaseURL  = "https://charmhub.io"
	DefaultType     = "charm"
	DefaultMaxPages = 1

	retryDelay = 500 * time.Millisecond
)

// Options configures a [Client].
type Options struct {
	BaseURL  string        // Store root, without trailing slash
	Type     string        // Catalog entry type to keep
	MaxPages int           // Upper bound on listing pages fetched
	Timeout  time.Duration // Per-request timeout; zero keeps the default
	TTL      time.Duration // Lifetime of cached resolutions; zero means cache.TTLHTTP
	Retries  int           // Extra attempts for transient GET failures
	Keyer    cache.Keyer   // Catalog and response key derivation; nil uses the default
}

// Client provides access to the Charmhub store.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	backend  cache.Cache
	keyer    cache.Keyer
	baseURL  string
	typ      string
	maxPages int
}

// NewClient creates a Charmhub client with the given cache backend.
// Pass cache.NewNullCache() (or nil) to disable catalog caching.
func NewClient(backend cache.Cache, opts Options) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Type == "" {
		opts.Type = DefaultType
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = DefaultMaxPages
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.TTL <= 0 {
		opts.TTL = cache.TTLHTTP
	}

	base := integrations.NewClient(backend, "charmhub", opts.TTL, map[string]string{
		"Accept": "application/json, text/html",
	})
	base.SetTimeout(opts.Timeout)
	base.SetKeyer(opts.Keyer)
	if opts.Retries > 0 {
		base.SetRetry(integrations.RetryPolicy{Attempts: opts.Retries + 1, Delay: retryDelay})
	}

	return &Client{
		Client:   base,
		backend:  backend,
		keyer:    opts.Keyer,
		baseURL:  strings.TrimSuffix(opts.BaseURL, "/"),
		typ:      opts.Type,
		maxPages: opts.MaxPages,
	}
}

// LandingURL returns the public page of a charm.
func (c *Client) LandingURL(name string) string {
	return c.baseURL + "/" + name
}

// FetchCatalog returns every catalog entry of the configured type, in
// listing order.
//
// The consolidated catalog is cached under token. If refresh is true the
// cache is bypassed (and overwritten on success). hit reports whether the
// result came from the cache.
//
// Returns an [errs.ErrCodeFetch] error if a page cannot be retrieved and an
// [errs.ErrCodeParse] error if a page is not valid JSON.
func (c *Client) FetchCatalog(ctx context.Context, token string, refresh bool) (pkgs []charm.Package, hit bool, err error) {
	key := c.catalogKey(token)

	if !refresh {
		if data, ok, err := c.backend.Get(ctx, key); err == nil && ok {
			if json.Unmarshal(data, &pkgs) == nil {
				observability.Cache().OnCacheHit(ctx, "catalog")
				return pkgs, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "catalog")
	}

	pkgs, err = c.fetchCatalog(ctx)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(pkgs); err == nil {
		if c.backend.Set(ctx, key, data, cache.TTLCatalog) == nil {
			observability.Cache().OnCacheSet(ctx, "catalog", len(data))
		}
	}
	return pkgs, false, nil
}

// InvalidateCatalog drops the cached catalog for token.
func (c *Client) InvalidateCatalog(ctx context.Context, token string) error {
	return c.backend.Delete(ctx, c.catalogKey(token))
}

func (c *Client) catalogKey(token string) string {
	return c.keyer.CatalogKey(token, cache.CatalogKeyOpts{
		BaseURL:  c.baseURL,
		Type:     c.typ,
		MaxPages: c.maxPages,
	})
}

func (c *Client) fetchCatalog(ctx context.Context) ([]charm.Package, error) {
	var pkgs []charm.Package
	for page := 1; page <= c.maxPages; page++ {
		var data storeResponse
		u := fmt.Sprintf("%s/beta/store.json?page=%d", c.baseURL, page)
		if err := c.Get(ctx, u, &data); err != nil {
			return nil, classify(err, "catalog page %d", page)
		}
		if len(data.Packages) == 0 {
			break
		}
		for _, entry := range data.Packages {
			if entry.Package.Type != c.typ {
				continue
			}
			pkgs = append(pkgs, charm.Package{
				Name:        entry.Package.Name,
				Description: entry.Package.Description,
				Platforms:   entry.Package.Platforms,
				URL:         c.LandingURL(entry.Package.Name),
			})
		}
	}
	return pkgs, nil
}

// FetchConsumers returns the names of charms that provide or require iface.
func (c *Client) FetchConsumers(ctx context.Context, iface string) (charm.ConsumerSet, error) {
	var data integrationResponse
	u := fmt.Sprintf("%s/integrations/%s.json", c.baseURL, url.PathEscape(iface))
	if err := c.Get(ctx, u, &data); err != nil {
		return nil, classify(err, "consumers of %s", iface)
	}
	return charm.NewConsumerSet(
		names(data.OtherCharms.Providers),
		names(data.OtherCharms.Requirers),
	), nil
}

// FetchPage retrieves a landing page. The caller must close the body.
func (c *Client) FetchPage(ctx context.Context, pageURL string) (io.ReadCloser, error) {
	return c.Open(ctx, pageURL, map[string]string{"Accept": "text/html"})
}

func classify(err error, format string, args ...any) error {
	if errors.Is(err, integrations.ErrParse) {
		return errs.Wrap(errs.ErrCodeParse, err, format, args...)
	}
	return errs.Wrap(errs.ErrCodeFetch, err, format, args...)
}

func names(entries []integrationCharm) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Name)
	}
	return out
}

type storeResponse struct {
	Packages []storeEntry `json:"packages"`
}

type storeEntry struct {
	Package storePackage `json:"package"`
}

type storePackage struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Platforms   []string `json:"platforms"`
	Type        string   `json:"type"`
}

type integrationResponse struct {
	OtherCharms struct {
		Providers []integrationCharm `json:"providers"`
		Requirers []integrationCharm `json:"requirers"`
	} `json:"other_charms"`
}

type integrationCharm struct {
	Name string `json:"name"`
}
