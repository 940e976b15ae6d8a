package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/saltiyazan/charmhub-scrape/pkg/buildinfo"
	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/observability"
)

// Client provides shared HTTP functionality for all upstream API clients.
// It handles caching, status mapping, and common request headers.
//
// Client is safe for concurrent use.
type Client struct {
	http      *http.Client
	cache     cache.Cache
	keyer     cache.Keyer
	namespace string
	ttl       time.Duration
	headers   map[string]string
	retry     RetryPolicy
}

// NewClient creates a Client with the given cache backend and default headers.
// Cached entries are keyed under namespace and expire after ttl.
// Pass nil for headers if no default headers are needed; pass a nil backend
// to disable caching.
func NewClient(backend cache.Cache, namespace string, ttl time.Duration, headers map[string]string) *Client {
	if backend == nil {
		backend = cache.NewNullCache()
	}
	return &Client{
		http:      NewHTTPClient(),
		cache:     backend,
		keyer:     cache.NewDefaultKeyer(),
		namespace: namespace,
		ttl:       ttl,
		headers:   headers,
	}
}

// SetTimeout changes the per-request timeout of the underlying HTTP client.
// It must be called before the client is shared between goroutines.
func (c *Client) SetTimeout(d time.Duration) {
	if d > 0 {
		c.http.Timeout = d
	}
}

// SetKeyer replaces the key derivation used by [Client.Cached]. A nil
// keyer is ignored. It must be called before the client is shared between
// goroutines.
func (c *Client) SetKeyer(k cache.Keyer) {
	if k != nil {
		c.keyer = k
	}
}

// SetRetry sets how GET requests are retried on network errors and
// non-success statuses other than 404. HEAD requests are never retried.
// It must be called before the client is shared between goroutines.
func (c *Client) SetRetry(p RetryPolicy) { c.retry = p }

// Cache returns the cache backend.
func (c *Client) Cache() cache.Cache { return c.cache }

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, or ctx carries [cache.WithRefresh], the cache is
// bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := c.keyer.HTTPKey(c.namespace, key)
	if !refresh && !cache.Refreshing(ctx) {
		if data, hit, err := c.cache.Get(ctx, fullKey); err == nil && hit {
			if json.Unmarshal(data, v) == nil {
				observability.Cache().OnCacheHit(ctx, "http")
				return nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "http")
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			observability.Cache().OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.Open(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrParse, url, err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.Open(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

// Open performs an HTTP GET and returns the response body on success,
// retrying transient failures per the client's [RetryPolicy].
// The caller must close the body.
func (c *Client) Open(ctx context.Context, url string, headers map[string]string) (io.ReadCloser, error) {
	var body io.ReadCloser
	err := retry(ctx, c.retry, func() error {
		resp, err := c.do(ctx, http.MethodGet, url, headers)
		if err != nil {
			return err
		}
		if err := checkStatus(resp.StatusCode); err != nil {
			resp.Body.Close()
			return fmt.Errorf("GET %s: %w", url, err)
		}
		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}

// Head performs a header-only request and returns the final status code
// after redirects.
func (c *Client) Head(ctx context.Context, url string) (int, error) {
	resp, err := c.do(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Exists reports whether a HEAD request for url succeeds with a 2xx status.
// Every failure, including timeouts, counts as non-existence.
func (c *Client) Exists(ctx context.Context, url string) bool {
	code, err := c.Head(ctx, url)
	return err == nil && checkStatus(code) == nil
}

func (c *Client) do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", buildinfo.UserAgent())
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	hooks := observability.HTTP()
	host, path := req.URL.Host, req.URL.Path
	hooks.OnRequest(ctx, method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, method, host, path, resp.StatusCode, time.Since(start))
	return resp, nil
}

func checkStatus(code int) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	default:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	}
}
