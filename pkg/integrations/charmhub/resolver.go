package charmhub

import "context"

// Resolver maps a landing page to its source repository.
type Resolver interface {
	Resolve(ctx context.Context, landingURL string) (string, error)
}

// CachedResolver remembers successful resolutions in the client's cache.
// Failures are never cached, so a charm whose page was unreachable is
// retried on the next pass.
type CachedResolver struct {
	client  *Client
	inner   Resolver
	refresh bool
}

// CachingResolver wraps inner. With refresh set, cached entries are ignored
// and overwritten.
func (c *Client) CachingResolver(inner Resolver, refresh bool) *CachedResolver {
	return &CachedResolver{client: c, inner: inner, refresh: refresh}
}

// Resolve implements [Resolver].
func (r *CachedResolver) Resolve(ctx context.Context, landingURL string) (string, error) {
	var repo string
	err := r.client.Cached(ctx, "repo:"+landingURL, r.refresh, &repo, func() error {
		var err error
		repo, err = r.inner.Resolve(ctx, landingURL)
		return err
	})
	if err != nil {
		return "", err
	}
	return repo, nil
}
