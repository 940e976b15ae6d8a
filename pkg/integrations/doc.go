// Package integrations provides the HTTP plumbing shared by upstream API
// clients.
//
// # Overview
//
// The [Client] type wraps an *http.Client with:
//   - JSON, text and streaming GET helpers
//   - Header-only existence checks ([Client.Exists]) used by the version prober
//   - Response caching through [cache.Cache] ([Client.Cached])
//   - Status mapping to the sentinel errors [ErrNotFound], [ErrNetwork] and [ErrParse]
//   - Observability hooks for every request
//
// GET requests may be retried on transient failures when a [RetryPolicy]
// is set; 404s, parse errors and HEAD checks are never retried. A failure
// that survives the policy is reported to the caller, which decides
// whether it is fatal.
//
// Upstream-specific clients live in subpackages:
//
//   - [charmhub]: catalog listing, interface consumers and landing pages
//
// [charmhub]: github.com/saltiyazan/charmhub-scrape/pkg/integrations/charmhub
// [cache.Cache]: github.com/saltiyazan/charmhub-scrape/pkg/cache.Cache
package integrations
