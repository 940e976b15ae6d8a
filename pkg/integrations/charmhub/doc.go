// Package charmhub provides an HTTP client for the Charmhub store.
//
// # Overview
//
// Three upstream resources are consumed:
//
//   - The paginated store listing (/beta/store.json?page=N), filtered to
//     entries of one type (normally "charm").
//   - An interface's consumer list (/integrations/<interface>.json), whose
//     providers and requirers are merged into a [charm.ConsumerSet].
//   - Per-charm landing pages (/<name>), returned raw for link scraping.
//
// # Caching
//
// The consolidated catalog is cached as a single entry keyed by an explicit
// cache token. Passing a new token, or calling [Client.InvalidateCatalog],
// is the only way to drop it; consumer lists and landing pages are always
// fetched fresh.
//
// [charm.ConsumerSet]: github.com/saltiyazan/charmhub-scrape/pkg/charm.ConsumerSet
package charmhub
