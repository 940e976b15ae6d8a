// Package pkg provides the libraries behind charmscan, a survey of which
// Charmhub charms consume an interface and which version of its charm
// library they ship.
//
// # Overview
//
// The pkg directory is organized into these areas:
//
//  1. [charm] - Domain types (packages, repositories, detections)
//  2. [core] - Repository resolution ([core/repo]) and library probing ([core/probe])
//  3. [survey] - Aggregation passes, folding, sorting and the live view
//  4. [integrations] - HTTP plumbing and the Charmhub client
//  5. [cache], [config], [errors], [observability], [buildinfo] - Supporting infrastructure
//
// # Architecture
//
// The data flow of one pass:
//
//	Charmhub catalog + interface consumers
//	         ↓
//	    [core/repo] (landing page → source repository)
//	         ↓
//	    [core/probe] (HEAD existence checks per convention × version)
//	         ↓
//	    [survey] (fold into rows and summary)
//	         ↓
//	    table / JSON / TUI / HTTP API
//
// Per-charm failures become placeholders in the affected row. Only catalog
// and consumer fetch failures abort a pass.
//
// [charm]: github.com/saltiyazan/charmhub-scrape/pkg/charm
// [core]: github.com/saltiyazan/charmhub-scrape/pkg/core
// [core/repo]: github.com/saltiyazan/charmhub-scrape/pkg/core/repo
// [core/probe]: github.com/saltiyazan/charmhub-scrape/pkg/core/probe
// [survey]: github.com/saltiyazan/charmhub-scrape/pkg/survey
// [integrations]: github.com/saltiyazan/charmhub-scrape/pkg/integrations
// [cache]: github.com/saltiyazan/charmhub-scrape/pkg/cache
// [config]: github.com/saltiyazan/charmhub-scrape/pkg/config
// [errors]: github.com/saltiyazan/charmhub-scrape/pkg/errors
// [observability]: github.com/saltiyazan/charmhub-scrape/pkg/observability
// [buildinfo]: github.com/saltiyazan/charmhub-scrape/pkg/buildinfo
package pkg
