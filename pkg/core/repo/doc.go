// Package repo resolves a charm's source repository from its Charmhub
// landing page.
//
// # Heuristics
//
// The landing page is scraped into a flat list of hyperlinks ([ExtractLinks]).
// [Select] then applies two ordered heuristics:
//
//  1. The first link labelled "Homepage", when it points at a known source
//     host (GitHub, Launchpad or OpenDev). One trailing slash is removed.
//  2. Otherwise the first link labelled "Submit a bug", when it points at a
//     known source host. GitHub issue-tracker suffixes ("/issues...") are
//     stripped to recover the repository root.
//
// Launchpad bug-tracker URLs from either heuristic are rewritten to the
// source-browsing host and the "+filebug" suffix is removed.
//
// # Transforms
//
// Each URL rewrite is a small pure function ([TrimTrailingSlash],
// [StripIssues], [StripFilebug], [RewriteBugHost]) so it can be tested on
// its own. None of them validate their input; a string without the relevant
// marker is returned unchanged.
package repo
