package repo

import (
	"net/url"
	"strings"
)

// Known source-hosting domains. Matching is a case-insensitive substring
// test against the whole URL.
const (
	ForgeDomain     = "github.com"
	LaunchpadDomain = "launchpad.net"
	OpenDevDomain   = "opendev.org"

	bugTrackerHost = "bugs." + LaunchpadDomain
	sourceHost     = "git." + LaunchpadDomain

	issuesMarker  = "/issues"
	filebugMarker = "+filebug"
)

var sourceDomains = []string{ForgeDomain, LaunchpadDomain, OpenDevDomain}

// HasDomain reports whether u mentions domain, ignoring case.
func HasDomain(u, domain string) bool {
	return strings.Contains(strings.ToLower(u), strings.ToLower(domain))
}

// IsSourceHost reports whether u points at one of the known source hosts.
func IsSourceHost(u string) bool {
	for _, d := range sourceDomains {
		if HasDomain(u, d) {
			return true
		}
	}
	return false
}

// TrimTrailingSlash removes exactly one trailing slash.
// "https://github.com/a/b//" becomes "https://github.com/a/b/".
func TrimTrailingSlash(u string) string {
	return strings.TrimSuffix(u, "/")
}

// StripIssues removes the first "/issues" path segment and everything after
// it. Postcondition: the result contains no "/issues".
func StripIssues(u string) string {
	if i := strings.Index(u, issuesMarker); i >= 0 {
		return u[:i]
	}
	return u
}

// StripFilebug removes the first "+filebug" marker and everything after it.
// The slash preceding the marker is kept; callers that concatenate paths
// should follow with [TrimTrailingSlash].
func StripFilebug(u string) string {
	if i := strings.Index(u, filebugMarker); i >= 0 {
		return u[:i]
	}
	return u
}

// IsBugTracker reports whether u's host is the Launchpad bug tracker.
func IsBugTracker(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return strings.EqualFold(parsed.Hostname(), bugTrackerHost)
}

// RewriteBugHost replaces the Launchpad bug-tracker host with the
// source-browsing host. Other URLs are returned unchanged.
func RewriteBugHost(u string) string {
	if !IsBugTracker(u) {
		return u
	}
	i := strings.Index(strings.ToLower(u), bugTrackerHost)
	return u[:i] + sourceHost + u[i+len(bugTrackerHost):]
}

// normalizeHost applies host-specific post-processing to a selected link.
func normalizeHost(u string) string {
	if !IsBugTracker(u) {
		return u
	}
	return TrimTrailingSlash(StripFilebug(RewriteBugHost(u)))
}
