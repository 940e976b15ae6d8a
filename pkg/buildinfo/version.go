// Package buildinfo provides build-time version information.
//
// Variables are set via ldflags during build:
//
//	go build -ldflags "-X github.com/saltiyazan/charmhub-scrape/pkg/buildinfo.Version=v1.0.0 \
//	    -X github.com/saltiyazan/charmhub-scrape/pkg/buildinfo.Commit=$(git rev-parse HEAD) \
//	    -X github.com/saltiyazan/charmhub-scrape/pkg/buildinfo.Date=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/charmscan
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies outbound requests.
func UserAgent() string {
	return "charmscan/" + Version
}

// Template returns the version template string for cobra.
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s\ncommit: %s\nbuilt: %s\n", Version, Commit, Date)
}
