package probe

import (
	"context"
	"iter"
	"time"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
)

// Default search space for the tls-certificates interface library.
var (
	DefaultLibraryPath = "lib/charms/tls_certificates_interface/"
	DefaultVersions    = []string{"v0", "v1", "v2", "v3", "v4"}
	DefaultConventions = []string{"/tree/main/", "/tree/", "/tree/src/"}
)

// Checker performs a header-only existence check on a URL.
// It reports false for any failure.
type Checker interface {
	Exists(ctx context.Context, url string) bool
}

// CheckerFunc adapts a function to [Checker].
type CheckerFunc func(ctx context.Context, url string) bool

// Exists calls f.
func (f CheckerFunc) Exists(ctx context.Context, url string) bool { return f(ctx, url) }

// Candidate is one URL in the search space.
type Candidate struct {
	Convention string
	Version    string
	URL        string
}

// Options configures the search space of a [Prober].
type Options struct {
	LibraryPath string
	Versions    []string
	Conventions []string

	// Timeout bounds each existence check. Zero leaves the checker's own
	// timeout in charge.
	Timeout time.Duration
}

func (o *Options) setDefaults() {
	if o.LibraryPath == "" {
		o.LibraryPath = DefaultLibraryPath
	}
	if len(o.Versions) == 0 {
		o.Versions = DefaultVersions
	}
	if len(o.Conventions) == 0 {
		o.Conventions = DefaultConventions
	}
}

// Prober searches repositories for library versions.
// It is safe for concurrent use; each call to [Prober.Probe] is sequential.
type Prober struct {
	checker Checker
	opts    Options
}

// New creates a Prober. Zero-valued options fall back to the defaults.
func New(checker Checker, opts Options) *Prober {
	opts.setDefaults()
	return &Prober{checker: checker, opts: opts}
}

// Versions returns the recognised version tags in probe order.
func (p *Prober) Versions() []string { return p.opts.Versions }

// Size is the number of candidates probed for a repository with no match.
func (p *Prober) Size() int { return len(p.opts.Conventions) * len(p.opts.Versions) }

// Candidates lazily yields the search space for repoURL, conventions outer
// and versions inner. Nothing is allocated for candidates that are never
// pulled.
func (p *Prober) Candidates(repoURL string) iter.Seq[Candidate] {
	return func(yield func(Candidate) bool) {
		for _, conv := range p.opts.Conventions {
			for _, v := range p.opts.Versions {
				c := Candidate{
					Convention: conv,
					Version:    v,
					URL:        repoURL + conv + p.opts.LibraryPath + v,
				}
				if !yield(c) {
					return
				}
			}
		}
	}
}

// Probe returns the first version whose candidate path exists.
//
// An unresolved repository is not probed and yields [charm.Unresolved].
// A cancelled context stops the search early with [charm.NotFound].
func (p *Prober) Probe(ctx context.Context, repo charm.Repository) charm.Detection {
	if !repo.Resolved() {
		return charm.Detection{Outcome: charm.Unresolved}
	}

	var d charm.Detection
	for c := range p.Candidates(repo.URL) {
		if ctx.Err() != nil {
			break
		}
		d.Attempts++
		if p.exists(ctx, c.URL) {
			d.Outcome = charm.Found
			d.Version = c.Version
			d.Candidate = c.URL
			return d
		}
	}
	d.Outcome = charm.NotFound
	return d
}

// ProbeURL is a convenience wrapper for a bare repository URL.
func (p *Prober) ProbeURL(ctx context.Context, repoURL string) charm.Detection {
	return p.Probe(ctx, charm.Repository{URL: repoURL})
}

func (p *Prober) exists(ctx context.Context, url string) bool {
	if p.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.Timeout)
		defer cancel()
	}
	return p.checker.Exists(ctx, url)
}
