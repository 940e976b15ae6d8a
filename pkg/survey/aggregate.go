package survey

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/observability"
)

// DefaultConcurrency bounds the number of charms processed at once.
const DefaultConcurrency = 16

// Resolver finds the source repository behind a landing page.
type Resolver interface {
	Resolve(ctx context.Context, landingURL string) (string, error)
}

// Prober detects the vendored library version in a repository.
type Prober interface {
	Probe(ctx context.Context, repo charm.Repository) charm.Detection
	Versions() []string
}

// Aggregator resolves and probes every charm of a catalog.
type Aggregator struct {
	resolver    Resolver
	prober      Prober
	concurrency int
	logger      *log.Logger
}

// AggregatorOptions configures an [Aggregator].
type AggregatorOptions struct {
	Concurrency int // Defaults to DefaultConcurrency
	Logger      *log.Logger
}

// NewAggregator returns an Aggregator using resolver and prober.
func NewAggregator(resolver Resolver, prober Prober, opts AggregatorOptions) *Aggregator {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Aggregator{
		resolver:    resolver,
		prober:      prober,
		concurrency: opts.Concurrency,
		logger:      opts.Logger,
	}
}

// Versions returns the recognised library versions in reporting order.
func (a *Aggregator) Versions() []string { return a.prober.Versions() }

// Aggregate surveys pkgs and folds the results in catalog order.
func (a *Aggregator) Aggregate(ctx context.Context, pkgs []charm.Package, consumers charm.ConsumerSet) ([]Row, Summary) {
	return Fold(a.Survey(ctx, pkgs), consumers, a.Versions())
}

// Survey resolves and probes each package and returns one result per
// package, in input order. Per-package failures are recorded in the result
// and never abort the survey.
func (a *Aggregator) Survey(ctx context.Context, pkgs []charm.Package) []PackageResult {
	results := make([]PackageResult, len(pkgs))
	m := newMemo()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, p := range pkgs {
		g.Go(func() error {
			results[i] = a.survey(gctx, m, p)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (a *Aggregator) survey(ctx context.Context, m *memo, p charm.Package) PackageResult {
	start := time.Now()
	res := PackageResult{Package: p}

	res.Repo = m.repository(p.URL, func() charm.Repository {
		if p.URL == "" {
			return charm.Repository{Err: errs.New(errs.ErrCodeUnresolved, "%s has no landing page", p.Name)}
		}
		url, err := a.resolver.Resolve(ctx, p.URL)
		return charm.Repository{URL: url, Err: err}
	})
	if res.Repo.Err != nil {
		a.logger.Debug("repository unresolved", "charm", p.Name, "err", res.Repo.Err)
	}

	if res.Repo.Resolved() {
		res.Detection = m.detection(res.Repo.URL, func() charm.Detection {
			return a.prober.Probe(ctx, res.Repo)
		})
		if !res.Detection.Found() {
			a.logger.Debug("library not found", "charm", p.Name, "repo", res.Repo.URL, "attempts", res.Detection.Attempts)
		}
	}

	res.Elapsed = time.Since(start)
	observability.Survey().OnCharmComplete(ctx, p.Name, res.Repo.URL, res.Detection.Version, res.Elapsed)
	return res
}

// memo shares resolution and probing outcomes between charms of one pass
// that point at the same landing page or repository.
type memo struct {
	group singleflight.Group

	mu     sync.Mutex
	repos  map[string]charm.Repository
	probes map[string]charm.Detection
}

func newMemo() *memo {
	return &memo{
		repos:  make(map[string]charm.Repository),
		probes: make(map[string]charm.Detection),
	}
}

func (m *memo) repository(landing string, fn func() charm.Repository) charm.Repository {
	if landing == "" {
		return fn()
	}
	return memoize(m, m.repos, "repo:"+landing, landing, fn)
}

func (m *memo) detection(repoURL string, fn func() charm.Detection) charm.Detection {
	return memoize(m, m.probes, "probe:"+repoURL, repoURL, fn)
}

// memoize returns cache[key], computing it at most once per pass. The map is
// checked again inside the flight because an earlier flight may have
// finished between the first lookup and Do.
func memoize[T any](m *memo, cache map[string]T, flight, key string, fn func() T) T {
	lookup := func() (T, bool) {
		m.mu.Lock()
		defer m.mu.Unlock()
		v, ok := cache[key]
		return v, ok
	}
	if v, ok := lookup(); ok {
		return v
	}
	v, _, _ := m.group.Do(flight, func() (any, error) {
		if v, ok := lookup(); ok {
			return v, nil
		}
		v := fn()
		m.mu.Lock()
		cache[key] = v
		m.mu.Unlock()
		return v, nil
	})
	return v.(T)
}
