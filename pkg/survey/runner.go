package survey

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/charm"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/observability"
)

// DefaultInterface is the relation interface surveyed when none is given.
const DefaultInterface = "tls-certificates"

// CatalogSource lists the charms of the store.
type CatalogSource interface {
	FetchCatalog(ctx context.Context, token string, refresh bool) ([]charm.Package, bool, error)
}

// ConsumerSource lists the charms declaring an interface.
type ConsumerSource interface {
	FetchConsumers(ctx context.Context, iface string) (charm.ConsumerSet, error)
}

// Options configures one pass.
type Options struct {
	Interface  string // Defaults to DefaultInterface
	CacheToken string // Defaults to the current UTC date
	Refresh    bool   // Bypass the cached catalog and cached resolutions
}

// ValidateAndSetDefaults fills in defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Interface == "" {
		o.Interface = DefaultInterface
	}
	if err := errs.ValidateCharmName(o.Interface); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidInput, err, "interface")
	}
	if o.CacheToken == "" {
		o.CacheToken = DateToken(time.Now())
	}
	return nil
}

// DateToken returns the catalog cache token for t: its UTC date. Catalog
// entries therefore roll over once a day.
func DateToken(t time.Time) string {
	return t.UTC().Format(time.DateOnly)
}

// Result is the outcome of a pass.
type Result struct {
	PassID     string
	Interface  string
	CreatedAt  time.Time
	Results    []PackageResult // Catalog order
	Consumers  charm.ConsumerSet
	Versions   []string
	Rows       []Row
	Summary    Summary
	CatalogHit bool
	Stats      Stats
}

// Stats holds timings and counts for a pass.
type Stats struct {
	CatalogTime time.Duration
	SurveyTime  time.Duration
	TotalTime   time.Duration
	Resolved    int
	Detected    int
}

// Sorted returns a copy of r with the per-charm results reordered and the
// rows and summary folded again. r is left untouched.
func (r *Result) Sorted(field SortField, dir Direction) *Result {
	c := *r
	c.Results = slices.Clone(r.Results)
	SortResults(c.Results, field, dir)
	c.Rows, c.Summary = Fold(c.Results, c.Consumers, c.Versions)
	return &c
}

// Runner executes survey passes. It holds no pass state, so one Runner can
// serve concurrent passes.
type Runner struct {
	Catalog    CatalogSource
	Consumers  ConsumerSource
	Aggregator *Aggregator
	Logger     *log.Logger
}

// NewRunner creates a Runner. A nil logger uses the default logger.
func NewRunner(catalog CatalogSource, consumers ConsumerSource, agg *Aggregator, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Catalog:    catalog,
		Consumers:  consumers,
		Aggregator: agg,
		Logger:     logger,
	}
}

// Execute runs a complete pass: catalog, consumers, then the per-charm
// survey. Catalog and consumer failures are returned, as is cancellation
// of ctx before the survey finishes; per-charm failures are not.
func (r *Runner) Execute(ctx context.Context, opts Options) (result *Result, err error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	start := time.Now()
	passID := uuid.NewString()
	hooks := observability.Survey()
	hooks.OnPassStart(ctx, passID)
	defer func() {
		rows := 0
		if result != nil {
			rows = len(result.Rows)
		}
		hooks.OnPassComplete(ctx, passID, rows, time.Since(start), err)
	}()

	logger := r.Logger.With("pass", passID[:8])
	res := &Result{
		PassID:    passID,
		Interface: opts.Interface,
		CreatedAt: start,
		Versions:  r.Aggregator.Versions(),
	}

	catalogStart := time.Now()
	pkgs, hit, err := r.Catalog.FetchCatalog(ctx, opts.CacheToken, opts.Refresh)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}
	res.CatalogHit = hit
	res.Stats.CatalogTime = time.Since(catalogStart)
	logger.Info("fetched catalog",
		"charms", len(pkgs),
		"cached", hit,
		"duration", res.Stats.CatalogTime)

	consumers, err := r.Consumers.FetchConsumers(ctx, opts.Interface)
	if err != nil {
		return nil, fmt.Errorf("consumers: %w", err)
	}
	res.Consumers = consumers
	logger.Info("fetched consumers", "interface", opts.Interface, "charms", len(consumers))

	surveyCtx := ctx
	if opts.Refresh {
		surveyCtx = cache.WithRefresh(ctx)
	}
	surveyStart := time.Now()
	res.Results = r.Aggregator.Survey(surveyCtx, pkgs)
	res.Stats.SurveyTime = time.Since(surveyStart)
	// Charms cut short by cancellation read as misses; drop the pass.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("survey: %w", err)
	}
	res.Rows, res.Summary = Fold(res.Results, consumers, res.Versions)

	for _, pr := range res.Results {
		if pr.Repo.Resolved() {
			res.Stats.Resolved++
		}
		if pr.Detection.Found() {
			res.Stats.Detected++
		}
	}
	res.Stats.TotalTime = time.Since(start)
	logger.Info("surveyed charms",
		"resolved", res.Stats.Resolved,
		"detected", res.Stats.Detected,
		"duration", res.Stats.SurveyTime)

	return res, nil
}
