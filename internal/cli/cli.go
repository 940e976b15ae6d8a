// Package cli implements the charmscan command-line interface.
//
// # Commands
//
//   - scan: survey the catalog and print the table and summary
//   - browse: interactive table with re-sorting and refresh
//   - serve: HTTP API over the latest survey
//   - resolve: resolve one charm's source repository
//   - probe: detect the library version in one repository
//   - cache: manage the response cache
//
// All commands accept --config and --verbose (-v).
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/saltiyazan/charmhub-scrape/pkg/buildinfo"
	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/config"
	"github.com/saltiyazan/charmhub-scrape/pkg/core/probe"
	"github.com/saltiyazan/charmhub-scrape/pkg/core/repo"
	"github.com/saltiyazan/charmhub-scrape/pkg/integrations"
	"github.com/saltiyazan/charmhub-scrape/pkg/integrations/charmhub"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// cacheSchema scopes every cache key; bump it when cached layouts change.
const cacheSchema = "v1:"

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	ConfigPath string
	Config     *config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          "charmscan",
		Short:        "Survey Charmhub charms for interface library usage",
		Long:         `charmscan walks the Charmhub catalog, finds each charm's source repository and reports which version of the tls-certificates interface library it vendors.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.ConfigPath, "config", "", "config file (default $XDG_CONFIG_HOME/charmscan/config.toml)")

	root.AddCommand(c.scanCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.resolveCommand())
	root.AddCommand(c.probeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Service Factory
// =============================================================================

// serviceOptions are per-invocation overrides of the configuration.
type serviceOptions struct {
	noCache     bool
	refresh     bool
	concurrency int
}

// services is the wired survey stack.
type services struct {
	cache    cache.Cache
	charmhub *charmhub.Client
	resolver survey.Resolver
	prober   *probe.Prober
	runner   *survey.Runner
}

func (s *services) Close() error { return s.cache.Close() }

// newServices wires the cache, store client, resolver, prober and runner
// from the loaded configuration.
func (c *CLI) newServices(ctx context.Context, opts serviceOptions) (*services, error) {
	cfg := c.Config
	backend, err := newCache(ctx, cfg, opts.noCache)
	if err != nil {
		return nil, err
	}

	ch := charmhub.NewClient(backend, charmhub.Options{
		BaseURL:  cfg.Catalog.BaseURL,
		Type:     cfg.Catalog.Type,
		MaxPages: cfg.Catalog.MaxPages,
		Timeout:  cfg.HTTP.Timeout.Duration,
		TTL:      cfg.Cache.TTL.Duration,
		Retries:  cfg.HTTP.Retries,
		Keyer:    cache.NewScopedKeyer(nil, cacheSchema),
	})

	// Existence checks are never cached; a library may be added at any time.
	heads := integrations.NewClient(nil, "probe", 0, nil)
	heads.SetTimeout(cfg.HTTP.Timeout.Duration)

	prober := probe.New(heads, probe.Options{
		LibraryPath: cfg.Library.Path,
		Versions:    cfg.Library.Versions,
		Conventions: cfg.Library.Conventions,
		Timeout:     cfg.HTTP.ProbeTimeout.Duration,
	})
	resolver := ch.CachingResolver(repo.NewResolver(ch), opts.refresh)

	concurrency := cfg.HTTP.Concurrency
	if opts.concurrency > 0 {
		concurrency = opts.concurrency
	}
	agg := survey.NewAggregator(resolver, prober, survey.AggregatorOptions{
		Concurrency: concurrency,
		Logger:      c.Logger,
	})

	return &services{
		cache:    backend,
		charmhub: ch,
		resolver: resolver,
		prober:   prober,
		runner:   survey.NewRunner(ch, ch, agg, c.Logger),
	}, nil
}

// surveyOptions builds pass options from the configuration.
func (c *CLI) surveyOptions(refresh bool, token string) survey.Options {
	if token == "" {
		token = c.Config.Catalog.CacheToken
	}
	return survey.Options{
		Interface:  c.Config.Interface,
		CacheToken: token,
		Refresh:    refresh,
	}
}

// newCache opens the configured backend. Caching is disabled when noCache
// is set, when the backend is "none", or when no cache directory can be
// determined.
func newCache(ctx context.Context, cfg *config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		rc, err := cache.NewRedisCache(ctx, cfg.Cache.RedisURL, config.AppName+":")
		if err != nil {
			return nil, fmt.Errorf("open redis cache: %w", err)
		}
		return rc, nil
	}
	dir, err := cfg.CacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}
