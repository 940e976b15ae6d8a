// Package config loads charmscan settings from a TOML file.
//
// Every key has a default, so the file is optional. Command-line flags are
// applied on top of the loaded values by the caller.
package config

import (
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/saltiyazan/charmhub-scrape/pkg/cache"
	"github.com/saltiyazan/charmhub-scrape/pkg/core/probe"
	errs "github.com/saltiyazan/charmhub-scrape/pkg/errors"
	"github.com/saltiyazan/charmhub-scrape/pkg/integrations/charmhub"
	"github.com/saltiyazan/charmhub-scrape/pkg/survey"
)

// AppName names the configuration and cache directories.
const AppName = "charmscan"

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Backends lists the accepted cache backends.
var Backends = []string{BackendFile, BackendRedis, BackendNone}

// Config is the complete set of settings.
type Config struct {
	Interface string        `toml:"interface"`
	Catalog   CatalogConfig `toml:"catalog"`
	Library   LibraryConfig `toml:"library"`
	HTTP      HTTPConfig    `toml:"http"`
	Cache     CacheConfig   `toml:"cache"`
	Server    ServerConfig  `toml:"server"`
}

// CatalogConfig selects the store endpoint and how much of it to read.
type CatalogConfig struct {
	BaseURL    string `toml:"base_url"`
	Type       string `toml:"type"`
	MaxPages   int    `toml:"max_pages"`
	CacheToken string `toml:"cache_token"` // Empty means the UTC date
}

// LibraryConfig is the probe search space.
type LibraryConfig struct {
	Path        string   `toml:"path"`
	Versions    []string `toml:"versions"`
	Conventions []string `toml:"conventions"`
}

// HTTPConfig bounds outbound requests.
type HTTPConfig struct {
	Timeout      Duration `toml:"timeout"`
	ProbeTimeout Duration `toml:"probe_timeout"`
	Concurrency  int      `toml:"concurrency"`
	Retries      int      `toml:"retries"` // Extra attempts for transient store failures; off by default
}

// CacheConfig selects the response cache.
type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"` // Empty means DefaultCacheDir
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string such as "10s".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Interface: survey.DefaultInterface,
		Catalog: CatalogConfig{
			BaseURL:  charmhub.DefaultBaseURL,
			Type:     charmhub.DefaultType,
			MaxPages: charmhub.DefaultMaxPages,
		},
		Library: LibraryConfig{
			Path:        probe.DefaultLibraryPath,
			Versions:    slices.Clone(probe.DefaultVersions),
			Conventions: slices.Clone(probe.DefaultConventions),
		},
		HTTP: HTTPConfig{
			Timeout:      Duration{10 * time.Second},
			ProbeTimeout: Duration{5 * time.Second},
			Concurrency:  8,
		},
		Cache: CacheConfig{
			Backend:  BackendFile,
			RedisURL: "redis://localhost:6379/0",
			TTL:      Duration{cache.TTLHTTP},
		},
		Server: ServerConfig{Addr: ":3000"},
	}
}

// Load reads path on top of the defaults. An empty path means
// [DefaultPath], which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errs.New(errs.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	invalid := func(format string, args ...any) error {
		return errs.New(errs.ErrCodeInvalidConfig, format, args...)
	}
	if err := errs.ValidateCharmName(c.Interface); err != nil {
		return invalid("interface: %s", errs.UserMessage(err))
	}
	if u, err := url.Parse(c.Catalog.BaseURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return invalid("catalog.base_url: %q is not an http(s) URL", c.Catalog.BaseURL)
	}
	if c.Catalog.MaxPages < 1 {
		return invalid("catalog.max_pages must be at least 1")
	}
	if strings.TrimSpace(c.Library.Path) == "" {
		return invalid("library.path must not be empty")
	}
	if len(c.Library.Versions) == 0 {
		return invalid("library.versions must not be empty")
	}
	if len(c.Library.Conventions) == 0 {
		return invalid("library.conventions must not be empty")
	}
	if c.HTTP.Concurrency < 1 {
		return invalid("http.concurrency must be positive")
	}
	if c.HTTP.Retries < 0 {
		return invalid("http.retries must not be negative")
	}
	if c.HTTP.Timeout.Duration < 0 || c.HTTP.ProbeTimeout.Duration < 0 {
		return invalid("http timeouts must not be negative")
	}
	if !slices.Contains(Backends, c.Cache.Backend) {
		return invalid("cache.backend %q (want %s)", c.Cache.Backend, strings.Join(Backends, ", "))
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return invalid("cache.redis_url is required for the redis backend")
	}
	return nil
}

// CacheDir returns the configured cache directory or the default one.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	return DefaultCacheDir()
}

// DefaultPath is $XDG_CONFIG_HOME/charmscan/config.toml, falling back to
// ~/.config.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// DefaultCacheDir is $XDG_CACHE_HOME/charmscan, falling back to ~/.cache.
func DefaultCacheDir() (string, error) {
	if dir := os.Getenv("XDG_CACHE_HOME"); dir != "" {
		return filepath.Join(dir, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
