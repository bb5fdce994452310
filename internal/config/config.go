package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Timeouts and delays mirror what the
// crawl engine documents: discovery fetches are quick HTML pulls while
// content extraction may wait on a remote reader service.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "sitelens"

	// DefaultMaxPages bounds discovery per site. Fifty pages covers the
	// money/trust/authority surface of most small-business sites while
	// keeping a crawl under a minute of fetch time.
	DefaultMaxPages = 50

	// DefaultMaxDepth is the link-hop bound. Three hops from the home
	// page reaches essentially all human-navigable content.
	DefaultMaxDepth = 3

	// DefaultDiscoveryTimeout is the per-fetch timeout during discovery.
	DefaultDiscoveryTimeout = 15 * time.Second

	// DefaultContentTimeout is the per-fetch timeout during extraction.
	// Twice the discovery timeout because the reader service performs
	// its own upstream fetch before responding.
	DefaultContentTimeout = 30 * time.Second

	// DefaultFetchDelay is the politeness delay between discovery
	// fetches.
	DefaultFetchDelay = 200 * time.Millisecond

	// DefaultExtractDelay is the politeness delay between page
	// extractions.
	DefaultExtractDelay = 500 * time.Millisecond

	// DefaultConcurrency is the number of sites crawled in parallel by
	// the batch processor. Individual sites are always crawled
	// sequentially regardless of this value.
	DefaultConcurrency = 4

	// DefaultReaderHost is the remote markdown-extraction service.
	DefaultReaderHost = "https://r.jina.ai"
)

// Config holds all options for a sitelens run. It is populated from CLI
// flags, merged with the .sitelens file, validated once, and then passed
// down by injection.
//
// Design decision: A single flat struct instead of nested sub-configs.
// The option count is manageable and nesting would only add dots.
type Config struct {
	// StartURLs are the sites to crawl.
	StartURLs []string

	// MaxPages bounds the number of URLs discovered per site.
	MaxPages int

	// MaxDepth bounds link-hop distance from each start URL.
	MaxDepth int

	// ExcludePatterns are regexes; matching URLs are never discovered.
	ExcludePatterns []string

	// UseReader enables the remote reader extraction strategy. When
	// false, pages are extracted by the local parser only.
	UseReader bool

	// ReaderHost overrides the reader service base URL.
	ReaderHost string

	// FetchDelay is the politeness delay between discovery fetches.
	FetchDelay time.Duration

	// ExtractDelay is the politeness delay between page extractions.
	ExtractDelay time.Duration

	// Concurrency is the batch crawl parallelism across sites.
	Concurrency int

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport selects JSON report output. Mutually exclusive with
	// MarkdownReport.
	JSONReport bool

	// MarkdownReport selects Markdown report output. Mutually exclusive
	// with JSONReport.
	MarkdownReport bool

	// ReportFile, when set, receives the report instead of stdout.
	ReportFile string

	// ConfigFilePath is an explicit .sitelens path. Empty means search
	// the working directory and then the home directory.
	ConfigFilePath string

	// Cookie is sent as the Cookie header on every request to the
	// site being crawled. Only settable per site via the config file.
	Cookie string

	// Headers are extra request headers for the site being crawled,
	// keyed by header name. Only settable per site via the config file.
	Headers map[string]string

	// SiteConfigs holds per-site overrides loaded from the config file.
	SiteConfigs *File

	// DBDir is the directory of the crawl-history database. Crawls are
	// persisted there for cross-crawl change detection.
	DBDir string

	// SaveToDB enables persisting crawl snapshots.
	SaveToDB bool
}

// NewConfig returns a Config with every default applied.
// Defaults are set explicitly rather than relying on zero values
// because most of them are non-zero; the constructor doubles as their
// documentation.
func NewConfig() *Config {
	return &Config{
		MaxPages:     DefaultMaxPages,
		MaxDepth:     DefaultMaxDepth,
		UseReader:    true,
		ReaderHost:   DefaultReaderHost,
		FetchDelay:   DefaultFetchDelay,
		ExtractDelay: DefaultExtractDelay,
		Concurrency:  DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for sitelens, the default
// home of the crawl-history database.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitelens.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for sitelens.
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks the configuration and returns the first problem
// found as a sentinel error. It runs once, after flag parsing and
// before any crawling.
func (c *Config) Validate() error {
	if len(c.StartURLs) == 0 {
		return ErrNoStartURL
	}
	if c.MaxPages <= 0 {
		return ErrInvalidMaxPages
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.FetchDelay < 0 || c.ExtractDelay < 0 {
		return ErrInvalidDelay
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
