package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitelens/sitelens/internal/classify"
	"github.com/sitelens/sitelens/internal/config"
	"github.com/sitelens/sitelens/internal/crawler"
	"github.com/sitelens/sitelens/internal/database"
	"github.com/sitelens/sitelens/internal/extract"
	"github.com/sitelens/sitelens/internal/log"
	"github.com/sitelens/sitelens/internal/model"
	"github.com/sitelens/sitelens/internal/pipeline"
	"github.com/sitelens/sitelens/internal/report"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [site-url]...",
		Short: "Crawl a website and classify its pages",
		Long: `Crawl discovers a site's pages by following same-site links from the
start URL (falling back to the sitemap for sparsely linked sites),
extracts the readable content of each page, classifies every page's
business role, and scores pages by update priority.

Examples:
  # Crawl a single site
  sitelens crawl https://example.com

  # Crawl several sites concurrently
  sitelens crawl site-a.com site-b.com site-c.com

  # Local extraction only, skipping the remote reader service
  sitelens crawl --no-reader https://example.com

  # Markdown report written to a file, snapshot saved for comparison
  sitelens crawl --markdown -o report.md --save https://example.com

Configuration file (.sitelens) example:
  defaults:
    max_pages: 50
  sites:
    example.com:
      max_pages: 100
      exclude_patterns:
        - "/tag/"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Discovery flags
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to discover per site")
	cmd.Flags().IntP("depth", "d", config.DefaultMaxDepth,
		"Maximum link-hop depth from the start URL")
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Regex patterns; matching URLs are never crawled (repeatable)")
	cmd.Flags().Duration("delay", config.DefaultFetchDelay,
		"Politeness delay between discovery fetches")

	// Extraction flags
	cmd.Flags().Bool("no-reader", false,
		"Skip the remote reader service and extract locally only")
	cmd.Flags().String("reader-host", config.DefaultReaderHost,
		"Base URL of the remote reader service")
	cmd.Flags().Duration("extract-delay", config.DefaultExtractDelay,
		"Politeness delay between page extractions")

	// Batch crawling flags
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of sites crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitelens in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Persistence flags
	cmd.Flags().BoolP("save", "s", false,
		"Save the crawl snapshot for later comparison")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, getVerboseFlag(cmd))
	slog.SetDefault(logger)

	// Graceful shutdown on interrupt; a cancelled crawl still reports
	// the pages it finished.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.MaxDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.ExcludePatterns, err = cmd.Flags().GetStringSlice("exclude")
	if err != nil {
		return nil, err
	}

	cfg.FetchDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	noReader, err := cmd.Flags().GetBool("no-reader")
	if err != nil {
		return nil, err
	}
	cfg.UseReader = !noReader

	cfg.ReaderHost, err = cmd.Flags().GetString("reader-host")
	if err != nil {
		return nil, err
	}

	cfg.ExtractDelay, err = cmd.Flags().GetDuration("extract-delay")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath, err := config.FindConfigFile(cfg.ConfigFilePath)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadFile(configPath)
		if err != nil {
			return nil, err
		}
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.SaveToDB, err = cmd.Flags().GetBool("save")
	if err != nil {
		return nil, err
	}
	cfg.DBDir = config.XDGDataDir()

	// Positional arguments are the sites to crawl. A bare hostname is
	// promoted to https.
	cfg.StartURLs = make([]string, 0, len(args))
	for _, arg := range args {
		normalized, err := normalizeStartURL(arg)
		if err != nil {
			return nil, err
		}
		cfg.StartURLs = append(cfg.StartURLs, normalized)
	}

	return cfg, nil
}

// normalizeStartURL validates a site argument and defaults the scheme
// to https when none was given.
func normalizeStartURL(raw string) (string, error) {
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("invalid site URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("invalid site URL %q: scheme must be http or https", raw)
	}
	if u.Hostname() == "" {
		return "", fmt.Errorf("invalid site URL %q: missing host", raw)
	}
	return u.String(), nil
}

// runCrawl executes the crawl across all start URLs.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"sites", cfg.StartURLs,
		"maxPages", cfg.MaxPages,
		"maxDepth", cfg.MaxDepth,
		"useReader", cfg.UseReader,
		"save", cfg.SaveToDB,
	)

	var db *database.HistoryDB
	if cfg.SaveToDB {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open crawl history: %w", err)
		}
		defer db.Close()
		logger.Info("crawl history opened", "dir", cfg.DBDir)
	}

	if len(cfg.StartURLs) > 1 && cfg.Concurrency > 1 {
		return runBatchCrawl(ctx, cfg, db, logger)
	}
	return runSequentialCrawl(ctx, cfg, db, logger)
}

// runSequentialCrawl crawls the sites one at a time with per-page
// progress output.
func runSequentialCrawl(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	for _, startURL := range cfg.StartURLs {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		siteCfg, err := siteConfigFor(cfg, startURL)
		if err != nil {
			return err
		}

		progress := func(current, total int, pageURL string) {
			fmt.Printf("[%d/%d] %s\n", current, total, pageURL)
		}
		sc, err := crawlerForSite(siteCfg, logger, progress)
		if err != nil {
			return err
		}

		fmt.Printf("Crawling %s...\n", startURL)
		startTime := time.Now()

		pages, err := sc.CrawlSite(ctx, startURL)
		if err != nil {
			logger.Error("crawl failed", "site", startURL, "error", err)
			fmt.Fprintf(os.Stderr, "Crawl error for %s: %v\n", startURL, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

		crawlReport := buildReport(startURL, pages, elapsed)

		if err := outputReport(cfg, crawlReport); err != nil {
			logger.Error("report failed", "site", startURL, "error", err)
		}
		if err := saveCrawlReport(ctx, db, crawlReport, logger); err != nil {
			logger.Error("failed to save crawl", "site", startURL, "error", err)
		}
	}

	return nil
}

// runBatchCrawl crawls multiple sites concurrently.
func runBatchCrawl(ctx context.Context, cfg *config.Config, db *database.HistoryDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch crawl of %d sites (concurrency: %d)...\n\n",
		len(cfg.StartURLs), cfg.Concurrency)

	bp := pipeline.NewBatchProcessor(
		func(startURL string) *pipeline.SiteCrawler {
			siteCfg, err := siteConfigFor(cfg, startURL)
			if err != nil {
				// Invalid start URLs are rejected during flag parsing,
				// so this only fires on unparseable config patterns.
				logger.Warn("falling back to global settings", "site", startURL, "error", err)
				siteCfg = cfg
			}
			sc, err := crawlerForSite(siteCfg, logger, nil)
			if err != nil {
				logger.Warn("falling back to default crawler", "site", startURL, "error", err)
				return pipeline.New(pipeline.WithLogger(logger))
			}
			return sc
		},
		pipeline.WithConcurrency(cfg.Concurrency),
		pipeline.WithBatchLogger(logger),
	)

	var mu sync.Mutex
	results, err := bp.ProcessBatchWithCallback(ctx, cfg.StartURLs,
		func(result pipeline.SiteResult, index int) {
			mu.Lock()
			defer mu.Unlock()

			if result.Err != nil {
				fmt.Fprintf(os.Stderr, "[%d/%d] Crawl error for %s: %v\n",
					index+1, len(cfg.StartURLs), result.StartURL, result.Err)
				return
			}

			fmt.Printf("[%d/%d] Crawl completed: %s (%d pages)\n",
				index+1, len(cfg.StartURLs), result.StartURL, len(result.Pages))

			crawlReport := buildReport(result.StartURL, result.Pages, 0)
			if err := outputReport(cfg, crawlReport); err != nil {
				logger.Error("report failed", "site", result.StartURL, "error", err)
			}
			if err := saveCrawlReport(ctx, db, crawlReport, logger); err != nil {
				logger.Error("failed to save crawl", "site", result.StartURL, "error", err)
			}
		})
	if err != nil {
		return err
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d sites failed to crawl", failed, len(results))
	}
	return nil
}

// siteConfigFor applies the config-file overrides for a start URL's host.
func siteConfigFor(cfg *config.Config, startURL string) (*config.Config, error) {
	u, err := url.Parse(startURL)
	if err != nil {
		return nil, fmt.Errorf("invalid site URL %q: %w", startURL, err)
	}
	host := crawler.StripWWW(u.Hostname())
	return cfg.SiteConfigs.For(host).Apply(cfg), nil
}

// crawlerForSite wires up the discovery and extraction pipeline for one
// site's effective configuration.
func crawlerForSite(cfg *config.Config, logger *slog.Logger, progress pipeline.ProgressFunc) (*pipeline.SiteCrawler, error) {
	patterns, err := crawler.CompileExcludePatterns(cfg.ExcludePatterns)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude pattern: %w", err)
	}

	headers := siteHeaders(cfg)

	discoverer := crawler.New(
		crawler.WithMaxPages(cfg.MaxPages),
		crawler.WithMaxDepth(cfg.MaxDepth),
		crawler.WithDelay(cfg.FetchDelay),
		crawler.WithExcludePatterns(patterns),
		crawler.WithHeaders(headers),
		crawler.WithLogger(logger),
	)

	extractor := extract.NewExtractor(cfg.UseReader,
		extract.WithReaderHost(cfg.ReaderHost),
		extract.WithHeaders(headers),
		extract.WithExtractorLogger(logger),
	)

	opts := []pipeline.Option{
		pipeline.WithDiscoverer(discoverer),
		pipeline.WithExtractor(extractor),
		pipeline.WithExtractDelay(cfg.ExtractDelay),
		pipeline.WithLogger(logger),
	}
	if progress != nil {
		opts = append(opts, pipeline.WithProgress(progress))
	}

	return pipeline.New(opts...), nil
}

// siteHeaders folds the configured cookie into the extra request
// headers for the site. Nil when the site needs neither.
func siteHeaders(cfg *config.Config) map[string]string {
	if cfg.Cookie == "" && len(cfg.Headers) == 0 {
		return nil
	}
	headers := make(map[string]string, len(cfg.Headers)+1)
	for name, value := range cfg.Headers {
		headers[name] = value
	}
	if cfg.Cookie != "" {
		headers["Cookie"] = cfg.Cookie
	}
	return headers
}

// buildReport classifies and scores crawled pages into a sorted report.
func buildReport(startURL string, pages []*model.ExtractedPage, elapsed time.Duration) *model.CrawlReport {
	site := startURL
	if u, err := url.Parse(startURL); err == nil && u.Hostname() != "" {
		site = crawler.StripWWW(u.Hostname())
	}

	crawlReport := model.NewCrawlReport(site, startURL)
	crawlReport.Elapsed = elapsed

	for _, page := range pages {
		role := classify.PageRole(page.URL, page)
		score := classify.PriorityScore(page, role)
		crawlReport.AddPage(page, role, score)
	}

	crawlReport.SortByPriority()
	return crawlReport
}

// outputReport renders the report to the configured destination and format.
func outputReport(cfg *config.Config, crawlReport *model.CrawlReport) error {
	output := os.Stdout
	if cfg.ReportFile != "" {
		if dir := filepath.Dir(cfg.ReportFile); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create report directory: %w", err)
			}
		}
		f, err := os.Create(cfg.ReportFile)
		if err != nil {
			return fmt.Errorf("failed to create report file: %w", err)
		}
		defer f.Close()
		output = f
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output)
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewTextWriter(output)
	}

	if _, err := w.Write(crawlReport); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// saveCrawlReport persists the crawl snapshot when saving is enabled.
func saveCrawlReport(ctx context.Context, db *database.HistoryDB, crawlReport *model.CrawlReport, logger *slog.Logger) error {
	if db == nil {
		return nil
	}
	id, err := db.SaveCrawl(ctx, crawlReport)
	if err != nil {
		return err
	}
	logger.Info("crawl snapshot saved", "site", crawlReport.Site, "crawlID", id)
	return nil
}
