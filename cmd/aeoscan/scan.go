package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aeoscan/aeoscan/internal/config"
	"github.com/aeoscan/aeoscan/internal/database"
	"github.com/aeoscan/aeoscan/internal/log"
	"github.com/aeoscan/aeoscan/internal/model"
	"github.com/aeoscan/aeoscan/internal/pipeline"
	"github.com/aeoscan/aeoscan/internal/report"
	"github.com/aeoscan/aeoscan/internal/rubric"
)

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan [domain]",
		Short: "Audit a website for answer-engine optimization",
		Long: `Scan crawls a website and scores its pages for answer-engine optimization.

The crawl honors robots.txt rules and crawl delays, discovers pages through
sitemaps, and extracts per-page signals:
- Structured data (JSON-LD blocks and schema types)
- Content structure (headings, lists, word counts)
- Metadata (title, meta description, canonical, Open Graph)
- Crawlability (robots rules, noindex directives)

Each page is scored 0-10 against a weighted rubric, with severity caps
applied for critical findings. Redacted evidence supporting the findings
is stored locally.

Examples:
  # Audit a single site
  aeoscan scan example.com

  # Audit multiple sites concurrently
  aeoscan scan example.com docs.example.com blog.example.com

  # Score with the documentation site weighting profile
  aeoscan scan --site-type docs docs.example.com

  # Output a Markdown report to a file
  aeoscan scan --markdown -o report.md example.com

  # Use a custom rubric
  aeoscan scan -r myrubric.yaml example.com

Configuration file (.aeoscan) example:
  defaults:
    siteType: marketing
  sites:
    docs.example.com:
      siteType: docs
      depth: 5
      sitemaps:
        - https://docs.example.com/sitemap.xml`,
		Args: cobra.ArbitraryArgs,
		RunE: runScanCmd,
	}

	// Crawl behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().DurationP("scan-timeout", "T", 0,
		"Overall deadline for the whole scan (0 means no deadline)")
	cmd.Flags().IntP("depth", "d", config.DefaultCrawlDepth,
		"Maximum crawl recursion depth")
	cmd.Flags().IntP("max-pages", "p", config.DefaultMaxPages,
		"Maximum number of pages to crawl per site")
	cmd.Flags().Duration("delay", config.DefaultCrawlDelay,
		"Minimum delay between requests (robots.txt crawl-delay overrides when larger)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")

	// Scoring flags
	cmd.Flags().StringP("site-type", "s", config.DefaultSiteType,
		"Site type for pillar weighting (marketing, blog, docs, ecommerce)")
	cmd.Flags().StringP("rubric", "r", "",
		"Rubric YAML file path (default: embedded rubric)")

	// Evidence flags
	cmd.Flags().String("evidence-mode", string(model.EvidenceModeExtractOnly),
		"Evidence storage mode: full or extract-only")

	// Batch scanning flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent audits")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .aeoscan in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	return cmd
}

// runScanCmd executes the scan command.
func runScanCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging with secret masking
	verbose := getVerboseFlag(cmd)
	logger := log.NewSecureLogger(os.Stderr, verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	scanTimeout, err := cmd.Flags().GetDuration("scan-timeout")
	if err != nil {
		return err
	}
	if scanTimeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, scanTimeout)
		defer cancel()
	}

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runScan(ctx, cfg, logger)
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

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDepth, err = cmd.Flags().GetInt("depth")
	if err != nil {
		return nil, err
	}

	cfg.MaxPages, err = cmd.Flags().GetInt("max-pages")
	if err != nil {
		return nil, err
	}

	cfg.CrawlDelay, err = cmd.Flags().GetDuration("delay")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.SiteType, err = cmd.Flags().GetString("site-type")
	if err != nil {
		return nil, err
	}

	cfg.RubricPath, err = cmd.Flags().GetString("rubric")
	if err != nil {
		return nil, err
	}

	evidenceMode, err := cmd.Flags().GetString("evidence-mode")
	if err != nil {
		return nil, err
	}
	cfg.EvidenceMode = model.EvidenceMode(evidenceMode)

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
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

	// Always save to database using XDG data directory
	cfg.SaveToDB = true
	cfg.DBDir = config.XDGDataDir()

	// Get positional arguments (domains)
	cfg.Targets = args

	return cfg, nil
}

// runScan executes the scan.
func runScan(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting scan",
		"targets", cfg.Targets,
		"siteType", cfg.SiteType,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Load the scoring rubric up front; every target shares it
	r, err := loadRubric(cfg.RubricPath)
	if err != nil {
		return err
	}
	logger.Info("rubric loaded", "version", r.Version, "checks", r.CheckCount())

	// Open database connection if saving is enabled
	var db *database.AuditDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		logger.Info("database opened", "dir", cfg.DBDir)
	}

	client := &http.Client{Timeout: cfg.Timeout}

	// Use batch processor for parallel audits if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchScan(ctx, cfg, client, r, db, logger)
	}

	// Single target or sequential auditing
	return runSequentialScan(ctx, cfg, client, r, db, logger)
}

// loadRubric loads the rubric from the given path, or the embedded
// default rubric when no path is configured.
func loadRubric(path string) (*rubric.Rubric, error) {
	if path != "" {
		r, err := rubric.Load(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load rubric %s: %w", path, err)
		}
		return r, nil
	}
	r, err := rubric.Default()
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rubric: %w", err)
	}
	return r, nil
}

// runSequentialScan audits targets one at a time.
func runSequentialScan(ctx context.Context, cfg *config.Config, client *http.Client, r *rubric.Rubric, db *database.AuditDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Create pipeline with site-specific options
		p := createPipelineForTarget(client, r, db, logger, cfg, target)

		scanReport := model.NewScanReport(target)

		fmt.Printf("Auditing %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, scanReport); err != nil {
			logger.Error("scan failed", "domain", target, "error", err)
			fmt.Fprintf(os.Stderr, "Scan error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Audit completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "domain", target, "error", err)
		}
	}

	return nil
}

// runBatchScan audits multiple targets concurrently using BatchProcessor.
func runBatchScan(ctx context.Context, cfg *config.Config, client *http.Client, r *rubric.Rubric, db *database.AuditDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch audit of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; per-site depth and sitemap overrides are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Batch mode cannot vary the pipeline per target, so the
			// defaults apply to every site.
			return createPipelineForTarget(client, r, db, logger, cfg, "")
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(scanReport *model.ScanReport, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Audit completed: %s\n", index+1, len(cfg.Targets), scanReport.Domain)

		// Generate and output report
		if err := outputReport(cfg, scanReport); err != nil {
			logger.Error("report failed", "domain", scanReport.Domain, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch audit completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// createPipelineForTarget creates a pipeline with the given configuration.
// An empty target applies the config file defaults only.
func createPipelineForTarget(client *http.Client, r *rubric.Rubric, db *database.AuditDB, logger *slog.Logger, cfg *config.Config, target string) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	siteConfig := getSiteConfig(cfg, target)

	// Site-specific values override global flags
	crawlDepth := cfg.CrawlDepth
	if siteConfig.Depth > 0 {
		crawlDepth = siteConfig.Depth
	}
	maxPages := cfg.MaxPages
	if siteConfig.MaxPages > 0 {
		maxPages = siteConfig.MaxPages
	}
	siteType := cfg.SiteType
	if siteConfig.SiteType != "" {
		siteType = siteConfig.SiteType
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineCrawlDepth(crawlDepth),
		pipeline.WithPipelineCrawlMaxPages(maxPages),
		pipeline.WithPipelineCrawlDelay(cfg.CrawlDelay),
		pipeline.WithPipelineUserAgent(cfg.UserAgent),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineEvidenceMode(cfg.EvidenceMode),
		pipeline.WithPipelineSiteType(siteType),
	}

	// Add sitemap overrides if configured
	if len(siteConfig.Sitemaps) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineSitemaps(siteConfig.Sitemaps))
	}

	// A nil *database.AuditDB must become a nil interface so the
	// evidence and persist steps disable themselves.
	var store pipeline.EvidenceWriter
	var saver pipeline.ReportSaver
	if db != nil {
		store = db
		saver = db
	}

	return pipeline.DefaultPipeline(client, r, store, saver, pipelineOpts, configOpts...)
}

// getSiteConfig returns the site-specific configuration for a target.
// Falls back to defaults if no site-specific config exists.
func getSiteConfig(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}

	// Strip any scheme so config file keys stay plain domains
	cleanTarget := target
	for _, prefix := range []string{"http://", "https://"} {
		cleanTarget = strings.TrimPrefix(cleanTarget, prefix)
	}

	return cfg.SiteConfigs.GetSiteConfig(cleanTarget)
}

// outputReport outputs the scan report in the requested format.
func outputReport(cfg *config.Config, scanReport *model.ScanReport) error {
	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with secure permissions (0600)
		// Reports may reference evidence content that should only be
		// readable by the owner
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full report wrapped with version metadata)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(scanReport)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(scanReport)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output)
	_, err := writer.Write(scanReport)
	return err
}
