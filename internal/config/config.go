package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Default configuration values.
// These values are chosen for polite crawling of public websites while
// keeping single-site audit times reasonable.
const (
	// DefaultTimeout is the connection timeout for each HTTP request.
	// 30 seconds is generous for public sites; slower responses usually
	// indicate a problem worth surfacing rather than waiting out.
	DefaultTimeout = 30 * time.Second

	// DefaultCrawlDepth of 3 reaches most content linked from the home
	// page without wandering into deep archive or pagination chains.
	DefaultCrawlDepth = 3

	// DefaultBatchSize of 4 concurrent audits balances throughput with
	// politeness. Each audit already rate-limits its own requests, so
	// this mainly bounds memory and file-handle usage.
	DefaultBatchSize = 4

	// DefaultMaxPages is the maximum number of pages to crawl per site.
	// This prevents runaway crawling on large or infinitely-generating
	// sites. Users can override this via the --max-pages CLI flag.
	DefaultMaxPages = 50

	// AppName is the application name used for XDG directory paths.
	AppName = "aeoscan"

	// DefaultCrawlDelay is the delay between requests during crawling.
	// This is a politeness setting; a declared robots.txt crawl-delay
	// takes precedence when larger.
	DefaultCrawlDelay = 1 * time.Second

	// DefaultUserAgent identifies the auditor in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify auditor traffic in their logs.
	DefaultUserAgent = "aeoscan/1.0 (+https://github.com/aeoscan/aeoscan)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 10MB covers heavyweight marketing pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultRetentionDays is how long captured evidence is kept before
	// the retention job purges stored excerpts.
	DefaultRetentionDays = 30

	// DefaultSiteType selects the pillar weighting profile when the user
	// does not specify one.
	DefaultSiteType = "marketing"

	// RetentionDaysEnv overrides DefaultRetentionDays when set to a
	// positive integer.
	RetentionDaysEnv = "AEOSCAN_RETENTION_DAYS"
)

// Config holds all configuration options for an audit run.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., CrawlConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Timeout is the connection timeout for each HTTP request.
	// This applies to individual connections, not the overall audit duration.
	Timeout time.Duration

	// CrawlDepth is the maximum recursion depth for web crawling.
	// Depth 0 means only fetch the initial page.
	CrawlDepth int

	// MaxPages is the maximum number of pages to crawl per site.
	// A value of 0 means use the default (DefaultMaxPages).
	MaxPages int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// BatchSize is the number of concurrent audits when processing
	// multiple targets.
	BatchSize int

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .aeoscan in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the config file.
	SiteConfigs *File

	// RubricPath is an optional path to a rubric YAML file.
	// When empty, the embedded default rubric is used.
	RubricPath string

	// SiteType selects the pillar weighting profile used for scoring
	// (marketing, blog, docs, ecommerce).
	SiteType string

	// EvidenceMode controls how much captured content is stored.
	// Extract-only is the default: hashes and counts without excerpts.
	EvidenceMode model.EvidenceMode

	// RetentionDays is how long evidence excerpts are kept before purge.
	RetentionDays int

	// JSONReport enables JSON report output instead of human-readable format.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown report output.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the report.
	// When set, the report is written to this file instead of stdout.
	ReportFile string

	// Targets is the list of site URLs or domains to audit.
	Targets []string

	// DBDir is the directory path for storing the SQLite database.
	// When empty, the XDG data directory is used.
	DBDir string

	// SaveToDB indicates whether to save audit results to the database.
	SaveToDB bool

	// CrawlDelay is the delay between HTTP requests during crawling.
	// A robots.txt crawl-delay larger than this takes precedence.
	CrawlDelay time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests and the
	// token matched against robots.txt user-agent blocks.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Set to 0 to use the default.
	MaxBodySize int64
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, delays).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:       DefaultTimeout,
		CrawlDepth:    DefaultCrawlDepth,
		MaxPages:      DefaultMaxPages,
		BatchSize:     DefaultBatchSize,
		CrawlDelay:    DefaultCrawlDelay,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		SiteType:      DefaultSiteType,
		EvidenceMode:  model.EvidenceModeExtractOnly,
		RetentionDays: RetentionDaysFromEnv(),
	}
}

// RetentionDaysFromEnv resolves the retention window, preferring the
// AEOSCAN_RETENTION_DAYS environment variable when it holds a positive
// integer and falling back to DefaultRetentionDays otherwise.
func RetentionDaysFromEnv() int {
	if v := os.Getenv(RetentionDaysEnv); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			return days
		}
	}
	return DefaultRetentionDays
}

// XDGDataDir returns the XDG data directory for aeoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/aeoscan
// On macOS: ~/Library/Application Support/aeoscan
// On Windows: %LOCALAPPDATA%\aeoscan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for aeoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/aeoscan
// On macOS: ~/Library/Application Support/aeoscan
// On Windows: %APPDATA%\aeoscan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for aeoscan.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/aeoscan
// On macOS: ~/Library/Caches/aeoscan
// On Windows: %LOCALAPPDATA%\aeoscan\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// ValidSiteTypes are the weighting profiles the scoring rubric knows.
var ValidSiteTypes = []string{"marketing", "blog", "docs", "ecommerce"}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any scanning begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to audit
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no scanning
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// CrawlDelay must be non-negative
	if c.CrawlDelay < 0 {
		return ErrInvalidCrawlDelay
	}

	// MaxBodySize must be positive if set
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if !c.EvidenceMode.Valid() {
		return ErrInvalidEvidenceMode
	}

	if c.RetentionDays <= 0 {
		return ErrInvalidRetentionDays
	}

	valid := false
	for _, st := range ValidSiteTypes {
		if c.SiteType == st {
			valid = true
			break
		}
	}
	if !valid {
		return ErrInvalidSiteType
	}

	return nil
}
