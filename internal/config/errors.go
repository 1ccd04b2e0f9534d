package config

import "errors"

// Validation errors returned by Config.Validate.
//
// Design decision: package-level sentinels so callers can branch with
// errors.Is; none of these need dynamic values, so errors.New over
// fmt.Errorf.
var (
	// ErrNoTarget means the command line named no site to audit.
	ErrNoTarget = errors.New("no target specified: provide at least one site URL")

	// ErrInvalidTimeout rejects zero or negative request timeouts,
	// which would fail every connection immediately.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidBatchSize rejects a non-positive concurrency limit.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats rejects --json together with
	// --markdown; a run emits one format.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidCrawlDelay rejects negative politeness delays; zero
	// disables the delay.
	ErrInvalidCrawlDelay = errors.New("invalid crawl delay: must be non-negative")

	// ErrInvalidMaxBodySize rejects negative body limits; zero selects
	// the default cap.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidEvidenceMode rejects evidence modes other than "full"
	// and "extract-only".
	ErrInvalidEvidenceMode = errors.New("invalid evidence mode: must be full or extract-only")

	// ErrInvalidRetentionDays rejects a non-positive retention window;
	// stored evidence always has a bounded lifetime.
	ErrInvalidRetentionDays = errors.New("invalid retention days: must be positive")

	// ErrInvalidSiteType rejects site types without a weighting
	// profile in the rubric.
	ErrInvalidSiteType = errors.New("invalid site type: must be marketing, blog, docs, or ecommerce")
)
