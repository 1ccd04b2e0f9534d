package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/aeoscan/aeoscan/internal/evidence"
	"github.com/aeoscan/aeoscan/internal/model"
)

// AuditDB provides SQLite-based storage for evidence records, scan
// reports, and retention job history.
//
// Design decision: We use a single database file for all audited domains
// rather than one file per domain. This keeps scan history queries and
// the retention purge simple, and backup is a single file copy.
type AuditDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// AuditDB is the persistence backend for the retention job.
var _ evidence.Store = (*AuditDB)(nil)

// Options configures AuditDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates an AuditDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*AuditDB, error) {
	dbPath := filepath.Join(dbDir, "aeoscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection avoids
	// SQLITE_BUSY during concurrent inserts from the scan pipeline.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	adb := &AuditDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := adb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return adb, nil
}

// Close closes the database connection.
func (adb *AuditDB) Close() error {
	return adb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (adb *AuditDB) createTables() error {
	schema := `
	-- Evidence records store redacted content snapshots per page
	CREATE TABLE IF NOT EXISTS evidence (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		page_url TEXT NOT NULL,
		type TEXT NOT NULL,
		selector TEXT,
		mode TEXT NOT NULL,
		content TEXT NOT NULL DEFAULT '',
		content_hash TEXT NOT NULL,
		redaction_counts TEXT,
		metadata TEXT,
		original_length INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME NOT NULL,
		purged INTEGER NOT NULL DEFAULT 0,
		purged_at DATETIME
	);

	CREATE INDEX IF NOT EXISTS idx_evidence_page ON evidence(page_url);
	CREATE INDEX IF NOT EXISTS idx_evidence_created ON evidence(created_at);
	CREATE INDEX IF NOT EXISTS idx_evidence_purged ON evidence(purged);

	-- Scan reports store complete scan results as JSON
	CREATE TABLE IF NOT EXISTS scan_reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		domain TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		overall_score REAL,
		issue_summary TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_reports_domain ON scan_reports(domain);
	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON scan_reports(timestamp);

	-- Retention runs are an append-only audit log of purge executions
	CREATE TABLE IF NOT EXISTS retention_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		retention_days INTEGER NOT NULL,
		dry_run INTEGER NOT NULL DEFAULT 0,
		purged_count INTEGER NOT NULL DEFAULT 0,
		kept_count INTEGER NOT NULL DEFAULT 0,
		error_count INTEGER NOT NULL DEFAULT 0,
		ran_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_retention_ran_at ON retention_runs(ran_at);
	`

	_, err := adb.db.ExecContext(context.Background(), schema)
	return err
}

// evidenceMetadata is the free-form JSON stored alongside an evidence
// row. Kept small; the structured columns carry everything queries need.
type evidenceMetadata struct {
	Selector       string `json:"selector,omitempty"`
	OriginalLength int    `json:"original_length"`
}

// InsertEvidence stores a captured evidence record and returns its ID.
func (adb *AuditDB) InsertEvidence(ctx context.Context, record *model.EvidenceRecord) (int64, error) {
	countsJSON, err := json.Marshal(record.RedactionCounts)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize redaction counts: %w", err)
	}
	metaJSON, err := json.Marshal(evidenceMetadata{
		Selector:       record.Selector,
		OriginalLength: record.OriginalLength,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to serialize metadata: %w", err)
	}

	query := `
	INSERT INTO evidence (page_url, type, selector, mode, content, content_hash, redaction_counts, metadata, original_length, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		record.PageURL,
		record.Type,
		record.Selector,
		string(record.Mode()),
		record.Content.Excerpt(),
		record.ContentHash,
		string(countsJSON),
		string(metaJSON),
		record.OriginalLength,
		formatTimestamp(record.CreatedAt),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert evidence: %w", err)
	}

	return result.LastInsertId()
}

// GetEvidence retrieves an evidence record by ID.
// Returns nil without error when the record does not exist.
func (adb *AuditDB) GetEvidence(ctx context.Context, id int64) (*model.EvidenceRecord, error) {
	query := `
	SELECT id, page_url, type, selector, mode, content, content_hash, redaction_counts, original_length, created_at, purged, purged_at
	FROM evidence
	WHERE id = ?
	`

	var (
		record     model.EvidenceRecord
		mode       string
		content    string
		countsJSON sql.NullString
		createdAt  string
		purgedAt   sql.NullString
	)

	err := adb.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.PageURL,
		&record.Type,
		&record.Selector,
		&mode,
		&content,
		&record.ContentHash,
		&countsJSON,
		&record.OriginalLength,
		&createdAt,
		&record.Purged,
		&purgedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evidence: %w", err)
	}

	record.CreatedAt = parseTimestamp(createdAt)
	if purgedAt.Valid && purgedAt.String != "" {
		record.PurgedAt = parseTimestamp(purgedAt.String)
	}
	if countsJSON.Valid && countsJSON.String != "" {
		if err := json.Unmarshal([]byte(countsJSON.String), &record.RedactionCounts); err != nil {
			return nil, fmt.Errorf("failed to parse redaction counts: %w", err)
		}
	}

	// A purged record keeps its mode but reports zero-length content;
	// OriginalLength is the only place the pre-purge size survives.
	switch {
	case model.EvidenceMode(mode) == model.EvidenceModeFull && !record.Purged:
		record.Content = model.FullContent{Text: content}
	case model.EvidenceMode(mode) == model.EvidenceModeFull:
		record.Content = model.FullContent{}
	case record.Purged:
		record.Content = model.ExtractOnlyContent{}
	default:
		record.Content = model.ExtractOnlyContent{ContentLength: record.OriginalLength}
	}

	return &record, nil
}

// SelectPurgeCandidates returns unpurged evidence rows created before
// the cutoff. Implements evidence.Store.
func (adb *AuditDB) SelectPurgeCandidates(ctx context.Context, cutoff time.Time) ([]evidence.PurgeCandidate, error) {
	query := `
	SELECT id, mode, COALESCE(metadata, ''), created_at
	FROM evidence
	WHERE created_at < ? AND purged = 0
	ORDER BY id
	`

	rows, err := adb.db.QueryContext(ctx, query, formatTimestamp(cutoff))
	if err != nil {
		return nil, fmt.Errorf("failed to select purge candidates: %w", err)
	}
	defer rows.Close()

	var candidates []evidence.PurgeCandidate
	for rows.Next() {
		var (
			candidate evidence.PurgeCandidate
			createdAt string
		)
		if err := rows.Scan(&candidate.ID, &candidate.Mode, &candidate.Metadata, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan purge candidate: %w", err)
		}
		candidate.CreatedAt = parseTimestamp(createdAt)
		candidates = append(candidates, candidate)
	}

	return candidates, rows.Err()
}

// PurgeEvidence strips the stored excerpt of one record, preserving the
// content hash, redaction counts, and original length. Re-purging an
// already-purged row is a no-op. Implements evidence.Store.
func (adb *AuditDB) PurgeEvidence(ctx context.Context, id int64, purgedAt time.Time) error {
	query := `
	UPDATE evidence
	SET content = '', purged = 1, purged_at = ?
	WHERE id = ? AND purged = 0
	`

	if _, err := adb.db.ExecContext(ctx, query, formatTimestamp(purgedAt), id); err != nil {
		return fmt.Errorf("failed to purge evidence %d: %w", id, err)
	}
	return nil
}

// RetentionStats computes age and mode buckets relative to now.
// Implements evidence.Store.
func (adb *AuditDB) RetentionStats(ctx context.Context, now time.Time) (evidence.RetentionStats, error) {
	query := `
	SELECT
		COUNT(*),
		COALESCE(SUM(CASE WHEN created_at < ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN created_at < ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN created_at < ? THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN mode = 'full' AND purged = 0 THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN mode = 'extract-only' OR purged = 1 THEN 1 ELSE 0 END), 0)
	FROM evidence
	`

	var stats evidence.RetentionStats
	err := adb.db.QueryRowContext(ctx, query,
		formatTimestamp(now.AddDate(0, 0, -30)),
		formatTimestamp(now.AddDate(0, 0, -60)),
		formatTimestamp(now.AddDate(0, 0, -90)),
	).Scan(
		&stats.Total,
		&stats.OlderThan30Days,
		&stats.OlderThan60Days,
		&stats.OlderThan90Days,
		&stats.FullMode,
		&stats.ExtractOnlyMode,
	)
	if err != nil {
		return evidence.RetentionStats{}, fmt.Errorf("failed to compute retention stats: %w", err)
	}

	return stats, nil
}

// InsertRetentionRun appends one job execution to the audit log.
// Implements evidence.Store.
func (adb *AuditDB) InsertRetentionRun(ctx context.Context, run *model.RetentionJobRun) error {
	query := `
	INSERT INTO retention_runs (retention_days, dry_run, purged_count, kept_count, error_count, ran_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	result, err := adb.db.ExecContext(ctx, query,
		run.RetentionDays,
		run.DryRun,
		run.PurgedCount,
		run.KeptCount,
		run.ErrorCount,
		formatTimestamp(run.RanAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert retention run: %w", err)
	}

	run.ID, _ = result.LastInsertId() //nolint:errcheck // best-effort ID backfill

	return nil
}

// ListRetentionRuns returns the most recent retention job runs, newest
// first, up to limit (all runs when limit <= 0).
func (adb *AuditDB) ListRetentionRuns(ctx context.Context, limit int) ([]model.RetentionJobRun, error) {
	query := `
	SELECT id, retention_days, dry_run, purged_count, kept_count, error_count, ran_at
	FROM retention_runs
	ORDER BY ran_at DESC, id DESC
	`
	args := make([]any, 0, 1)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := adb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list retention runs: %w", err)
	}
	defer rows.Close()

	var runs []model.RetentionJobRun
	for rows.Next() {
		var (
			run   model.RetentionJobRun
			ranAt string
		)
		if err := rows.Scan(&run.ID, &run.RetentionDays, &run.DryRun, &run.PurgedCount, &run.KeptCount, &run.ErrorCount, &ranAt); err != nil {
			return nil, fmt.Errorf("failed to scan retention run: %w", err)
		}
		run.RanAt = parseTimestamp(ranAt)
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// SaveScanReport saves a complete scan report as JSON together with the
// overall score and a severity summary for cheap history listings.
func (adb *AuditDB) SaveScanReport(ctx context.Context, report *model.ScanReport) error {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}

	summary := make(map[string]int)
	for sev, count := range report.IssueCountsBySeverity() {
		summary[sev.String()] = count
	}
	summaryJSON, _ := json.Marshal(summary) //nolint:errcheck,errchkjson // simple string-keyed map; Marshal won't fail

	var overall float64
	if report.SiteScore != nil {
		overall = report.SiteScore.OverallScore
	}

	query := `
	INSERT INTO scan_reports (domain, report_json, overall_score, issue_summary)
	VALUES (?, ?, ?, ?)
	`

	_, err = adb.db.ExecContext(ctx, query,
		report.Domain,
		string(reportJSON),
		overall,
		string(summaryJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save scan report: %w", err)
	}

	return nil
}

// GetLatestScanReport retrieves the most recent scan report for a domain.
// Returns nil without error when no scan exists.
func (adb *AuditDB) GetLatestScanReport(ctx context.Context, domain string) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	LIMIT 1
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, domain).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// GetScanReportByID retrieves a scan report by its database ID.
// Returns nil without error when the record does not exist.
func (adb *AuditDB) GetScanReportByID(ctx context.Context, id int64) (*model.ScanReport, error) {
	query := `
	SELECT report_json FROM scan_reports
	WHERE id = ?
	`

	var reportJSON string
	err := adb.db.QueryRowContext(ctx, query, id).Scan(&reportJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan report: %w", err)
	}

	var report model.ScanReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report: %w", err)
	}

	return &report, nil
}

// ListScannedDomains returns all domains with at least one stored scan.
func (adb *AuditDB) ListScannedDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT domain FROM scan_reports
	ORDER BY domain
	`

	rows, err := adb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// ScanReportMetadata contains summary information about a scan report.
// Used for displaying scan history without loading the full report.
type ScanReportMetadata struct {
	// ID is the unique identifier of the scan report in the database.
	ID int64

	// Domain is the audited domain.
	Domain string

	// Timestamp is when the scan was performed.
	Timestamp time.Time

	// OverallScore is the 0-10 site score at the time of the scan.
	OverallScore float64

	// IssueSummary contains counts of issues by severity name.
	IssueSummary map[string]int
}

// GetScanHistoryWithMetadata retrieves scan report metadata for a domain,
// newest first. More efficient than loading full reports when only the
// history listing is needed.
func (adb *AuditDB) GetScanHistoryWithMetadata(ctx context.Context, domain string) ([]ScanReportMetadata, error) {
	query := `
	SELECT id, domain, timestamp, COALESCE(overall_score, 0), COALESCE(issue_summary, '')
	FROM scan_reports
	WHERE domain = ?
	ORDER BY timestamp DESC, id DESC
	`

	rows, err := adb.db.QueryContext(ctx, query, domain)
	if err != nil {
		return nil, fmt.Errorf("failed to get scan history: %w", err)
	}
	defer rows.Close()

	var results []ScanReportMetadata
	for rows.Next() {
		var (
			meta        ScanReportMetadata
			timestamp   string
			summaryJSON string
		)
		if err := rows.Scan(&meta.ID, &meta.Domain, &timestamp, &meta.OverallScore, &summaryJSON); err != nil {
			return nil, fmt.Errorf("failed to scan metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		meta.IssueSummary = make(map[string]int)
		if summaryJSON != "" {
			if err := json.Unmarshal([]byte(summaryJSON), &meta.IssueSummary); err != nil {
				meta.IssueSummary = make(map[string]int)
			}
		}

		results = append(results, meta)
	}

	return results, rows.Err()
}

// formatTimestamp renders a time in the SQLite default datetime format.
// All timestamps are stored in UTC so lexical DATETIME comparisons in
// SQL match chronological order.
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02 15:04:05")
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
