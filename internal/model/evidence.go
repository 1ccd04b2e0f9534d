package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// EvidenceMode controls how much content an evidence record retains.
type EvidenceMode string

const (
	// EvidenceModeFull stores a redacted excerpt alongside the hash.
	EvidenceModeFull EvidenceMode = "full"

	// EvidenceModeExtractOnly never stores readable content, only the
	// hash, selector, and redaction counts.
	EvidenceModeExtractOnly EvidenceMode = "extract-only"
)

// Valid reports whether the mode is one of the two supported values.
func (m EvidenceMode) Valid() bool {
	return m == EvidenceModeFull || m == EvidenceModeExtractOnly
}

// RedactionCounts records how many instances of each sensitive category
// were replaced during evidence capture.
type RedactionCounts struct {
	Emails      int `json:"emails"`
	Phones      int `json:"phones"`
	Addresses   int `json:"addresses"`
	Tokens      int `json:"tokens"`
	CreditCards int `json:"credit_cards"`
	Total       int `json:"total"`
}

// Sum recomputes Total from the per-category counts.
func (r *RedactionCounts) Sum() int {
	return r.Emails + r.Phones + r.Addresses + r.Tokens + r.CreditCards
}

// EvidenceContent is the mode-dependent content of an evidence record.
//
// Design decision: A tagged variant rather than a mode string plus optional
// excerpt field makes the illegal state "extract-only record with a stored
// excerpt" unrepresentable. The two implementations are FullContent and
// ExtractOnlyContent.
type EvidenceContent interface {
	// Mode returns the evidence mode this content belongs to.
	Mode() EvidenceMode

	// Excerpt returns the stored redacted excerpt, empty for extract-only
	// and purged content.
	Excerpt() string

	// Length returns the length of the redacted content at capture time.
	// After a purge this reports zero for full-mode records.
	Length() int
}

// FullContent stores a redacted excerpt. Created only in full mode.
type FullContent struct {
	// Text is the redacted (and possibly truncated) excerpt.
	Text string `json:"text"`
}

// Mode implements EvidenceContent.
func (FullContent) Mode() EvidenceMode { return EvidenceModeFull }

// Excerpt implements EvidenceContent.
func (c FullContent) Excerpt() string { return c.Text }

// Length implements EvidenceContent.
func (c FullContent) Length() int { return len(c.Text) }

// ExtractOnlyContent stores no readable content, only the redacted length.
type ExtractOnlyContent struct {
	// ContentLength is the length of the redacted content that was
	// deliberately not stored.
	ContentLength int `json:"content_length"`
}

// Mode implements EvidenceContent.
func (ExtractOnlyContent) Mode() EvidenceMode { return EvidenceModeExtractOnly }

// Excerpt implements EvidenceContent.
func (ExtractOnlyContent) Excerpt() string { return "" }

// Length implements EvidenceContent.
func (c ExtractOnlyContent) Length() int { return c.ContentLength }

// EvidenceRecord is a redacted snapshot supporting an audit finding.
//
// The ContentHash is computed from the pre-redaction content and never
// changes; it is the only field that must survive a retention purge.
type EvidenceRecord struct {
	// ID is the database identifier; zero until persisted.
	ID int64 `json:"id,omitempty"`

	// PageURL is the page the evidence was captured from.
	PageURL string `json:"page_url,omitempty"`

	// Type tags what kind of evidence this is (schema_block, meta_tag,
	// heading, content_sample).
	Type string `json:"type"`

	// Selector identifies where in the page the content came from.
	Selector string `json:"selector,omitempty"`

	// ContentHash is the SHA-256 hex digest of the original un-redacted
	// content. Stable across redaction and purge.
	ContentHash string `json:"content_hash"`

	// Content is the mode-dependent stored content.
	Content EvidenceContent `json:"-"`

	// RedactionCounts records what was redacted before storage.
	RedactionCounts RedactionCounts `json:"redaction_counts"`

	// OriginalLength is the full post-redaction content length before
	// any excerpt truncation, preserved through purge for audit.
	// Redaction placeholders mean it can differ from the raw input
	// length; "original" is relative to truncation and purge, not to
	// redaction.
	OriginalLength int `json:"original_length"`

	// CreatedAt is when the evidence was captured.
	CreatedAt time.Time `json:"created_at"`

	// Purged reports whether the retention job has stripped the excerpt.
	Purged bool `json:"purged"`

	// PurgedAt is when the purge happened, zero if never purged.
	PurgedAt time.Time `json:"purged_at,omitzero"`
}

// Mode returns the evidence mode of the stored content.
func (e *EvidenceRecord) Mode() EvidenceMode {
	if e.Content == nil {
		return EvidenceModeExtractOnly
	}
	return e.Content.Mode()
}

// HashContent computes the SHA-256 hex digest used as an evidence
// content hash. Exposed so verification tooling hashes identically.
func HashContent(content string) string {
	sum := sha256.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}

// RetentionJobRun is the append-only audit record of one purge execution.
type RetentionJobRun struct {
	ID            int64     `json:"id,omitempty"`
	RetentionDays int       `json:"retention_days"`
	DryRun        bool      `json:"dry_run"`
	PurgedCount   int       `json:"purged_count"`
	KeptCount     int       `json:"kept_count"`
	ErrorCount    int       `json:"error_count"`
	RanAt         time.Time `json:"ran_at"`
}
