package evidence

import (
	"time"

	"github.com/aeoscan/aeoscan/internal/model"
)

// MaxExcerptLength is the maximum excerpt size stored in full mode.
// Longer redacted content is truncated; the record's OriginalLength
// keeps the untruncated redacted size for audit.
const MaxExcerptLength = 5000

// Capture produces a redacted evidence record from an extracted content
// snippet.
//
// The content hash is computed from the raw pre-redaction content so it
// identifies the original even after the stored excerpt is purged. The
// evidence mode is a scan-wide configuration choice, not a per-snippet
// decision.
//
// Capture is a pure function of its inputs apart from the CreatedAt
// timestamp; it performs no I/O and is safe to call concurrently.
func Capture(rawContent, selector, evidenceType string, mode model.EvidenceMode) model.EvidenceRecord {
	contentHash := model.HashContent(rawContent)
	redacted, counts := Redact(rawContent)

	record := model.EvidenceRecord{
		Type:            evidenceType,
		Selector:        selector,
		ContentHash:     contentHash,
		RedactionCounts: counts,
		OriginalLength:  len(redacted),
		CreatedAt:       time.Now().UTC(),
	}

	switch mode {
	case model.EvidenceModeFull:
		record.Content = model.FullContent{Text: truncate(redacted, MaxExcerptLength)}
	default:
		// Extract-only and any unknown mode store no readable content.
		record.Content = model.ExtractOnlyContent{ContentLength: len(redacted)}
	}

	return record
}

// truncate cuts s to at most maxLen bytes.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}
