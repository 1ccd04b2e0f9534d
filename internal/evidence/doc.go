// Package evidence captures redacted content snapshots and enforces the
// evidence retention policy.
//
// # Capture
//
// Capture hashes the original content with SHA-256 before any redaction,
// runs a fixed sequence of redaction passes (emails, credit cards, phone
// numbers, street addresses, token-like parameters), and stores either a
// redacted excerpt (full mode) or nothing but the hash and counts
// (extract-only mode). Redaction substitutes placeholder tokens rather
// than deleting text so length-based heuristics downstream stay stable,
// and the placeholders never re-match any pass, making redaction
// idempotent.
//
// # Retention
//
// The Purger strips excerpt content from full-mode records older than the
// retention cutoff while preserving hashes and redaction counts for audit
// history. Rows are never deleted. Per-record failures are counted and
// logged without aborting the batch, and the job-level wrapper never
// returns an unhandled failure to its scheduler.
package evidence
