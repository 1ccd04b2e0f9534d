// Package model defines the core data structures used throughout aeoscan.
//
// This package contains the following main types:
//   - PageSignals: Extracted signals from a crawled page (metadata, headings, schema blocks)
//   - EvidenceRecord: A redacted content snapshot supporting an audit finding
//   - ScoreResult: The hierarchical scoring output for one scanned page
//   - ScanReport: The main scan result structure
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (crawler, score, evidence, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
