// Package report renders scan results in the supported output formats.
//
// Three writers cover the formats aeoscan speaks:
//   - SimpleWriter: plain text for the terminal
//   - JSONWriter / FullJSONWriter: machine-readable output for tooling
//   - MarkdownWriter: shareable documents with tables and charts
//
// Report data lives in the model package; this package only formats
// it. All writers satisfy the Writer interface, so formats can be
// swapped or combined through MultiWriter.
package report
