// Package database is the local SQLite store behind aeoscan.
//
// AuditDB keeps three kinds of rows: evidence records (redacted
// content plus retention state), persisted scan reports for history
// and comparison, and an append-only log of retention job runs.
//
// Design decision: modernc.org/sqlite, the CGO-free driver. A local
// audit tool wants a single-file database that cross-compiles
// cleanly; WAL mode gives enough read concurrency for the history
// queries that run while a scan writes.
package database
