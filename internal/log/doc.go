// Package log builds *slog.Logger values that mask sensitive data
// before it reaches the log output.
//
// An audit run handles two kinds of material that must never land in
// a log file: credentials belonging to the operator (API keys, auth
// headers, session cookies) and personal data scraped from the site
// under audit (email addresses in page text). SecureHandler wraps any
// slog.Handler and replaces both with a fixed mask, matching on
// attribute key names and on value shape. The masking applies at
// every level, so even verbose debug output is safe to share.
//
// Typical use:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	slog.SetDefault(logger)
//
//	logger.Info("fetched page",
//	    "url", "https://example.com",       // kept
//	    "cookie", "session=abc123",         // masked
//	)
//
// NewSecureJSONLogger produces the same logger with JSON output for
// aggregation pipelines.
package log
