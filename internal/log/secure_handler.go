package log

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strings"
)

// MaskValue replaces any attribute value judged sensitive.
const MaskValue = "***REDACTED***"

// maskedKeys lists attribute keys whose values are always masked,
// regardless of what the value looks like. Lookup is done on the
// lowercased key.
var maskedKeys = map[string]bool{
	// HTTP headers that carry credentials
	"authorization":       true,
	"cookie":              true,
	"set-cookie":          true,
	"x-api-key":           true,
	"x-auth-token":        true,
	"proxy-authorization": true,

	// Credential material
	"password":      true,
	"passwd":        true,
	"secret":        true,
	"token":         true,
	"api_key":       true,
	"apikey":        true,
	"api-key":       true,
	"access_token":  true,
	"refresh_token": true,
	"private_key":   true,
	"privatekey":    true,
	"secret_key":    true,
	"secretkey":     true,
	"credential":    true,
	"credentials":   true,
	"auth":          true,

	// Session identifiers
	"session":    true,
	"session_id": true,
	"sessionid":  true,
	"sid":        true,
	"jsessionid": true,
}

// maskedKeywords are substrings that mark a key as sensitive even when
// it is not in maskedKeys ("db_password", "oauth_token"). The bare
// word "key" is deliberately absent: it matches too much ("primary_key",
// "keyboard"), and the key-shaped names that matter are already in
// maskedKeys.
var maskedKeywords = []string{
	"password", "passwd", "secret", "token", "auth",
	"credential", "private",
}

// valuePatterns match values that must be masked no matter which key
// they arrive under. Page text can end up in log attributes, so email
// addresses get the same treatment here that the evidence store gives
// them.
var valuePatterns = []*regexp.Regexp{
	// JWT
	regexp.MustCompile(`^eyJ[A-Za-z0-9_-]*\.eyJ[A-Za-z0-9_-]*\.[A-Za-z0-9_-]*$`),

	// Bearer and Basic authorization values
	regexp.MustCompile(`(?i)^bearer\s+.+`),
	regexp.MustCompile(`(?i)^basic\s+[A-Za-z0-9+/=]+$`),

	// Long opaque alphanumeric strings, the usual API key shape
	regexp.MustCompile(`^[a-zA-Z0-9]{32,}$`),

	// AWS access key ids
	regexp.MustCompile(`^AKIA[0-9A-Z]{16}$`),

	// PEM private key markers
	regexp.MustCompile(`(?i)-----BEGIN.*(PRIVATE|SECRET).*KEY-----`),

	// Email addresses
	regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`),
}

// SecureHandler is a slog.Handler that masks sensitive attributes
// before forwarding records to the handler it wraps.
//
// Design decision: masking lives in a handler wrapper, not a custom
// logger type, so it composes with any slog backend (text, JSON) and
// any component that takes a *slog.Logger sees plain slog.
type SecureHandler struct {
	next slog.Handler
}

// NewSecureHandler wraps next with attribute masking. A nil next falls
// back to slog.Default().Handler().
func NewSecureHandler(next slog.Handler) *SecureHandler {
	if next == nil {
		next = slog.Default().Handler()
	}
	return &SecureHandler{next: next}
}

// Enabled delegates the level decision to the wrapped handler.
func (h *SecureHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle rebuilds the record with masked attributes and forwards it.
func (h *SecureHandler) Handle(ctx context.Context, r slog.Record) error {
	masked := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		masked.AddAttrs(h.scrub(a))
		return true
	})
	return h.next.Handle(ctx, masked)
}

// WithAttrs masks the attributes before handing them to the wrapped
// handler, so preset attributes get the same treatment as per-record
// ones.
func (h *SecureHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	scrubbed := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		scrubbed[i] = h.scrub(a)
	}
	return &SecureHandler{next: h.next.WithAttrs(scrubbed)}
}

// WithGroup returns a masking handler for the named group.
func (h *SecureHandler) WithGroup(name string) slog.Handler {
	return &SecureHandler{next: h.next.WithGroup(name)}
}

// scrub masks one attribute, descending into groups.
func (h *SecureHandler) scrub(a slog.Attr) slog.Attr {
	if a.Value.Kind() == slog.KindGroup {
		members := a.Value.Group()
		scrubbed := make([]slog.Attr, len(members))
		for i, m := range members {
			scrubbed[i] = h.scrub(m)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(scrubbed...)}
	}

	if keyIsSensitive(a.Key) {
		return slog.String(a.Key, MaskValue)
	}

	if a.Value.Kind() == slog.KindString && valueIsSensitive(a.Value.String()) {
		return slog.String(a.Key, MaskValue)
	}

	return a
}

// keyIsSensitive reports whether the key names credential-like data.
func keyIsSensitive(key string) bool {
	lower := strings.ToLower(key)
	if maskedKeys[lower] {
		return true
	}
	for _, kw := range maskedKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// valueIsSensitive reports whether the value matches a masked pattern.
func valueIsSensitive(value string) bool {
	for _, p := range valuePatterns {
		if p.MatchString(value) {
			return true
		}
	}
	return false
}

// handlerOptions maps the verbose flag to a log level. Default output
// stays quiet at Warn; verbose drops to Debug.
func handlerOptions(verbose bool) *slog.HandlerOptions {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return &slog.HandlerOptions{Level: level}
}

// NewSecureLogger returns a text-format *slog.Logger writing to w with
// sensitive attributes masked. Suitable for slog.SetDefault or for
// passing to components that accept *slog.Logger.
func NewSecureLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewTextHandler(w, handlerOptions(verbose))))
}

// NewSecureJSONLogger is NewSecureLogger with JSON output, for log
// aggregation pipelines.
func NewSecureJSONLogger(w io.Writer, verbose bool) *slog.Logger {
	return slog.New(NewSecureHandler(slog.NewJSONHandler(w, handlerOptions(verbose))))
}
