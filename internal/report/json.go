package report

import (
	"encoding/json"
	"io"

	"github.com/aeoscan/aeoscan/internal/model"
)

// JSONWriter renders reports as JSON for tool integration.
//
// Design decision: encoding/json over a third-party codec. The report
// is written once per scan, so encoding speed does not matter, and the
// stdlib struct tags are already on the model types.
type JSONWriter struct {
	baseWriter

	// indent switches between compact output and MarshalIndent with
	// the prefix and indent strings below.
	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with an explicit line prefix and
// per-level indent string.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter targeting output. Output is
// compact unless an indent option is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders the full report as JSON.
func (w *JSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(report)
}

// WriteSummary renders just the summary as JSON.
func (w *JSONWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	return w.writeJSON(summary)
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	// Trailing newline so terminal and pipe output ends cleanly.
	return w.output.Write(append(data, '\n'))
}

// JSONReport wraps a report with output-level metadata. The wrapper
// keeps fields like the generator version out of the core model types.
type JSONReport struct {
	// Version is the aeoscan build that produced the report.
	Version string `json:"version"`

	// Report is the full scan report.
	Report *model.ScanReport `json:"report"`

	// Summary is derived from the report at write time.
	Summary *model.ScanSummary `json:"summary,omitempty"`
}

// NewJSONReport builds the wrapper, deriving the summary from report.
func NewJSONReport(report *model.ScanReport, version string) *JSONReport {
	return &JSONReport{
		Version: version,
		Report:  report,
		Summary: model.NewScanSummary(report),
	}
}

// FullJSONWriter is a JSONWriter that emits the JSONReport wrapper
// instead of the bare report.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer that wraps every report with
// version metadata and a derived summary.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write renders the wrapped report as JSON.
func (w *FullJSONWriter) Write(report *model.ScanReport) (int, error) {
	return w.writeJSON(NewJSONReport(report, w.version))
}
