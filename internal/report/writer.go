package report

import (
	"io"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Writer renders audit results to some destination. Every format
// (terminal text, JSON, Markdown) implements the same pair of methods
// so callers can swap formats or fan out without caring which one
// they hold.
type Writer interface {
	// Write renders the full report and returns the bytes written.
	Write(report *model.ScanReport) (int, error)

	// WriteSummary renders only the flattened summary, for quick
	// overviews without per-page detail.
	WriteSummary(summary *model.ScanSummary) (int, error)
}

// MultiWriter fans one report out to several Writers, typically the
// terminal plus a file. It is a separate type rather than
// io.MultiWriter because this Writer carries reports, not bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter builds a Writer that writes to every given Writer.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write renders the report through each writer in order, stopping at
// the first failure. The returned count covers everything written so
// far, including the partial output of a failed writer.
func (m *MultiWriter) Write(report *model.ScanReport) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(report)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteSummary renders the summary through each writer in order with
// the same first-error semantics as Write.
func (m *MultiWriter) WriteSummary(summary *model.ScanSummary) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteSummary(summary)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the destination shared by the concrete writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}
