package pipeline

import (
	"context"
	"log/slog"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Step is one stage of an audit run. Steps execute in order and share
// a single report, each reading what earlier steps left behind.
//
// Design decision: an interface instead of a func type, so a step can
// hold its own configuration (client, limits, store handle) and report
// a Name for log lines.
type Step interface {
	// Do runs the step against the report. A returned error is fatal
	// for the run; degraded outcomes belong in the report with a nil
	// return.
	Do(ctx context.Context, report *model.ScanReport) error

	// Name identifies the step in logs.
	Name() string
}

// Pipeline runs an ordered list of steps against one scan report.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger

	// continueOnError keeps later steps running after a failure. Off
	// by default: an early failure usually means the whole audit is
	// pointless (the site did not answer at all).
	continueOnError bool
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the pipeline's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError keeps the pipeline running past a failed step.
// The failure is still logged and recorded on the report.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New builds an empty pipeline; add stages with AddStep or AddSteps.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends one step; execution order is insertion order.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends several steps at once.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs every step in order against the report.
//
// Cancellation is checked between steps, not during them; a step that
// can block owns its own timeout handling. A cancelled run marks the
// report TimedOut and returns ctx.Err(). A failing step puts its error
// message on the report and, unless continueOnError is set, ends the
// run with that error.
func (p *Pipeline) Execute(ctx context.Context, report *model.ScanReport) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("audit run cancelled",
				"step", step.Name(), "reason", err)
			report.TimedOut = true
			return err
		}

		p.logger.Info("running step",
			"step", step.Name(), "domain", report.Domain)

		err := step.Do(ctx, report)
		if err == nil {
			p.logger.Debug("step done",
				"step", step.Name(), "domain", report.Domain)
			continue
		}

		p.logger.Error("step failed",
			"step", step.Name(), "domain", report.Domain, "error", err)
		report.Error = err.Error()
		if !p.continueOnError {
			return err
		}
	}
	return nil
}

// StepCount reports how many steps the pipeline holds.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames lists step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}
