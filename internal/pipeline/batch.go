package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aeoscan/aeoscan/internal/model"
)

// BatchProcessor audits several sites concurrently, each through its
// own pipeline.
//
// Design decision: batching lives outside Pipeline so the pipeline
// stays a single-audit machine and batch policy (limits, callbacks)
// can evolve independently.
type BatchProcessor struct {
	// pipelineFactory builds a fresh pipeline per audit, so no state
	// leaks between sites.
	pipelineFactory func() *Pipeline

	// concurrency caps how many audits run at once.
	concurrency int

	logger *slog.Logger

	// results holds reports indexed by target position; guarded by mu.
	results []*model.ScanReport
	mu      sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets the batch-level logger.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency caps concurrent audits. Non-positive values keep
// the default of 4.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor builds a processor around the given pipeline
// factory.
func NewBatchProcessor(pipelineFactory func() *Pipeline, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		pipelineFactory: pipelineFactory,
		concurrency:     4,
	}
	for _, opt := range opts {
		opt(bp)
	}
	if bp.logger == nil {
		bp.logger = slog.Default()
	}
	return bp
}

// runOne audits a single domain through a fresh pipeline. The report
// always comes back; a pipeline failure is recorded on it.
func (bp *BatchProcessor) runOne(ctx context.Context, domain string) *model.ScanReport {
	report := model.NewScanReport(domain)
	if err := bp.pipelineFactory().Execute(ctx, report); err != nil {
		bp.logger.Warn("audit failed", "domain", domain, "error", err)
	}
	return report
}

// ProcessBatch audits every domain and returns the reports in input
// order. Failed audits still yield a report carrying the error; the
// returned error is non-nil only when the batch itself was cancelled.
//
// Design decision: errgroup with SetLimit instead of a hand-rolled
// worker pool. One goroutine per site, at most concurrency of them
// running.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, domains []string) ([]*model.ScanReport, error) {
	bp.logger.Info("starting batch",
		"total_sites", len(domains), "concurrency", bp.concurrency)
	start := time.Now()

	bp.results = make([]*model.ScanReport, len(domains))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, domain := range domains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			bp.logger.Info("auditing site",
				"domain", domain, "index", i+1, "total", len(domains))

			report := bp.runOne(ctx, domain)

			bp.mu.Lock()
			bp.results[i] = report
			bp.mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	bp.logger.Info("batch complete",
		"total_sites", len(domains), "elapsed", time.Since(start))
	return bp.results, err
}

// ProcessBatchWithCallback audits every domain and hands each report
// to callback as it finishes, with the site's index in the input
// slice. The callback runs on the finishing goroutine and must be
// safe for concurrent use.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	domains []string,
	callback func(report *model.ScanReport, index int),
) error {
	bp.logger.Info("starting batch",
		"total_sites", len(domains), "concurrency", bp.concurrency)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, domain := range domains {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			callback(bp.runOne(ctx, domain), i)
			return nil
		})
	}
	return g.Wait()
}
