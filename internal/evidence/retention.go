package evidence

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aeoscan/aeoscan/internal/model"
)

// DefaultRetentionDays is how long full-mode excerpts are kept before
// the purge job strips them.
const DefaultRetentionDays = 30

// RetentionConfig configures one purge run.
type RetentionConfig struct {
	// RetentionDays is the age in days beyond which excerpt content is
	// stripped.
	RetentionDays int

	// DryRun counts what would be purged without mutating anything.
	DryRun bool
}

// PurgeResult reports aggregate counts for one purge run.
// Per-record detail is deliberately not returned; failures are logged.
type PurgeResult struct {
	// Purged is the number of full-mode records stripped (or that would
	// be stripped in a dry run).
	Purged int `json:"purged"`

	// Kept is the number of already-minimal extract-only records.
	Kept int `json:"kept"`

	// Errors is the number of records skipped due to per-record failures.
	Errors int `json:"errors"`
}

// RetentionStats reports the evidence store's compliance posture,
// bucketed by age and storage mode.
type RetentionStats struct {
	Total           int `json:"total"`
	OlderThan30Days int `json:"older_than_30_days"`
	OlderThan60Days int `json:"older_than_60_days"`
	OlderThan90Days int `json:"older_than_90_days"`
	FullMode        int `json:"full_mode"`
	ExtractOnlyMode int `json:"extract_only_mode"`
}

// JobResult is what the retention job returns to its scheduler.
// The job never raises an error; failures surface as Success=false with
// a message, alongside best-effort stats.
type JobResult struct {
	Success bool           `json:"success"`
	Purged  int            `json:"purged"`
	Kept    int            `json:"kept"`
	Errors  int            `json:"errors"`
	Stats   RetentionStats `json:"stats"`
	Error   string         `json:"error,omitempty"`
}

// PurgeCandidate is a raw evidence row considered for purging.
// Metadata is carried as stored JSON so a corrupt row surfaces as a
// per-record error here instead of failing the whole selection query.
type PurgeCandidate struct {
	ID        int64
	Mode      string
	Metadata  string
	CreatedAt time.Time
}

// Store is the persistence surface the retention job needs.
// *database.AuditDB implements it.
type Store interface {
	// SelectPurgeCandidates returns unpurged evidence rows created
	// before the cutoff.
	SelectPurgeCandidates(ctx context.Context, cutoff time.Time) ([]PurgeCandidate, error)

	// PurgeEvidence strips the stored excerpt of one record, preserving
	// hash, redaction counts, and original length.
	PurgeEvidence(ctx context.Context, id int64, purgedAt time.Time) error

	// RetentionStats computes age and mode buckets relative to now.
	RetentionStats(ctx context.Context, now time.Time) (RetentionStats, error)

	// InsertRetentionRun appends one job execution to the audit log.
	InsertRetentionRun(ctx context.Context, run *model.RetentionJobRun) error
}

// Purger runs the evidence retention purge against a Store.
type Purger struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// PurgerOption configures a Purger.
type PurgerOption func(*Purger)

// WithLogger sets a custom logger for purge progress and errors.
func WithLogger(logger *slog.Logger) PurgerOption {
	return func(p *Purger) {
		p.logger = logger
	}
}

// withNow overrides the clock; used by tests for deterministic cutoffs.
func withNow(now func() time.Time) PurgerOption {
	return func(p *Purger) {
		p.now = now
	}
}

// NewPurger creates a Purger backed by the given store.
func NewPurger(store Store, opts ...PurgerOption) *Purger {
	p := &Purger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// Purge strips excerpt content from full-mode evidence older than the
// configured retention window.
//
// The selection is keyed on createdAt < cutoff AND not yet purged, which
// makes the operation idempotent and restartable: re-running after a
// crash skips already-stripped rows, and rows created while the job runs
// are always newer than the cutoff.
//
// Per-record failures are logged, counted in Errors, and do not stop the
// batch; a single corrupt row must not block purging the rest.
func (p *Purger) Purge(ctx context.Context, cfg RetentionConfig) (PurgeResult, error) {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	now := p.now().UTC()
	cutoff := now.AddDate(0, 0, -cfg.RetentionDays)

	candidates, err := p.store.SelectPurgeCandidates(ctx, cutoff)
	if err != nil {
		return PurgeResult{}, err
	}

	var result PurgeResult
	for _, candidate := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		// Corrupt metadata counts as a per-record error; the row is
		// skipped, not deleted, so it remains visible for inspection.
		if candidate.Metadata != "" {
			var meta map[string]any
			if err := json.Unmarshal([]byte(candidate.Metadata), &meta); err != nil {
				p.logger.Warn("skipping evidence with corrupt metadata",
					"evidence_id", candidate.ID,
					"error", err,
				)
				result.Errors++
				continue
			}
		}

		switch model.EvidenceMode(candidate.Mode) {
		case model.EvidenceModeFull:
			if cfg.DryRun {
				result.Purged++
				continue
			}
			if err := p.store.PurgeEvidence(ctx, candidate.ID, now); err != nil {
				p.logger.Warn("failed to purge evidence",
					"evidence_id", candidate.ID,
					"error", err,
				)
				result.Errors++
				continue
			}
			result.Purged++
		case model.EvidenceModeExtractOnly:
			// Already minimal, nothing to strip.
			result.Kept++
		default:
			p.logger.Warn("skipping evidence with unknown mode",
				"evidence_id", candidate.ID,
				"mode", candidate.Mode,
			)
			result.Errors++
		}
	}

	return result, nil
}

// Stats returns retention statistics from the store.
func (p *Purger) Stats(ctx context.Context) (RetentionStats, error) {
	return p.store.RetentionStats(ctx, p.now().UTC())
}

// RunJob executes a full retention job: purge, stats, and audit logging.
//
// Retention jobs run unattended on a schedule, so this wrapper never
// propagates an error: any failure is folded into the JobResult with
// Success=false, and stats are still computed best-effort.
func (p *Purger) RunJob(ctx context.Context, cfg RetentionConfig) JobResult {
	if cfg.RetentionDays <= 0 {
		cfg.RetentionDays = DefaultRetentionDays
	}

	purge, err := p.Purge(ctx, cfg)
	result := JobResult{
		Success: err == nil,
		Purged:  purge.Purged,
		Kept:    purge.Kept,
		Errors:  purge.Errors,
	}
	if err != nil {
		result.Error = err.Error()
	}

	// Stats are best-effort even after a failed purge.
	if stats, statsErr := p.Stats(ctx); statsErr == nil {
		result.Stats = stats
	} else if result.Success {
		result.Success = false
		result.Error = statsErr.Error()
	}

	run := &model.RetentionJobRun{
		RetentionDays: cfg.RetentionDays,
		DryRun:        cfg.DryRun,
		PurgedCount:   purge.Purged,
		KeptCount:     purge.Kept,
		ErrorCount:    purge.Errors,
		RanAt:         p.now().UTC(),
	}
	if err := p.store.InsertRetentionRun(ctx, run); err != nil {
		p.logger.Warn("failed to record retention job run", "error", err)
	}

	return result
}
