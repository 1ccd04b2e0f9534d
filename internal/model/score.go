package model

import "time"

// CheckScore is the result of one rubric check for one page.
type CheckScore struct {
	// Raw is the check score on the 0-5 scale.
	Raw float64 `json:"raw"`

	// Issues contains the problems this check surfaced, possibly empty.
	Issues []Issue `json:"issues,omitempty"`
}

// ScoreResult is the hierarchical scoring output for one scanned page.
//
// A result always carries the exact rubric version and prompt hash it was
// computed with so that re-running the same signals against the same rubric
// reproduces it bit for bit.
type ScoreResult struct {
	// CheckScores maps check id to its raw 0-5 score and issues.
	CheckScores map[string]CheckScore `json:"check_scores"`

	// CategoryScores maps category id to its 0-100 score.
	CategoryScores map[string]float64 `json:"category_scores"`

	// PillarScores maps pillar id to its 0-100 score.
	PillarScores map[string]float64 `json:"pillar_scores"`

	// OverallScore is the 0-10 site score, never above 9.5.
	OverallScore float64 `json:"overall_score"`

	// Capped reports whether a severity cap lowered the overall score
	// below its uncapped weighted average.
	Capped bool `json:"capped"`

	// RubricVersion is the rubric version the result was computed with.
	RubricVersion string `json:"rubric_version"`

	// PromptHash identifies the evaluation prompt template associated
	// with the rubric, empty when the rubric carries none.
	PromptHash string `json:"prompt_hash,omitempty"`

	// ScannedAt is when the page was scanned. Supplied by the caller so
	// the scoring math itself stays wall-clock independent.
	ScannedAt time.Time `json:"scanned_at"`
}

// Issues returns all issues across all checks. Map iteration order is not
// stable; callers needing deterministic output must sort.
func (r *ScoreResult) Issues() []Issue {
	var issues []Issue
	for _, cs := range r.CheckScores {
		issues = append(issues, cs.Issues...)
	}
	return issues
}

// MaxSeverity returns the highest severity among all surfaced issues.
// Returns SeverityInfo and false when no issues were surfaced.
func (r *ScoreResult) MaxSeverity() (Severity, bool) {
	maxSev := SeverityInfo
	found := false
	for _, cs := range r.CheckScores {
		for _, issue := range cs.Issues {
			found = true
			if issue.Severity > maxSev {
				maxSev = issue.Severity
			}
		}
	}
	return maxSev, found
}
