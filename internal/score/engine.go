package score

import (
	"math"
	"time"

	"github.com/aeoscan/aeoscan/internal/model"
	"github.com/aeoscan/aeoscan/internal/rubric"
)

// MaxOverallScore is the hard ceiling on the 0-10 overall score.
// No page ever scores a perfect 10; the rubric always leaves headroom.
const MaxOverallScore = 9.5

// ScorePage evaluates page signals against a rubric and aggregates raw
// check scores into category, pillar, and overall scores.
//
// scannedAt is supplied by the caller and only recorded on the result;
// nothing in the scoring math reads the clock.
func ScorePage(p *model.PageSignals, r *rubric.Rubric, siteType string, scannedAt time.Time) *model.ScoreResult {
	result := &model.ScoreResult{
		CheckScores:    make(map[string]model.CheckScore, r.CheckCount()),
		CategoryScores: make(map[string]float64),
		PillarScores:   make(map[string]float64),
		RubricVersion:  r.Version,
		PromptHash:     r.PromptHash,
		ScannedAt:      scannedAt,
	}

	var overallSum, overallWeight float64
	for _, pillar := range r.Pillars {
		var pillarSum, pillarWeight float64
		for _, category := range pillar.Categories {
			var rawSum, rawWeight float64
			for _, check := range category.Checks {
				raw, issues := evaluateCheck(check.ID, p)
				result.CheckScores[check.ID] = model.CheckScore{Raw: raw, Issues: issues}
				rawSum += raw * check.Weight
				rawWeight += check.Weight
			}

			// Weighted average of 0-5 raws, rescaled to 0-100.
			var categoryScore float64
			if rawWeight > 0 {
				categoryScore = rawSum / rawWeight * 20
			}
			categoryScore = round2(categoryScore)
			result.CategoryScores[category.ID] = categoryScore

			pillarSum += categoryScore * category.Weight
			pillarWeight += category.Weight
		}

		var pillarScore float64
		if pillarWeight > 0 {
			pillarScore = pillarSum / pillarWeight
		}
		pillarScore = round2(pillarScore)
		result.PillarScores[pillar.ID] = pillarScore

		weight := r.PillarWeight(siteType, pillar)
		overallSum += pillarScore * weight
		overallWeight += weight
	}

	var overall float64
	if overallWeight > 0 {
		overall = overallSum / overallWeight / 10
	}
	result.OverallScore = round2(overall)

	applyCaps(result, r)
	return result
}

// applyCaps is the second scoring phase. It only ever lowers scores:
// first the hard overall ceiling, then the severity caps configured in
// the rubric, applied to the overall score and to the pillars owning
// the triggering checks.
func applyCaps(result *model.ScoreResult, r *rubric.Rubric) {
	if result.OverallScore > MaxOverallScore {
		result.OverallScore = MaxOverallScore
	}

	maxSev, found := result.MaxSeverity()
	if !found {
		return
	}
	c, ok := r.CapFor(maxSev)
	if !ok {
		return
	}

	if c.MaxOverall > 0 && result.OverallScore > c.MaxOverall {
		result.OverallScore = round2(c.MaxOverall)
		result.Capped = true
	}
	if c.MaxPillar > 0 {
		for _, pillar := range r.Pillars {
			if !pillarTriggered(result, pillar, c.Severity) {
				continue
			}
			if result.PillarScores[pillar.ID] > c.MaxPillar {
				result.PillarScores[pillar.ID] = round2(c.MaxPillar)
				result.Capped = true
			}
		}
	}
}

// pillarTriggered reports whether any check owned by the pillar surfaced
// an issue at or above the given severity.
func pillarTriggered(result *model.ScoreResult, pillar rubric.Pillar, minSev model.Severity) bool {
	for _, category := range pillar.Categories {
		for _, check := range category.Checks {
			for _, issue := range result.CheckScores[check.ID].Issues {
				if issue.Severity >= minSev {
					return true
				}
			}
		}
	}
	return false
}

// ScoreSite aggregates per-page results into a site-level result by
// averaging category, pillar, and overall scores. Check-level detail
// stays on the page results; the site result carries empty check scores.
func ScoreSite(pages []*model.ScoreResult, r *rubric.Rubric, scannedAt time.Time) *model.ScoreResult {
	result := &model.ScoreResult{
		CheckScores:    make(map[string]model.CheckScore),
		CategoryScores: make(map[string]float64),
		PillarScores:   make(map[string]float64),
		RubricVersion:  r.Version,
		PromptHash:     r.PromptHash,
		ScannedAt:      scannedAt,
	}
	if len(pages) == 0 {
		return result
	}

	n := float64(len(pages))
	var overallSum float64
	for _, page := range pages {
		overallSum += page.OverallScore
		for id, s := range page.CategoryScores {
			result.CategoryScores[id] += s
		}
		for id, s := range page.PillarScores {
			result.PillarScores[id] += s
		}
		if page.Capped {
			result.Capped = true
		}
	}
	for id := range result.CategoryScores {
		result.CategoryScores[id] = round2(result.CategoryScores[id] / n)
	}
	for id := range result.PillarScores {
		result.PillarScores[id] = round2(result.PillarScores[id] / n)
	}
	result.OverallScore = round2(overallSum / n)
	if result.OverallScore > MaxOverallScore {
		result.OverallScore = MaxOverallScore
	}

	return result
}

// round2 rounds half away from zero to two decimals. All published
// scores pass through here so repeated runs are bit-identical.
func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
