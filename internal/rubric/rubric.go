package rubric

import (
	"fmt"

	"github.com/aeoscan/aeoscan/internal/model"
)

// Rubric is a versioned scoring configuration. It is loaded once and
// never mutated; every scoring call receives it explicitly.
type Rubric struct {
	// Version identifies this rubric revision. It is recorded on every
	// score result so old results can be traced to the exact
	// configuration that produced them.
	Version string `yaml:"version"`

	// Name is a human-readable rubric name.
	Name string `yaml:"name"`

	// Description explains what this rubric measures.
	Description string `yaml:"description"`

	// PromptTemplate is the template used for optional LLM-backed
	// evaluation of scored pages. The deterministic engine never
	// executes it, but its hash is part of the reproducibility record.
	PromptTemplate string `yaml:"prompt_template"`

	// PromptHash is the hex SHA-256 of PromptTemplate, computed at load
	// time. Not read from the file.
	PromptHash string `yaml:"-"`

	// Pillars are the top-level groupings, e.g. structured data or
	// content quality.
	Pillars []Pillar `yaml:"pillars"`

	// SiteTypeWeights optionally overrides pillar weights per site type
	// (outer key is the site type, inner key a pillar ID). Pillars not
	// listed keep their default weight.
	SiteTypeWeights map[string]map[string]float64 `yaml:"site_type_weights"`

	// Caps bound the final scores when issues at or above a given
	// severity are present.
	Caps []Cap `yaml:"caps"`
}

// Pillar is a top-level scoring group made of weighted categories.
type Pillar struct {
	ID          string     `yaml:"id"`
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Weight      float64    `yaml:"weight"`
	Categories  []Category `yaml:"categories"`
}

// Category is a weighted group of checks inside a pillar.
type Category struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
	Checks      []Check `yaml:"checks"`
}

// Check is a single deterministic evaluation. The ID selects the
// evaluation function; IssueCode is the catalog code reported when the
// check finds a problem.
type Check struct {
	ID          string  `yaml:"id"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	Weight      float64 `yaml:"weight"`
	IssueCode   string  `yaml:"issue_code"`
}

// Cap bounds scores when an issue at or above Severity is present.
// MaxOverall applies to the 0-10 overall score, MaxPillar to the 0-100
// score of the pillar owning the triggering check. A zero bound means
// the dimension is not capped by this entry.
type Cap struct {
	Severity   model.Severity `yaml:"severity"`
	MaxOverall float64        `yaml:"max_overall"`
	MaxPillar  float64        `yaml:"max_pillar"`
}

// FindPillar returns the pillar with the given ID.
func (r *Rubric) FindPillar(id string) (Pillar, bool) {
	for _, p := range r.Pillars {
		if p.ID == id {
			return p, true
		}
	}
	return Pillar{}, false
}

// FindCategory returns the category with the given ID, searching all
// pillars.
func (r *Rubric) FindCategory(id string) (Category, bool) {
	for _, p := range r.Pillars {
		for _, c := range p.Categories {
			if c.ID == id {
				return c, true
			}
		}
	}
	return Category{}, false
}

// FindCheck returns the check with the given ID, searching all
// categories.
func (r *Rubric) FindCheck(id string) (Check, bool) {
	for _, p := range r.Pillars {
		for _, c := range p.Categories {
			for _, ch := range c.Checks {
				if ch.ID == id {
					return ch, true
				}
			}
		}
	}
	return Check{}, false
}

// PillarWeight returns the weight for a pillar under the given site
// type, falling back to the pillar's default weight when the site type
// has no override.
func (r *Rubric) PillarWeight(siteType string, pillar Pillar) float64 {
	if overrides, ok := r.SiteTypeWeights[siteType]; ok {
		if w, ok := overrides[pillar.ID]; ok {
			return w
		}
	}
	return pillar.Weight
}

// CapFor returns the most restrictive cap triggered by an issue of the
// given severity. A cap triggers when the issue severity is at or above
// the cap's severity; among triggered caps the lowest MaxOverall wins.
func (r *Rubric) CapFor(sev model.Severity) (Cap, bool) {
	var (
		best  Cap
		found bool
	)
	for _, c := range r.Caps {
		if sev < c.Severity {
			continue
		}
		if !found || c.MaxOverall < best.MaxOverall {
			best = c
			found = true
		}
	}
	return best, found
}

// CheckCount returns the total number of checks across all pillars.
func (r *Rubric) CheckCount() int {
	n := 0
	for _, p := range r.Pillars {
		for _, c := range p.Categories {
			n += len(c.Checks)
		}
	}
	return n
}

// Validate checks structural soundness: version present, non-empty
// hierarchy, weights in range, unique IDs, and issue codes known to the
// catalog.
func (r *Rubric) Validate() error {
	if r.Version == "" {
		return ErrEmptyVersion
	}
	if len(r.Pillars) == 0 {
		return ErrNoPillars
	}

	seen := make(map[string]bool)
	unique := func(id string) error {
		if seen[id] {
			return fmt.Errorf("%w: %q", ErrDuplicateID, id)
		}
		seen[id] = true
		return nil
	}

	for _, p := range r.Pillars {
		if err := unique(p.ID); err != nil {
			return err
		}
		if p.Weight < 0 || p.Weight > 1 {
			return fmt.Errorf("%w: pillar %q has weight %v", ErrInvalidWeight, p.ID, p.Weight)
		}
		if len(p.Categories) == 0 {
			return fmt.Errorf("%w: pillar %q", ErrNoCategories, p.ID)
		}
		for _, c := range p.Categories {
			if err := unique(c.ID); err != nil {
				return err
			}
			if c.Weight < 0 || c.Weight > 1 {
				return fmt.Errorf("%w: category %q has weight %v", ErrInvalidWeight, c.ID, c.Weight)
			}
			if len(c.Checks) == 0 {
				return fmt.Errorf("%w: category %q", ErrNoChecks, c.ID)
			}
			for _, ch := range c.Checks {
				if err := unique(ch.ID); err != nil {
					return err
				}
				if ch.Weight < 0 || ch.Weight > 1 {
					return fmt.Errorf("%w: check %q has weight %v", ErrInvalidWeight, ch.ID, ch.Weight)
				}
				if !model.KnownIssueCode(ch.IssueCode) {
					return fmt.Errorf("%w: check %q references %q", ErrUnknownIssueCode, ch.ID, ch.IssueCode)
				}
			}
		}
	}
	return nil
}
