package model

import "fmt"

// Severity represents how strongly an issue bounds a page's audit result.
// This allows categorizing issues by their impact on answer-engine visibility.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational issues with no score impact.
	// Examples: optional schema types missing, short meta descriptions
	// on low-traffic pages.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: suboptimal title length, missing Twitter card tags.
	SeverityLow

	// SeverityMedium indicates issues that measurably reduce the chance
	// of being cited by answer engines.
	// Examples: missing meta description, multiple H1 elements.
	SeverityMedium

	// SeverityHigh indicates serious issues that suppress answer-engine
	// visibility across a whole pillar.
	// Examples: no JSON-LD at all, thin content below the word floor.
	SeverityHigh

	// SeverityCritical indicates issues that bound the entire audit result.
	// Examples: pages blocked by robots.txt, unparseable structured data.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity converts a lowercase severity name (as used in rubric files)
// to a Severity value. Unknown names return an error so rubric validation
// can reject typos instead of silently downgrading caps.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "low":
		return SeverityLow, nil
	case "medium":
		return SeverityMedium, nil
	case "high":
		return SeverityHigh, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("unknown severity %q", s)
	}
}

// UnmarshalYAML implements yaml.Unmarshaler so rubric files can use the
// lowercase names directly (severity: critical).
func (s *Severity) UnmarshalYAML(unmarshal func(any) error) error {
	var name string
	if err := unmarshal(&name); err != nil {
		return err
	}
	sev, err := ParseSeverity(name)
	if err != nil {
		return err
	}
	*s = sev
	return nil
}
