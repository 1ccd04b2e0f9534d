package rubric

import "errors"

// Rubric validation errors returned by Rubric.Validate and the loaders.
// Sentinel errors so callers can branch with errors.Is; dynamic context
// (pillar and check IDs) is wrapped around them at the call site.
var (
	// ErrRubricNotFound is returned when the rubric file does not exist.
	ErrRubricNotFound = errors.New("rubric file not found")

	// ErrEmptyVersion is returned when the rubric has no version string.
	// Score results record the version for reproducibility, so an
	// unversioned rubric cannot be used.
	ErrEmptyVersion = errors.New("rubric version must not be empty")

	// ErrNoPillars is returned when the rubric defines no pillars.
	ErrNoPillars = errors.New("rubric must define at least one pillar")

	// ErrNoCategories is returned when a pillar defines no categories.
	ErrNoCategories = errors.New("pillar must define at least one category")

	// ErrNoChecks is returned when a category defines no checks.
	ErrNoChecks = errors.New("category must define at least one check")

	// ErrInvalidWeight is returned when a weight is outside [0, 1].
	ErrInvalidWeight = errors.New("weight must be between 0 and 1")

	// ErrDuplicateID is returned when a pillar, category, or check ID
	// appears more than once. IDs key the score maps, so duplicates
	// would silently overwrite results.
	ErrDuplicateID = errors.New("duplicate identifier in rubric")

	// ErrUnknownIssueCode is returned when a check references an issue
	// code that is not in the issue catalog.
	ErrUnknownIssueCode = errors.New("unknown issue code")
)
