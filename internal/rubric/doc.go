// Package rubric defines the versioned scoring configuration: pillars,
// categories, and checks with their weights, severity caps, and optional
// per-site-type pillar weight overrides.
//
// A Rubric is loaded once per scan from YAML (or from the embedded
// default) and treated as an immutable value afterwards; the scoring
// engine receives it explicitly on every call. The prompt template
// carried by the rubric is hashed at load time so score results can
// record exactly which configuration produced them.
package rubric
