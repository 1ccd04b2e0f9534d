// Package score evaluates extracted page signals against a rubric.
//
// Scoring is a pure function of (signals, rubric): every check is a
// deterministic evaluation with no network, clock, or randomness, so
// re-running the same signals against the same rubric version yields
// bit-identical results. Raw check scores on 0-5 aggregate into
// weighted 0-100 category and pillar scores and a 0-10 overall score.
//
// Capping runs as a separate second phase that can only lower scores:
// the overall score never exceeds 9.5, and issues at or above a
// cap's severity bound the overall score and the owning pillar at the
// rubric-configured ceilings.
package score
