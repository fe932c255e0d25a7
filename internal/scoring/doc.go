// Package scoring implements the pure scoring and aggregation core.
//
// Architecture overview:
//
//   - CheckRecord is the atomic verdict every category checker produces
//     (name, status, severity, description). Statuses and severities are
//     closed vocabularies with explicit fallbacks for unknown variants.
//   - ScoreCategory collapses a category's records into a severity-weighted
//     0-100 score, or reports the category unavailable when nothing in it
//     could be scored.
//   - ScoreOverall combines CategoryResults into the top-line score using
//     per-category importance weights, excluding unavailable categories
//     rather than letting them drag the average. The malware override is
//     applied by the orchestrator after aggregation, not in here.
//   - ScoreLabel and ScoreColor map scores onto the display vocabulary.
//
// Everything in this package is a total function over its inputs: no I/O,
// no shared state, safe to call from any number of goroutines.
package scoring
