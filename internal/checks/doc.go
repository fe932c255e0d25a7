// Package checks implements the built-in category checkers.
//
// Every checker satisfies analyzer.Checker: it receives the fetched Page,
// runs an ordered table of named heuristics, and returns a CategoryResult.
// Checkers never return errors and never panic outward. A heuristic that
// cannot execute (network failure, missing data) emits a record with status
// error; when every record in a category errored the category scores nil
// and is reported as unavailable.
//
// Checkers that need extra requests (robots.txt, external link probes)
// share the analyzer's Fetcher so its rate limiter covers all traffic.
package checks
