// Package analyzer defines the core sitegrade analysis framework.
//
// Architecture overview:
//
//   - Fetcher retrieves the target page exactly once, recording redirects,
//     headers, cookies, TLS state, and timing. The resulting Page is handed
//     to every category checker so the site is never hammered per category.
//   - Checkers implement the Checker interface (Category + Run) for one
//     category each: security headers, DNS posture, performance, SEO,
//     accessibility, safety, links, external links, and WHOIS.
//   - Analyzer coordinates concurrent execution with a semaphore and a
//     per-check timeout, isolates checker panics, aggregates the category
//     results into an overall score, and assembles the final Report.
//
// This layout keeps fetch and orchestration logic internal while allowing
// cmd/ to treat every checker (built-in or plugin) uniformly.
package analyzer
