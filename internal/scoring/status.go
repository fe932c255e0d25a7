package scoring

// CheckStatus is the outcome of a single heuristic check.
type CheckStatus string

const (
	StatusPass CheckStatus = "pass"
	StatusWarn CheckStatus = "warn"
	StatusFail CheckStatus = "fail"
	StatusInfo CheckStatus = "info"
	// StatusError marks a check that could not execute (network failure,
	// timeout). Error records are excluded from scoring instead of being
	// counted as failures.
	StatusError CheckStatus = "error"
	// StatusUnavailable marks a check whose data source was missing
	// entirely. Treated like StatusError for scoring purposes.
	StatusUnavailable CheckStatus = "unavailable"
)

// Value returns the numeric contribution of a status. Unknown statuses
// score 0, matching fail semantics: an unrecognized state never earns
// credit.
func (s CheckStatus) Value() float64 {
	switch s {
	case StatusPass:
		return 100
	case StatusInfo:
		return 75
	case StatusWarn:
		return 60
	case StatusFail:
		return 0
	default:
		return 0
	}
}

// Scorable reports whether a record with this status participates in the
// category score. Error and unavailable records are filtered out rather
// than scored.
func (s CheckStatus) Scorable() bool {
	return s != StatusError && s != StatusUnavailable
}

// Severity expresses how much a check's outcome should matter, independent
// of whether it passed or failed.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Weight returns the severity multiplier used by ScoreCategory. Missing or
// unrecognized severities weigh as medium.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityCritical:
		return 3
	case SeverityHigh:
		return 2
	case SeverityMedium:
		return 1
	case SeverityLow:
		return 0.5
	default:
		return 1
	}
}

// String returns the string representation.
func (s CheckStatus) String() string {
	return string(s)
}

// String returns the string representation.
func (s Severity) String() string {
	return string(s)
}
