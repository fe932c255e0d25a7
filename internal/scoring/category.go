package scoring

import "math"

// CheckRecord is a single heuristic verdict produced by a category checker.
// Records are immutable once created; checkers that fail to execute emit a
// record with StatusError rather than returning an error.
type CheckRecord struct {
	Name        string      `json:"name"`
	Status      CheckStatus `json:"status"`
	Severity    Severity    `json:"severity,omitempty"`
	Description string      `json:"description,omitempty"`
}

// CategoryStatus tells whether a category produced a usable score.
type CategoryStatus string

const (
	CategoryAvailable   CategoryStatus = "available"
	CategoryUnavailable CategoryStatus = "unavailable"
)

// CategoryResult groups one category's check records with its derived
// score. Status is unavailable exactly when Score is nil.
type CategoryResult struct {
	Category string         `json:"category"`
	Checks   []CheckRecord  `json:"checks"`
	Score    *int           `json:"score"`
	Status   CategoryStatus `json:"status"`
	Reason   string         `json:"reason,omitempty"`
	// MalwareDetected is set by the safety checker when its
	// "Malware/Phishing Indicators" check fails. The orchestrator uses it
	// to force the overall score to zero after aggregation.
	MalwareDetected bool `json:"malware_detected,omitempty"`
}

// ScoreCategory converts a category's check records into a severity-weighted
// score in [0,100], or nil when the category is unscorable.
//
// Records with status error or unavailable are dropped first. An empty
// input, or an input where every record was dropped, yields nil: a category
// whose checks all errored must not silently count as perfect or as zero,
// it is excluded from the overall score entirely.
func ScoreCategory(checks []CheckRecord) *int {
	if len(checks) == 0 {
		return nil
	}

	var weightedSum, totalWeight float64
	scorable := 0
	for _, c := range checks {
		if !c.Status.Scorable() {
			continue
		}
		scorable++
		w := c.Severity.Weight()
		weightedSum += c.Status.Value() * w
		totalWeight += w
	}

	if scorable == 0 || totalWeight == 0 {
		return nil
	}

	score := int(math.Round(weightedSum / totalWeight))
	return &score
}

// NewCategoryResult scores the given checks and wraps them in a
// CategoryResult with the matching availability status.
func NewCategoryResult(category string, checks []CheckRecord) CategoryResult {
	score := ScoreCategory(checks)
	status := CategoryAvailable
	if score == nil {
		status = CategoryUnavailable
	}
	return CategoryResult{
		Category: category,
		Checks:   checks,
		Score:    score,
		Status:   status,
	}
}

// UnavailableCategory marks a category whose checker failed before
// producing any checks. It carries no records and is excluded from the
// overall score.
func UnavailableCategory(category, reason string) CategoryResult {
	return CategoryResult{
		Category: category,
		Checks:   []CheckRecord{},
		Score:    nil,
		Status:   CategoryUnavailable,
		Reason:   reason,
	}
}
