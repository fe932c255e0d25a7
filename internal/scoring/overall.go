package scoring

import "math"

// Category names shared between the checkers, the weight table, and the
// renderers. Checkers not in this list (plugins) aggregate with weight 1.
const (
	CategorySecurity      = "Security & HTTPS"
	CategorySafety        = "Safety & Threats"
	CategoryDNS           = "DNS & Domain"
	CategoryLinks         = "Link Analysis"
	CategoryPerformance   = "Performance"
	CategoryAccessibility = "Accessibility"
	CategoryExternalLinks = "External Links"
	CategorySEO           = "SEO & Metadata"
	CategoryWhois         = "WHOIS & Domain Info"
)

// Exclusion reasons recorded in the breakdown so a report can explain why a
// category did not count toward the overall score.
const (
	ReasonUnavailable   = "Analysis unavailable"
	ReasonNoValidChecks = "No valid checks executed"
	ReasonAllChecksDown = "All checks failed or unavailable"
)

var categoryWeights = map[string]float64{
	CategorySecurity:      3,
	CategorySafety:        3,
	CategoryDNS:           2,
	CategoryLinks:         2,
	CategoryPerformance:   1.5,
	CategoryAccessibility: 1.5,
	CategoryExternalLinks: 1.5,
	CategorySEO:           1,
	CategoryWhois:         1,
}

// CategoryWeight returns the importance weight used when aggregating a
// category into the overall score. Unknown category names weigh 1.
func CategoryWeight(category string) float64 {
	if w, ok := categoryWeights[category]; ok {
		return w
	}
	return 1
}

// ExcludedCategory names a category left out of the weighted average and why.
type ExcludedCategory struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// CategoryScore is one included category's share of the overall score.
// Contribution is a running-total figure computed against the weight
// accumulated so far, so it depends on category order; it is a display
// hint, not an exact decomposition.
type CategoryScore struct {
	Name         string  `json:"name"`
	Score        int     `json:"score"`
	Weight       float64 `json:"weight"`
	Contribution int     `json:"contribution"`
}

// Breakdown explains how the overall score was assembled.
type Breakdown struct {
	IncludedCategories int                `json:"included_categories"`
	TotalCategories    int                `json:"total_categories"`
	ExcludedCategories []ExcludedCategory `json:"excluded_categories"`
	CategoryScores     []CategoryScore    `json:"category_scores"`
}

// OverallResult is the aggregated outcome of one analysis.
type OverallResult struct {
	Score     int       `json:"score"`
	Breakdown Breakdown `json:"breakdown"`
}

// ScoreOverall combines category results into the overall 0-100 score using
// the importance weight table. Unavailable categories are excluded and
// recorded with a reason rather than treated as zero.
//
// The malware override is not applied here: callers that see MalwareDetected
// on any result force the reported score to zero after this weighted
// computation. MalwareDetected below supports that path.
func ScoreOverall(categories []CategoryResult) OverallResult {
	result := OverallResult{
		Breakdown: Breakdown{
			ExcludedCategories: []ExcludedCategory{},
			CategoryScores:     []CategoryScore{},
		},
	}
	if len(categories) == 0 {
		return result
	}

	var weightedSum, totalWeight float64
	for _, cat := range categories {
		result.Breakdown.TotalCategories++

		if cat.Status == CategoryUnavailable {
			result.Breakdown.ExcludedCategories = append(result.Breakdown.ExcludedCategories,
				ExcludedCategory{Name: cat.Category, Reason: ReasonUnavailable})
			continue
		}
		if cat.Score == nil {
			result.Breakdown.ExcludedCategories = append(result.Breakdown.ExcludedCategories,
				ExcludedCategory{Name: cat.Category, Reason: ReasonNoValidChecks})
			continue
		}
		// A non-nil score can still sit on records that are all error or
		// unavailable; such categories are excluded too.
		if allUnscorable(cat.Checks) {
			result.Breakdown.ExcludedCategories = append(result.Breakdown.ExcludedCategories,
				ExcludedCategory{Name: cat.Category, Reason: ReasonAllChecksDown})
			continue
		}

		weight := CategoryWeight(cat.Category)
		weightedSum += float64(*cat.Score) * weight
		totalWeight += weight

		result.Breakdown.IncludedCategories++
		result.Breakdown.CategoryScores = append(result.Breakdown.CategoryScores, CategoryScore{
			Name:         cat.Category,
			Score:        *cat.Score,
			Weight:       weight,
			Contribution: int(math.Round(float64(*cat.Score) * weight / totalWeight)),
		})
	}

	if totalWeight > 0 {
		result.Score = int(math.Round(weightedSum / totalWeight))
	}
	return result
}

// allUnscorable reports whether every record is error or unavailable.
// Vacuously true for an empty list.
func allUnscorable(checks []CheckRecord) bool {
	for _, c := range checks {
		if c.Status.Scorable() {
			return false
		}
	}
	return true
}

// MalwareDetected reports whether any category flagged a confirmed threat.
// A confirmed threat is a binary safety gate: the caller forces the overall
// score to zero regardless of the weighted average.
func MalwareDetected(categories []CategoryResult) bool {
	for _, cat := range categories {
		if cat.MalwareDetected {
			return true
		}
	}
	return false
}
