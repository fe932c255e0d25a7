package scoring

// Display labels for score buckets. NotAnalyzedLabel covers nil scores.
const (
	LabelExcellent   = "Excellent"
	LabelGood        = "Good"
	LabelFair        = "Fair"
	LabelPoor        = "Poor"
	LabelCritical    = "Critical"
	LabelNotAnalyzed = "Not Analyzed"
)

// ScoreLabel maps a score onto its display label. The bucket boundaries
// (90/75/60/45) are part of the contract; nil means the score could not be
// computed at all.
func ScoreLabel(score *int) string {
	if score == nil {
		return LabelNotAnalyzed
	}
	switch {
	case *score >= 90:
		return LabelExcellent
	case *score >= 75:
		return LabelGood
	case *score >= 60:
		return LabelFair
	case *score >= 45:
		return LabelPoor
	default:
		return LabelCritical
	}
}

// ScoreColor maps a score onto a hex color token using the same buckets as
// ScoreLabel. Consumers treat the value as opaque (reports embed it in HTML
// and PDF styling).
func ScoreColor(score *int) string {
	if score == nil {
		return "#9ca3af"
	}
	switch {
	case *score >= 90:
		return "#22c55e"
	case *score >= 75:
		return "#84cc16"
	case *score >= 60:
		return "#eab308"
	case *score >= 45:
		return "#f97316"
	default:
		return "#ef4444"
	}
}

// IntPtr is a convenience for building nullable scores in tests and
// fixtures.
func IntPtr(v int) *int {
	return &v
}
