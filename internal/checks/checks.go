package checks

import (
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// Defaults returns every built-in checker in reporting order. The fetcher is
// shared so sub-fetches count against the same rate budget as the main GET.
func Defaults(f *analyzer.Fetcher) []analyzer.Checker {
	timeout := 10 * time.Second
	if f != nil && f.Timeout > 0 {
		timeout = f.Timeout
	}
	return []analyzer.Checker{
		&SecurityChecker{},
		&SafetyChecker{},
		&DNSChecker{Timeout: timeout},
		&LinkChecker{},
		&PerformanceChecker{},
		&AccessibilityChecker{},
		&ExternalLinkChecker{Fetcher: f},
		&SEOChecker{Fetcher: f},
		&WhoisChecker{Timeout: timeout},
	}
}

// errorRecord marks a heuristic that could not execute at all, as opposed
// to one that executed and failed.
func errorRecord(name string, severity scoring.Severity, err error) scoring.CheckRecord {
	desc := "check did not run"
	if err != nil {
		desc = err.Error()
	}
	return scoring.CheckRecord{
		Name:        name,
		Status:      scoring.StatusError,
		Severity:    severity,
		Description: desc,
	}
}
