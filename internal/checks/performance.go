package checks

import (
	"context"
	"fmt"
	"strings"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// PerformanceChecker evaluates delivery speed and caching posture from the
// single page fetch. It issues no additional requests.
type PerformanceChecker struct{}

func (c *PerformanceChecker) Category() string { return scoring.CategoryPerformance }

type performanceCheck struct {
	name     string
	severity scoring.Severity
	run      func(page *analyzer.Page) (scoring.CheckStatus, string)
}

var performanceChecks = []performanceCheck{
	{"Response Time", scoring.SeverityHigh, checkResponseTime},
	{"Page Weight", scoring.SeverityMedium, checkPageWeight},
	{"Compression", scoring.SeverityMedium, checkCompression},
	{"Cache-Control", scoring.SeverityLow, checkCacheControl},
	{"Redirect Chain", scoring.SeverityMedium, checkRedirectChain},
	{"HTTP Protocol", scoring.SeverityLow, checkHTTPProtocol},
}

func (c *PerformanceChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	records := make([]scoring.CheckRecord, 0, len(performanceChecks))
	for _, pc := range performanceChecks {
		status, desc := pc.run(page)
		records = append(records, scoring.CheckRecord{
			Name:        pc.name,
			Status:      status,
			Severity:    pc.severity,
			Description: desc,
		})
	}
	return scoring.NewCategoryResult(scoring.CategoryPerformance, records)
}

func checkResponseTime(page *analyzer.Page) (scoring.CheckStatus, string) {
	ms := page.FetchTime.Milliseconds()
	switch {
	case page.FetchTime <= 0:
		return scoring.StatusError, "fetch timing not captured"
	case ms < 800:
		return scoring.StatusPass, fmt.Sprintf("responded in %dms", ms)
	case ms < 2500:
		return scoring.StatusWarn, fmt.Sprintf("responded in %dms, above the 800ms target", ms)
	default:
		return scoring.StatusFail, fmt.Sprintf("responded in %dms", ms)
	}
}

func checkPageWeight(page *analyzer.Page) (scoring.CheckStatus, string) {
	kb := len(page.Body) / 1024
	switch {
	case page.BodyTruncated:
		return scoring.StatusFail, fmt.Sprintf("page exceeds the %dKB capture limit", len(page.Body)/1024)
	case kb < 512:
		return scoring.StatusPass, fmt.Sprintf("page weight %dKB", kb)
	case kb < 1536:
		return scoring.StatusWarn, fmt.Sprintf("page weight %dKB, consider trimming", kb)
	default:
		return scoring.StatusFail, fmt.Sprintf("page weight %dKB", kb)
	}
}

func checkCompression(page *analyzer.Page) (scoring.CheckStatus, string) {
	if page.Compressed {
		return scoring.StatusPass, "response body is compressed"
	}
	if len(page.Body) < 4*1024 {
		return scoring.StatusInfo, "response too small for compression to matter"
	}
	return scoring.StatusWarn, "no content compression negotiated"
}

func checkCacheControl(page *analyzer.Page) (scoring.CheckStatus, string) {
	value := strings.ToLower(page.Header.Get("Cache-Control"))
	switch {
	case value == "":
		return scoring.StatusWarn, "Cache-Control header missing"
	case strings.Contains(value, "no-store"):
		return scoring.StatusInfo, "caching disabled with no-store"
	case strings.Contains(value, "max-age=") || strings.Contains(value, "immutable"):
		return scoring.StatusPass, "cache policy present: " + value
	default:
		return scoring.StatusWarn, "cache policy has no freshness lifetime: " + value
	}
}

func checkRedirectChain(page *analyzer.Page) (scoring.CheckStatus, string) {
	switch {
	case page.Redirects == 0:
		return scoring.StatusPass, "no redirects"
	case page.Redirects <= 2:
		return scoring.StatusWarn, fmt.Sprintf("%d redirect(s) before the final page", page.Redirects)
	default:
		return scoring.StatusFail, fmt.Sprintf("%d redirects before the final page", page.Redirects)
	}
}

func checkHTTPProtocol(page *analyzer.Page) (scoring.CheckStatus, string) {
	switch {
	case strings.HasPrefix(page.Proto, "HTTP/3") || strings.HasPrefix(page.Proto, "HTTP/2"):
		return scoring.StatusPass, page.Proto + " in use"
	case page.Proto == "HTTP/1.1":
		return scoring.StatusWarn, "HTTP/1.1 in use, HTTP/2 reduces latency"
	case page.Proto == "":
		return scoring.StatusError, "protocol not captured"
	default:
		return scoring.StatusFail, page.Proto + " in use"
	}
}
