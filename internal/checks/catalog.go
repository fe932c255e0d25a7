package checks

import (
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// CheckSpec names one heuristic and the severity its outcome carries.
type CheckSpec struct {
	Name     string           `json:"name"`
	Severity scoring.Severity `json:"severity"`
}

// CategorySpec describes one category of the check catalog.
type CategorySpec struct {
	Name   string      `json:"name"`
	Weight float64     `json:"weight"`
	Checks []CheckSpec `json:"checks"`
}

// catalog lists every built-in check in reporting order. Keep this slice in
// sync with the checker tables; catalog_test.go validates the contents match.
var catalog = []CategorySpec{
	{Name: scoring.CategorySecurity, Checks: []CheckSpec{
		{"HTTPS Connection", scoring.SeverityCritical},
		{"Strict-Transport-Security", scoring.SeverityHigh},
		{"Content-Security-Policy", scoring.SeverityHigh},
		{"X-Content-Type-Options", scoring.SeverityMedium},
		{"X-Frame-Options", scoring.SeverityMedium},
		{"Referrer-Policy", scoring.SeverityLow},
		{"TLS Protocol", scoring.SeverityCritical},
		{"Certificate Expiry", scoring.SeverityHigh},
		{"Mixed Content", scoring.SeverityHigh},
		{"Cookie Security", scoring.SeverityMedium},
		{"Server Banner", scoring.SeverityLow},
	}},
	{Name: scoring.CategorySafety, Checks: []CheckSpec{
		{MalwareCheckName, scoring.SeverityCritical},
		{"Suspicious Scripts", scoring.SeverityHigh},
		{"Deceptive Redirects", scoring.SeverityMedium},
		{"Hidden Content", scoring.SeverityMedium},
		{"Punycode Hostname", scoring.SeverityHigh},
	}},
	{Name: scoring.CategoryDNS, Checks: []CheckSpec{
		{"A/AAAA Records", scoring.SeverityCritical},
		{"Name Servers", scoring.SeverityMedium},
		{"MX Records", scoring.SeverityLow},
		{"SPF Record", scoring.SeverityMedium},
		{"DMARC Record", scoring.SeverityMedium},
		{"CAA Record", scoring.SeverityLow},
		{"DNSSEC", scoring.SeverityLow},
	}},
	{Name: scoring.CategoryLinks, Checks: []CheckSpec{
		{"Dead Link Stubs", scoring.SeverityMedium},
		{"Link Profile", scoring.SeverityLow},
		{"Link Volume", scoring.SeverityLow},
		{"External Nofollow", scoring.SeverityLow},
	}},
	{Name: scoring.CategoryPerformance, Checks: []CheckSpec{
		{"Response Time", scoring.SeverityHigh},
		{"Page Weight", scoring.SeverityMedium},
		{"Compression", scoring.SeverityMedium},
		{"Cache-Control", scoring.SeverityLow},
		{"Redirect Chain", scoring.SeverityMedium},
		{"HTTP Protocol", scoring.SeverityLow},
	}},
	{Name: scoring.CategoryAccessibility, Checks: []CheckSpec{
		{"Image Alt Text", scoring.SeverityHigh},
		{"Language Attribute", scoring.SeverityMedium},
		{"Viewport Meta", scoring.SeverityMedium},
		{"Form Labels", scoring.SeverityMedium},
		{"Heading Hierarchy", scoring.SeverityLow},
		{"Link Text", scoring.SeverityLow},
	}},
	{Name: scoring.CategoryExternalLinks, Checks: []CheckSpec{
		{"Broken External Links", scoring.SeverityHigh},
		{"Insecure External Links", scoring.SeverityMedium},
		{"External Link Sample", scoring.SeverityLow},
	}},
	{Name: scoring.CategorySEO, Checks: []CheckSpec{
		{"Title Tag", scoring.SeverityHigh},
		{"Meta Description", scoring.SeverityHigh},
		{"Canonical Link", scoring.SeverityMedium},
		{"Robots Meta", scoring.SeverityHigh},
		{"H1 Heading", scoring.SeverityMedium},
		{"Open Graph Tags", scoring.SeverityLow},
		{"Structured Data", scoring.SeverityLow},
		{"robots.txt", scoring.SeverityMedium},
		{"sitemap.xml", scoring.SeverityLow},
	}},
	{Name: scoring.CategoryWhois, Checks: []CheckSpec{
		{"Domain Age", scoring.SeverityCritical},
		{"Expiry Horizon", scoring.SeverityMedium},
		{"Registrar", scoring.SeverityLow},
	}},
}

// Catalog returns the built-in check catalog with scoring weights filled in.
func Catalog() []CategorySpec {
	out := make([]CategorySpec, len(catalog))
	for i, cat := range catalog {
		cat.Weight = scoring.CategoryWeight(cat.Name)
		cat.Checks = append([]CheckSpec(nil), cat.Checks...)
		out[i] = cat
	}
	return out
}
