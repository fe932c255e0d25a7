package checks

import (
	"context"
	"crypto/tls"
	"fmt"
	"strings"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

// SecurityChecker evaluates transport security and security response headers
type SecurityChecker struct{}

func (c *SecurityChecker) Category() string { return scoring.CategorySecurity }

// securityCheck describes a single security heuristic and how to run it
type securityCheck struct {
	name     string
	severity scoring.Severity
	run      func(page *analyzer.Page) (scoring.CheckStatus, string)
}

// securityChecks lists every heuristic in reporting order
var securityChecks = []securityCheck{
	{"HTTPS Connection", scoring.SeverityCritical, checkHTTPS},
	{"Strict-Transport-Security", scoring.SeverityHigh, checkHSTS},
	{"Content-Security-Policy", scoring.SeverityHigh, checkCSP},
	{"X-Content-Type-Options", scoring.SeverityMedium, checkContentTypeOptions},
	{"X-Frame-Options", scoring.SeverityMedium, checkFrameOptions},
	{"Referrer-Policy", scoring.SeverityLow, checkReferrerPolicy},
	{"TLS Protocol", scoring.SeverityCritical, checkTLSVersion},
	{"Certificate Expiry", scoring.SeverityHigh, checkCertExpiry},
	{"Mixed Content", scoring.SeverityHigh, checkMixedContent},
	{"Cookie Security", scoring.SeverityMedium, checkCookieFlags},
	{"Server Banner", scoring.SeverityLow, checkServerBanner},
}

func (c *SecurityChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	records := make([]scoring.CheckRecord, 0, len(securityChecks))
	for _, sc := range securityChecks {
		status, desc := sc.run(page)
		records = append(records, scoring.CheckRecord{
			Name:        sc.name,
			Status:      status,
			Severity:    sc.severity,
			Description: desc,
		})
	}
	return scoring.NewCategoryResult(scoring.CategorySecurity, records)
}

func checkHTTPS(page *analyzer.Page) (scoring.CheckStatus, string) {
	if page.IsHTTPS() {
		return scoring.StatusPass, "site served over HTTPS"
	}
	return scoring.StatusFail, "site served over plain HTTP"
}

func checkHSTS(page *analyzer.Page) (scoring.CheckStatus, string) {
	if !page.IsHTTPS() {
		return scoring.StatusInfo, "HSTS only applies to HTTPS sites"
	}

	value := strings.ToLower(page.Header.Get("Strict-Transport-Security"))
	if value == "" {
		return scoring.StatusFail, "Strict-Transport-Security header missing"
	}
	if strings.Contains(value, "max-age=0") {
		return scoring.StatusFail, "max-age is set to 0 (HSTS disabled)"
	}
	if !strings.Contains(value, "max-age=") {
		return scoring.StatusWarn, "missing max-age directive"
	}
	if !strings.Contains(value, "includesubdomains") {
		return scoring.StatusWarn, "missing includeSubDomains directive"
	}
	return scoring.StatusPass, "HSTS configured"
}

func checkCSP(page *analyzer.Page) (scoring.CheckStatus, string) {
	value := strings.ToLower(page.Header.Get("Content-Security-Policy"))
	if value == "" {
		return scoring.StatusFail, "Content-Security-Policy header missing"
	}

	issues := []string{}
	if strings.Contains(value, "'unsafe-inline'") {
		issues = append(issues, "'unsafe-inline' weakens CSP protection")
	}
	if strings.Contains(value, "'unsafe-eval'") {
		issues = append(issues, "'unsafe-eval' allows eval() and similar functions")
	}
	if !strings.Contains(value, "default-src") {
		issues = append(issues, "missing default-src fallback directive")
	}
	if len(issues) > 0 {
		return scoring.StatusWarn, strings.Join(issues, "; ")
	}
	return scoring.StatusPass, "CSP present with good configuration"
}

func checkContentTypeOptions(page *analyzer.Page) (scoring.CheckStatus, string) {
	value := strings.ToLower(page.Header.Get("X-Content-Type-Options"))
	switch value {
	case "nosniff":
		return scoring.StatusPass, "nosniff enabled"
	case "":
		return scoring.StatusFail, "X-Content-Type-Options header missing"
	default:
		return scoring.StatusWarn, fmt.Sprintf("invalid value %q, should be nosniff", value)
	}
}

func checkFrameOptions(page *analyzer.Page) (scoring.CheckStatus, string) {
	value := strings.ToUpper(page.Header.Get("X-Frame-Options"))
	if value == "DENY" || value == "SAMEORIGIN" {
		return scoring.StatusPass, "clickjacking protection enabled"
	}
	if strings.HasPrefix(value, "ALLOW-FROM") {
		return scoring.StatusWarn, "ALLOW-FROM is deprecated and ignored by modern browsers"
	}
	// CSP frame-ancestors supersedes X-Frame-Options
	if strings.Contains(strings.ToLower(page.Header.Get("Content-Security-Policy")), "frame-ancestors") {
		return scoring.StatusPass, "frame-ancestors directive covers clickjacking"
	}
	if value == "" {
		return scoring.StatusFail, "no clickjacking protection (X-Frame-Options or frame-ancestors)"
	}
	return scoring.StatusWarn, fmt.Sprintf("invalid X-Frame-Options value %q", value)
}

func checkReferrerPolicy(page *analyzer.Page) (scoring.CheckStatus, string) {
	value := strings.ToLower(page.Header.Get("Referrer-Policy"))
	if value == "" {
		return scoring.StatusFail, "Referrer-Policy header missing"
	}
	for _, good := range []string{"no-referrer", "strict-origin", "strict-origin-when-cross-origin", "same-origin"} {
		if strings.Contains(value, good) {
			return scoring.StatusPass, "referrer policy restricts leakage"
		}
	}
	if strings.Contains(value, "unsafe-url") {
		return scoring.StatusWarn, "unsafe-url may leak full URLs in the referrer"
	}
	return scoring.StatusWarn, fmt.Sprintf("weak referrer policy %q", value)
}

func checkTLSVersion(page *analyzer.Page) (scoring.CheckStatus, string) {
	if page.TLS == nil {
		if page.IsHTTPS() {
			return scoring.StatusError, "TLS state not captured"
		}
		return scoring.StatusFail, "no TLS connection"
	}
	switch {
	case page.TLS.Version >= tls.VersionTLS13:
		return scoring.StatusPass, "TLS 1.3 negotiated"
	case page.TLS.Version == tls.VersionTLS12:
		return scoring.StatusWarn, "TLS 1.2 negotiated, prefer TLS 1.3"
	default:
		return scoring.StatusFail, "insecure TLS version negotiated"
	}
}

func checkCertExpiry(page *analyzer.Page) (scoring.CheckStatus, string) {
	if page.TLS == nil || len(page.TLS.PeerCertificates) == 0 {
		if page.IsHTTPS() {
			return scoring.StatusError, "peer certificate not captured"
		}
		return scoring.StatusInfo, "no certificate to inspect on plain HTTP"
	}

	cert := page.TLS.PeerCertificates[0]
	until := time.Until(cert.NotAfter)
	days := int(until.Hours() / 24)
	switch {
	case until < 0:
		return scoring.StatusFail, "certificate has expired"
	case until < consts.TLSSoonExpiryWindow:
		return scoring.StatusWarn, fmt.Sprintf("certificate expires in %d day(s)", days)
	default:
		return scoring.StatusPass, fmt.Sprintf("certificate valid for %d day(s)", days)
	}
}

func checkMixedContent(page *analyzer.Page) (scoring.CheckStatus, string) {
	if !page.IsHTTPS() {
		return scoring.StatusInfo, "mixed content only applies to HTTPS sites"
	}
	doc, err := page.Doc()
	if err != nil {
		return scoring.StatusError, fmt.Sprintf("parse HTML: %v", err)
	}

	insecure := 0
	for _, el := range findElements(doc, "script", "img", "iframe", "link", "audio", "video", "source") {
		for _, key := range []string{"src", "href"} {
			if v := nodeAttr(el, key); strings.HasPrefix(strings.ToLower(v), "http://") {
				insecure++
			}
		}
	}
	if insecure > 0 {
		return scoring.StatusFail, fmt.Sprintf("%d resource(s) loaded over insecure http://", insecure)
	}
	return scoring.StatusPass, "no mixed content detected"
}

func checkCookieFlags(page *analyzer.Page) (scoring.CheckStatus, string) {
	if len(page.Cookies) == 0 {
		return scoring.StatusInfo, "no cookies set"
	}

	missing := 0
	for _, ck := range page.Cookies {
		if !ck.Secure || !ck.HttpOnly {
			missing++
		}
	}
	switch {
	case missing == 0:
		return scoring.StatusPass, "all cookies carry Secure and HttpOnly"
	case missing == len(page.Cookies):
		return scoring.StatusFail, fmt.Sprintf("all %d cookie(s) missing Secure or HttpOnly", missing)
	default:
		return scoring.StatusWarn, fmt.Sprintf("%d cookie(s) missing Secure or HttpOnly", missing)
	}
}

func checkServerBanner(page *analyzer.Page) (scoring.CheckStatus, string) {
	exposed := []string{}
	for _, h := range []string{"Server", "X-Powered-By", "X-AspNet-Version"} {
		if v := page.Header.Get(h); v != "" {
			exposed = append(exposed, fmt.Sprintf("%s: %s", h, v))
		}
	}
	if len(exposed) == 0 {
		return scoring.StatusPass, "no server version banners exposed"
	}
	return scoring.StatusWarn, "server information exposed: " + strings.Join(exposed, ", ")
}
