package checks

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// MalwareCheckName is the check whose failure marks the site as actively
// dangerous. The scoring layer and orchestrator key off this record.
const MalwareCheckName = "Malware/Phishing Indicators"

// Phishing and malware heuristics. These patterns flag signals, not proof;
// the malware verdict requires several to fire at once.
var (
	credentialBaitPattern = regexp.MustCompile(`(?i)(verify\s+your\s+(account|identity)|confirm\s+your\s+(password|account|identity)|account\s+(has\s+been\s+)?suspended|unusual\s+(sign.?in\s+)?activity|update\s+your\s+(payment|billing))`)
	brandSpoofPattern     = regexp.MustCompile(`(?i)(paypa1|payp[a4]l\s+secure|app1e|amaz[0o]n\s+verification|netf1ix|micr[0o]s[0o]ft\s+support|faceb[0o]{2}k)`)
	obfuscatedJSPattern   = regexp.MustCompile(`(?i)(\beval\s*\(|document\.write\s*\(\s*unescape|String\.fromCharCode\s*\(|\batob\s*\(|unescape\s*\(\s*['"]%)`)
	base64BlobPattern     = regexp.MustCompile(`[A-Za-z0-9+/]{200,}={0,2}`)
	hiddenStylePattern    = regexp.MustCompile(`(?i)(display\s*:\s*none|visibility\s*:\s*hidden|text-indent\s*:\s*-\d{4,}|position\s*:\s*absolute\s*;\s*left\s*:\s*-\d{4,})`)
	metaRefreshPattern    = regexp.MustCompile(`(?i)^\s*\d+\s*;\s*url\s*=\s*(\S+)`)
)

// SafetyChecker scans the fetched page for phishing, malware delivery, and
// deception signals
type SafetyChecker struct{}

func (c *SafetyChecker) Category() string { return scoring.CategorySafety }

func (c *SafetyChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	body := string(page.Body)
	host := page.Host()

	records := []scoring.CheckRecord{
		c.checkMalwareIndicators(page, body, host),
		c.checkSuspiciousScripts(body),
		c.checkDeceptiveRedirects(page, host),
		c.checkHiddenContent(body),
		c.checkPunycodeHost(host),
	}

	result := scoring.NewCategoryResult(scoring.CategorySafety, records)
	for _, rec := range records {
		if rec.Name == MalwareCheckName && rec.Status == scoring.StatusFail {
			// A confirmed threat zeroes the category regardless of how the
			// remaining checks fared.
			result.MalwareDetected = true
			result.Score = scoring.IntPtr(0)
			break
		}
	}
	return result
}

// checkMalwareIndicators combines independent signals: credential-bait
// copy, spoofed brand spellings, password forms posting off-host, and
// heavily obfuscated script. Two or more firing together is a fail.
func (c *SafetyChecker) checkMalwareIndicators(page *analyzer.Page, body, host string) scoring.CheckRecord {
	signals := []string{}

	if credentialBaitPattern.MatchString(body) {
		signals = append(signals, "credential-bait phrasing")
	}
	if brandSpoofPattern.MatchString(body) {
		signals = append(signals, "spoofed brand spelling")
	}
	if c.foreignPasswordForm(page, host) {
		signals = append(signals, "password form posts to a foreign host")
	}
	if len(obfuscatedJSPattern.FindAllStringIndex(body, -1)) >= 3 && base64BlobPattern.MatchString(body) {
		signals = append(signals, "dense obfuscated script payload")
	}

	rec := scoring.CheckRecord{
		Name:     MalwareCheckName,
		Severity: scoring.SeverityCritical,
	}
	switch {
	case len(signals) >= 2:
		rec.Status = scoring.StatusFail
		rec.Description = "threat indicators: " + strings.Join(signals, ", ")
	case len(signals) == 1:
		rec.Status = scoring.StatusWarn
		rec.Description = "possible threat indicator: " + signals[0]
	default:
		rec.Status = scoring.StatusPass
		rec.Description = "no malware or phishing indicators found"
	}
	return rec
}

// foreignPasswordForm reports whether any form containing a password input
// submits to a different host than the page itself.
func (c *SafetyChecker) foreignPasswordForm(page *analyzer.Page, host string) bool {
	doc, err := page.Doc()
	if err != nil || host == "" {
		return false
	}
	for _, form := range findElements(doc, "form") {
		hasPassword := false
		for _, input := range findElements(form, "input") {
			if strings.EqualFold(nodeAttr(input, "type"), "password") {
				hasPassword = true
				break
			}
		}
		if !hasPassword {
			continue
		}
		action := nodeAttr(form, "action")
		if action == "" {
			continue
		}
		u, err := url.Parse(action)
		if err != nil || u.Hostname() == "" {
			continue
		}
		if !strings.EqualFold(u.Hostname(), host) {
			return true
		}
	}
	return false
}

func (c *SafetyChecker) checkSuspiciousScripts(body string) scoring.CheckRecord {
	rec := scoring.CheckRecord{
		Name:     "Suspicious Scripts",
		Severity: scoring.SeverityHigh,
	}

	hits := len(obfuscatedJSPattern.FindAllStringIndex(body, -1))
	blobs := len(base64BlobPattern.FindAllStringIndex(body, -1))

	switch {
	case hits >= 3:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d obfuscation construct(s) in page scripts", hits)
	case hits > 0 || blobs >= 3:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d obfuscation construct(s), %d large encoded blob(s)", hits, blobs)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = "no obfuscated script constructs found"
	}
	return rec
}

func (c *SafetyChecker) checkDeceptiveRedirects(page *analyzer.Page, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{
		Name:     "Deceptive Redirects",
		Severity: scoring.SeverityMedium,
	}

	refreshTarget := ""
	doc, err := page.Doc()
	if err == nil {
		for _, meta := range findElements(doc, "meta") {
			if !strings.EqualFold(nodeAttr(meta, "http-equiv"), "refresh") {
				continue
			}
			if m := metaRefreshPattern.FindStringSubmatch(nodeAttr(meta, "content")); len(m) > 1 {
				refreshTarget = strings.Trim(m[1], `'"`)
			}
		}
	}

	if refreshTarget == "" {
		rec.Status = scoring.StatusPass
		rec.Description = "no meta refresh redirects"
		return rec
	}

	u, parseErr := url.Parse(refreshTarget)
	if parseErr == nil && u.Hostname() != "" && !strings.EqualFold(u.Hostname(), host) {
		rec.Status = scoring.StatusFail
		rec.Description = "meta refresh redirects to foreign host " + u.Hostname()
		return rec
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "meta refresh redirect present"
	return rec
}

func (c *SafetyChecker) checkHiddenContent(body string) scoring.CheckRecord {
	rec := scoring.CheckRecord{
		Name:     "Hidden Content",
		Severity: scoring.SeverityMedium,
	}

	hits := len(hiddenStylePattern.FindAllStringIndex(body, -1))
	switch {
	case hits >= 20:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d hidden-content style rule(s), likely cloaking", hits)
	case hits >= 8:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d hidden-content style rule(s)", hits)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = "no unusual hidden content volume"
	}
	return rec
}

func (c *SafetyChecker) checkPunycodeHost(host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{
		Name:     "Punycode Hostname",
		Severity: scoring.SeverityHigh,
	}

	for _, label := range strings.Split(host, ".") {
		if strings.HasPrefix(strings.ToLower(label), "xn--") {
			rec.Status = scoring.StatusFail
			rec.Description = "hostname uses punycode label " + label + ", possible homograph attack"
			return rec
		}
	}
	rec.Status = scoring.StatusPass
	rec.Description = "hostname uses no punycode labels"
	return rec
}
