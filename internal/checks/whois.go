package checks

import (
	"context"
	"fmt"
	"io"
	"net"
	"regexp"
	"strings"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// whoisMaxResponse caps how much of a WHOIS reply is read.
const whoisMaxResponse = 64 << 10

var (
	whoisReferralPattern     = regexp.MustCompile(`(?im)^\s*refer:\s*(\S+)`)
	whoisRegistrarHopPattern = regexp.MustCompile(`(?im)^\s*registrar whois server:\s*(\S+)`)
	whoisCreatedPattern      = regexp.MustCompile(`(?im)^\s*(?:creation date|created(?: on)?|registered(?: on)?):\s*(.+)$`)
	whoisExpiryPattern       = regexp.MustCompile(`(?im)^\s*(?:registry expiry date|expiry date|expiration date|expires(?: on)?|paid-till):\s*(.+)$`)
	whoisRegistrarPattern    = regexp.MustCompile(`(?im)^\s*registrar:\s*(.+)$`)
)

var whoisTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WhoisChecker queries registration data over WHOIS (TCP port 43). With no
// Server set it asks IANA for the TLD server, follows the referral, and takes
// at most one further hop to the registrar's own server.
type WhoisChecker struct {
	Timeout time.Duration
	Server  string
}

func (c *WhoisChecker) Category() string { return scoring.CategoryWhois }

func (c *WhoisChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	host := page.Host()
	if host == "" {
		return scoring.UnavailableCategory(scoring.CategoryWhois, "no host to query")
	}
	domain := registrableDomain(host)

	raw, err := c.lookup(ctx, domain)
	if err != nil {
		return scoring.NewCategoryResult(scoring.CategoryWhois, []scoring.CheckRecord{
			errorRecord("Domain Age", scoring.SeverityCritical, err),
			errorRecord("Expiry Horizon", scoring.SeverityMedium, err),
			errorRecord("Registrar", scoring.SeverityLow, err),
		})
	}

	records := []scoring.CheckRecord{
		checkDomainAge(raw, time.Now()),
		checkExpiryHorizon(raw, time.Now()),
		checkRegistrar(raw),
	}
	return scoring.NewCategoryResult(scoring.CategoryWhois, records)
}

func (c *WhoisChecker) lookup(ctx context.Context, domain string) (string, error) {
	if c.Server != "" {
		return c.query(ctx, c.Server, domain)
	}

	raw, err := c.query(ctx, "whois.iana.org:43", domain)
	if err != nil {
		return "", err
	}
	refer := matchFirst(whoisReferralPattern, raw)
	if refer == "" {
		return raw, nil
	}

	raw, err = c.query(ctx, net.JoinHostPort(refer, "43"), domain)
	if err != nil {
		return "", err
	}
	if hop := matchFirst(whoisRegistrarHopPattern, raw); hop != "" && !strings.EqualFold(hop, refer) {
		if detail, err := c.query(ctx, net.JoinHostPort(hop, "43"), domain); err == nil && detail != "" {
			return detail, nil
		}
	}
	return raw, nil
}

func (c *WhoisChecker) query(ctx context.Context, server, domain string) (string, error) {
	timeout := c.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	dialer := &net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", server)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	_ = conn.SetDeadline(time.Now().Add(timeout))
	if _, err := fmt.Fprintf(conn, "%s\r\n", domain); err != nil {
		return "", err
	}
	data, err := io.ReadAll(io.LimitReader(conn, whoisMaxResponse))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func matchFirst(re *regexp.Regexp, raw string) string {
	m := re.FindStringSubmatch(raw)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func parseWhoisTime(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	candidates := []string{value}
	if fields := strings.Fields(value); len(fields) > 0 && fields[0] != value {
		candidates = append(candidates, fields[0])
	}
	for _, cand := range candidates {
		for _, layout := range whoisTimeFormats {
			if t, err := time.Parse(layout, cand); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

func checkDomainAge(raw string, now time.Time) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Domain Age", Severity: scoring.SeverityCritical}

	value := matchFirst(whoisCreatedPattern, raw)
	if value == "" {
		rec.Status = scoring.StatusInfo
		rec.Description = "registration date not present in record"
		return rec
	}
	created, ok := parseWhoisTime(value)
	if !ok {
		rec.Status = scoring.StatusInfo
		rec.Description = "registration date in unrecognized format: " + value
		return rec
	}

	age := now.Sub(created)
	days := int(age.Hours() / 24)
	switch {
	case age < 30*24*time.Hour:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("domain registered %d day(s) ago, very new domains correlate with abuse", days)
	case age < 180*24*time.Hour:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("domain registered %d day(s) ago", days)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("domain registered %.1f year(s) ago", age.Hours()/24/365)
	}
	return rec
}

func checkExpiryHorizon(raw string, now time.Time) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Expiry Horizon", Severity: scoring.SeverityMedium}

	value := matchFirst(whoisExpiryPattern, raw)
	if value == "" {
		rec.Status = scoring.StatusInfo
		rec.Description = "expiry date not present in record"
		return rec
	}
	expires, ok := parseWhoisTime(value)
	if !ok {
		rec.Status = scoring.StatusInfo
		rec.Description = "expiry date in unrecognized format: " + value
		return rec
	}

	left := expires.Sub(now)
	switch {
	case left <= 0:
		rec.Status = scoring.StatusFail
		rec.Description = "domain registration has expired"
	case left < 30*24*time.Hour:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("domain expires in %d day(s)", int(left.Hours()/24))
	default:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("domain valid for %d more day(s)", int(left.Hours()/24))
	}
	return rec
}

func checkRegistrar(raw string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Registrar", Severity: scoring.SeverityLow, Status: scoring.StatusInfo}

	if registrar := matchFirst(whoisRegistrarPattern, raw); registrar != "" {
		rec.Description = "registered via " + registrar
		return rec
	}
	rec.Description = "registrar not present in record"
	return rec
}
