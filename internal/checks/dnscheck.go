package checks

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// DNSChecker evaluates the DNS posture of the target's domain
type DNSChecker struct {
	Timeout  time.Duration
	Resolver string // host:port, defaults to public resolvers
}

func (c *DNSChecker) Category() string { return scoring.CategoryDNS }

func (c *DNSChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	host := page.Host()
	if host == "" {
		return scoring.UnavailableCategory(scoring.CategoryDNS, "no host to resolve")
	}

	q := &dnsQuerier{
		timeout:  c.Timeout,
		resolver: c.Resolver,
	}

	records := []scoring.CheckRecord{
		c.checkAddresses(ctx, q, host),
		c.checkNameServers(ctx, q, host),
		c.checkMX(ctx, q, host),
		c.checkSPF(ctx, q, host),
		c.checkDMARC(ctx, q, host),
		c.checkCAA(ctx, q, host),
		c.checkDNSSEC(ctx, q, host),
	}
	return scoring.NewCategoryResult(scoring.CategoryDNS, records)
}

func (c *DNSChecker) checkAddresses(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "A/AAAA Records", Severity: scoring.SeverityCritical}

	a, errA := q.answers(ctx, host, dns.TypeA)
	aaaa, errAAAA := q.answers(ctx, host, dns.TypeAAAA)
	if errA != nil && errAAAA != nil {
		return errorRecord(rec.Name, rec.Severity, errA)
	}

	v4, v6 := 0, 0
	for _, ans := range a {
		if _, ok := ans.(*dns.A); ok {
			v4++
		}
	}
	for _, ans := range aaaa {
		if _, ok := ans.(*dns.AAAA); ok {
			v6++
		}
	}

	switch {
	case v4 == 0 && v6 == 0:
		rec.Status = scoring.StatusFail
		rec.Description = "domain resolves to no addresses"
	case v6 == 0:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("%d A record(s), no AAAA", v4)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("%d A record(s), %d AAAA record(s)", v4, v6)
	}
	return rec
}

func (c *DNSChecker) checkNameServers(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Name Servers", Severity: scoring.SeverityMedium}

	answers, err := q.answers(ctx, registrableDomain(host), dns.TypeNS)
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}

	count := 0
	for _, ans := range answers {
		if _, ok := ans.(*dns.NS); ok {
			count++
		}
	}
	switch {
	case count >= 2:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("%d name server(s) delegated", count)
	case count == 1:
		rec.Status = scoring.StatusWarn
		rec.Description = "only one name server, no redundancy"
	default:
		rec.Status = scoring.StatusFail
		rec.Description = "no name servers found"
	}
	return rec
}

func (c *DNSChecker) checkMX(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "MX Records", Severity: scoring.SeverityLow}

	answers, err := q.answers(ctx, registrableDomain(host), dns.TypeMX)
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}

	count := 0
	for _, ans := range answers {
		if _, ok := ans.(*dns.MX); ok {
			count++
		}
	}
	if count > 0 {
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("%d mail exchanger(s) configured", count)
	} else {
		rec.Status = scoring.StatusInfo
		rec.Description = "no mail exchangers configured"
	}
	return rec
}

func (c *DNSChecker) checkSPF(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "SPF Record", Severity: scoring.SeverityMedium}

	txts, err := q.txt(ctx, registrableDomain(host))
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, txt := range txts {
		if strings.HasPrefix(strings.ToLower(txt), "v=spf1") {
			rec.Status = scoring.StatusPass
			rec.Description = "SPF record published"
			return rec
		}
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "no SPF record, domain can be spoofed in email"
	return rec
}

func (c *DNSChecker) checkDMARC(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "DMARC Record", Severity: scoring.SeverityMedium}

	txts, err := q.txt(ctx, "_dmarc."+registrableDomain(host))
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, txt := range txts {
		if strings.HasPrefix(strings.ToLower(txt), "v=dmarc1") {
			rec.Status = scoring.StatusPass
			rec.Description = "DMARC policy published"
			return rec
		}
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "no DMARC policy published"
	return rec
}

func (c *DNSChecker) checkCAA(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "CAA Record", Severity: scoring.SeverityLow}

	answers, err := q.answers(ctx, registrableDomain(host), dns.TypeCAA)
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, ans := range answers {
		if _, ok := ans.(*dns.CAA); ok {
			rec.Status = scoring.StatusPass
			rec.Description = "CAA record restricts certificate issuance"
			return rec
		}
	}
	rec.Status = scoring.StatusInfo
	rec.Description = "no CAA record, any CA may issue certificates"
	return rec
}

func (c *DNSChecker) checkDNSSEC(ctx context.Context, q *dnsQuerier, host string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "DNSSEC", Severity: scoring.SeverityLow}

	answers, err := q.answers(ctx, registrableDomain(host), dns.TypeDNSKEY)
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, ans := range answers {
		if _, ok := ans.(*dns.DNSKEY); ok {
			rec.Status = scoring.StatusPass
			rec.Description = "DNSSEC keys published"
			return rec
		}
	}
	rec.Status = scoring.StatusInfo
	rec.Description = "DNSSEC not enabled"
	return rec
}

// dnsQuerier wraps a miekg/dns client with resolver fallback
type dnsQuerier struct {
	timeout  time.Duration
	resolver string
}

// publicResolvers are tried in order when no resolver is configured
var publicResolvers = []string{"8.8.8.8:53", "1.1.1.1:53"}

func (q *dnsQuerier) servers() []string {
	if q.resolver != "" {
		addr := q.resolver
		if !strings.Contains(addr, ":") {
			addr += ":53"
		}
		return []string{addr}
	}
	return publicResolvers
}

func (q *dnsQuerier) answers(ctx context.Context, name string, qtype uint16) ([]dns.RR, error) {
	timeout := q.timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client := &dns.Client{Timeout: timeout}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), qtype)
	msg.RecursionDesired = true

	var lastErr error
	for _, server := range q.servers() {
		resp, _, err := client.ExchangeContext(ctx, msg, server)
		if err != nil {
			lastErr = err
			continue
		}
		if resp == nil {
			lastErr = fmt.Errorf("empty response from %s", server)
			continue
		}
		return resp.Answer, nil
	}
	return nil, lastErr
}

func (q *dnsQuerier) txt(ctx context.Context, name string) ([]string, error) {
	answers, err := q.answers(ctx, name, dns.TypeTXT)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(answers))
	for _, ans := range answers {
		if txt, ok := ans.(*dns.TXT); ok {
			out = append(out, strings.Join(txt.Txt, ""))
		}
	}
	return out, nil
}

// multiTLDs lists second-level public suffixes we split around. Not a full
// public suffix list, just the common cases.
var multiTLDs = map[string]struct{}{
	"co.uk": {}, "org.uk": {}, "ac.uk": {}, "gov.uk": {},
	"com.au": {}, "net.au": {}, "org.au": {},
	"co.jp": {}, "or.jp": {}, "ne.jp": {},
	"com.br": {}, "com.cn": {}, "co.in": {}, "co.nz": {}, "co.za": {},
}

// registrableDomain trims subdomains so zone-level lookups (NS, TXT, CAA)
// hit the registered domain instead of a host record.
func registrableDomain(host string) string {
	labels := strings.Split(strings.TrimSuffix(host, "."), ".")
	if len(labels) <= 2 {
		return host
	}
	lastTwo := strings.Join(labels[len(labels)-2:], ".")
	if _, ok := multiTLDs[lastTwo]; ok {
		if len(labels) >= 3 {
			return strings.Join(labels[len(labels)-3:], ".")
		}
		return host
	}
	return lastTwo
}
