package checks

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

// ExternalLinkChecker probes a sample of outbound links, one per distinct
// host, and reports on reachability and scheme hygiene. Probes share the
// fetcher's rate budget.
type ExternalLinkChecker struct {
	Fetcher    *analyzer.Fetcher
	SampleSize int
	Workers    int
}

type probeOutcome struct {
	url    string
	status int
	err    error
}

func (c *ExternalLinkChecker) Category() string { return scoring.CategoryExternalLinks }

func (c *ExternalLinkChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	if c.Fetcher == nil {
		return scoring.UnavailableCategory(scoring.CategoryExternalLinks, "no fetcher configured for link probing")
	}

	links, err := collectLinks(page)
	if err != nil {
		return scoring.UnavailableCategory(scoring.CategoryExternalLinks, "page body could not be parsed as HTML")
	}
	if len(links.External) == 0 {
		return scoring.NewCategoryResult(scoring.CategoryExternalLinks, []scoring.CheckRecord{{
			Name:        "External Link Sample",
			Status:      scoring.StatusInfo,
			Severity:    scoring.SeverityLow,
			Description: "no external links to probe",
		}})
	}

	sample := sampleByHost(links.External, c.sampleSize())
	outcomes := c.probeAll(ctx, sample)

	records := []scoring.CheckRecord{
		brokenLinksRecord(outcomes),
		insecureLinksRecord(links.External),
		{
			Name:        "External Link Sample",
			Status:      scoring.StatusInfo,
			Severity:    scoring.SeverityLow,
			Description: fmt.Sprintf("probed %d of %d external link(s), one per host", len(sample), len(links.External)),
		},
	}
	return scoring.NewCategoryResult(scoring.CategoryExternalLinks, records)
}

func (c *ExternalLinkChecker) sampleSize() int {
	if c.SampleSize > 0 {
		return c.SampleSize
	}
	return consts.ExternalLinkSample
}

// sampleByHost keeps the first link seen for each distinct host, up to limit.
func sampleByHost(links []string, limit int) []string {
	seen := map[string]bool{}
	var sample []string
	for _, raw := range links {
		u, err := url.Parse(raw)
		if err != nil {
			continue
		}
		host := strings.ToLower(u.Hostname())
		if host == "" || seen[host] {
			continue
		}
		seen[host] = true
		sample = append(sample, raw)
		if len(sample) >= limit {
			break
		}
	}
	return sample
}

// probeAll fans the sampled links out over a small worker pool.
func (c *ExternalLinkChecker) probeAll(ctx context.Context, sample []string) []probeOutcome {
	workers := c.Workers
	if workers == 0 {
		workers = 4
	}

	jobs := make(chan string, len(sample))
	results := make(chan probeOutcome, len(sample))
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for link := range jobs {
				status, err := c.Fetcher.Probe(ctx, link)
				results <- probeOutcome{url: link, status: status, err: err}
			}
		}()
	}

	go func() {
		for _, link := range sample {
			select {
			case jobs <- link:
			case <-ctx.Done():
			}
		}
		close(jobs)
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	outcomes := make([]probeOutcome, 0, len(sample))
	for outcome := range results {
		outcomes = append(outcomes, outcome)
	}
	return outcomes
}

func brokenLinksRecord(outcomes []probeOutcome) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Broken External Links", Severity: scoring.SeverityHigh}

	broken, errored := 0, 0
	for _, o := range outcomes {
		switch {
		case o.err != nil:
			errored++
		case o.status >= 400:
			broken++
		}
	}

	if errored == len(outcomes) {
		return errorRecord(rec.Name, rec.Severity, fmt.Errorf("all %d probe(s) failed", len(outcomes)))
	}

	switch {
	case broken+errored == 0:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("all %d probed link(s) respond", len(outcomes))
	case broken+errored <= 2:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d of %d probed link(s) broken or unreachable", broken+errored, len(outcomes))
	default:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d of %d probed link(s) broken or unreachable", broken+errored, len(outcomes))
	}
	return rec
}

func insecureLinksRecord(external []string) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Insecure External Links", Severity: scoring.SeverityMedium}

	insecure := 0
	for _, link := range external {
		if strings.HasPrefix(strings.ToLower(link), "http://") {
			insecure++
		}
	}
	if insecure > 0 {
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d external link(s) use plain http", insecure)
		return rec
	}
	rec.Status = scoring.StatusPass
	rec.Description = "all external links use https"
	return rec
}
