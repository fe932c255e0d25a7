package checks

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// pageLinks is the classified set of anchors found on a page.
type pageLinks struct {
	Internal []string
	External []string
	Stubs    int
	Nofollow int
}

// collectLinks resolves every anchor href against the page base and splits
// them into same-host and external sets. Placeholder hrefs count as stubs.
func collectLinks(page *analyzer.Page) (*pageLinks, error) {
	doc, err := page.Doc()
	if err != nil {
		return nil, err
	}

	base := page.Base()
	host := strings.ToLower(page.Host())
	links := &pageLinks{}

	for _, a := range findElements(doc, "a") {
		href := strings.TrimSpace(nodeAttr(a, "href"))
		lower := strings.ToLower(href)
		switch {
		case href == "" || href == "#" || strings.HasPrefix(lower, "javascript:"):
			links.Stubs++
			continue
		case strings.HasPrefix(lower, "mailto:") || strings.HasPrefix(lower, "tel:"):
			continue
		}

		ref, err := url.Parse(href)
		if err != nil {
			links.Stubs++
			continue
		}
		if base != nil {
			ref = base.ResolveReference(ref)
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			continue
		}

		if strings.EqualFold(ref.Hostname(), host) || ref.Hostname() == "" {
			links.Internal = append(links.Internal, ref.String())
		} else {
			links.External = append(links.External, ref.String())
			if strings.Contains(strings.ToLower(nodeAttr(a, "rel")), "nofollow") {
				links.Nofollow++
			}
		}
	}
	return links, nil
}

// LinkChecker analyzes the anchor structure of the fetched page without
// issuing any extra requests.
type LinkChecker struct{}

func (c *LinkChecker) Category() string { return scoring.CategoryLinks }

func (c *LinkChecker) Run(_ context.Context, page *analyzer.Page) scoring.CategoryResult {
	links, err := collectLinks(page)
	if err != nil {
		return scoring.UnavailableCategory(scoring.CategoryLinks, "page body could not be parsed as HTML")
	}

	records := []scoring.CheckRecord{
		checkDeadStubs(links),
		checkLinkProfile(links),
		checkLinkVolume(links),
		checkNofollowUsage(links),
	}
	return scoring.NewCategoryResult(scoring.CategoryLinks, records)
}

func checkDeadStubs(links *pageLinks) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Dead Link Stubs", Severity: scoring.SeverityMedium}

	switch {
	case links.Stubs == 0:
		rec.Status = scoring.StatusPass
		rec.Description = "no placeholder links"
	case links.Stubs <= 3:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d placeholder link(s) (empty, # or javascript:)", links.Stubs)
	default:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d placeholder link(s) (empty, # or javascript:)", links.Stubs)
	}
	return rec
}

func checkLinkProfile(links *pageLinks) scoring.CheckRecord {
	return scoring.CheckRecord{
		Name:        "Link Profile",
		Status:      scoring.StatusInfo,
		Severity:    scoring.SeverityLow,
		Description: fmt.Sprintf("%d internal, %d external link(s)", len(links.Internal), len(links.External)),
	}
}

func checkLinkVolume(links *pageLinks) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Link Volume", Severity: scoring.SeverityLow}

	total := len(links.Internal) + len(links.External)
	if total > 300 {
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d links on a single page", total)
		return rec
	}
	rec.Status = scoring.StatusPass
	rec.Description = fmt.Sprintf("%d link(s) on the page", total)
	return rec
}

func checkNofollowUsage(links *pageLinks) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "External Nofollow", Severity: scoring.SeverityLow, Status: scoring.StatusInfo}

	if len(links.External) == 0 {
		rec.Description = "no external links"
		return rec
	}
	rec.Description = fmt.Sprintf("%d of %d external link(s) are nofollow", links.Nofollow, len(links.External))
	return rec
}
