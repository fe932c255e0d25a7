package checks

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// SEOChecker evaluates on-page metadata plus the robots.txt and sitemap.xml
// well-known files
type SEOChecker struct {
	Fetcher *analyzer.Fetcher
}

func (c *SEOChecker) Category() string { return scoring.CategorySEO }

func (c *SEOChecker) Run(ctx context.Context, page *analyzer.Page) scoring.CategoryResult {
	records := []scoring.CheckRecord{
		c.checkTitle(page),
		c.checkMetaDescription(page),
		c.checkCanonical(page),
		c.checkRobotsMeta(page),
		c.checkH1(page),
		c.checkOpenGraph(page),
		c.checkStructuredData(page),
	}
	if c.Fetcher != nil {
		records = append(records,
			c.checkWellKnown(ctx, page, "robots.txt", "robots.txt", scoring.SeverityMedium),
			c.checkWellKnown(ctx, page, "sitemap.xml", "sitemap.xml", scoring.SeverityLow),
		)
	}
	return scoring.NewCategoryResult(scoring.CategorySEO, records)
}

func (c *SEOChecker) checkTitle(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Title Tag", Severity: scoring.SeverityHigh}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	titles := findElements(doc, "title")
	if len(titles) == 0 {
		rec.Status = scoring.StatusFail
		rec.Description = "page has no title tag"
		return rec
	}

	title := nodeText(titles[0])
	length := len([]rune(title))
	switch {
	case length == 0:
		rec.Status = scoring.StatusFail
		rec.Description = "title tag is empty"
	case length < 10:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("title is only %d characters", length)
	case length > 70:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("title is %d characters, search engines truncate around 60", length)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("title present (%d characters)", length)
	}
	return rec
}

func (c *SEOChecker) checkMetaDescription(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Meta Description", Severity: scoring.SeverityHigh}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}

	content := ""
	for _, meta := range findElements(doc, "meta") {
		if strings.EqualFold(nodeAttr(meta, "name"), "description") {
			content = strings.TrimSpace(nodeAttr(meta, "content"))
			break
		}
	}

	length := len([]rune(content))
	switch {
	case length == 0:
		rec.Status = scoring.StatusFail
		rec.Description = "no meta description"
	case length < 50:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("meta description is only %d characters", length)
	case length > 160:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("meta description is %d characters, truncated in results", length)
	default:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("meta description present (%d characters)", length)
	}
	return rec
}

func (c *SEOChecker) checkCanonical(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Canonical Link", Severity: scoring.SeverityMedium}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, link := range findElements(doc, "link") {
		if strings.EqualFold(nodeAttr(link, "rel"), "canonical") && nodeAttr(link, "href") != "" {
			rec.Status = scoring.StatusPass
			rec.Description = "canonical URL declared"
			return rec
		}
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "no canonical link, duplicate-content risk"
	return rec
}

func (c *SEOChecker) checkRobotsMeta(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Robots Meta", Severity: scoring.SeverityHigh}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, meta := range findElements(doc, "meta") {
		if !strings.EqualFold(nodeAttr(meta, "name"), "robots") {
			continue
		}
		content := strings.ToLower(nodeAttr(meta, "content"))
		if strings.Contains(content, "noindex") {
			rec.Status = scoring.StatusFail
			rec.Description = "page is marked noindex"
			return rec
		}
		if strings.Contains(content, "nofollow") {
			rec.Status = scoring.StatusWarn
			rec.Description = "page is marked nofollow"
			return rec
		}
	}
	rec.Status = scoring.StatusPass
	rec.Description = "page is indexable"
	return rec
}

func (c *SEOChecker) checkH1(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "H1 Heading", Severity: scoring.SeverityMedium}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	count := len(findElements(doc, "h1"))
	switch count {
	case 1:
		rec.Status = scoring.StatusPass
		rec.Description = "exactly one h1 heading"
	case 0:
		rec.Status = scoring.StatusWarn
		rec.Description = "no h1 heading"
	default:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d h1 headings, expected one", count)
	}
	return rec
}

func (c *SEOChecker) checkOpenGraph(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Open Graph Tags", Severity: scoring.SeverityLow}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	found := map[string]bool{}
	for _, meta := range findElements(doc, "meta") {
		prop := strings.ToLower(nodeAttr(meta, "property"))
		if strings.HasPrefix(prop, "og:") {
			found[prop] = true
		}
	}
	switch {
	case found["og:title"] && found["og:description"]:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("%d Open Graph tag(s) present", len(found))
	case len(found) > 0:
		rec.Status = scoring.StatusWarn
		rec.Description = "partial Open Graph tags, og:title or og:description missing"
	default:
		rec.Status = scoring.StatusWarn
		rec.Description = "no Open Graph tags for link previews"
	}
	return rec
}

func (c *SEOChecker) checkStructuredData(page *analyzer.Page) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Structured Data", Severity: scoring.SeverityLow}

	doc, err := page.Doc()
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	for _, script := range findElements(doc, "script") {
		if strings.EqualFold(nodeAttr(script, "type"), "application/ld+json") {
			rec.Status = scoring.StatusPass
			rec.Description = "JSON-LD structured data present"
			return rec
		}
	}
	rec.Status = scoring.StatusInfo
	rec.Description = "no JSON-LD structured data"
	return rec
}

// checkWellKnown probes a root-relative file like robots.txt or sitemap.xml
func (c *SEOChecker) checkWellKnown(ctx context.Context, page *analyzer.Page, name, path string, severity scoring.Severity) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: name, Severity: severity}

	base := page.Base()
	if base == nil {
		return errorRecord(rec.Name, rec.Severity, fmt.Errorf("no base URL to resolve /%s", path))
	}
	target := base.Scheme + "://" + base.Host + "/" + path

	status, err := c.Fetcher.Probe(ctx, target)
	if err != nil {
		return errorRecord(rec.Name, rec.Severity, err)
	}
	switch {
	case status >= 200 && status < 300:
		rec.Status = scoring.StatusPass
		rec.Description = "/" + path + " is reachable"
	case status == http.StatusNotFound:
		rec.Status = scoring.StatusWarn
		rec.Description = "/" + path + " not found"
	default:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("/%s returned status %d", path, status)
	}
	return rec
}
