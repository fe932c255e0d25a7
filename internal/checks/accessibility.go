package checks

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// AccessibilityChecker runs static WCAG-adjacent checks against the parsed DOM.
// It cannot replace a full audit but catches the common structural failures.
type AccessibilityChecker struct{}

func (c *AccessibilityChecker) Category() string { return scoring.CategoryAccessibility }

func (c *AccessibilityChecker) Run(_ context.Context, page *analyzer.Page) scoring.CategoryResult {
	doc, err := page.Doc()
	if err != nil {
		return scoring.UnavailableCategory(scoring.CategoryAccessibility, "page body could not be parsed as HTML")
	}

	records := []scoring.CheckRecord{
		checkImageAlt(doc),
		checkLangAttr(doc),
		checkViewport(doc),
		checkFormLabels(doc),
		checkHeadingHierarchy(doc),
		checkLinkText(doc),
	}
	return scoring.NewCategoryResult(scoring.CategoryAccessibility, records)
}

func checkImageAlt(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Image Alt Text", Severity: scoring.SeverityHigh}

	images := findElements(doc, "img")
	if len(images) == 0 {
		rec.Status = scoring.StatusPass
		rec.Description = "no images on the page"
		return rec
	}

	withAlt := 0
	for _, img := range images {
		if hasAttr(img, "alt") {
			withAlt++
		}
	}
	ratio := float64(withAlt) / float64(len(images))
	switch {
	case withAlt == len(images):
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("all %d image(s) carry alt attributes", len(images))
	case ratio >= 0.8:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d of %d images missing alt attributes", len(images)-withAlt, len(images))
	default:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d of %d images missing alt attributes", len(images)-withAlt, len(images))
	}
	return rec
}

func checkLangAttr(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Language Attribute", Severity: scoring.SeverityMedium}

	for _, root := range findElements(doc, "html") {
		if strings.TrimSpace(nodeAttr(root, "lang")) != "" {
			rec.Status = scoring.StatusPass
			rec.Description = "document language declared (" + nodeAttr(root, "lang") + ")"
			return rec
		}
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "html element has no lang attribute"
	return rec
}

func checkViewport(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Viewport Meta", Severity: scoring.SeverityMedium}

	for _, meta := range findElements(doc, "meta") {
		if strings.EqualFold(nodeAttr(meta, "name"), "viewport") {
			rec.Status = scoring.StatusPass
			rec.Description = "viewport meta tag present"
			return rec
		}
	}
	rec.Status = scoring.StatusWarn
	rec.Description = "no viewport meta tag, page may not scale on mobile"
	return rec
}

func checkFormLabels(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Form Labels", Severity: scoring.SeverityMedium}

	labelFor := map[string]bool{}
	for _, label := range findElements(doc, "label") {
		if id := nodeAttr(label, "for"); id != "" {
			labelFor[id] = true
		}
	}

	total, labelled := 0, 0
	for _, input := range findElements(doc, "input", "select", "textarea") {
		typ := strings.ToLower(nodeAttr(input, "type"))
		if typ == "hidden" || typ == "submit" || typ == "button" {
			continue
		}
		total++
		switch {
		case labelFor[nodeAttr(input, "id")]:
			labelled++
		case nodeAttr(input, "aria-label") != "" || nodeAttr(input, "aria-labelledby") != "":
			labelled++
		case hasLabelAncestor(input):
			labelled++
		}
	}

	if total == 0 {
		rec.Status = scoring.StatusPass
		rec.Description = "no form controls on the page"
		return rec
	}
	switch {
	case labelled == total:
		rec.Status = scoring.StatusPass
		rec.Description = fmt.Sprintf("all %d form control(s) are labelled", total)
	case float64(labelled)/float64(total) >= 0.8:
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d of %d form controls lack labels", total-labelled, total)
	default:
		rec.Status = scoring.StatusFail
		rec.Description = fmt.Sprintf("%d of %d form controls lack labels", total-labelled, total)
	}
	return rec
}

func hasLabelAncestor(n *html.Node) bool {
	for p := n.Parent; p != nil; p = p.Parent {
		if p.Type == html.ElementNode && strings.EqualFold(p.Data, "label") {
			return true
		}
	}
	return false
}

func checkHeadingHierarchy(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Heading Hierarchy", Severity: scoring.SeverityLow}

	var levels []int
	walkNodes(doc, func(n *html.Node) {
		if n.Type != html.ElementNode || len(n.Data) != 2 || n.Data[0] != 'h' {
			return
		}
		if lv, err := strconv.Atoi(n.Data[1:]); err == nil && lv >= 1 && lv <= 6 {
			levels = append(levels, lv)
		}
	})

	if len(levels) == 0 {
		rec.Status = scoring.StatusInfo
		rec.Description = "no headings on the page"
		return rec
	}

	skips := 0
	for i := 1; i < len(levels); i++ {
		if levels[i] > levels[i-1]+1 {
			skips++
		}
	}
	if skips > 0 {
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("heading levels skip %d time(s)", skips)
		return rec
	}
	rec.Status = scoring.StatusPass
	rec.Description = fmt.Sprintf("%d heading(s) in order", len(levels))
	return rec
}

var genericLinkText = map[string]bool{
	"click here": true,
	"here":       true,
	"read more":  true,
	"more":       true,
	"link":       true,
	"this":       true,
}

func checkLinkText(doc *html.Node) scoring.CheckRecord {
	rec := scoring.CheckRecord{Name: "Link Text", Severity: scoring.SeverityLow}

	generic := 0
	for _, a := range findElements(doc, "a") {
		text := strings.ToLower(nodeText(a))
		if genericLinkText[text] {
			generic++
		}
	}
	if generic > 0 {
		rec.Status = scoring.StatusWarn
		rec.Description = fmt.Sprintf("%d link(s) use generic text like \"click here\"", generic)
		return rec
	}
	rec.Status = scoring.StatusPass
	rec.Description = "link text is descriptive"
	return rec
}
