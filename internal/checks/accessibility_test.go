package checks

import (
	"context"
	"testing"

	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

func TestAccessibilityChecker_AccessiblePage(t *testing.T) {
	page := makePage(t, `<html lang="en">
<head><meta name="viewport" content="width=device-width, initial-scale=1"></head>
<body>
	<h1>Orchard report</h1>
	<h2>Apples</h2>
	<img src="/apple.jpg" alt="A ripe apple">
	<form>
		<label for="email">Email</label>
		<input type="text" id="email">
	</form>
	<a href="/report">Read the full orchard report</a>
</body>
</html>`)

	checker := &AccessibilityChecker{}
	result := checker.Run(context.Background(), page)

	if len(result.Checks) != 6 {
		t.Fatalf("Expected 6 checks, got %d", len(result.Checks))
	}
	if result.Score == nil || *result.Score != 100 {
		t.Errorf("Expected score 100 for an accessible page, got %v", result.Score)
	}
	for _, rec := range result.Checks {
		if rec.Status != scoring.StatusPass {
			t.Errorf("Expected check %q to pass, got %s: %s", rec.Name, rec.Status, rec.Description)
		}
	}
}

func TestCheckImageAlt_Coverage(t *testing.T) {
	none := parseHTML(t, "<html><body><p>No images</p></body></html>")
	if rec := checkImageAlt(none); rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass with no images, got %s", rec.Status)
	}

	bare := parseHTML(t, `<html><body><img src="a.jpg"><img src="b.jpg"></body></html>`)
	if rec := checkImageAlt(bare); rec.Status != scoring.StatusFail {
		t.Errorf("Expected fail with no alt attributes, got %s", rec.Status)
	}

	mostly := parseHTML(t, `<html><body>
		<img src="a.jpg" alt="a"><img src="b.jpg" alt="b">
		<img src="c.jpg" alt="c"><img src="d.jpg" alt="d">
		<img src="e.jpg">
	</body></html>`)
	if rec := checkImageAlt(mostly); rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn at 80%% alt coverage, got %s", rec.Status)
	}
}

func TestCheckLangAttr(t *testing.T) {
	with := parseHTML(t, `<html lang="de"><body></body></html>`)
	if rec := checkLangAttr(with); rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass with lang attribute, got %s", rec.Status)
	}

	without := parseHTML(t, "<html><body></body></html>")
	if rec := checkLangAttr(without); rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn without lang attribute, got %s", rec.Status)
	}
}

func TestCheckViewport(t *testing.T) {
	without := parseHTML(t, "<html><head></head></html>")
	if rec := checkViewport(without); rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn without viewport meta, got %s", rec.Status)
	}
}

func TestCheckFormLabels_Variants(t *testing.T) {
	labelled := parseHTML(t, `<html><body><form>
		<label for="name">Name</label><input type="text" id="name">
		<input type="text" aria-label="Phone">
		<label>Note <textarea></textarea></label>
		<input type="hidden" name="csrf">
		<input type="submit" value="Go">
	</form></body></html>`)
	if rec := checkFormLabels(labelled); rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass with fully labelled controls, got %s: %s", rec.Status, rec.Description)
	}

	unlabelled := parseHTML(t, `<html><body><form>
		<input type="text" name="a"><input type="text" name="b">
	</form></body></html>`)
	if rec := checkFormLabels(unlabelled); rec.Status != scoring.StatusFail {
		t.Errorf("Expected fail with unlabelled controls, got %s", rec.Status)
	}

	noForms := parseHTML(t, "<html><body><p>Nothing to fill in</p></body></html>")
	if rec := checkFormLabels(noForms); rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass with no form controls, got %s", rec.Status)
	}
}

func TestCheckHeadingHierarchy(t *testing.T) {
	ordered := parseHTML(t, "<html><body><h1>A</h1><h2>B</h2><h3>C</h3><h2>D</h2></body></html>")
	if rec := checkHeadingHierarchy(ordered); rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass for ordered headings, got %s", rec.Status)
	}

	skipping := parseHTML(t, "<html><body><h1>A</h1><h4>B</h4></body></html>")
	if rec := checkHeadingHierarchy(skipping); rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for skipped heading levels, got %s", rec.Status)
	}

	none := parseHTML(t, "<html><body><p>Flat text</p></body></html>")
	if rec := checkHeadingHierarchy(none); rec.Status != scoring.StatusInfo {
		t.Errorf("Expected info with no headings, got %s", rec.Status)
	}
}

func TestCheckLinkText_Generic(t *testing.T) {
	generic := parseHTML(t, `<html><body><a href="/a">Click here</a><a href="/b">read more</a></body></html>`)
	rec := checkLinkText(generic)
	if rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for generic link text, got %s", rec.Status)
	}

	descriptive := parseHTML(t, `<html><body><a href="/a">Download the annual report</a></body></html>`)
	rec = checkLinkText(descriptive)
	if rec.Status != scoring.StatusPass {
		t.Errorf("Expected pass for descriptive link text, got %s", rec.Status)
	}
}
