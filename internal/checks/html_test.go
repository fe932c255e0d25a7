package checks

import (
	"testing"
)

func TestFindElements_MultipleNames(t *testing.T) {
	doc := parseHTML(t, `<html><body>
		<script src="a.js"></script>
		<img src="b.png">
		<p>text</p>
		<IMG src="c.png">
	</body></html>`)

	found := findElements(doc, "script", "img")
	if len(found) != 3 {
		t.Errorf("Expected 3 matching elements, got %d", len(found))
	}
}

func TestNodeAttr_CaseInsensitive(t *testing.T) {
	doc := parseHTML(t, `<html><body><meta HTTP-EQUIV="refresh" content="0"></body></html>`)
	metas := findElements(doc, "meta")
	if len(metas) != 1 {
		t.Fatalf("Expected one meta element, got %d", len(metas))
	}

	if got := nodeAttr(metas[0], "http-equiv"); got != "refresh" {
		t.Errorf("Expected attribute lookup to ignore case, got %q", got)
	}
	if nodeAttr(metas[0], "nonexistent") != "" {
		t.Error("Expected empty string for a missing attribute")
	}
}

func TestHasAttr_EmptyValue(t *testing.T) {
	doc := parseHTML(t, `<html><body><img src="a.png" alt=""></body></html>`)
	img := findElements(doc, "img")[0]

	if !hasAttr(img, "alt") {
		t.Error("Expected empty alt attribute to count as present")
	}
	if hasAttr(img, "title") {
		t.Error("Expected missing attribute to be absent")
	}
}

func TestNodeText_CollapsesWhitespace(t *testing.T) {
	doc := parseHTML(t, "<html><body><a href=\"/x\">  Read\n\tthe   guide  </a></body></html>")
	a := findElements(doc, "a")[0]

	if got := nodeText(a); got != "Read the guide" {
		t.Errorf("Expected collapsed text, got %q", got)
	}
}
