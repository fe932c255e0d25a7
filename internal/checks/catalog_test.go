package checks

import (
	"context"
	"testing"

	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

func catalogCategory(t *testing.T, name string) CategorySpec {
	t.Helper()
	for _, cat := range Catalog() {
		if cat.Name == name {
			return cat
		}
	}
	t.Fatalf("Category %q not found in catalog", name)
	return CategorySpec{}
}

func assertCatalogMatches(t *testing.T, spec CategorySpec, records []scoring.CheckRecord) {
	t.Helper()
	if len(records) != len(spec.Checks) {
		t.Fatalf("Expected %d checks for %s, got %d", len(spec.Checks), spec.Name, len(records))
	}
	for i, rec := range records {
		if rec.Name != spec.Checks[i].Name {
			t.Errorf("Expected check %q at position %d of %s, got %q", spec.Checks[i].Name, i, spec.Name, rec.Name)
		}
		if rec.Severity != spec.Checks[i].Severity {
			t.Errorf("Expected severity %s for check %q, got %s", spec.Checks[i].Severity, rec.Name, rec.Severity)
		}
	}
}

func TestCatalog_MatchesDefaultsOrder(t *testing.T) {
	checkers := Defaults(nil)
	cats := Catalog()

	if len(checkers) != len(cats) {
		t.Fatalf("Expected %d catalog categories, got %d", len(checkers), len(cats))
	}
	for i, chk := range checkers {
		if chk.Category() != cats[i].Name {
			t.Errorf("Expected catalog category %q at position %d, got %q", chk.Category(), i, cats[i].Name)
		}
	}
}

func TestCatalog_WeightsFollowScoring(t *testing.T) {
	for _, cat := range Catalog() {
		if cat.Weight != scoring.CategoryWeight(cat.Name) {
			t.Errorf("Expected weight %.1f for %s, got %.1f", scoring.CategoryWeight(cat.Name), cat.Name, cat.Weight)
		}
	}
	if got := catalogCategory(t, scoring.CategorySecurity).Weight; got != 3 {
		t.Errorf("Expected security weight 3, got %.1f", got)
	}
	if got := catalogCategory(t, scoring.CategoryWhois).Weight; got != 1 {
		t.Errorf("Expected whois weight 1, got %.1f", got)
	}
}

func TestCatalog_MatchesOfflineCheckerOutput(t *testing.T) {
	page := makePage(t, `<html lang="en"><head><title>Catalog sync page</title></head><body><h1>Hi</h1></body></html>`)
	ctx := context.Background()

	security := (&SecurityChecker{}).Run(ctx, page)
	assertCatalogMatches(t, catalogCategory(t, scoring.CategorySecurity), security.Checks)

	safety := (&SafetyChecker{}).Run(ctx, page)
	assertCatalogMatches(t, catalogCategory(t, scoring.CategorySafety), safety.Checks)

	links := (&LinkChecker{}).Run(ctx, page)
	assertCatalogMatches(t, catalogCategory(t, scoring.CategoryLinks), links.Checks)

	perf := (&PerformanceChecker{}).Run(ctx, page)
	assertCatalogMatches(t, catalogCategory(t, scoring.CategoryPerformance), perf.Checks)

	access := (&AccessibilityChecker{}).Run(ctx, page)
	assertCatalogMatches(t, catalogCategory(t, scoring.CategoryAccessibility), access.Checks)

	// Without a fetcher the SEO checker skips the two well-known probes.
	seo := (&SEOChecker{}).Run(ctx, page)
	seoSpec := catalogCategory(t, scoring.CategorySEO)
	seoSpec.Checks = seoSpec.Checks[:len(seoSpec.Checks)-2]
	assertCatalogMatches(t, seoSpec, seo.Checks)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	first := Catalog()
	first[0].Checks[0].Name = "mutated"
	second := Catalog()
	if second[0].Checks[0].Name == "mutated" {
		t.Error("Expected Catalog to return an independent copy")
	}
}
