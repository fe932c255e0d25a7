package analyzer

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/scoring"
	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

type stubChecker struct {
	category string
	result   scoring.CategoryResult
	panics   bool
}

func (s *stubChecker) Category() string { return s.category }

func (s *stubChecker) Run(ctx context.Context, page *Page) scoring.CategoryResult {
	if s.panics {
		panic("stub checker exploded")
	}
	return s.result
}

func newTestServer() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>ok</title></head><body>ok</body></html>`)
	})
	return httptest.NewServer(mux)
}

func scoredCategory(name string, score int) scoring.CategoryResult {
	return scoring.CategoryResult{
		Category: name,
		Checks:   []scoring.CheckRecord{{Name: "probe", Status: scoring.StatusPass}},
		Score:    scoring.IntPtr(score),
		Status:   scoring.CategoryAvailable,
	}
}

func TestAnalyze_AggregatesCategories(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	a := &Analyzer{
		Fetcher: NewFetcher(5*time.Second, 100),
		Checkers: []Checker{
			&stubChecker{category: scoring.CategorySecurity, result: scoredCategory(scoring.CategorySecurity, 90)},
			&stubChecker{category: scoring.CategorySEO, result: scoredCategory(scoring.CategorySEO, 60)},
		},
	}

	report, err := a.Analyze(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	// (90*3 + 60*1) / 4 = 82.5 -> 83
	if report.Score != 83 {
		t.Errorf("Expected overall score 83, got %d", report.Score)
	}
	if report.Label != scoring.LabelGood {
		t.Errorf("Expected label %q, got %q", scoring.LabelGood, report.Label)
	}
	if len(report.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(report.Categories))
	}
	if report.Categories[0].Category != scoring.CategorySecurity {
		t.Error("Expected categories in registry order")
	}
	if report.AnalysisID == "" {
		t.Error("Expected a non-empty analysis ID")
	}
	if report.MalwareDetected {
		t.Error("Expected no malware flag for clean categories")
	}
}

func TestAnalyze_MalwareOverridesScore(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	flagged := scoring.CategoryResult{
		Category: scoring.CategorySafety,
		Checks: []scoring.CheckRecord{
			{Name: "Malware/Phishing Indicators", Status: scoring.StatusFail, Severity: scoring.SeverityCritical},
		},
		Score:           scoring.IntPtr(0),
		Status:          scoring.CategoryAvailable,
		MalwareDetected: true,
	}

	a := &Analyzer{
		Fetcher: NewFetcher(5*time.Second, 100),
		Checkers: []Checker{
			&stubChecker{category: scoring.CategorySecurity, result: scoredCategory(scoring.CategorySecurity, 100)},
			&stubChecker{category: scoring.CategorySafety, result: flagged},
		},
	}

	report, err := a.Analyze(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if !report.MalwareDetected {
		t.Error("Expected malware flag to propagate to the report")
	}
	if report.Score != 0 {
		t.Errorf("Expected malware to force overall score 0, got %d", report.Score)
	}
	if report.Label != scoring.LabelCritical {
		t.Errorf("Expected label %q, got %q", scoring.LabelCritical, report.Label)
	}
}

func TestAnalyze_PanickingCheckerIsolated(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	a := &Analyzer{
		Fetcher: NewFetcher(5*time.Second, 100),
		Checkers: []Checker{
			&stubChecker{category: scoring.CategorySecurity, result: scoredCategory(scoring.CategorySecurity, 80)},
			&stubChecker{category: scoring.CategoryDNS, panics: true},
		},
	}

	report, err := a.Analyze(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}

	if len(report.Categories) != 2 {
		t.Fatalf("Expected 2 categories, got %d", len(report.Categories))
	}
	crashed := report.Categories[1]
	if crashed.Status != scoring.CategoryUnavailable {
		t.Errorf("Expected panicking checker to yield unavailable category, got %s", crashed.Status)
	}
	if crashed.Score != nil {
		t.Error("Expected nil score for unavailable category")
	}
	if report.Score != 80 {
		t.Errorf("Expected surviving category to carry the score, got %d", report.Score)
	}
}

func TestAnalyze_InvalidTarget(t *testing.T) {
	a := &Analyzer{Fetcher: NewFetcher(time.Second, 100)}

	_, err := a.Analyze(context.Background(), "ftp://example.com")
	if !errors.Is(err, sgerrors.ErrUnsupportedScheme) {
		t.Errorf("Expected unsupported scheme error, got %v", err)
	}

	_, err = a.Analyze(context.Background(), "")
	if !errors.Is(err, sgerrors.ErrEmptyTarget) {
		t.Errorf("Expected empty target error, got %v", err)
	}
}

func TestAnalyze_FetchFailure(t *testing.T) {
	a := &Analyzer{
		Fetcher:  NewFetcher(500*time.Millisecond, 100),
		Checkers: []Checker{&stubChecker{category: scoring.CategorySecurity}},
	}

	_, err := a.Analyze(context.Background(), "http://127.0.0.1:1/")
	if !errors.Is(err, sgerrors.ErrFetchFailed) {
		t.Errorf("Expected fetch failure error, got %v", err)
	}
}

func TestAnalyze_NoCheckers(t *testing.T) {
	server := newTestServer()
	defer server.Close()

	a := &Analyzer{Fetcher: NewFetcher(5*time.Second, 100)}

	report, err := a.Analyze(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if report.Score != 0 {
		t.Errorf("Expected score 0 with no checkers, got %d", report.Score)
	}
	if len(report.Categories) != 0 {
		t.Errorf("Expected no categories, got %d", len(report.Categories))
	}
}
