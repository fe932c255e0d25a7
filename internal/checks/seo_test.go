package checks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

const seoTestPage = `<html>
<head>
	<title>Garden Notes: Growing Tomatoes at Home</title>
	<meta name="description" content="Practical guidance for growing tomatoes in small gardens, from seed selection through harvest, with weekly care schedules.">
	<link rel="canonical" href="https://example.com/tomatoes">
	<meta name="robots" content="index, follow">
	<meta property="og:title" content="Growing Tomatoes at Home">
	<meta property="og:description" content="Practical guidance for growing tomatoes.">
	<script type="application/ld+json">{"@context":"https://schema.org","@type":"Article"}</script>
</head>
<body><h1>Growing Tomatoes</h1></body>
</html>`

func TestSEOChecker_WellFormedPage(t *testing.T) {
	page := makePage(t, seoTestPage)

	checker := &SEOChecker{}
	result := checker.Run(context.Background(), page)

	if len(result.Checks) != 7 {
		t.Fatalf("Expected 7 checks without a fetcher, got %d", len(result.Checks))
	}
	if result.Score == nil || *result.Score != 100 {
		t.Errorf("Expected score 100 for a well-formed page, got %v", result.Score)
	}
	for _, rec := range result.Checks {
		if rec.Status != scoring.StatusPass {
			t.Errorf("Expected check %q to pass, got %s: %s", rec.Name, rec.Status, rec.Description)
		}
	}
}

func TestSEOChecker_WellKnownProbes(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("User-agent: *\nAllow: /\n"))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(seoTestPage))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	page := makePage(t, seoTestPage)
	page.URL = srv.URL + "/"
	page.FinalURL = srv.URL + "/"

	checker := &SEOChecker{Fetcher: analyzer.NewFetcher(2*time.Second, 100)}
	result := checker.Run(context.Background(), page)

	if len(result.Checks) != 9 {
		t.Fatalf("Expected 9 checks with a fetcher, got %d", len(result.Checks))
	}
	if got := recordByName(t, result, "robots.txt").Status; got != scoring.StatusPass {
		t.Errorf("Expected robots.txt probe to pass, got %s", got)
	}
	if got := recordByName(t, result, "sitemap.xml").Status; got != scoring.StatusWarn {
		t.Errorf("Expected missing sitemap.xml to warn, got %s", got)
	}
}

func TestCheckTitle_Variants(t *testing.T) {
	checker := &SEOChecker{}

	missing := checker.checkTitle(makePage(t, "<html><head></head></html>"))
	if missing.Status != scoring.StatusFail {
		t.Errorf("Expected fail without a title, got %s", missing.Status)
	}

	empty := checker.checkTitle(makePage(t, "<html><head><title>  </title></head></html>"))
	if empty.Status != scoring.StatusFail {
		t.Errorf("Expected fail for an empty title, got %s", empty.Status)
	}

	short := checker.checkTitle(makePage(t, "<html><head><title>Hi</title></head></html>"))
	if short.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for a 2-character title, got %s", short.Status)
	}

	long := checker.checkTitle(makePage(t, "<html><head><title>An exhaustively thorough and decidedly overlong page title that search engines will cut off</title></head></html>"))
	if long.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for an overlong title, got %s", long.Status)
	}
}

func TestCheckMetaDescription_Variants(t *testing.T) {
	checker := &SEOChecker{}

	missing := checker.checkMetaDescription(makePage(t, "<html><head></head></html>"))
	if missing.Status != scoring.StatusFail {
		t.Errorf("Expected fail without a description, got %s", missing.Status)
	}

	short := checker.checkMetaDescription(makePage(t, `<html><head><meta name="description" content="Too short."></head></html>`))
	if short.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for a short description, got %s", short.Status)
	}
}

func TestCheckRobotsMeta_Noindex(t *testing.T) {
	checker := &SEOChecker{}
	page := makePage(t, `<html><head><meta name="robots" content="noindex, nofollow"></head></html>`)

	rec := checker.checkRobotsMeta(page)
	if rec.Status != scoring.StatusFail {
		t.Errorf("Expected fail for noindex, got %s", rec.Status)
	}
}

func TestCheckH1_Counts(t *testing.T) {
	checker := &SEOChecker{}

	none := checker.checkH1(makePage(t, "<html><body><h2>Sub</h2></body></html>"))
	if none.Status != scoring.StatusWarn {
		t.Errorf("Expected warn without an h1, got %s", none.Status)
	}

	several := checker.checkH1(makePage(t, "<html><body><h1>One</h1><h1>Two</h1></body></html>"))
	if several.Status != scoring.StatusWarn {
		t.Errorf("Expected warn with two h1 headings, got %s", several.Status)
	}
}

func TestCheckOpenGraph_Partial(t *testing.T) {
	checker := &SEOChecker{}
	page := makePage(t, `<html><head><meta property="og:title" content="Only a title"></head></html>`)

	rec := checker.checkOpenGraph(page)
	if rec.Status != scoring.StatusWarn {
		t.Errorf("Expected warn for partial Open Graph tags, got %s", rec.Status)
	}
}

func TestCheckStructuredData_Absent(t *testing.T) {
	checker := &SEOChecker{}
	page := makePage(t, "<html><head></head></html>")

	rec := checker.checkStructuredData(page)
	if rec.Status != scoring.StatusInfo {
		t.Errorf("Expected info without structured data, got %s", rec.Status)
	}
}
