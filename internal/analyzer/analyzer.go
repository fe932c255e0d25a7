package analyzer

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// Checker is the interface that all category checkers must satisfy
type Checker interface {
	// Run performs every check in the category against the fetched page
	Run(ctx context.Context, page *Page) scoring.CategoryResult

	// Category returns the category name (e.g. "Security & HTTPS")
	Category() string
}

// Report is the complete result of analyzing one URL
type Report struct {
	AnalysisID      string                   `json:"analysis_id"`
	URL             string                   `json:"url"`
	FinalURL        string                   `json:"final_url"`
	AnalyzedAt      time.Time                `json:"analyzed_at"`
	Duration        float64                  `json:"duration_ms"`
	Score           int                      `json:"score"`
	Label           string                   `json:"label"`
	MalwareDetected bool                     `json:"malware_detected"`
	Categories      []scoring.CategoryResult `json:"categories"`
	Breakdown       scoring.Breakdown        `json:"breakdown"`
}

// Analyzer orchestrates the execution of category checkers with concurrency
// and per-category timeouts
type Analyzer struct {
	Fetcher      *Fetcher
	Checkers     []Checker
	Logger       *zap.SugaredLogger
	Concurrency  int           // Maximum number of concurrent category checks
	CheckTimeout time.Duration // Timeout for each category
}

// Analyze fetches the target once and runs every registered checker against
// the result. A failed fetch is the only error path; individual checker
// failures surface as unavailable categories in the report.
func (a *Analyzer) Analyze(ctx context.Context, rawURL string) (*Report, error) {
	target, err := ParseTarget(rawURL)
	if err != nil {
		return nil, err
	}

	fetcher := a.Fetcher
	if fetcher == nil {
		fetcher = NewFetcher(0, 0)
	}

	start := time.Now()
	page, err := fetcher.Fetch(ctx, target.FullURL)
	if err != nil {
		return nil, err
	}

	concurrency := a.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}
	timeout := a.CheckTimeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}

	// Fixed-index slice keeps the registry order stable without a mutex
	results := make([]scoring.CategoryResult, len(a.Checkers))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, chk := range a.Checkers {
		wg.Add(1)
		go func(i int, chk Checker) {
			defer wg.Done()

			// Acquire semaphore
			sem <- struct{}{}
			defer func() { <-sem }()

			checkCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			results[i] = a.runChecker(checkCtx, chk, page)
		}(i, chk)
	}
	wg.Wait()

	overall := scoring.ScoreOverall(results)
	score := overall.Score
	malware := scoring.MalwareDetected(results)
	if malware {
		score = 0
	}

	return &Report{
		AnalysisID:      uuid.NewString(),
		URL:             target.FullURL,
		FinalURL:        page.FinalURL,
		AnalyzedAt:      page.FetchedAt,
		Duration:        float64(time.Since(start).Milliseconds()),
		Score:           score,
		Label:           scoring.ScoreLabel(scoring.IntPtr(score)),
		MalwareDetected: malware,
		Categories:      results,
		Breakdown:       overall.Breakdown,
	}, nil
}

// runChecker isolates a single checker: a panic becomes an unavailable
// category instead of taking down the whole analysis.
func (a *Analyzer) runChecker(ctx context.Context, chk Checker, page *Page) (result scoring.CategoryResult) {
	category := chk.Category()
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			if a.Logger != nil {
				a.Logger.Errorw("checker panicked", "category", category, "panic", r)
			}
			result = scoring.UnavailableCategory(category, "checker crashed")
		}
	}()

	result = chk.Run(ctx, page)
	if a.Logger != nil {
		a.Logger.Infow("category checked",
			"category", category,
			"status", string(result.Status),
			"score", scoreValue(result.Score),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
	return result
}

func scoreValue(score *int) interface{} {
	if score == nil {
		return "n/a"
	}
	return *score
}
