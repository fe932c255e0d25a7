package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/checks"
	"github.com/sitegrade/sitegrade-cli/internal/history"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

// analyzeOutcome pairs one target with its report or failure.
type analyzeOutcome struct {
	URL    string
	Report *analyzer.Report
	Err    error
}

// Short aliases accepted by --skip in addition to the full category names.
var skipAliases = map[string]string{
	"security":       scoring.CategorySecurity,
	"https":          scoring.CategorySecurity,
	"safety":         scoring.CategorySafety,
	"dns":            scoring.CategoryDNS,
	"links":          scoring.CategoryLinks,
	"performance":    scoring.CategoryPerformance,
	"accessibility":  scoring.CategoryAccessibility,
	"external-links": scoring.CategoryExternalLinks,
	"seo":            scoring.CategorySEO,
	"whois":          scoring.CategoryWhois,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <url> [url...]",
	Short: "Analyze one or more websites and grade them",
	Long: `Fetch each target once and run every category checker against it:
security headers and TLS, threat heuristics, DNS posture, link hygiene,
performance, accessibility, external link health, SEO metadata and WHOIS.

Scores range 0-100 and aggregate by category importance. A confirmed
malware or phishing indicator forces the overall score to zero no matter
what the other categories found.`,
	Example: `  sitegrade analyze example.com
  sitegrade analyze https://example.com https://example.org --format json
  sitegrade analyze example.com --skip whois --skip external-links
  sitegrade analyze example.com --format pdf --output report.pdf
  sitegrade analyze example.com --plugin "License Check=/usr/local/bin/license-check"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyzeCommand,
}

func runAnalyzeCommand(cmd *cobra.Command, args []string) error {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := normalizeFormat(formatFlag)
	if err != nil {
		return err
	}

	outputPath, _ := cmd.Flags().GetString("output")
	if format == formatPDF && outputPath == "" {
		return fmt.Errorf("pdf reports are binary, use --output to name the target file")
	}

	skipValues, _ := cmd.Flags().GetStringSlice("skip")
	skips, err := resolveSkipCategories(skipValues)
	if err != nil {
		return err
	}

	pluginSpecs, _ := cmd.Flags().GetStringSlice("plugin")
	plugins := make([]analyzer.Checker, 0, len(pluginSpecs))
	for _, spec := range pluginSpecs {
		plugin, err := checks.ParsePluginSpec(spec)
		if err != nil {
			return err
		}
		plugins = append(plugins, plugin)
	}

	resolver, _ := cmd.Flags().GetString("resolver")

	runtimeCfg := cliConfig.Analyze
	fetcher := analyzer.NewFetcher(time.Duration(runtimeCfg.TimeoutSecs)*time.Second, runtimeCfg.RatePerSec)

	var checkers []analyzer.Checker
	for _, chk := range checks.Defaults(fetcher) {
		if skips[chk.Category()] {
			continue
		}
		switch c := chk.(type) {
		case *checks.DNSChecker:
			if resolver != "" {
				c.Resolver = resolver
			}
		case *checks.ExternalLinkChecker:
			c.SampleSize = runtimeCfg.SampleSize
		}
		checkers = append(checkers, chk)
	}
	checkers = append(checkers, plugins...)

	if len(checkers) == 0 {
		return fmt.Errorf("every category was skipped, nothing to analyze")
	}

	engine := &analyzer.Analyzer{
		Fetcher:      fetcher,
		Checkers:     checkers,
		Logger:       logger,
		Concurrency:  runtimeCfg.Concurrency,
		CheckTimeout: 2 * fetcher.Timeout,
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	// Handle interruption signals so a slow target can be abandoned cleanly
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			fmt.Printf("\n%s Received %s, canceling analysis...\n", colorWarn("!"), sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	// Progress shares stdout with the text renderer only; for machine
	// formats it stays quiet unless the report goes to a file.
	var progress *progressPrinter
	if runtimeCfg.ProgressEnabled && (format == formatText || outputPath != "") {
		progress = newProgressPrinter(len(args))
		progress.Start()
	}

	outcomes := runAnalyses(ctx, engine, args, runtimeCfg.Concurrency, progress)

	if progress != nil {
		progress.Stop()
	}

	if runtimeCfg.HistoryEnabled {
		if err := recordOutcomes(outcomes); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to record history: %v\n", err)
		}
	}

	if err := renderOutcomes(format, outputPath, outcomes); err != nil {
		return err
	}

	failures := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failures++
		}
	}
	if failures == len(outcomes) {
		if failures == 1 {
			return outcomes[0].Err
		}
		return fmt.Errorf("all %d targets failed", failures)
	}
	return nil
}

// runAnalyses fans the targets out over a bounded worker pool. The
// fixed-index result slice keeps input order without a mutex.
func runAnalyses(ctx context.Context, engine *analyzer.Analyzer, urls []string, concurrency int, progress *progressPrinter) []analyzeOutcome {
	if concurrency <= 0 {
		concurrency = 1
	}

	outcomes := make([]analyzeOutcome, len(urls))
	sem := make(chan struct{}, concurrency)
	var wg sync.WaitGroup

	for i, rawURL := range urls {
		wg.Add(1)
		go func(i int, rawURL string) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			if ctx.Err() != nil {
				outcomes[i] = analyzeOutcome{URL: rawURL, Err: ctx.Err()}
				if progress != nil {
					progress.Increment(false, 0)
				}
				return
			}

			start := time.Now()
			report, err := engine.Analyze(ctx, rawURL)
			outcomes[i] = analyzeOutcome{URL: rawURL, Report: report, Err: err}
			if progress != nil {
				progress.Increment(err == nil, time.Since(start).Seconds())
			}
		}(i, rawURL)
	}
	wg.Wait()

	return outcomes
}

// resolveSkipCategories maps the --skip values onto canonical category
// names. Full names match case-insensitively, short aliases are listed in
// skipAliases.
func resolveSkipCategories(values []string) (map[string]bool, error) {
	if len(values) == 0 {
		return nil, nil
	}

	lookup := make(map[string]string)
	for _, spec := range checks.Catalog() {
		lookup[strings.ToLower(spec.Name)] = spec.Name
	}
	known := make([]string, 0, len(skipAliases))
	for alias, name := range skipAliases {
		lookup[alias] = name
		known = append(known, alias)
	}
	sort.Strings(known)

	skips := make(map[string]bool, len(values))
	for _, value := range values {
		key := strings.ToLower(strings.TrimSpace(value))
		if key == "" {
			continue
		}
		name, ok := lookup[key]
		if !ok {
			return nil, &UnknownCategoryError{Name: value, Known: known}
		}
		skips[name] = true
	}
	return skips, nil
}

func recordOutcomes(outcomes []analyzeOutcome) error {
	path := cliConfig.Defaults.HistoryPath
	if path == "" {
		defaultPath, err := defaultHistoryPath()
		if err != nil {
			return err
		}
		path = defaultPath
	}

	store, err := history.NewStore(path)
	if err != nil {
		return err
	}

	for _, outcome := range outcomes {
		if outcome.Err != nil || outcome.Report == nil {
			continue
		}
		if err := store.Append(historyRecord(outcome.Report)); err != nil {
			return err
		}
	}

	if limit := cliConfig.Defaults.HistoryLimit; limit > 0 {
		if err := store.Prune(limit); err != nil {
			return err
		}
	}
	return nil
}

func historyRecord(report *analyzer.Report) history.Record {
	categories := make(map[string]*int, len(report.Categories))
	for _, cat := range report.Categories {
		if cat.Score != nil {
			categories[cat.Category] = cat.Score
		}
	}
	return history.Record{
		Timestamp:       report.AnalyzedAt,
		URL:             report.URL,
		Score:           scoring.IntPtr(report.Score),
		Label:           report.Label,
		DurationSeconds: report.Duration / 1000,
		Categories:      categories,
	}
}

func init() {
	flags := analyzeCmd.Flags()
	flags.StringP("format", "f", cliConfig.Defaults.Format, "Report format: text, json, md or pdf")
	flags.StringP("output", "o", "", "Write the report to this file instead of stdout")
	flags.IntVar(&cliConfig.Analyze.TimeoutSecs, "timeout", cliConfig.Analyze.TimeoutSecs, "Fetch timeout in seconds")
	flags.IntVar(&cliConfig.Analyze.Concurrency, "concurrency", cliConfig.Analyze.Concurrency, "Concurrent checks per target, and concurrent targets")
	flags.IntVar(&cliConfig.Analyze.RatePerSec, "rate", cliConfig.Analyze.RatePerSec, "Outbound request budget per second")
	flags.IntVar(&cliConfig.Analyze.SampleSize, "link-sample", cliConfig.Analyze.SampleSize, "External links probed per page, one per host")
	flags.StringSlice("skip", nil, "Skip a category by name or alias (repeatable)")
	flags.StringSlice("plugin", nil, `Run an external checker, "Name=/path/to/binary" (repeatable)`)
	flags.String("resolver", "", "DNS resolver address as host:port (default: system resolver)")
	flags.BoolVar(&cliConfig.Analyze.ProgressEnabled, "progress", cliConfig.Analyze.ProgressEnabled, "Show live progress during analysis")
	flags.BoolVar(&cliConfig.Analyze.HistoryEnabled, "history", cliConfig.Analyze.HistoryEnabled, "Record each result in the scan history")
}
