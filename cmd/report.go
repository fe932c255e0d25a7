package cmd

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"github.com/fatih/color"
	"github.com/jung-kurt/gofpdf"

	"github.com/sitegrade/sitegrade-cli/internal/analyzer"
	"github.com/sitegrade/sitegrade-cli/internal/scoring"
	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

const (
	jsonPrefix = ""
	jsonIndent = "  "

	markdownTemplatePath = "templates/report.md"
)

const (
	formatText     = "text"
	formatJSON     = "json"
	formatMarkdown = "md"
	formatPDF      = "pdf"
)

//go:embed templates/report.md
var reportTemplateFS embed.FS

var (
	markdownTemplateFuncs = template.FuncMap{
		"formatTime": formatShortTimestamp,
		"formatMs":   formatMillisLabel,
		"scoreCell":  scoreCell,
		"weightOf":   scoring.CategoryWeight,
		"upper":      strings.ToUpper,
	}

	markdownReportTemplate = template.Must(
		template.New("report.md").Funcs(markdownTemplateFuncs).ParseFS(reportTemplateFS, markdownTemplatePath),
	)
)

// targetResult is the JSON shape for one target in a multi-target report.
type targetResult struct {
	URL    string           `json:"url"`
	Report *analyzer.Report `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// markdownReportData feeds the embedded markdown template.
type markdownReportData struct {
	GeneratedAt time.Time
	Reports     []*analyzer.Report
	Failures    []targetResult
}

func supportedFormats() []string {
	return []string{formatText, formatJSON, formatMarkdown, formatPDF}
}

// normalizeFormat lowercases and validates a --format value. "markdown" is
// accepted as a spelling of "md".
func normalizeFormat(format string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(format)); f {
	case formatText, formatJSON, formatMarkdown, formatPDF:
		return f, nil
	case "markdown":
		return formatMarkdown, nil
	default:
		return "", &UnknownFormatError{Format: format, Supported: supportedFormats()}
	}
}

func renderOutcomes(format, outputPath string, outcomes []analyzeOutcome) error {
	switch format {
	case formatText:
		return renderTextOutcomes(outputPath, outcomes)
	case formatJSON:
		return renderJSONOutcomes(outputPath, outcomes)
	case formatMarkdown:
		return renderMarkdownOutcomes(outputPath, outcomes)
	case formatPDF:
		return renderPDFOutcomes(outputPath, outcomes)
	default:
		return &UnknownFormatError{Format: format, Supported: supportedFormats()}
	}
}

func renderTextOutcomes(outputPath string, outcomes []analyzeOutcome) error {
	// ANSI escapes belong on a terminal, not inside a report file
	if outputPath != "" {
		prev := color.NoColor
		color.NoColor = true
		defer func() { color.NoColor = prev }()
	}

	var buf bytes.Buffer
	for i, outcome := range outcomes {
		if i > 0 {
			buf.WriteString("\n")
		}
		if outcome.Err != nil {
			fmt.Fprintf(&buf, "%s %s: %v\n", colorError("✗"), outcome.URL, outcome.Err)
			continue
		}
		writeTextReport(&buf, outcome.Report)
	}
	return writeReportOutput(buf.Bytes(), outputPath)
}

func writeTextReport(w io.Writer, report *analyzer.Report) {
	fmt.Fprintf(w, "%s %s\n", colorInfo("Website:"), report.URL)
	if report.FinalURL != "" && report.FinalURL != report.URL {
		fmt.Fprintf(w, "Final URL: %s\n", report.FinalURL)
	}
	fmt.Fprintf(w, "Analyzed: %s | Duration: %s\n",
		report.AnalyzedAt.Format("2006-01-02 15:04:05 MST"),
		formatMillisLabel(report.Duration))
	fmt.Fprintf(w, "Score: %d/100 (%s)\n", report.Score, formatLabelWithColor(report.Label))

	if report.MalwareDetected {
		fmt.Fprintf(w, "%s\n", colorError("Malware or phishing indicators detected: score forced to 0"))
	}
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tSCORE\tWEIGHT\tSTATUS")
	for _, cat := range report.Categories {
		fmt.Fprintf(tw, "%s\t%s\t%.1f\t%s\n",
			cat.Category,
			scoreCell(cat.Score),
			scoring.CategoryWeight(cat.Category),
			formatStatusWithColor(string(cat.Status)),
		)
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush category table: %v\n", err)
	}

	for _, cat := range report.Categories {
		if len(cat.Checks) == 0 && cat.Reason == "" {
			continue
		}
		fmt.Fprintf(w, "\n%s\n", colorInfo(cat.Category))
		if cat.Reason != "" {
			fmt.Fprintf(w, "  %s\n", colorWarn(cat.Reason))
		}
		for _, check := range cat.Checks {
			line := fmt.Sprintf("  [%s] %s", formatStatusWithColor(string(check.Status)), check.Name)
			if check.Severity != "" {
				line += fmt.Sprintf(" (%s)", check.Severity)
			}
			if check.Description != "" {
				line += ": " + check.Description
			}
			fmt.Fprintln(w, line)
		}
	}

	if len(report.Breakdown.ExcludedCategories) > 0 {
		fmt.Fprintf(w, "\n%s\n", colorWarn("Excluded from the overall score:"))
		for _, ex := range report.Breakdown.ExcludedCategories {
			fmt.Fprintf(w, "  %s: %s\n", ex.Name, ex.Reason)
		}
	}
}

// renderJSONOutcomes writes a single report as a bare object, matching the
// API response shape, and multiple targets as an array of per-target
// entries so partial failures stay visible.
func renderJSONOutcomes(outputPath string, outcomes []analyzeOutcome) error {
	var payload interface{}
	if len(outcomes) == 1 && outcomes[0].Err == nil {
		payload = outcomes[0].Report
	} else {
		results := make([]targetResult, 0, len(outcomes))
		for _, outcome := range outcomes {
			entry := targetResult{URL: outcome.URL, Report: outcome.Report}
			if outcome.Err != nil {
				entry.Error = outcome.Err.Error()
			}
			results = append(results, entry)
		}
		payload = results
	}

	data, err := json.MarshalIndent(payload, jsonPrefix, jsonIndent)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	data = append(data, '\n')
	return writeReportOutput(data, outputPath)
}

func renderMarkdownOutcomes(outputPath string, outcomes []analyzeOutcome) error {
	data := markdownReportData{GeneratedAt: time.Now()}
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			data.Failures = append(data.Failures, targetResult{URL: outcome.URL, Error: outcome.Err.Error()})
			continue
		}
		data.Reports = append(data.Reports, outcome.Report)
	}

	var buf strings.Builder
	if err := markdownReportTemplate.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to execute %s template: %w", markdownReportTemplate.Name(), err)
	}
	return writeReportOutput([]byte(buf.String()), outputPath)
}

func renderPDFOutcomes(outputPath string, outcomes []analyzeOutcome) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	// Title
	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Website Quality Report", "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s | Targets: %d",
		time.Now().Format("2006-01-02 15:04:05"), len(outcomes)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	for _, outcome := range outcomes {
		// New page before a target header would land near the bottom
		if pdf.GetY() > 240 {
			pdf.AddPage()
		}

		if outcome.Err != nil {
			pdf.SetFont("Arial", "B", 11)
			pdf.SetFillColor(240, 240, 240)
			pdf.CellFormat(0, 7, fmt.Sprintf("%s - FAILED", outcome.URL), "", 1, "", true, 0, "")
			pdf.SetFont("Arial", "I", 9)
			pdf.MultiCell(0, 5, outcome.Err.Error(), "", "", false)
			pdf.Ln(3)
			continue
		}

		report := outcome.Report

		// Target header tinted with the score bucket color
		r, g, b := hexToRGB(scoring.ScoreColor(scoring.IntPtr(report.Score)))
		pdf.SetFont("Arial", "B", 11)
		pdf.SetFillColor(r, g, b)
		pdf.CellFormat(0, 7, fmt.Sprintf("%s - %d/100 (%s)", report.URL, report.Score, report.Label), "", 1, "", true, 0, "")
		pdf.Ln(1)

		pdf.SetFont("Arial", "", 9)
		pdf.CellFormat(0, 5, fmt.Sprintf("Analyzed: %s | Duration: %s | ID: %s",
			report.AnalyzedAt.Format("2006-01-02 15:04:05"),
			formatMillisLabel(report.Duration),
			report.AnalysisID), "", 1, "", false, 0, "")
		if report.FinalURL != "" && report.FinalURL != report.URL {
			pdf.CellFormat(0, 5, fmt.Sprintf("Final URL: %s", report.FinalURL), "", 1, "", false, 0, "")
		}

		if report.MalwareDetected {
			pdf.SetFont("Arial", "B", 10)
			pdf.SetTextColor(200, 30, 30)
			pdf.CellFormat(0, 6, "Malware or phishing indicators detected: score forced to 0", "", 1, "", false, 0, "")
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(1)

		for _, cat := range report.Categories {
			if pdf.GetY() > 250 {
				pdf.AddPage()
			}
			pdf.SetFont("Arial", "B", 10)
			pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s (weight %.1f)",
				cat.Category, scoreCell(cat.Score), scoring.CategoryWeight(cat.Category)), "", 1, "", false, 0, "")
			pdf.SetFont("Arial", "", 8)
			if cat.Reason != "" {
				pdf.MultiCell(0, 4, fmt.Sprintf("  %s", cat.Reason), "", "", false)
			}
			for _, check := range cat.Checks {
				if pdf.GetY() > 270 {
					pdf.AddPage()
				}
				line := fmt.Sprintf("  [%s] %s", strings.ToUpper(string(check.Status)), check.Name)
				if check.Description != "" {
					line += ": " + check.Description
				}
				pdf.MultiCell(0, 4, line, "", "", false)
			}
		}

		if len(report.Breakdown.ExcludedCategories) > 0 {
			pdf.SetFont("Arial", "I", 8)
			for _, ex := range report.Breakdown.ExcludedCategories {
				pdf.CellFormat(0, 4, fmt.Sprintf("Excluded: %s (%s)", ex.Name, ex.Reason), "", 1, "", false, 0, "")
			}
		}

		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fmt.Errorf("failed to generate PDF: %w", err)
	}
	return writeReportOutput(buf.Bytes(), outputPath)
}

func writeReportOutput(content []byte, outputPath string) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(content)
		return err
	}
	if err := os.WriteFile(outputPath, content, consts.DefaultFilePerm); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Printf("Report written: %s\n", outputPath)
	return nil
}

func scoreCell(score *int) string {
	if score == nil {
		return "n/a"
	}
	return strconv.Itoa(*score)
}

func formatShortTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 02 15:04")
}

func formatMillisLabel(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// hexToRGB splits a #rrggbb color token into its channels. Unparseable
// input falls back to the neutral fill used for section headers.
func hexToRGB(hex string) (int, int, int) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return 240, 240, 240
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 240, 240, 240
	}
	return int(v >> 16), int(v >> 8 & 0xff), int(v & 0xff)
}
