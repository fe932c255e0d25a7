package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sitegrade/sitegrade-cli/internal/history"
	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent scans and their score trend",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		format, _ := cmd.Flags().GetString("format")

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

		records, err := store.Recent(limit)
		if err != nil {
			if errors.Is(err, sgerrors.ErrHistoryNotFound) {
				fmt.Printf("%s scan history recorded yet, run analyze with --history first\n", colorWarn("No"))
				return nil
			}
			return err
		}

		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			out, err := json.MarshalIndent(records, jsonPrefix, jsonIndent)
			if err != nil {
				return fmt.Errorf("marshal history: %w", err)
			}
			fmt.Println(string(out))
		case "ascii":
			printHistoryASCII(records)
		default:
			return &UnknownFormatError{Format: format, Supported: []string{"ascii", "json"}}
		}

		return nil
	},
}

// printHistoryASCII draws each scan's score as a fixed-width bar, oldest
// first, so repeated runs read as a trend.
func printHistoryASCII(records []history.Record) {
	const barWidth = 40
	fmt.Println(colorInfo("Score Trend"))
	for _, rec := range records {
		score := 0
		if rec.Score != nil {
			score = *rec.Score
		}
		barLen := int(math.Round(float64(score) / 100.0 * barWidth))
		if barLen < 0 {
			barLen = 0
		}
		if barLen > barWidth {
			barLen = barWidth
		}
		if barLen == 0 && score > 0 {
			barLen = 1
		}
		bar := strings.Repeat("#", barLen)
		fmt.Printf("%s | %3d | %-*s | %s (%s)\n",
			rec.Timestamp.Format("2006-01-02 15:04"),
			score,
			barWidth,
			bar,
			rec.URL,
			rec.Label,
		)
	}
}

func init() {
	historyCmd.Flags().Int("limit", 10, "Number of recent scans to display")
	historyCmd.Flags().String("format", "ascii", "Output format: ascii|json")
}
