package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sitegrade/sitegrade-cli/internal/checks"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the scoring categories and their checks",
	Long: `Print the built-in check catalog: every category, its weight in the
overall score, and the checks it runs with their severities.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		catalog := checks.Catalog()

		switch strings.ToLower(strings.TrimSpace(format)) {
		case "json":
			payload, err := json.MarshalIndent(catalog, jsonPrefix, jsonIndent)
			if err != nil {
				return fmt.Errorf("marshal catalog: %w", err)
			}
			fmt.Println(string(payload))
		case "text", "":
			printCatalogText(catalog)
		default:
			return &UnknownFormatError{Format: format, Supported: []string{"text", "json"}}
		}
		return nil
	},
}

func printCatalogText(catalog []checks.CategorySpec) {
	tw := tabwriter.NewWriter(os.Stdout, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tWEIGHT\tCHECKS")
	for _, cat := range catalog {
		fmt.Fprintf(tw, "%s\t%.1f\t%d\n", cat.Name, cat.Weight, len(cat.Checks))
	}
	if err := tw.Flush(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to flush catalog table: %v\n", err)
	}

	for _, cat := range catalog {
		fmt.Printf("\n%s\n", colorInfo(cat.Name))
		for _, check := range cat.Checks {
			fmt.Printf("  %s (%s)\n", check.Name, check.Severity)
		}
	}
}

func init() {
	categoriesCmd.Flags().String("format", "text", "Output format: text|json")
}
