package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var cfgFile string
var verbose bool
var noColor bool
var logger *zap.SugaredLogger

var rootCmd = &cobra.Command{
	Use:   "sitegrade",
	Short: "Grade the quality, safety and trustworthiness of a website",
	Long: `sitegrade fetches a web page once and runs independent category
checkers against it (security, safety, DNS, performance, SEO,
accessibility, links, WHOIS), then aggregates the results into a
weighted 0-100 score with a letter-style label.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// init config
		if cfgFile != "" {
			viper.SetConfigFile(cfgFile)
		} else {
			viper.AddConfigPath("$HOME")
			viper.SetConfigName(".sitegrade")
			viper.SetConfigType("yaml")
		}

		_ = viper.ReadInConfig()

		// init logger
		var l *zap.Logger
		var err error
		if verbose {
			l, err = zap.NewDevelopment()
		} else {
			l, err = zap.NewProduction()
		}
		if err != nil {
			return fmt.Errorf("failed to create logger: %w", err)
		}
		logger = l.Sugar()

		if noColor {
			color.NoColor = true
		}

		applyConfigDefaults(cmd)

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.sitegrade.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "verbose (development) logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	// add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}
