package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

// CLIConfig captures runtime configuration shared across commands.
type CLIConfig struct {
	Defaults DefaultValues
	Analyze  AnalyzeRuntimeConfig
}

// DefaultValues represent user-level defaults, typically from the config file.
type DefaultValues struct {
	TimeoutSecs  int
	Concurrency  int
	RatePerSec   int
	Format       string
	HistoryPath  string
	HistoryLimit int
}

// AnalyzeRuntimeConfig consolidates flag-driven settings for the analyze command.
type AnalyzeRuntimeConfig struct {
	Concurrency     int
	RatePerSec      int
	TimeoutSecs     int
	SampleSize      int
	HistoryEnabled  bool
	ProgressEnabled bool
}

type defaultOverrides struct {
	TimeoutSecs  *int
	Concurrency  *int
	RatePerSec   *int
	Format       string
	Progress     *bool
	History      *bool
	HistoryPath  string
	HistoryLimit *int
}

var cliConfig = newCLIConfig()

func newCLIConfig() *CLIConfig {
	timeoutSecs := int(consts.DefaultTimeout / time.Second)
	return &CLIConfig{
		Defaults: DefaultValues{
			TimeoutSecs: timeoutSecs,
			Concurrency: consts.DefaultConcurrency,
			RatePerSec:  consts.DefaultRatePerSec,
			Format:      "text",
		},
		Analyze: AnalyzeRuntimeConfig{
			Concurrency:     consts.DefaultConcurrency,
			RatePerSec:      consts.DefaultRatePerSec,
			TimeoutSecs:     timeoutSecs,
			SampleSize:      consts.ExternalLinkSample,
			ProgressEnabled: false,
		},
	}
}

func loadDefaultOverrides() defaultOverrides {
	overrides := defaultOverrides{}

	if viper.IsSet("defaults.timeout_secs") {
		val := viper.GetInt("defaults.timeout_secs")
		overrides.TimeoutSecs = &val
	}

	if viper.IsSet("defaults.concurrency") {
		val := viper.GetInt("defaults.concurrency")
		overrides.Concurrency = &val
	}

	if viper.IsSet("defaults.rate") {
		val := viper.GetInt("defaults.rate")
		overrides.RatePerSec = &val
	}

	if viper.IsSet("defaults.format") {
		overrides.Format = viper.GetString("defaults.format")
	}

	if viper.IsSet("defaults.progress") {
		val := viper.GetBool("defaults.progress")
		overrides.Progress = &val
	}

	if viper.IsSet("defaults.history") {
		val := viper.GetBool("defaults.history")
		overrides.History = &val
	}

	if viper.IsSet("history.path") {
		overrides.HistoryPath = viper.GetString("history.path")
	}

	if viper.IsSet("history.limit") {
		val := viper.GetInt("history.limit")
		overrides.HistoryLimit = &val
	}

	return overrides
}

// applyConfigDefaults merges config file defaults into the runtime config when
// the user did not explicitly override the corresponding flag.
func applyConfigDefaults(cmd *cobra.Command) {
	overrides := loadDefaultOverrides()

	if overrides.TimeoutSecs != nil {
		applyIntDefault(analyzeCmd.Flags(), "timeout", *overrides.TimeoutSecs, func(v int) {
			cliConfig.Defaults.TimeoutSecs = v
			cliConfig.Analyze.TimeoutSecs = v
		})
	}

	if overrides.Concurrency != nil {
		applyIntDefault(analyzeCmd.Flags(), "concurrency", *overrides.Concurrency, func(v int) {
			cliConfig.Defaults.Concurrency = v
			cliConfig.Analyze.Concurrency = v
		})
	}

	if overrides.RatePerSec != nil {
		applyIntDefault(analyzeCmd.Flags(), "rate", *overrides.RatePerSec, func(v int) {
			cliConfig.Defaults.RatePerSec = v
			cliConfig.Analyze.RatePerSec = v
		})
	}

	if overrides.Format != "" {
		cliConfig.Defaults.Format = overrides.Format
		setStringFlagIfUnset(analyzeCmd.Flags(), "format", overrides.Format)
	}

	if overrides.Progress != nil {
		applyBoolDefault(analyzeCmd.Flags(), "progress", *overrides.Progress, func(v bool) {
			cliConfig.Analyze.ProgressEnabled = v
		})
	}

	if overrides.History != nil {
		applyBoolDefault(analyzeCmd.Flags(), "history", *overrides.History, func(v bool) {
			cliConfig.Analyze.HistoryEnabled = v
		})
	}

	if overrides.HistoryPath != "" {
		cliConfig.Defaults.HistoryPath = overrides.HistoryPath
	}

	if overrides.HistoryLimit != nil {
		cliConfig.Defaults.HistoryLimit = *overrides.HistoryLimit
	}
}

func applyIntDefault(flags *pflag.FlagSet, name string, value int, setter func(int)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func applyBoolDefault(flags *pflag.FlagSet, name string, value bool, setter func(bool)) {
	if flags == nil || setter == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag != nil && flag.Changed {
		return
	}
	setter(value)
}

func setStringFlagIfUnset(flags *pflag.FlagSet, name, value string) {
	if flags == nil {
		return
	}
	flag := flags.Lookup(name)
	if flag == nil || flag.Changed {
		return
	}
	_ = flag.Value.Set(value)
}
