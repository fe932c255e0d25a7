package cmd

import (
	"strings"

	"github.com/fatih/color"
)

var (
	colorSuccess = color.New(color.FgGreen).SprintFunc()
	colorInfo    = color.New(color.FgCyan).SprintFunc()
	colorWarn    = color.New(color.FgYellow).SprintFunc()
	colorError   = color.New(color.FgRed).SprintFunc()
)

func formatStatusWithColor(status string) string {
	switch strings.ToLower(status) {
	case "pass", "ok", "available":
		return colorSuccess(status)
	case "info":
		return colorInfo(status)
	case "warn":
		return colorWarn(status)
	case "fail", "error", "unavailable":
		return colorError(status)
	default:
		return status
	}
}

func formatLabelWithColor(label string) string {
	switch label {
	case "Excellent", "Good":
		return colorSuccess(label)
	case "Fair":
		return colorWarn(label)
	case "Poor", "Critical":
		return colorError(label)
	default:
		return label
	}
}
