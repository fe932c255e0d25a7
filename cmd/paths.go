package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

// dataDirEnvVar overrides the data directory, mainly for tests.
const dataDirEnvVar = "SITEGRADE_DATA_DIR"

// getDataDir returns the appropriate data directory for the current OS
// following the XDG Base Directory specification on Linux/Unix.
func getDataDir() (string, error) {
	if override := os.Getenv(dataDirEnvVar); override != "" {
		if err := os.MkdirAll(override, consts.DefaultDirPerm); err != nil {
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
		return override, nil
	}

	var baseDir string

	switch runtime.GOOS {
	case "windows":
		baseDir = os.Getenv("LOCALAPPDATA")
		if baseDir == "" {
			baseDir = os.Getenv("APPDATA")
		}
		if baseDir == "" {
			return "", fmt.Errorf("could not determine Windows data directory")
		}
		baseDir = filepath.Join(baseDir, "sitegrade")

	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not determine home directory: %w", err)
		}
		baseDir = filepath.Join(homeDir, "Library", "Application Support", "sitegrade")

	default:
		// Priority: $XDG_DATA_HOME/sitegrade > ~/.local/share/sitegrade
		xdgDataHome := os.Getenv("XDG_DATA_HOME")
		if xdgDataHome != "" {
			baseDir = filepath.Join(xdgDataHome, "sitegrade")
		} else {
			homeDir, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("could not determine home directory: %w", err)
			}
			baseDir = filepath.Join(homeDir, ".local", "share", "sitegrade")
		}
	}

	if err := os.MkdirAll(baseDir, consts.DefaultDirPerm); err != nil {
		return "", fmt.Errorf("failed to create data directory: %w", err)
	}

	return baseDir, nil
}

// defaultHistoryPath returns where scan history is recorded unless the
// config file points somewhere else.
func defaultHistoryPath() (string, error) {
	dataDir, err := getDataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, "history.jsonl"), nil
}
