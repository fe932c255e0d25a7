package checks

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/sitegrade/sitegrade-cli/internal/scoring"
)

func TestParsePluginSpec(t *testing.T) {
	chk, err := ParsePluginSpec("Reputation=/usr/local/bin/rep-check")
	if err != nil {
		t.Fatalf("parse plugin spec: %v", err)
	}
	if chk.Name != "Reputation" {
		t.Errorf("Expected name Reputation, got %s", chk.Name)
	}
	if chk.Command != "/usr/local/bin/rep-check" {
		t.Errorf("Expected command path, got %s", chk.Command)
	}

	for _, bad := range []string{"no-separator", "=/bin/x", "Name=", "  =  "} {
		if _, err := ParsePluginSpec(bad); err == nil {
			t.Errorf("Expected error for spec %q", bad)
		}
	}
}

func TestPluginChecker_EmptyCommand(t *testing.T) {
	chk := &PluginChecker{Name: "Reputation"}
	result := chk.Run(context.Background(), makePage(t, "<html></html>"))

	if result.Status != scoring.CategoryUnavailable {
		t.Errorf("Expected unavailable without a command, got %s", result.Status)
	}
}

func writePluginScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("plugin scripts use /bin/sh")
	}
	path := filepath.Join(t.TempDir(), "plugin.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write plugin script: %v", err)
	}
	return path
}

func TestPluginChecker_ParsesOutput(t *testing.T) {
	script := writePluginScript(t, `echo '[{"name":"Blocklist Lookup","status":"pass","severity":"high","description":"not listed"},{"name":"Reputation Score","status":"warn"}]'`)

	chk := &PluginChecker{Name: "Reputation", Command: script, Timeout: 5 * time.Second}
	result := chk.Run(context.Background(), makePage(t, "<html></html>"))

	if result.Category != "Reputation" {
		t.Errorf("Expected plugin category name, got %s", result.Category)
	}
	if result.Status != scoring.CategoryAvailable {
		t.Fatalf("Expected available category, got %s (%s)", result.Status, result.Reason)
	}
	if len(result.Checks) != 2 {
		t.Fatalf("Expected 2 checks from plugin output, got %d", len(result.Checks))
	}
	if result.Checks[0].Status != scoring.StatusPass {
		t.Errorf("Expected first check to pass, got %s", result.Checks[0].Status)
	}
	if result.Checks[1].Severity != scoring.SeverityMedium {
		t.Errorf("Expected omitted severity to default to medium, got %s", result.Checks[1].Severity)
	}
}

func TestPluginChecker_ReceivesTargetURL(t *testing.T) {
	script := writePluginScript(t, `echo "[{\"name\":\"Echo\",\"status\":\"info\",\"description\":\"$1\"}]"`)

	chk := &PluginChecker{Name: "Echo", Command: script, Timeout: 5 * time.Second}
	result := chk.Run(context.Background(), makePage(t, "<html></html>"))

	if result.Status != scoring.CategoryAvailable {
		t.Fatalf("Expected available category, got %s (%s)", result.Status, result.Reason)
	}
	if result.Checks[0].Description != "https://example.com/" {
		t.Errorf("Expected final URL passed as argument, got %q", result.Checks[0].Description)
	}
}

func TestPluginChecker_BadOutput(t *testing.T) {
	script := writePluginScript(t, `echo "not json at all"`)

	chk := &PluginChecker{Name: "Reputation", Command: script, Timeout: 5 * time.Second}
	result := chk.Run(context.Background(), makePage(t, "<html></html>"))

	if result.Status != scoring.CategoryUnavailable {
		t.Errorf("Expected unavailable for malformed output, got %s", result.Status)
	}
	if !strings.Contains(result.Reason, "invalid plugin output") {
		t.Errorf("Expected parse failure in reason, got %q", result.Reason)
	}
}

func TestPluginChecker_FailureCarriesStderr(t *testing.T) {
	script := writePluginScript(t, "echo \"blocklist API unreachable\" >&2\nexit 3")

	chk := &PluginChecker{Name: "Reputation", Command: script, Timeout: 5 * time.Second}
	result := chk.Run(context.Background(), makePage(t, "<html></html>"))

	if result.Status != scoring.CategoryUnavailable {
		t.Errorf("Expected unavailable on non-zero exit, got %s", result.Status)
	}
	if !strings.Contains(result.Reason, "blocklist API unreachable") {
		t.Errorf("Expected stderr in reason, got %q", result.Reason)
	}
}
