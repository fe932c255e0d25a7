package cmd

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/sitegrade/sitegrade-cli/internal/checks"
)

func TestPrintCatalogText(t *testing.T) {
	original := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = original })

	out := captureStdout(t, func() {
		printCatalogText(checks.Catalog())
	})

	for _, want := range []string{
		"CATEGORY",
		"Security & HTTPS",
		"WHOIS & Domain Info",
		"Domain Age (critical)",
		"HTTPS Connection (critical)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected catalog output to contain %q, got:\n%s", want, out)
		}
	}
}

func TestCategoriesCommand_JSON(t *testing.T) {
	if err := categoriesCmd.Flags().Set("format", "json"); err != nil {
		t.Fatalf("failed to set format flag: %v", err)
	}
	t.Cleanup(func() {
		flag := categoriesCmd.Flags().Lookup("format")
		_ = flag.Value.Set("text")
		flag.Changed = false
	})

	out := captureStdout(t, func() {
		if err := categoriesCmd.RunE(categoriesCmd, nil); err != nil {
			t.Errorf("categoriesCmd returned error: %v", err)
		}
	})

	var decoded []checks.CategorySpec
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("catalog output is not valid JSON: %v", err)
	}
	if len(decoded) != 9 {
		t.Errorf("Expected 9 categories, got %d", len(decoded))
	}
	if decoded[0].Name != "Security & HTTPS" || decoded[0].Weight != 3 {
		t.Errorf("Expected Security & HTTPS with weight 3 first, got %+v", decoded[0])
	}
}

func TestCategoriesCommand_RejectsUnknownFormat(t *testing.T) {
	if err := categoriesCmd.Flags().Set("format", "yaml"); err != nil {
		t.Fatalf("failed to set format flag: %v", err)
	}
	t.Cleanup(func() {
		flag := categoriesCmd.Flags().Lookup("format")
		_ = flag.Value.Set("text")
		flag.Changed = false
	})

	err := categoriesCmd.RunE(categoriesCmd, nil)
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("Expected an unknown format error, got %v", err)
	}
}
