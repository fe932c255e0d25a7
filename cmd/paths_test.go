package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
)

func TestGetDataDir_EnvOverride(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "sitegrade-data")
	t.Setenv(dataDirEnvVar, dir)

	dataDir, err := getDataDir()
	if err != nil {
		t.Fatalf("getDataDir() failed: %v", err)
	}
	if dataDir != dir {
		t.Errorf("Expected data dir %s, got %s", dir, dataDir)
	}

	info, err := os.Stat(dataDir)
	if err != nil {
		t.Fatalf("Data directory was not created: %v", err)
	}
	if !info.IsDir() {
		t.Error("Data directory path is not a directory")
	}
}

func TestGetDataDir_ContainsAppName(t *testing.T) {
	t.Setenv(dataDirEnvVar, "")
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	dataDir, err := getDataDir()
	if err != nil {
		t.Fatalf("getDataDir() failed: %v", err)
	}
	if !strings.Contains(dataDir, "sitegrade") {
		t.Errorf("Expected data directory to contain 'sitegrade', got: %s", dataDir)
	}
}

func TestDefaultHistoryPath(t *testing.T) {
	dir := t.TempDir()
	t.Setenv(dataDirEnvVar, dir)

	path, err := defaultHistoryPath()
	if err != nil {
		t.Fatalf("defaultHistoryPath() failed: %v", err)
	}
	if !strings.HasSuffix(path, "history.jsonl") {
		t.Errorf("Expected path to end with history.jsonl, got: %s", path)
	}
	if filepath.Dir(path) != dir {
		t.Errorf("Expected history file under %s, got: %s", dir, path)
	}
}

func TestDataDirWritable(t *testing.T) {
	t.Setenv(dataDirEnvVar, filepath.Join(t.TempDir(), "nested", "data"))

	dataDir, err := getDataDir()
	if err != nil {
		t.Fatalf("getDataDir() failed: %v", err)
	}

	testFile := filepath.Join(dataDir, "test_write.txt")
	if err := os.WriteFile(testFile, []byte("test"), consts.DefaultFilePerm); err != nil {
		t.Errorf("Cannot write to data directory: %v", err)
	} else {
		_ = os.Remove(testFile)
	}
}
