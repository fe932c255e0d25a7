package history

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

func intPtr(v int) *int {
	return &v
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sitegrade", "history.jsonl"))
	if err != nil {
		t.Fatalf("NewStore returned error: %v", err)
	}
	return store
}

func TestNewStore_EmptyPath(t *testing.T) {
	_, err := NewStore("")
	if err == nil {
		t.Error("Expected error for empty path, got nil")
	}
}

func TestStore_AppendAndRecent(t *testing.T) {
	store := newTestStore(t)

	ts := time.Now().UTC().Truncate(time.Second)
	records := []Record{
		{Timestamp: ts.Add(-2 * time.Hour), URL: "https://first.example.com", Score: intPtr(88), Label: "Good", DurationSeconds: 1.5},
		{Timestamp: ts.Add(-1 * time.Hour), URL: "https://second.example.com", Score: intPtr(42), Label: "Poor", DurationSeconds: 3.2},
		{
			Timestamp:       ts,
			URL:             "https://third.example.com",
			Score:           intPtr(95),
			Label:           "Excellent",
			DurationSeconds: 0.9,
			Categories: map[string]*int{
				"Security & HTTPS":    intPtr(100),
				"SEO & Metadata":      intPtr(80),
				"WHOIS & Domain Info": nil,
			},
		},
	}

	for _, record := range records {
		if err := store.Append(record); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(got))
	}

	if got[0].URL != "https://first.example.com" {
		t.Errorf("Expected oldest record first, got %s", got[0].URL)
	}
	if got[2].URL != "https://third.example.com" {
		t.Errorf("Expected newest record last, got %s", got[2].URL)
	}

	last := got[2]
	if !last.Timestamp.Equal(ts) {
		t.Errorf("Expected timestamp %v, got %v", ts, last.Timestamp)
	}
	if last.Score == nil || *last.Score != 95 {
		t.Errorf("Expected score 95, got %v", last.Score)
	}
	if last.Label != "Excellent" {
		t.Errorf("Expected label Excellent, got %s", last.Label)
	}
	if last.DurationSeconds != 0.9 {
		t.Errorf("Expected duration 0.9, got %f", last.DurationSeconds)
	}
	if sec := last.Categories["Security & HTTPS"]; sec == nil || *sec != 100 {
		t.Errorf("Expected security category score 100, got %v", sec)
	}
	if whois, ok := last.Categories["WHOIS & Domain Info"]; !ok || whois != nil {
		t.Errorf("Expected nil whois category score to survive the round trip, got %v", whois)
	}
}

func TestStore_RecentLimit(t *testing.T) {
	store := newTestStore(t)

	for i, url := range []string{"https://a.example.com", "https://b.example.com", "https://c.example.com"} {
		record := Record{Timestamp: time.Now().UTC(), URL: url, Score: intPtr(50 + i)}
		if err := store.Append(record); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	got, err := store.Recent(2)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(got))
	}
	if got[0].URL != "https://b.example.com" || got[1].URL != "https://c.example.com" {
		t.Errorf("Expected the two newest records, got %s and %s", got[0].URL, got[1].URL)
	}
}

func TestStore_RecentEmpty(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Recent(10)
	if !errors.Is(err, sgerrors.ErrHistoryNotFound) {
		t.Errorf("Expected ErrHistoryNotFound, got %v", err)
	}
}

func TestStore_RecentSkipsCorruptLines(t *testing.T) {
	store := newTestStore(t)

	if err := store.Append(Record{Timestamp: time.Now().UTC(), URL: "https://ok.example.com", Score: intPtr(70)}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	f, err := os.OpenFile(store.Path(), os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		t.Fatalf("Failed to open history file: %v", err)
	}
	if _, err := f.WriteString("{not json at all\n\n"); err != nil {
		t.Fatalf("Failed to write corrupt line: %v", err)
	}
	f.Close()

	if err := store.Append(Record{Timestamp: time.Now().UTC(), URL: "https://also-ok.example.com", Score: intPtr(80)}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected corrupt line to be skipped, got %d records", len(got))
	}
	if got[1].URL != "https://also-ok.example.com" {
		t.Errorf("Expected record appended after corruption to survive, got %s", got[1].URL)
	}
}

func TestStore_Prune(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 5; i++ {
		record := Record{
			Timestamp: time.Now().UTC().Add(time.Duration(i) * time.Minute),
			URL:       "https://example.com",
			Score:     intPtr(60 + i),
		}
		if err := store.Append(record); err != nil {
			t.Fatalf("Append returned error: %v", err)
		}
	}

	if err := store.Prune(2); err != nil {
		t.Fatalf("Prune returned error: %v", err)
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Expected 2 records after prune, got %d", len(got))
	}
	if got[0].Score == nil || *got[0].Score != 63 {
		t.Errorf("Expected prune to keep the newest records, got score %v", got[0].Score)
	}
	if got[1].Score == nil || *got[1].Score != 64 {
		t.Errorf("Expected prune to keep the newest records, got score %v", got[1].Score)
	}
}

func TestStore_PruneNoOp(t *testing.T) {
	store := newTestStore(t)

	if err := store.Prune(10); err != nil {
		t.Errorf("Expected pruning an absent history to succeed, got %v", err)
	}

	if err := store.Append(Record{Timestamp: time.Now().UTC(), URL: "https://example.com", Score: intPtr(50)}); err != nil {
		t.Fatalf("Append returned error: %v", err)
	}
	if err := store.Prune(10); err != nil {
		t.Errorf("Expected pruning under the limit to succeed, got %v", err)
	}

	got, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent returned error: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected record to survive no-op prune, got %d records", len(got))
	}
}

func TestStore_PruneInvalidLimit(t *testing.T) {
	store := newTestStore(t)

	if err := store.Prune(0); err == nil {
		t.Error("Expected error for non-positive prune limit, got nil")
	}
}
