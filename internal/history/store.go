package history

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	consts "github.com/sitegrade/sitegrade-cli/internal/shared/constants"
	sgerrors "github.com/sitegrade/sitegrade-cli/internal/shared/errors"
)

// Record is a single line of scan history.
type Record struct {
	Timestamp       time.Time       `json:"timestamp"`
	URL             string          `json:"url"`
	Score           *int            `json:"score"`
	Label           string          `json:"label"`
	DurationSeconds float64         `json:"duration_seconds"`
	Categories      map[string]*int `json:"categories,omitempty"`
}

// Store appends and reads scan history records from a JSONL file. All
// methods are safe for concurrent use.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a store backed by the given file path. The file and its
// parent directory are created lazily on the first append.
func NewStore(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("history path cannot be empty")
	}
	return &Store{path: path}, nil
}

// Path reports the file the store reads and writes.
func (s *Store) Path() string {
	return s.path
}

// Append writes one record to the end of the history file. History may hold
// past scores for any URL, so the file is kept readable only by the owner.
func (s *Store) Append(record Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), consts.HistoryDirPerm); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal history record: %w", err)
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, consts.HistoryFilePerm)
	if err != nil {
		return fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("write history record: %w", err)
	}

	return nil
}

// Recent returns up to limit records in chronological order, oldest first.
// A limit of zero or less returns everything. It reports ErrHistoryNotFound
// when no records have been written yet.
func (s *Store) Recent(limit int) ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, sgerrors.ErrHistoryNotFound
	}

	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	return records, nil
}

// Prune rewrites the history file keeping only the newest max records.
// Pruning an absent history is a no-op.
func (s *Store) Prune(max int) error {
	if max <= 0 {
		return fmt.Errorf("prune limit must be positive, got %d", max)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.load()
	if err != nil {
		return err
	}
	if len(records) <= max {
		return nil
	}
	records = records[len(records)-max:]

	var buf bytes.Buffer
	for _, record := range records {
		data, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal history record: %w", err)
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(s.path, buf.Bytes(), consts.HistoryFilePerm); err != nil {
		return fmt.Errorf("rewrite history file: %w", err)
	}

	return nil
}

// load reads every parseable record from the file. Corrupt lines are
// skipped so one bad write cannot block access to the rest of the history.
// The caller must hold the mutex.
func (s *Store) load() ([]Record, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("open history file: %w", err)
	}
	defer f.Close()

	var records []Record
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record Record
		if err := json.Unmarshal(line, &record); err != nil {
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read history file: %w", err)
	}

	return records, nil
}
