package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tfbscan/tfbscan/internal/types"
)

// SearchRecord is one line of the search log.
type SearchRecord struct {
	Timestamp       time.Time       `json:"timestamp"`
	SearchID        string          `json:"search_id"`
	Motif           string          `json:"motif"`
	TF              string          `json:"tf"`
	Sequences       []string        `json:"sequences"`
	PromoterLength  int             `json:"promoter_length"`
	WindowSize      int             `json:"window_size"`
	WindowThreshold float64         `json:"window_threshold"`
	Threshold       float64         `json:"threshold"`
	Pseudocount     float64         `json:"pseudocount"`
	Windows         int             `json:"windows"`
	Cached          bool            `json:"cached,omitempty"`
	Duration        string          `json:"duration"`
	TopWindows      []WindowSummary `json:"top_windows,omitempty"`
	Error           string          `json:"error,omitempty"`
}

// WindowSummary is a compact view of an accepted window.
type WindowSummary struct {
	ID    int     `json:"window_id"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float64 `json:"score"`
	Hits  int     `json:"hits"`
}

// Log is an append-only JSONL file of searches.
type Log struct {
	path string
}

// NewLog returns the search log kept in dataDir.
func NewLog(dataDir string) *Log {
	return &Log{path: filepath.Join(dataDir, "searches.jsonl")}
}

// Path returns the log file location.
func (a *Log) Path() string { return a.path }

// LoadHistory returns records newest first. Undecodable lines are skipped.
func (a *Log) LoadHistory() ([]SearchRecord, error) {
	f, err := os.Open(a.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open search log: %w", err)
	}
	defer f.Close()

	var records []SearchRecord
	decoder := json.NewDecoder(f)
	for decoder.More() {
		var record SearchRecord
		if err := decoder.Decode(&record); err != nil {
			break
		}
		records = append(records, record)
	}

	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes record to the log.
func (a *Log) Append(record SearchRecord) error {
	if record.SearchID == "" {
		record.SearchID = fmt.Sprintf("search_%d", record.Timestamp.UnixNano())
	}
	f, err := os.OpenFile(a.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open search log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(record); err != nil {
		return fmt.Errorf("failed to write search record: %w", err)
	}
	return nil
}

// Summarize keeps the first n windows in compact form.
func Summarize(windows []types.WindowResult, n int) []WindowSummary {
	out := make([]WindowSummary, 0, n)
	for i, w := range windows {
		if i >= n {
			break
		}
		out = append(out, WindowSummary{ID: w.ID, Start: w.Start, End: w.End, Score: w.Score, Hits: len(w.Observations)})
	}
	return out
}
