// Package report persists the last run's stats to a JSON file so the
// monitoring endpoints survive a process restart. Run state itself is
// never persisted: each pipeline run starts from scratch.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/Saahil112/morning-brief/internal/metrics"
)

type Writer struct {
	filePath string
	mu       sync.Mutex
}

func NewWriter(filePath string) *Writer {
	return &Writer{filePath: filePath}
}

// Save writes the run stats, replacing any previous report.
func (w *Writer) Save(stats metrics.RunStats) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	data, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run report: %w", err)
	}
	if err := os.WriteFile(w.filePath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}
	return nil
}

// Load reads the previous report if one exists. A missing file is not
// an error; it just means no run completed yet.
func (w *Writer) Load() (metrics.RunStats, bool, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	var stats metrics.RunStats

	data, err := os.ReadFile(w.filePath)
	if os.IsNotExist(err) {
		return stats, false, nil
	}
	if err != nil {
		return stats, false, fmt.Errorf("failed to read run report: %w", err)
	}
	if len(data) == 0 {
		return stats, false, nil
	}

	if err := json.Unmarshal(data, &stats); err != nil {
		return stats, false, fmt.Errorf("failed to unmarshal run report: %w", err)
	}
	return stats, true, nil
}
