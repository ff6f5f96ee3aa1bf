package metrics

import (
	"sync"
	"time"
)

// RunStats is the metrics surface of one pipeline run.
type RunStats struct {
	StoriesFetched    int            `json:"stories_fetched"`
	StoriesConsidered int            `json:"stories_considered"`
	StoriesSelected   int            `json:"stories_selected"`
	SectionCounts     map[string]int `json:"section_counts"`
	OracleCalls       int            `json:"oracle_calls"`
	OracleFailures    int            `json:"oracle_failures"`
	FeedsOK           int            `json:"feeds_ok"`
	FeedsFailed       int            `json:"feeds_failed"`
	ElapsedMS         int64          `json:"elapsed_ms"`
	CompletedAt       time.Time      `json:"completed_at"`
}

type Metrics struct {
	mu sync.RWMutex

	// Cumulative counters
	RunsCompleted int64
	EmailsSent    int64

	// Last run
	lastRun    RunStats
	hasRun     bool
	totalTime  time.Duration
	timedRuns  int64
	averageRun time.Duration

	// Status
	LastErrorTime time.Time
	LastError     string
	IsHealthy     bool
}

var Global = &Metrics{IsHealthy: true}

func (m *Metrics) RecordRun(stats RunStats) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RunsCompleted++
	m.lastRun = stats
	m.hasRun = true
	m.IsHealthy = true

	m.totalTime += time.Duration(stats.ElapsedMS) * time.Millisecond
	m.timedRuns++
	if m.timedRuns > 0 {
		m.averageRun = m.totalTime / time.Duration(m.timedRuns)
	}
}

func (m *Metrics) IncrementEmailsSent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.EmailsSent++
}

func (m *Metrics) SetError(err string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LastError = err
	m.LastErrorTime = time.Now()
	m.IsHealthy = false
}

// LastRun returns the most recent run stats, if any run completed.
func (m *Metrics) LastRun() (RunStats, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastRun, m.hasRun
}

func (m *Metrics) GetStats() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"runs_completed":      m.RunsCompleted,
		"emails_sent":         m.EmailsSent,
		"stories_fetched":     m.lastRun.StoriesFetched,
		"stories_considered":  m.lastRun.StoriesConsidered,
		"stories_selected":    m.lastRun.StoriesSelected,
		"section_counts":      m.lastRun.SectionCounts,
		"oracle_calls":        m.lastRun.OracleCalls,
		"oracle_failures":     m.lastRun.OracleFailures,
		"feeds_ok":            m.lastRun.FeedsOK,
		"feeds_failed":        m.lastRun.FeedsFailed,
		"last_run_elapsed_ms": m.lastRun.ElapsedMS,
		"average_run_ms":      m.averageRun.Milliseconds(),
		"last_run_time":       m.lastRun.CompletedAt.Format(time.RFC3339),
		"last_error_time":     m.LastErrorTime.Format(time.RFC3339),
		"last_error":          m.LastError,
		"is_healthy":          m.IsHealthy,
	}
}
