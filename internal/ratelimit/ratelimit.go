// Package ratelimit caps the number of oracle requests a single run may
// issue, independent of the concurrency cap on in-flight calls.
package ratelimit

import (
	"log/slog"
	"sync"
)

// OracleLimiter is a per-run call budget. A zero max means unlimited.
type OracleLimiter struct {
	mu      sync.Mutex
	count   int
	skipped int
	max     int
	log     *slog.Logger
}

func NewOracleLimiter(max int, log *slog.Logger) *OracleLimiter {
	return &OracleLimiter{max: max, log: log}
}

// Allow reserves one call from the budget. Once the budget is spent every
// further request is denied for the rest of the run.
func (l *OracleLimiter) Allow() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.max > 0 && l.count >= l.max {
		l.skipped++
		if l.log != nil {
			l.log.Warn("oracle call budget reached", "max", l.max)
		}
		return false
	}
	l.count++
	return true
}

// Calls returns how many calls were granted.
func (l *OracleLimiter) Calls() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.count
}

// Skipped returns how many requests were denied by the budget.
func (l *OracleLimiter) Skipped() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.skipped
}
