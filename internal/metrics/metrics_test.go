package metrics

import (
	"testing"
	"time"
)

func TestRecordRun(t *testing.T) {
	m := &Metrics{IsHealthy: true}

	stats := RunStats{
		StoriesFetched:  10,
		StoriesSelected: 4,
		SectionCounts:   map[string]int{"global_news": 4},
		ElapsedMS:       500,
		CompletedAt:     time.Now().UTC(),
	}
	m.RecordRun(stats)

	got, ok := m.LastRun()
	if !ok {
		t.Fatal("LastRun should report a completed run")
	}
	if got.StoriesSelected != 4 {
		t.Errorf("StoriesSelected = %d, want 4", got.StoriesSelected)
	}

	out := m.GetStats()
	if out["stories_fetched"].(int) != 10 {
		t.Errorf("stories_fetched = %v, want 10", out["stories_fetched"])
	}
	if out["is_healthy"].(bool) != true {
		t.Error("a recorded run marks the service healthy")
	}
}

func TestSetError(t *testing.T) {
	m := &Metrics{IsHealthy: true}
	m.SetError("oracle down")

	out := m.GetStats()
	if out["is_healthy"].(bool) {
		t.Error("SetError must mark unhealthy")
	}
	if out["last_error"].(string) != "oracle down" {
		t.Errorf("last_error = %v", out["last_error"])
	}

	m.RecordRun(RunStats{CompletedAt: time.Now()})
	if !m.GetStats()["is_healthy"].(bool) {
		t.Error("a successful run restores health")
	}
}

func TestAverageRunTime(t *testing.T) {
	m := &Metrics{IsHealthy: true}
	m.RecordRun(RunStats{ElapsedMS: 100})
	m.RecordRun(RunStats{ElapsedMS: 300})

	if avg := m.GetStats()["average_run_ms"].(int64); avg != 200 {
		t.Errorf("average_run_ms = %d, want 200", avg)
	}
}
