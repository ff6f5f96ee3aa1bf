package app

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Saahil112/morning-brief/internal/classify"
	"github.com/Saahil112/morning-brief/internal/config"
	"github.com/Saahil112/morning-brief/internal/feeds"
	"github.com/Saahil112/morning-brief/internal/report"
	"github.com/Saahil112/morning-brief/internal/story"
)

type stubFetcher struct {
	result  feeds.Result
	release chan struct{} // when set, FetchAll blocks until closed
}

func (s *stubFetcher) FetchAll(ctx context.Context, _ []feeds.Source) feeds.Result {
	if s.release != nil {
		<-s.release
	}
	return s.result
}

type stubOracle struct {
	verdicts map[string]classify.Verdict
}

func (s *stubOracle) Judge(ctx context.Context, title, summary string) (classify.Verdict, error) {
	if v, ok := s.verdicts[title]; ok {
		return v, nil
	}
	return classify.Verdict{Kind: classify.NotRelevant}, nil
}

type stubSender struct {
	subjects []string
	bodies   []string
	err      error
}

func (s *stubSender) Send(ctx context.Context, subject, htmlBody string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.subjects = append(s.subjects, subject)
	s.bodies = append(s.bodies, htmlBody)
	return "msg-1", nil
}

func entry(source, title string) story.FeedEntry {
	return story.FeedEntry{
		Title:     title,
		Summary:   "summary of " + title,
		Link:      "https://x.test/" + source,
		Source:    source,
		Published: time.Now().UTC(),
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	if err != nil {
		t.Fatal(err)
	}
	cfg.ReportFilePath = filepath.Join(t.TempDir(), "last_run.json")
	return cfg
}

func TestRunOncePipeline(t *testing.T) {
	fetcher := &stubFetcher{result: feeds.Result{
		Entries: []story.FeedEntry{
			// Same event from three feeds: macro trigger at threshold 3.
			entry("bbc", "Fed raises interest rates by 50 basis points"),
			entry("reuters", "Fed raises interest rates 50 basis points"),
			entry("ft", "US Fed raises interest rates by 50 basis points"),
			// LLM-relevant single-feed story.
			entry("verge", "New AI model released by research lab"),
			// Irrelevant single-feed story.
			entry("bbc", "Local bakery wins regional pastry award"),
		},
		FeedsOK: 4, FeedsFailed: 1,
	}}
	oracle := &stubOracle{verdicts: map[string]classify.Verdict{
		"New AI model released by research lab": {
			Kind: classify.Relevant, Section: story.SectionAITech, Tier: story.TierNotable,
		},
	}}
	sender := &stubSender{}

	cfg := testConfig(t)
	a := New(cfg, Deps{
		Fetcher: fetcher,
		Oracle:  oracle,
		Sender:  sender,
		Report:  report.NewWriter(cfg.ReportFilePath),
	})

	rpt, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if rpt.Stats.StoriesFetched != 5 {
		t.Errorf("StoriesFetched = %d, want 5", rpt.Stats.StoriesFetched)
	}
	if rpt.Stats.StoriesConsidered != 3 {
		t.Errorf("StoriesConsidered = %d, want 3 clusters", rpt.Stats.StoriesConsidered)
	}
	if rpt.Stats.StoriesSelected != 2 {
		t.Errorf("StoriesSelected = %d, want 2", rpt.Stats.StoriesSelected)
	}
	if rpt.Stats.OracleCalls != 3 || rpt.Stats.OracleFailures != 0 {
		t.Errorf("oracle calls/failures = %d/%d, want 3/0",
			rpt.Stats.OracleCalls, rpt.Stats.OracleFailures)
	}
	if rpt.Stats.FeedsFailed != 1 {
		t.Errorf("FeedsFailed = %d, want 1", rpt.Stats.FeedsFailed)
	}
	if rpt.Stats.SectionCounts["macro_markets"] != 1 || rpt.Stats.SectionCounts["ai_tech"] != 1 {
		t.Errorf("unexpected section counts: %v", rpt.Stats.SectionCounts)
	}
	if rpt.MessageID != "msg-1" {
		t.Errorf("MessageID = %q, want delivery id", rpt.MessageID)
	}
	if len(sender.bodies) != 1 || !strings.Contains(sender.bodies[0], "New AI model released by research lab") {
		t.Errorf("digest email missing selected story")
	}
	if strings.Contains(sender.bodies[0], "pastry award") {
		t.Errorf("excluded story leaked into the digest email")
	}
}

func TestRunOnceIdempotent(t *testing.T) {
	fetcher := &stubFetcher{result: feeds.Result{
		Entries: []story.FeedEntry{
			entry("bbc", "Fed raises interest rates by 50 basis points"),
			entry("reuters", "Fed raises interest rates 50 basis points"),
			entry("ft", "US Fed raises interest rates by 50 basis points"),
			entry("verge", "New AI model released by research lab"),
		},
		FeedsOK: 4,
	}}
	oracle := &stubOracle{verdicts: map[string]classify.Verdict{
		"New AI model released by research lab": {
			Kind: classify.Relevant, Section: story.SectionAITech, Tier: story.TierTop,
		},
	}}

	cfg := testConfig(t)
	a := New(cfg, Deps{Fetcher: fetcher, Oracle: oracle})

	first, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	second, err := a.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(first.Digest, second.Digest) {
		t.Errorf("identical inputs produced different digests:\n%v\nvs\n%v",
			first.Digest, second.Digest)
	}
}

func TestRunOnceEmptyFetch(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, Deps{Fetcher: &stubFetcher{result: feeds.Result{FeedsFailed: 3}}})

	rpt, err := a.RunOnce(context.Background())
	if !errors.Is(err, ErrNoStories) {
		t.Fatalf("err = %v, want ErrNoStories", err)
	}
	if rpt == nil || rpt.Digest.TotalStories != 0 {
		t.Errorf("empty fetch must still complete with an empty digest")
	}
}

func TestRunOnceSendFailureReported(t *testing.T) {
	fetcher := &stubFetcher{result: feeds.Result{
		Entries: []story.FeedEntry{
			entry("bbc", "Fed raises interest rates by 50 basis points"),
			entry("reuters", "Fed raises interest rates 50 basis points"),
			entry("ft", "US Fed raises interest rates by 50 basis points"),
		},
		FeedsOK: 3,
	}}
	sendErr := errors.New("smtp on fire")

	cfg := testConfig(t)
	a := New(cfg, Deps{Fetcher: fetcher, Sender: &stubSender{err: sendErr}})

	rpt, err := a.RunOnce(context.Background())
	if !errors.Is(err, sendErr) {
		t.Fatalf("err = %v, want send failure surfaced", err)
	}
	if rpt == nil || rpt.Stats.StoriesSelected != 1 {
		t.Errorf("run report must still carry the assembled stats")
	}
}

func TestTryRunSingleFlight(t *testing.T) {
	release := make(chan struct{})
	fetcher := &stubFetcher{result: feeds.Result{}, release: release}

	cfg := testConfig(t)
	a := New(cfg, Deps{Fetcher: fetcher})

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.TryRun(context.Background())
	}()

	// Wait for the first run to hold the slot.
	deadline := time.After(2 * time.Second)
	for !a.running.Load() {
		select {
		case <-deadline:
			t.Fatal("first run never started")
		default:
			time.Sleep(time.Millisecond)
		}
	}

	if _, err := a.TryRun(context.Background()); !errors.Is(err, ErrRunInProgress) {
		t.Errorf("overlapping trigger: err = %v, want ErrRunInProgress", err)
	}

	close(release)
	<-done

	if _, err := a.TryRun(context.Background()); errors.Is(err, ErrRunInProgress) {
		t.Errorf("slot not released after run completion")
	}
}

func TestRunOnceCancelled(t *testing.T) {
	cfg := testConfig(t)
	a := New(cfg, Deps{Fetcher: &stubFetcher{result: feeds.Result{
		Entries: []story.FeedEntry{entry("bbc", "Some headline about events")},
		FeedsOK: 1,
	}}})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := a.RunOnce(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled (run discarded, never partially published)", err)
	}
}
