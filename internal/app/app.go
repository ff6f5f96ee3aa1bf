// Package app orchestrates one pipeline run: fetch, normalize, cluster,
// classify, allocate, render and deliver.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/Saahil112/morning-brief/internal/classify"
	"github.com/Saahil112/morning-brief/internal/cluster"
	"github.com/Saahil112/morning-brief/internal/config"
	"github.com/Saahil112/morning-brief/internal/digest"
	"github.com/Saahil112/morning-brief/internal/feeds"
	"github.com/Saahil112/morning-brief/internal/logger"
	"github.com/Saahil112/morning-brief/internal/metrics"
	"github.com/Saahil112/morning-brief/internal/ratelimit"
	"github.com/Saahil112/morning-brief/internal/render"
	"github.com/Saahil112/morning-brief/internal/report"
	"github.com/Saahil112/morning-brief/internal/story"
)

var (
	// ErrRunInProgress is returned when a trigger overlaps a running
	// pipeline; overlapping runs are rejected, not queued.
	ErrRunInProgress = errors.New("a pipeline run is already in progress")

	// ErrNoStories marks a run that completed with nothing fetched.
	ErrNoStories = errors.New("no stories fetched from any feed")
)

// FeedSource supplies entries for the configured feeds.
type FeedSource interface {
	FetchAll(ctx context.Context, sources []feeds.Source) feeds.Result
}

// Sender delivers the rendered digest and returns a delivery identifier.
type Sender interface {
	Send(ctx context.Context, subject, htmlBody string) (string, error)
}

// Deps wires the external collaborators into the pipeline.
type Deps struct {
	Sources []feeds.Source
	Fetcher FeedSource
	Oracle  classify.Oracle
	Sender  Sender
	Report  *report.Writer
	Now     func() time.Time
}

type App struct {
	cfg     *config.Config
	deps    Deps
	log     *slog.Logger
	running atomic.Bool
}

func New(cfg *config.Config, deps Deps) *App {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &App{cfg: cfg, deps: deps, log: logger.With("app")}
}

// RunReport is the outcome of one run, handed back to the trigger
// boundary in a single piece once the run is fully assembled.
type RunReport struct {
	Digest    *digest.Digest
	Subject   string
	MessageID string
	Stats     metrics.RunStats
}

// TryRun is the single-flight trigger boundary: a second trigger while
// a run is in flight gets ErrRunInProgress.
func (a *App) TryRun(ctx context.Context) (*RunReport, error) {
	if !a.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer a.running.Store(false)
	return a.RunOnce(ctx)
}

// RunOnce executes the full pipeline. All mutable run state lives in
// locals, so a cancelled or failed run leaves nothing behind. The only
// fatal outcome is cancellation; an empty fetch completes with an empty
// digest and ErrNoStories so the caller decides whether to alert.
func (a *App) RunOnce(ctx context.Context) (*RunReport, error) {
	t0 := a.deps.Now()

	a.log.Info("fetching feeds", "feeds", len(a.deps.Sources))
	fetched := a.deps.Fetcher.FetchAll(ctx, a.deps.Sources)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stories := make([]*story.Story, 0, len(fetched.Entries))
	for i, entry := range fetched.Entries {
		stories = append(stories, &story.Story{
			Entry:           entry,
			FetchIndex:      i,
			NormalizedTitle: story.Normalize(entry.Title),
			Trigger:         story.TriggerNone,
		})
	}

	clusters := cluster.Partition(stories, a.cfg.SimilarityCutoff, a.log)
	a.log.Info("clustered stories", "stories", len(stories), "clusters", len(clusters))

	classifier := &classify.Classifier{
		Oracle:          a.deps.Oracle,
		MacroThreshold:  a.cfg.MacroThreshold,
		Concurrency:     a.cfg.OracleConcurrency,
		Limiter:         ratelimit.NewOracleLimiter(a.cfg.MaxOracleCalls, a.log),
		SpecialKeywords: a.cfg.SpecialKeywords,
		Log:             a.log,
	}
	classified := classifier.Run(ctx, clusters)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	allocator := &digest.Allocator{
		Caps: digest.Caps{
			Headline:  a.cfg.HeadlineMax,
			Global:    a.cfg.GlobalMax,
			AITech:    a.cfg.AITechMax,
			Macro:     a.cfg.MacroMax,
			Merger:    a.cfg.MergerMax,
			Watchlist: a.cfg.WatchlistMax,
		},
		MaxWords: a.cfg.StoryMaxWords,
	}
	d := allocator.Allocate(classified.Representatives)

	now := a.deps.Now()
	rpt := &RunReport{
		Digest: d,
		Stats: metrics.RunStats{
			StoriesFetched:    len(fetched.Entries),
			StoriesConsidered: len(clusters),
			StoriesSelected:   d.TotalStories,
			SectionCounts:     d.SectionCounts(),
			OracleCalls:       classified.OracleCalls,
			OracleFailures:    classified.OracleFailures,
			FeedsOK:           fetched.FeedsOK,
			FeedsFailed:       fetched.FeedsFailed,
			ElapsedMS:         now.Sub(t0).Milliseconds(),
			CompletedAt:       now.UTC(),
		},
	}

	if len(fetched.Entries) == 0 {
		a.log.Error("no stories fetched, completing with empty digest",
			"feeds_failed", fetched.FeedsFailed)
		a.finish(rpt)
		return rpt, ErrNoStories
	}

	a.log.Info("selection complete",
		"fetched", rpt.Stats.StoriesFetched,
		"considered", rpt.Stats.StoriesConsidered,
		"selected", rpt.Stats.StoriesSelected,
		"oracle_calls", rpt.Stats.OracleCalls,
		"oracle_failures", rpt.Stats.OracleFailures)

	if d.TotalStories > 0 {
		renderer := &render.Renderer{Title: a.cfg.BriefTitle}
		subject, body := renderer.Render(d, now)
		rpt.Subject = subject

		if a.deps.Sender != nil {
			id, err := a.deps.Sender.Send(ctx, subject, body)
			if err != nil {
				metrics.Global.SetError(err.Error())
				a.finish(rpt)
				return rpt, err
			}
			rpt.MessageID = id
			metrics.Global.IncrementEmailsSent()
		}
	} else {
		a.log.Warn("no stories passed classification, skipping delivery")
	}

	a.finish(rpt)
	return rpt, nil
}

// finish records the run's stats and persists the report; the run's own
// outcome was decided before this point.
func (a *App) finish(rpt *RunReport) {
	metrics.Global.RecordRun(rpt.Stats)
	if a.deps.Report != nil {
		if err := a.deps.Report.Save(rpt.Stats); err != nil {
			a.log.Warn("failed to persist run report", "error", err)
		}
	}
}
