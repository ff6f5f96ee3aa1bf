// Package classify applies the dual-trigger inclusion rule: a cluster
// representative survives if the relevance oracle marks it relevant OR
// enough distinct feeds corroborate its event.
package classify

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Saahil112/morning-brief/internal/cluster"
	"github.com/Saahil112/morning-brief/internal/ratelimit"
	"github.com/Saahil112/morning-brief/internal/story"
)

type Classifier struct {
	Oracle          Oracle
	MacroThreshold  int
	Concurrency     int
	Limiter         *ratelimit.OracleLimiter
	SpecialKeywords []string
	Log             *slog.Logger
}

// Result carries the surviving representatives in fetch order plus the
// run-level oracle accounting.
type Result struct {
	Representatives []*story.Story
	OracleCalls     int
	OracleFailures  int
}

// Run classifies every cluster. Oracle calls go out concurrently under
// the configured cap and are joined back by cluster position, so the
// outcome does not depend on call completion order. Oracle failures are
// fail-closed: the macro trigger alone can still include the story.
func (c *Classifier) Run(ctx context.Context, clusters []*cluster.Cluster) Result {
	verdicts := make([]Verdict, len(clusters))
	called := make([]bool, len(clusters))

	if c.Oracle != nil {
		limit := c.Concurrency
		if limit < 1 {
			limit = 1
		}
		var mu sync.Mutex
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(limit)

		for i, cl := range clusters {
			i, cl := i, cl
			g.Go(func() error {
				if c.Limiter != nil && !c.Limiter.Allow() {
					return nil
				}
				rep := cl.Representative()
				v, err := c.Oracle.Judge(gctx, rep.Entry.Title, rep.Entry.Summary)
				if err != nil {
					if c.Log != nil {
						c.Log.Warn("oracle call failed", "title", rep.Entry.Title, "error", err)
					}
					v = Verdict{Kind: Failed}
				}
				mu.Lock()
				verdicts[i] = v
				called[i] = true
				mu.Unlock()
				return nil
			})
		}
		g.Wait()
	}

	var res Result
	for i, cl := range clusters {
		if called[i] {
			res.OracleCalls++
			if verdicts[i].Kind == Failed {
				res.OracleFailures++
			}
		}
		if rep := c.decide(cl, verdicts[i]); rep != nil {
			res.Representatives = append(res.Representatives, rep)
		}
	}
	return res
}

// decide evaluates both triggers for one cluster and writes the verdict
// onto the representative; all other members inherit it. Returns the
// representative when either trigger fired.
func (c *Classifier) decide(cl *cluster.Cluster, v Verdict) *story.Story {
	rep := cl.Representative()

	llm := v.Kind == Relevant
	macro := cl.FeedCount() >= c.MacroThreshold

	if !llm && !macro {
		for _, m := range cl.Members {
			m.Trigger = story.TriggerNone
		}
		return nil
	}

	// LLM attribution wins when both triggers fire; the story's survival
	// does not depend on which path ran first.
	rep.Trigger = story.TriggerMacro
	rep.Section = story.SectionMacro
	if llm {
		rep.Trigger = story.TriggerLLM
		rep.Relevant = true
		rep.Section = v.Section
		rep.Tier = v.Tier
		rep.Reason = v.Reason
	}

	rep.Specials = c.detectSpecials(rep.Entry.Title + " " + rep.Entry.Summary)
	if len(rep.Specials) > 0 &&
		rep.Section != story.SectionHeadline && rep.Section != story.SectionMerger {
		rep.Section = story.SectionMerger
	}

	for _, m := range cl.Members[1:] {
		m.Relevant = rep.Relevant
		m.Section = rep.Section
		m.Tier = rep.Tier
		m.Reason = rep.Reason
		m.Trigger = rep.Trigger
	}
	return rep
}

// detectSpecials returns the special-situation keywords matching the
// story text. Short keywords match whole words only, so "ipo" does not
// fire inside unrelated words.
func (c *Classifier) detectSpecials(text string) []string {
	text = strings.ToLower(text)
	var hits []string
	for _, kw := range c.SpecialKeywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw == "" {
			continue
		}
		if len(kw) <= 4 && !strings.Contains(kw, " ") {
			re := regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
			if re.MatchString(text) {
				hits = append(hits, kw)
			}
			continue
		}
		if strings.Contains(text, kw) {
			hits = append(hits, kw)
		}
	}
	return hits
}
