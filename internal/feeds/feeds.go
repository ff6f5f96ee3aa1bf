// Package feeds loads the configured feed list and fetches entries from
// every feed with a bounded concurrent fan-out.
package feeds

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/Saahil112/morning-brief/internal/story"
)

// Source is one configured feed URL with its topic group.
type Source struct {
	URL   string
	Topic string
}

// feedsFile is the YAML config structure:
//
//	global:
//	  - https://...
//	ai_tech:
//	  - https://...
type feedsFile struct {
	Global []string `yaml:"global"`
	AITech []string `yaml:"ai_tech"`
	Macro  []string `yaml:"macro"`
	Merger []string `yaml:"merger"`
}

// LoadSources reads the feed list from a YAML file. Topic groups are
// flattened in a fixed order so the fetch order is reproducible.
func LoadSources(path string) ([]Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg feedsFile
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse feeds config: %w", err)
	}

	var sources []Source
	for _, group := range []struct {
		topic string
		urls  []string
	}{
		{"global", cfg.Global},
		{"ai_tech", cfg.AITech},
		{"macro", cfg.Macro},
		{"merger", cfg.Merger},
	} {
		for _, u := range group.urls {
			sources = append(sources, Source{URL: u, Topic: group.topic})
		}
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("feeds config %s contains no feeds", path)
	}
	return sources, nil
}

// Result is one fetch pass across every configured feed.
type Result struct {
	Entries     []story.FeedEntry
	FeedsOK     int
	FeedsFailed int
}

type Fetcher struct {
	MaxAge      time.Duration
	Concurrency int
	Timeout     time.Duration
	Log         *slog.Logger
}

// FetchAll fetches every source concurrently. Per-feed failures are
// tolerated and counted, never fatal. Results are joined in source
// order with per-feed entry order preserved, so the overall entry
// sequence is deterministic regardless of which fetch finished first.
func (f *Fetcher) FetchAll(ctx context.Context, sources []Source) Result {
	perFeed := make([][]story.FeedEntry, len(sources))
	failed := make([]bool, len(sources))

	limit := f.Concurrency
	if limit < 1 {
		limit = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	cutoff := time.Now().UTC().Add(-f.MaxAge)

	for i, src := range sources {
		i, src := i, src
		g.Go(func() error {
			fctx := gctx
			if f.Timeout > 0 {
				var cancel context.CancelFunc
				fctx, cancel = context.WithTimeout(gctx, f.Timeout)
				defer cancel()
			}

			parser := gofeed.NewParser()
			feed, err := parser.ParseURLWithContext(src.URL, fctx)
			if err != nil {
				failed[i] = true
				if f.Log != nil {
					f.Log.Warn("feed fetch failed", "url", src.URL, "error", err)
				}
				return nil
			}

			sourceName := feed.Title
			if sourceName == "" {
				sourceName = src.URL
			}

			var entries []story.FeedEntry
			for _, item := range feed.Items {
				published, ok := publishedAt(item)
				if !ok || published.Before(cutoff) {
					continue
				}
				entries = append(entries, story.FeedEntry{
					Title:     item.Title,
					Summary:   story.StripHTML(item.Description),
					Link:      item.Link,
					Source:    sourceName,
					Published: published,
				})
			}
			perFeed[i] = entries
			if f.Log != nil {
				f.Log.Debug("feed fetched", "url", src.URL, "entries", len(entries))
			}
			return nil
		})
	}
	g.Wait()

	var res Result
	for i := range sources {
		if failed[i] {
			res.FeedsFailed++
			continue
		}
		res.FeedsOK++
		res.Entries = append(res.Entries, perFeed[i]...)
	}
	return res
}

// publishedAt picks the entry timestamp; entries without a parseable
// date are excluded from the run.
func publishedAt(item *gofeed.Item) (time.Time, bool) {
	if item.PublishedParsed != nil {
		return item.PublishedParsed.UTC(), true
	}
	if item.UpdatedParsed != nil {
		return item.UpdatedParsed.UTC(), true
	}
	return time.Time{}, false
}
