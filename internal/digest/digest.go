// Package digest turns classified representatives into the final capped,
// ordered digest payload.
package digest

import (
	"sort"
	"strings"

	"github.com/Saahil112/morning-brief/internal/story"
)

// Caps holds the per-section story limits.
type Caps struct {
	Headline  int
	Global    int
	AITech    int
	Macro     int
	Merger    int
	Watchlist int
}

// DefaultCaps mirrors the production defaults: Headline 2, Global 4,
// AI & Tech 3, Macro 3, Merger 4, Watchlist 5.
func DefaultCaps() Caps {
	return Caps{Headline: 2, Global: 4, AITech: 3, Macro: 3, Merger: 4, Watchlist: 5}
}

func (c Caps) For(sec story.Section) int {
	switch sec {
	case story.SectionHeadline:
		return c.Headline
	case story.SectionGlobal:
		return c.Global
	case story.SectionAITech:
		return c.AITech
	case story.SectionMacro:
		return c.Macro
	case story.SectionMerger:
		return c.Merger
	case story.SectionWatchlist:
		return c.Watchlist
	}
	return 0
}

// Item is one rendered-ready story tuple.
type Item struct {
	Title    string
	Summary  string
	Link     string
	Source   string
	Reason   string
	Specials []string
}

// SectionBlock is a populated digest section in final order.
type SectionBlock struct {
	Section story.Section
	Label   string
	Items   []Item
}

// Digest is the single atomic handoff to the renderer. The headline
// section is absent when no top-tier story qualified; other sections
// appear in render order even when empty.
type Digest struct {
	Sections     []SectionBlock
	TotalStories int
}

// SectionCounts returns the final per-section story counts.
func (d *Digest) SectionCounts() map[string]int {
	counts := make(map[string]int, len(d.Sections))
	for _, b := range d.Sections {
		counts[string(b.Section)] = len(b.Items)
	}
	return counts
}

// Allocator applies section caps, intra-section ordering and summary
// truncation.
type Allocator struct {
	Caps     Caps
	MaxWords int
}

// Allocate builds the digest from the surviving representatives. Every
// story that makes the cut gets Included=true; overflow stories are
// demoted to Included=false but stay in the run's considered counts.
func (a *Allocator) Allocate(reps []*story.Story) *Digest {
	buckets := make(map[story.Section][]*story.Story)
	for _, s := range reps {
		sec := s.Section
		// Only top-tier stories may lead the brief; anything else the
		// oracle aimed at the headline slot lands in Global News.
		if sec == story.SectionHeadline && s.Tier != story.TierTop {
			sec = story.SectionGlobal
			s.Section = sec
		}
		buckets[sec] = append(buckets[sec], s)
	}

	d := &Digest{}
	for _, sec := range story.SectionOrder {
		stories := buckets[sec]
		rank(stories)

		limit := a.Caps.For(sec)
		for i, s := range stories {
			s.Included = i < limit
		}
		if len(stories) > limit {
			stories = stories[:limit]
		}

		if sec == story.SectionHeadline && len(stories) == 0 {
			continue // suppressed entirely, never emitted empty
		}

		block := SectionBlock{Section: sec, Label: sec.Label()}
		for _, s := range stories {
			block.Items = append(block.Items, Item{
				Title:    s.Entry.Title,
				Summary:  TruncateWords(s.Entry.Summary, a.MaxWords),
				Link:     s.Entry.Link,
				Source:   s.Entry.Source,
				Reason:   s.Reason,
				Specials: s.Specials,
			})
		}
		d.TotalStories += len(block.Items)
		d.Sections = append(d.Sections, block)
	}
	return d
}

// rank orders a section: importance tier first, then cross-feed
// corroboration, then original fetch order as the stable tie-break.
func rank(stories []*story.Story) {
	sort.SliceStable(stories, func(i, j int) bool {
		if stories[i].Tier != stories[j].Tier {
			return stories[i].Tier > stories[j].Tier
		}
		if stories[i].FeedCount != stories[j].FeedCount {
			return stories[i].FeedCount > stories[j].FeedCount
		}
		return stories[i].FetchIndex < stories[j].FetchIndex
	})
}

// TruncateWords cuts text to at most max words without splitting a word.
// Deterministic: the same input always yields the same output.
func TruncateWords(text string, max int) string {
	words := strings.Fields(text)
	if max <= 0 || len(words) <= max {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:max], " ")
}
