// Package story defines the pipeline's data model: raw feed entries and
// the Story records derived from them as they move through clustering,
// classification and section allocation.
package story

import "time"

// FeedEntry is a raw item as delivered by a feed. Immutable once fetched.
type FeedEntry struct {
	Title     string
	Summary   string
	Link      string
	Source    string // source feed identifier
	Published time.Time
}

// Section is one of the six fixed digest section tags.
type Section string

const (
	SectionHeadline  Section = "headline"
	SectionGlobal    Section = "global_news"
	SectionAITech    Section = "ai_tech"
	SectionMacro     Section = "macro_markets"
	SectionMerger    Section = "merger_news"
	SectionWatchlist Section = "watchlist"
)

// SectionOrder is the digest render order.
var SectionOrder = []Section{
	SectionHeadline,
	SectionGlobal,
	SectionAITech,
	SectionMacro,
	SectionMerger,
	SectionWatchlist,
}

var sectionLabels = map[Section]string{
	SectionHeadline:  "Headline",
	SectionGlobal:    "Global News",
	SectionAITech:    "AI & Technology",
	SectionMacro:     "Macro & Markets",
	SectionMerger:    "Merger News",
	SectionWatchlist: "Watchlist",
}

// Label returns the human-readable section name.
func (s Section) Label() string {
	if l, ok := sectionLabels[s]; ok {
		return l
	}
	return string(s)
}

// Valid reports whether s is one of the six known section tags.
func (s Section) Valid() bool {
	_, ok := sectionLabels[s]
	return ok
}

// Tier is the importance tier assigned by the relevance oracle.
// Only TierTop stories may appear in the Headline section.
type Tier int

const (
	TierDefault Tier = iota
	TierNotable
	TierTop
)

func (t Tier) String() string {
	switch t {
	case TierTop:
		return "top"
	case TierNotable:
		return "notable"
	default:
		return "default"
	}
}

// Trigger records which inclusion rule surfaced a story.
type Trigger string

const (
	TriggerNone  Trigger = "NONE"
	TriggerLLM   Trigger = "LLM"
	TriggerMacro Trigger = "MACRO_THRESHOLD"
)

// Story is a FeedEntry enriched by the pipeline. A Story belongs to
// exactly one run; fields are written stage by stage and frozen after
// allocation.
type Story struct {
	Entry      FeedEntry
	FetchIndex int // position in the run's overall fetch order

	// Set by the normalizer.
	NormalizedTitle string

	// Set by the clusterer.
	ClusterID int
	FeedCount int // distinct contributing feeds in the story's cluster

	// Set by the classifier.
	Relevant bool
	Section  Section
	Tier     Tier
	Reason   string // oracle's one-sentence justification, if any
	Specials []string
	Trigger  Trigger

	// Set by the section allocator.
	Included bool
}
