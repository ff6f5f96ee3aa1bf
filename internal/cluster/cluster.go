// Package cluster groups stories from different feeds into same-event
// clusters and counts how many distinct feeds corroborate each event.
package cluster

import (
	"log/slog"

	"github.com/Saahil112/morning-brief/internal/story"
)

// Cluster is a set of stories judged to report the same event. The
// representative is the earliest-fetched member; it is the only member
// that proceeds to classification.
type Cluster struct {
	ID      int
	Members []*story.Story

	tokens map[string]struct{} // representative's token set
	feeds  map[string]struct{} // distinct contributing feed identifiers
}

// Representative returns the earliest-fetched member.
func (c *Cluster) Representative() *story.Story {
	return c.Members[0]
}

// FeedCount returns the number of distinct feeds that reported the
// cluster's event. The same feed never counts twice.
func (c *Cluster) FeedCount() int {
	return len(c.feeds)
}

// Clusterer merges stories incrementally in fetch order. New stories
// are compared against cluster representatives only, not every prior
// story; clusters live in a slice so candidate order is stable.
type Clusterer struct {
	cutoff   float64
	clusters []*Cluster
	log      *slog.Logger
}

func New(cutoff float64, log *slog.Logger) *Clusterer {
	return &Clusterer{cutoff: cutoff, log: log}
}

// Add attaches s to the first cluster whose representative exceeds the
// similarity cutoff, or opens a new cluster. Stories with an empty
// normalized title are skipped: there is nothing to compare.
func (cl *Clusterer) Add(s *story.Story) bool {
	if s.NormalizedTitle == "" {
		if cl.log != nil {
			cl.log.Warn("skipping story with empty normalized title", "link", s.Entry.Link)
		}
		return false
	}

	tokens := story.Tokens(s.NormalizedTitle)
	for _, c := range cl.clusters {
		if jaccard(tokens, c.tokens) >= cl.cutoff {
			c.Members = append(c.Members, s)
			c.feeds[s.Entry.Source] = struct{}{}
			return true
		}
	}

	c := &Cluster{
		ID:      len(cl.clusters),
		Members: []*story.Story{s},
		tokens:  tokens,
		feeds:   map[string]struct{}{s.Entry.Source: {}},
	}
	cl.clusters = append(cl.clusters, c)
	return true
}

// Clusters freezes the partition: every member gets its cluster's ID
// and final contributing-feed count, and the clusters are returned in
// creation order.
func (cl *Clusterer) Clusters() []*Cluster {
	for _, c := range cl.clusters {
		for _, s := range c.Members {
			s.ClusterID = c.ID
			s.FeedCount = c.FeedCount()
		}
	}
	return cl.clusters
}

// Partition clusters a full fetch-ordered story sequence in one call.
func Partition(stories []*story.Story, cutoff float64, log *slog.Logger) []*Cluster {
	cl := New(cutoff, log)
	for _, s := range stories {
		cl.Add(s)
	}
	return cl.Clusters()
}

// jaccard computes token-set Jaccard similarity.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	inter := 0
	for t := range small {
		if _, ok := large[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	return float64(inter) / float64(union)
}
