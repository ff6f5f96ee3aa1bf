package story

import (
	"strings"
	"unicode"
)

// Stopwords that feeds prepend to headlines without changing which event
// the headline reports.
var stopwords = map[string]struct{}{
	"breaking":  {},
	"update":    {},
	"updated":   {},
	"live":      {},
	"exclusive": {},
	"just":      {},
	"in":        {},
}

// Normalize canonicalizes a headline for clustering: drops a leading
// source tag ("Reuters: ..."), lowercases, strips punctuation, removes
// stopwords and collapses whitespace. Pure and deterministic; an empty
// or boilerplate-only title normalizes to "".
func Normalize(title string) string {
	title = stripSourceTag(strings.TrimSpace(title))
	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}

	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if _, skip := stopwords[w]; skip {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}

// Tokens returns the distinct-token set of a normalized title.
func Tokens(normalized string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(normalized) {
		set[w] = struct{}{}
	}
	return set
}

// stripSourceTag removes a short "Source:" prefix. Only prefixes of up
// to three words before the first colon are treated as a source tag, so
// headlines that legitimately contain a colon further in stay intact.
func stripSourceTag(title string) string {
	idx := strings.Index(title, ":")
	if idx <= 0 || idx >= len(title)-1 {
		return title
	}
	prefix := title[:idx]
	if len(strings.Fields(prefix)) > 3 {
		return title
	}
	return strings.TrimSpace(title[idx+1:])
}
