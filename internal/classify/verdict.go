package classify

import (
	"context"

	"github.com/Saahil112/morning-brief/internal/story"
)

// VerdictKind tags an oracle response at the boundary. The oracle's raw
// answer is loosely shaped; it is validated into exactly one of these
// on receipt.
type VerdictKind int

const (
	// NotRelevant is the zero value: the story does not belong in the
	// brief (also the fail-closed interpretation of a missing answer).
	NotRelevant VerdictKind = iota
	Relevant
	Failed
)

// Verdict is the validated relevance judgment for one story.
type Verdict struct {
	Kind    VerdictKind
	Section story.Section // set only when Kind == Relevant
	Tier    story.Tier    // set only when Kind == Relevant
	Reason  string
}

// Oracle judges a headline's importance and suggests a section. A
// returned error or a Failed verdict are both treated as "not relevant"
// by the classifier; they only differ in how they are counted.
type Oracle interface {
	Judge(ctx context.Context, title, summary string) (Verdict, error)
}
