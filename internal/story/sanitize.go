package story

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// StripHTML flattens a feed summary to plain text. Many feeds pack
// markup, images and tracking pixels into the description element; only
// the text matters for classification and the digest.
func StripHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" || !strings.ContainsRune(s, '<') {
		return collapseWhitespace(s)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return collapseWhitespace(s)
	}
	return collapseWhitespace(doc.Text())
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
