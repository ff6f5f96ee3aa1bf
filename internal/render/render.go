// Package render turns a digest payload into the morning brief email.
package render

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/Saahil112/morning-brief/internal/digest"
	"github.com/Saahil112/morning-brief/internal/story"
)

var sectionColors = map[story.Section]string{
	story.SectionHeadline:  "#c62828",
	story.SectionGlobal:    "#1565c0",
	story.SectionAITech:    "#6a1b9a",
	story.SectionMacro:     "#2e7d32",
	story.SectionMerger:    "#e65100",
	story.SectionWatchlist: "#37474f",
}

type Renderer struct {
	Title string
}

// Render produces the email subject and HTML body. Empty sections are
// skipped; the watchlist renders as short forward-looking bullets while
// every other section renders as numbered story rows.
func (r *Renderer) Render(d *digest.Digest, now time.Time) (string, string) {
	today := now.UTC().Format("Monday, January 02, 2006")
	subject := fmt.Sprintf("%s // %s", r.Title, today)

	var sections strings.Builder
	counter := 0

	for _, block := range d.Sections {
		if len(block.Items) == 0 {
			continue
		}
		color := sectionColors[block.Section]
		sections.WriteString(fmt.Sprintf(
			`<h3 style="color:%s; margin:28px 0 10px; border-bottom:1px solid %s; padding-bottom:4px;">%s</h3>`,
			color, color, html.EscapeString(block.Label)))

		if block.Section == story.SectionWatchlist {
			sections.WriteString(`<ul style="padding-left:20px;">`)
			for _, item := range block.Items {
				sections.WriteString(watchlistBullet(item))
			}
			sections.WriteString(`</ul>`)
			continue
		}

		sections.WriteString(`<table style="width:100%; border-collapse:collapse;">`)
		for _, item := range block.Items {
			counter++
			sections.WriteString(storyRow(counter, item))
		}
		sections.WriteString(`</table>`)
	}

	body := fmt.Sprintf(`<html>
<body style="font-family: 'Helvetica Neue', Arial, sans-serif; max-width:700px; margin:auto; padding:24px; background:#fafafa;">
  <div style="background:#fff; border-radius:8px; padding:24px; border:1px solid #e0e0e0;">
    <h2 style="margin:0 0 4px; color:#111;">%s</h2>
    <p style="color:#888; font-size:13px; margin:0 0 20px;">%s // %d stories</p>
    %s
    <p style="font-size:11px; color:#bbb; margin-top:36px; text-align:center;">Generated automatically // RSS selection pipeline</p>
  </div>
</body>
</html>`, html.EscapeString(r.Title), today, d.TotalStories, sections.String())

	return subject, body
}

func storyRow(idx int, item digest.Item) string {
	specialTag := ""
	if len(item.Specials) > 0 {
		specialTag = fmt.Sprintf(
			`<span style="display:inline-block; margin-left:6px; font-size:11px; background:#fff3e0; color:#e65100; padding:1px 6px; border-radius:3px;">%s</span>`,
			html.EscapeString(strings.Join(item.Specials, ", ")))
	}
	return fmt.Sprintf(`
<tr>
  <td style="padding:10px 14px; border-bottom:1px solid #eee;">
    <strong style="font-size:15px;"><a href="%s" style="color:#1a73e8; text-decoration:none;">%d. %s</a></strong>%s<br/>
    <span style="font-size:12px; color:#999;">%s</span>
    <p style="margin:6px 0 2px; font-size:14px; color:#222; line-height:1.5;">%s</p>
  </td>
</tr>`,
		html.EscapeString(item.Link), idx, html.EscapeString(item.Title), specialTag,
		html.EscapeString(item.Source), html.EscapeString(item.Summary))
}

func watchlistBullet(item digest.Item) string {
	note := item.Reason
	if note == "" {
		note = item.Summary
	}
	return fmt.Sprintf(
		`<li style="margin-bottom:6px; font-size:14px; color:#222;"><a href="%s" style="color:#1a73e8; text-decoration:none;">%s</a><br/><span style="color:#555;">%s</span></li>`,
		html.EscapeString(item.Link), html.EscapeString(item.Title), html.EscapeString(note))
}
