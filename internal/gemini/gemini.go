// Package gemini implements the relevance oracle on top of the Gemini
// generative API.
package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/Saahil112/morning-brief/internal/classify"
	"github.com/Saahil112/morning-brief/internal/story"
)

type Client struct {
	client *genai.Client
	model  string
}

func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &Client{client: client, model: model}, nil
}

func (c *Client) Close() {
	if c.client != nil {
		c.client.Close()
	}
}

const promptTemplate = `You are a senior news-desk editor building a morning brief.
Judge ONE headline.

HEADLINE: %s
SUMMARY: %s

Decide whether it belongs in the brief and which section it belongs to.
Sections (use these exact keys):
  headline       - ONLY truly major events: market-moving macro shock,
                   major geopolitical escalation, large unexpected policy
                   move, $50B+ M&A, systemic risk event.
  global_news    - breaking world events, treaties, trade agreements,
                   geopolitical developments.
  ai_tech        - AI model releases, big tech moves, regulation,
                   strategic pivots, infrastructure plays.
  macro_markets  - central bank moves, GDP, inflation, bond/equity
                   shifts, commodities, FX.
  merger_news    - ONLY structurally interesting special situations:
                   demergers, spin-offs, carve-outs, activist campaigns,
                   SPACs. NOT generic acquisitions.
  watchlist      - forward-looking items worth monitoring.

Respond with EXACTLY four lines, no markdown:
RELEVANT: yes|no
SECTION: <section key>
TIER: top|notable|default
REASON: <one sentence>

Be strict. No fluff.`

// Judge asks the model for a relevance verdict on a single headline.
// The summary is truncated before prompting to keep requests small.
func (c *Client) Judge(ctx context.Context, title, summary string) (classify.Verdict, error) {
	model := c.client.GenerativeModel(c.model)

	summary = strings.Join(strings.Fields(summary), " ")
	maxChars := 1500
	if utf8.RuneCountInString(summary) > maxChars {
		runes := []rune(summary)
		summary = string(runes[:maxChars])
	}

	prompt := fmt.Sprintf(promptTemplate, title, summary)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return classify.Verdict{Kind: classify.Failed}, fmt.Errorf("failed to generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || len(resp.Candidates[0].Content.Parts) == 0 {
		return classify.Verdict{Kind: classify.Failed}, fmt.Errorf("no response from Gemini")
	}

	raw := fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])
	return ParseVerdict(raw)
}

var labelRe = regexp.MustCompile(`(?i)^(RELEVANT|SECTION|TIER|REASON)\s*:\s*(.*)$`)

// ParseVerdict validates the model's loose line format into a tagged
// verdict. A response missing the RELEVANT line is a failure; an unknown
// section on a relevant story falls back to global_news.
func ParseVerdict(raw string) (classify.Verdict, error) {
	fields := map[string]string{}
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(strings.Trim(strings.TrimSpace(line), "`"))
		m := labelRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key := strings.ToUpper(m[1])
		if _, seen := fields[key]; !seen {
			fields[key] = strings.TrimSpace(m[2])
		}
	}

	rel, ok := fields["RELEVANT"]
	if !ok {
		return classify.Verdict{Kind: classify.Failed}, fmt.Errorf("could not parse oracle response: missing RELEVANT line")
	}

	switch strings.ToLower(rel) {
	case "no", "false":
		return classify.Verdict{Kind: classify.NotRelevant, Reason: fields["REASON"]}, nil
	case "yes", "true":
	default:
		return classify.Verdict{Kind: classify.Failed}, fmt.Errorf("could not parse oracle response: RELEVANT=%q", rel)
	}

	section := story.Section(strings.ToLower(fields["SECTION"]))
	if !section.Valid() {
		section = story.SectionGlobal
	}

	tier := story.TierDefault
	switch strings.ToLower(fields["TIER"]) {
	case "top":
		tier = story.TierTop
	case "notable":
		tier = story.TierNotable
	}
	// The headline section is defined as top-tier only.
	if section == story.SectionHeadline {
		tier = story.TierTop
	}

	return classify.Verdict{
		Kind:    classify.Relevant,
		Section: section,
		Tier:    tier,
		Reason:  fields["REASON"],
	}, nil
}
