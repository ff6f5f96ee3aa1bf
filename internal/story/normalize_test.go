package story

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		title    string
		expected string
	}{
		{"lowercase", "Fed Raises Rates", "fed raises rates"},
		{"source tag", "Reuters: Fed raises rates", "fed raises rates"},
		{"stopwords", "BREAKING: Fed raises rates", "fed raises rates"},
		{"update prefix", "Update: markets rally on fed decision", "markets rally on fed decision"},
		{"punctuation", "Fed raises rates, markets rally!", "fed raises rates markets rally"},
		{"whitespace collapse", "  Fed   raises\trates ", "fed raises rates"},
		{"long colon prefix kept", "Why the central bank of a small country decided: a story", "why the central bank of a small country decided a story"},
		{"empty", "", ""},
		{"boilerplate only", "BREAKING", ""},
		{"unicode", "Økonomi: Danmark hæver renten", "danmark hæver renten"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.title); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.title, got, tt.expected)
			}
		})
	}
}

func TestNormalizeStable(t *testing.T) {
	title := "Reuters: ECB surprises markets, cuts rates by 50bps"
	first := Normalize(title)
	for i := 0; i < 5; i++ {
		if got := Normalize(title); got != first {
			t.Fatalf("Normalize not stable: %q vs %q", got, first)
		}
	}
}

func TestTokens(t *testing.T) {
	set := Tokens("fed raises rates fed")
	if len(set) != 3 {
		t.Fatalf("expected 3 distinct tokens, got %d", len(set))
	}
	for _, w := range []string{"fed", "raises", "rates"} {
		if _, ok := set[w]; !ok {
			t.Errorf("missing token %q", w)
		}
	}
}
