package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}

	if cfg.MacroThreshold != 3 {
		t.Errorf("MacroThreshold = %d, want 3", cfg.MacroThreshold)
	}
	if cfg.SimilarityCutoff != 0.6 {
		t.Errorf("SimilarityCutoff = %v, want 0.6", cfg.SimilarityCutoff)
	}
	if cfg.HeadlineMax != 2 || cfg.GlobalMax != 4 || cfg.AITechMax != 3 ||
		cfg.MacroMax != 3 || cfg.MergerMax != 4 || cfg.WatchlistMax != 5 {
		t.Errorf("unexpected default section caps: %+v", cfg)
	}
	if cfg.StoryMaxWords != 300 {
		t.Errorf("StoryMaxWords = %d, want 300", cfg.StoryMaxWords)
	}
	if cfg.NewsMaxAge != 24*time.Hour {
		t.Errorf("NewsMaxAge = %v, want 24h", cfg.NewsMaxAge)
	}
	if len(cfg.SpecialKeywords) == 0 {
		t.Error("default special-situation keywords missing")
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("MACRO_HEADLINE_THRESHOLD", "5")
	t.Setenv("SEC_HEADLINE_MAX", "1")
	t.Setenv("SIMILARITY_CUTOFF", "0.8")
	t.Setenv("STORY_MAX_WORDS", "120")
	t.Setenv("SPECIAL_SITUATIONS_KEYWORDS", "Demerger, SPAC ")

	cfg, err := Load()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.MacroThreshold != 5 {
		t.Errorf("MacroThreshold = %d, want 5", cfg.MacroThreshold)
	}
	if cfg.HeadlineMax != 1 {
		t.Errorf("HeadlineMax = %d, want 1", cfg.HeadlineMax)
	}
	if cfg.SimilarityCutoff != 0.8 {
		t.Errorf("SimilarityCutoff = %v, want 0.8", cfg.SimilarityCutoff)
	}
	if cfg.StoryMaxWords != 120 {
		t.Errorf("StoryMaxWords = %d, want 120", cfg.StoryMaxWords)
	}
	want := []string{"demerger", "spac"}
	if len(cfg.SpecialKeywords) != 2 || cfg.SpecialKeywords[0] != want[0] || cfg.SpecialKeywords[1] != want[1] {
		t.Errorf("SpecialKeywords = %v, want %v", cfg.SpecialKeywords, want)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero macro threshold", func(c *Config) { c.MacroThreshold = 0 }},
		{"cutoff above one", func(c *Config) { c.SimilarityCutoff = 1.5 }},
		{"zero cutoff", func(c *Config) { c.SimilarityCutoff = 0 }},
		{"zero word cap", func(c *Config) { c.StoryMaxWords = 0 }},
		{"negative section cap", func(c *Config) { c.GlobalMax = -1 }},
		{"zero oracle concurrency", func(c *Config) { c.OracleConcurrency = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load()
			if err != nil {
				t.Fatal(err)
			}
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestMailConfigured(t *testing.T) {
	cfg := &Config{}
	if cfg.MailConfigured() {
		t.Error("empty Gmail settings must not count as configured")
	}

	cfg.GmailClientID = "id"
	cfg.GmailClientSecret = "secret"
	cfg.GmailRefreshToken = "token"
	cfg.GmailSender = "a@b.test"
	cfg.GmailRecipient = "c@d.test"
	if !cfg.MailConfigured() {
		t.Error("complete Gmail settings should count as configured")
	}
}
