// Package config loads all pipeline tunables from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey    string
	GeminiModel     string
	MaxOracleCalls  int // maximum oracle requests per run (0 = unlimited)
	OracleConcurrency int

	// Gmail settings
	GmailClientID     string
	GmailClientSecret string
	GmailRefreshToken string
	GmailSender       string
	GmailRecipient    string

	// Feed settings
	FeedsConfigPath  string
	NewsMaxAge       time.Duration
	FetchConcurrency int

	// Selection settings
	MacroThreshold   int     // distinct feeds required for auto-inclusion
	SimilarityCutoff float64 // token-set Jaccard cutoff for same-event clustering
	SpecialKeywords  []string

	// Section caps
	HeadlineMax  int
	GlobalMax    int
	AITechMax    int
	MacroMax     int
	MergerMax    int
	WatchlistMax int

	// Digest settings
	StoryMaxWords int
	BriefTitle    string

	// App settings
	Debug          bool
	RequestTimeout time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	ReportFilePath string
}

var defaultSpecialKeywords = []string{
	"takeover", "demerger", "split", "reverse split", "hiving off",
	"activist investor", "merger", "acquisition", "ipo", "spac",
	"spin-off", "spinoff", "carve-out", "carveout", "restructuring",
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		GeminiModel:       "gemini-1.5-flash",
		MaxOracleCalls:    0,
		OracleConcurrency: 4,
		FeedsConfigPath:   "configs/feeds.yaml",
		NewsMaxAge:        24 * time.Hour,
		FetchConcurrency:  6,
		MacroThreshold:    3,
		SimilarityCutoff:  0.6,
		HeadlineMax:       2,
		GlobalMax:         4,
		AITechMax:         3,
		MacroMax:          3,
		MergerMax:         4,
		WatchlistMax:      5,
		StoryMaxWords:     300,
		BriefTitle:        "Morning Brief",
		RequestTimeout:    30 * time.Second,
		RetryAttempts:     3,
		RetryDelay:        5 * time.Second,
		ReportFilePath:    "last_run.json",
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GmailClientID = os.Getenv("GMAIL_CLIENT_ID")
	cfg.GmailClientSecret = os.Getenv("GMAIL_CLIENT_SECRET")
	cfg.GmailRefreshToken = os.Getenv("GMAIL_REFRESH_TOKEN")
	cfg.GmailSender = os.Getenv("GMAIL_SENDER")
	cfg.GmailRecipient = os.Getenv("GMAIL_RECIPIENT")

	cfg.GeminiModel = getEnvOrDefault("GEMINI_MODEL", cfg.GeminiModel)
	cfg.FeedsConfigPath = getEnvOrDefault("FEEDS_CONFIG_PATH", cfg.FeedsConfigPath)
	cfg.BriefTitle = getEnvOrDefault("BRIEF_TITLE", cfg.BriefTitle)
	cfg.ReportFilePath = getEnvOrDefault("REPORT_FILE_PATH", cfg.ReportFilePath)

	cfg.MaxOracleCalls = getEnvIntOrDefault("MAX_ORACLE_CALLS", cfg.MaxOracleCalls)
	cfg.OracleConcurrency = getEnvIntOrDefault("ORACLE_CONCURRENCY", cfg.OracleConcurrency)
	cfg.FetchConcurrency = getEnvIntOrDefault("FETCH_CONCURRENCY", cfg.FetchConcurrency)
	cfg.MacroThreshold = getEnvIntOrDefault("MACRO_HEADLINE_THRESHOLD", cfg.MacroThreshold)
	cfg.StoryMaxWords = getEnvIntOrDefault("STORY_MAX_WORDS", cfg.StoryMaxWords)

	cfg.HeadlineMax = getEnvIntOrDefault("SEC_HEADLINE_MAX", cfg.HeadlineMax)
	cfg.GlobalMax = getEnvIntOrDefault("SEC_GLOBAL_MAX", cfg.GlobalMax)
	cfg.AITechMax = getEnvIntOrDefault("SEC_AI_TECH_MAX", cfg.AITechMax)
	cfg.MacroMax = getEnvIntOrDefault("SEC_MACRO_MAX", cfg.MacroMax)
	cfg.MergerMax = getEnvIntOrDefault("SEC_MERGER_MAX", cfg.MergerMax)
	cfg.WatchlistMax = getEnvIntOrDefault("SEC_WATCHLIST_MAX", cfg.WatchlistMax)

	if v := os.Getenv("SIMILARITY_CUTOFF"); v != "" {
		if val, err := strconv.ParseFloat(v, 64); err == nil && val > 0 && val <= 1 {
			cfg.SimilarityCutoff = val
		}
	}

	if v := os.Getenv("NEWS_MAX_AGE_HOURS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.NewsMaxAge = time.Duration(val) * time.Hour
		}
	}

	cfg.SpecialKeywords = defaultSpecialKeywords
	if v := os.Getenv("SPECIAL_SITUATIONS_KEYWORDS"); v != "" {
		var kws []string
		for _, kw := range strings.Split(v, ",") {
			if kw = strings.TrimSpace(kw); kw != "" {
				kws = append(kws, strings.ToLower(kw))
			}
		}
		cfg.SpecialKeywords = kws
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.MacroThreshold < 1 {
		return fmt.Errorf("MACRO_HEADLINE_THRESHOLD must be >= 1, got %d", c.MacroThreshold)
	}
	if c.SimilarityCutoff <= 0 || c.SimilarityCutoff > 1 {
		return fmt.Errorf("SIMILARITY_CUTOFF must be in (0, 1], got %v", c.SimilarityCutoff)
	}
	if c.StoryMaxWords < 1 {
		return fmt.Errorf("STORY_MAX_WORDS must be >= 1, got %d", c.StoryMaxWords)
	}
	for name, limit := range map[string]int{
		"SEC_HEADLINE_MAX":  c.HeadlineMax,
		"SEC_GLOBAL_MAX":    c.GlobalMax,
		"SEC_AI_TECH_MAX":   c.AITechMax,
		"SEC_MACRO_MAX":     c.MacroMax,
		"SEC_MERGER_MAX":    c.MergerMax,
		"SEC_WATCHLIST_MAX": c.WatchlistMax,
	} {
		if limit < 0 {
			return fmt.Errorf("%s must not be negative", name)
		}
	}
	if c.OracleConcurrency < 1 {
		return fmt.Errorf("ORACLE_CONCURRENCY must be >= 1, got %d", c.OracleConcurrency)
	}
	if c.FetchConcurrency < 1 {
		return fmt.Errorf("FETCH_CONCURRENCY must be >= 1, got %d", c.FetchConcurrency)
	}
	return nil
}

// MailConfigured reports whether all Gmail delivery settings are present.
func (c *Config) MailConfigured() bool {
	return c.GmailClientID != "" && c.GmailClientSecret != "" &&
		c.GmailRefreshToken != "" && c.GmailSender != "" && c.GmailRecipient != ""
}
