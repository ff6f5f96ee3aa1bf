package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/Saahil112/morning-brief/internal/app"
	"github.com/Saahil112/morning-brief/internal/classify"
	"github.com/Saahil112/morning-brief/internal/config"
	"github.com/Saahil112/morning-brief/internal/feeds"
	"github.com/Saahil112/morning-brief/internal/gemini"
	"github.com/Saahil112/morning-brief/internal/logger"
	"github.com/Saahil112/morning-brief/internal/mailer"
	"github.com/Saahil112/morning-brief/internal/metrics"
	"github.com/Saahil112/morning-brief/internal/report"
	"github.com/Saahil112/morning-brief/internal/retry"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	ctx := context.Background()

	sources, err := feeds.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		log.Fatalf("Failed to load feeds config: %v", err)
	}

	var oracle classify.Oracle
	if cfg.GeminiAPIKey != "" {
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			log.Fatalf("Failed to create Gemini client: %v", err)
		}
		defer client.Close()
		oracle = client
	} else {
		logger.Warn("GEMINI_API_KEY not set, relying on the macro trigger only")
	}

	var sender app.Sender
	if cfg.MailConfigured() {
		m, err := mailer.New(ctx, mailer.Config{
			ClientID:     cfg.GmailClientID,
			ClientSecret: cfg.GmailClientSecret,
			RefreshToken: cfg.GmailRefreshToken,
			Sender:       cfg.GmailSender,
			Recipient:    cfg.GmailRecipient,
			Retry: retry.Config{
				MaxAttempts: cfg.RetryAttempts,
				Delay:       cfg.RetryDelay,
				Backoff:     true,
			},
		}, logger.With("mailer"))
		if err != nil {
			log.Fatalf("Failed to create Gmail mailer: %v", err)
		}
		sender = m
	} else {
		logger.Warn("Gmail settings incomplete, digest will not be delivered")
	}

	reportWriter := report.NewWriter(cfg.ReportFilePath)
	if stats, ok, err := reportWriter.Load(); err != nil {
		logger.Warn("Could not load previous run report", "error", err)
	} else if ok {
		metrics.Global.RecordRun(stats)
	}

	pipeline := app.New(cfg, app.Deps{
		Sources: sources,
		Fetcher: &feeds.Fetcher{
			MaxAge:      cfg.NewsMaxAge,
			Concurrency: cfg.FetchConcurrency,
			Timeout:     cfg.RequestTimeout,
			Log:         logger.With("feeds"),
		},
		Oracle: oracle,
		Sender: sender,
		Report: reportWriter,
	})

	if os.Getenv("MODE") == "serve" {
		serve(pipeline)
		return
	}

	runCtx, cancel := context.WithTimeout(ctx, 10*time.Minute)
	defer cancel()

	rpt, err := pipeline.RunOnce(runCtx)
	if err != nil {
		log.Fatalf("Pipeline run failed: %v", err)
	}
	logger.Info("run complete",
		"selected", rpt.Stats.StoriesSelected,
		"message_id", rpt.MessageID)
}

func serve(pipeline *app.App) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)
	http.HandleFunc("/trigger", triggerHandler(pipeline))

	log.Printf("Starting server on port %s", port)
	if err := http.ListenAndServe(":"+port, nil); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	status := "ok"
	if !stats["is_healthy"].(bool) {
		status = "error"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	response := map[string]interface{}{
		"status":     status,
		"last_run":   stats["last_run_time"],
		"last_error": stats["last_error"],
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func metricsHandler(w http.ResponseWriter, r *http.Request) {
	stats := metrics.Global.GetStats()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(stats)
}

func triggerHandler(pipeline *app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Minute)
		defer cancel()

		rpt, err := pipeline.TryRun(ctx)
		switch {
		case errors.Is(err, app.ErrRunInProgress):
			http.Error(w, err.Error(), http.StatusConflict)
			return
		case errors.Is(err, app.ErrNoStories):
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"stories_fetched":  rpt.Stats.StoriesFetched,
			"stories_selected": rpt.Stats.StoriesSelected,
			"sections":         rpt.Stats.SectionCounts,
			"email_message_id": rpt.MessageID,
			"elapsed_ms":       rpt.Stats.ElapsedMS,
		})
	}
}
