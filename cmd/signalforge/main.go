package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/signalforge/signalforge/internal/cache"
	"github.com/signalforge/signalforge/internal/collector"
	"github.com/signalforge/signalforge/internal/config"
	"github.com/signalforge/signalforge/internal/gemini"
	"github.com/signalforge/signalforge/internal/insight"
	"github.com/signalforge/signalforge/internal/keywords"
	"github.com/signalforge/signalforge/internal/logger"
	"github.com/signalforge/signalforge/internal/metrics"
	"github.com/signalforge/signalforge/internal/openai"
	"github.com/signalforge/signalforge/internal/ratelimit"
	"github.com/signalforge/signalforge/internal/report"
	"github.com/signalforge/signalforge/internal/retry"
	"github.com/signalforge/signalforge/internal/search"
	"github.com/signalforge/signalforge/internal/server"
	"github.com/signalforge/signalforge/internal/storage"
	"github.com/signalforge/signalforge/internal/trend"
)

func main() {
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	store, err := storage.NewSnapshotStore(cfg.DataDir)
	if err != nil {
		logger.Error("Failed to open snapshot store", "error", err)
		os.Exit(1)
	}

	cmd := "serve"
	if len(os.Args) > 1 {
		cmd = os.Args[1]
	}

	switch cmd {
	case "collect":
		runCollect(cfg, store)
	case "serve":
		runServe(cfg, store)
	default:
		logger.Error("Unknown command, expected 'serve' or 'collect'", "command", cmd)
		os.Exit(1)
	}
}

// runCollect captures one snapshot tick and exits. Meant for cron.
func runCollect(cfg *config.Config, store *storage.SnapshotStore) {
	sources, err := collector.LoadSources(cfg.FeedsConfigPath)
	if err != nil {
		logger.Error("Failed to load sources", "path", cfg.FeedsConfigPath, "error", err)
		os.Exit(1)
	}

	c := collector.New(sources, store, cfg.RequestTimeout, retry.RetryConfig{
		MaxAttempts: cfg.RetryAttempts,
		Delay:       cfg.RetryDelay,
		Backoff:     true,
	})
	set, err := c.Collect(context.Background())
	if err != nil {
		metrics.Global.SetError(err.Error())
		logger.Error("Collection failed", "error", err)
		os.Exit(1)
	}
	logger.Info("Collection complete", "platforms", len(set.Snapshots), "items", len(set.Items()))
}

// runServe starts the MCP stdio server plus the HTTP monitoring
// endpoint when enabled.
func runServe(cfg *config.Config, store *storage.SnapshotStore) {
	c := cache.New()
	limiter := ratelimit.NewAIRateLimiter(cfg.MaxGeminiRequests)

	engine := search.New(store, search.Config{
		Weights:          cfg.Weights,
		DedupThreshold:   cfg.DedupThreshold,
		RelatedThreshold: cfg.RelatedThreshold,
		DefaultLimit:     cfg.ResultLimitDefault,
		Entities:         cfg.Entities,
	})
	analyzer := trend.New(engine, cfg.Trend)
	insights := insight.New(store, cfg.Weights)
	counter := keywords.New(store, cfg.WatchKeywords)

	var primary report.Narrator
	if cfg.GeminiAPIKey != "" {
		ai, err := gemini.NewClient(cfg.GeminiAPIKey, cfg.GeminiModel, limiter, c)
		if err != nil {
			logger.Error("Failed to create Gemini client", "error", err)
		} else {
			defer ai.Close()
			primary = ai
		}
	}

	var narrator report.Narrator
	if primary != nil || openai.Available() {
		narrator = fallbackNarrator{primary: primary}
	} else {
		logger.Warn("No AI key configured, narration disabled")
	}

	reports := report.NewBuilder(store, engine, analyzer, insights, counter, cfg.Weights, narrator)

	if os.Getenv("ENABLE_HTTP_MONITORING") == "true" {
		go startMonitoringServer(cfg.MonitorAddr)
	}

	srv := server.New(server.Deps{
		Cfg:      cfg,
		Store:    store,
		Engine:   engine,
		Analyzer: analyzer,
		Insights: insights,
		Counter:  counter,
		Reports:  reports,
		Cache:    c,
		Extra: func() map[string]interface{} {
			return map[string]interface{}{"ai_quota": limiter.GetStats()}
		},
	})

	logger.Info("SignalForge MCP server starting on stdio", "data_dir", cfg.DataDir)
	if err := mcpserver.ServeStdio(srv); err != nil {
		logger.Error("MCP server exited", "error", err)
		os.Exit(1)
	}
}

// fallbackNarrator tries Gemini first and falls back to OpenAI when
// the primary is missing or fails (quota, transport).
type fallbackNarrator struct {
	primary report.Narrator
}

func (f fallbackNarrator) Narrate(ctx context.Context, prompt string) (string, error) {
	var primaryErr error
	if f.primary != nil {
		text, err := f.primary.Narrate(ctx, prompt)
		if err == nil {
			return text, nil
		}
		primaryErr = err
		logger.Warn("Primary narrator failed", "error", err)
	}
	if openai.Available() {
		return openai.Narrate(ctx, prompt)
	}
	if primaryErr != nil {
		return "", primaryErr
	}
	return "", errors.New("no narrator available")
}

func startMonitoringServer(addr string) {
	http.HandleFunc("/health", healthHandler)
	http.HandleFunc("/metrics", metricsHandler)

	log.Printf("Starting monitoring server on %s", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		log.Printf("Monitoring server error: %v", err)
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
