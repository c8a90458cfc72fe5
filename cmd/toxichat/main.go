package main

import (
	"context"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/toxichat/internal/core/config"
	"github.com/vietddude/toxichat/internal/core/domain"
	"github.com/vietddude/toxichat/internal/failover"
	"github.com/vietddude/toxichat/internal/infra/gemini"
	"github.com/vietddude/toxichat/internal/predict"
	"github.com/vietddude/toxichat/internal/server"
	"github.com/vietddude/toxichat/internal/tools"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	isDebug := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	// Optional .env for local development (API key expansion)
	_ = godotenv.Load()

	// Load Configuration first (before setting up logger)
	cfg, err := config.Load(*configPath)
	if err != nil {
		// Fall back to default logger for config load errors
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// Simplifed logging logic (debug < info)
	slogLevel := slog.LevelInfo
	if *isDebug || cfg.Logging.Level == "debug" {
		slogLevel = slog.LevelDebug
	}

	// Initialize stylelog with tint.Options for level control
	stylelog.InitDefault(
		&tint.Options{
			Level:      slogLevel,
			TimeFormat: time.RFC3339,
		})
	slog.Info("Logger initialized", "level", slogLevel.String())

	// Load toxicity model artifacts
	basic, err := predict.LoadArtifact(cfg.Predict.ModelPath)
	if err != nil {
		slog.Error("Failed to load toxicity model", "error", err)
		os.Exit(1)
	}
	family, err := predict.LoadArtifact(cfg.Predict.FamilyModelPath)
	if err != nil {
		slog.Error("Failed to load family toxicity model", "error", err)
		os.Exit(1)
	}
	predictor := predict.NewPredictor(basic, family)
	registry := tools.NewRegistry(predictor)

	// Gemini client and model discovery
	client := gemini.NewClient(cfg.Gemini.APIKey, cfg.Gemini.BaseURL, cfg.Gemini.Timeout)
	defer client.Close()

	discoverCtx, discoverCancel := context.WithTimeout(context.Background(), 30*time.Second)
	models, err := client.ListModels(discoverCtx)
	discoverCancel()
	if err != nil {
		slog.Error("Failed to discover models", "error", err)
		os.Exit(1)
	}
	catalog := domain.NewCatalog(models)
	slog.Info("Discovered models", "count", catalog.Len())

	// Failover engine
	engine := failover.New(catalog, client, failover.Config{
		Primary:           domain.ModelID(cfg.Gemini.Primary),
		Fallback:          domain.ModelID(cfg.Gemini.Fallback),
		RateLimitCooldown: cfg.Failover.RateLimitCooldown,
		MaxWait:           cfg.Failover.MaxWait,
		TTLs: failover.TTLConfig{
			QuotaExhausted: cfg.Failover.QuotaExhaustedTTL,
			RateLimited:    cfg.Failover.RateLimitedTTL,
			Other:          cfg.Failover.OtherTTL,
			MaxSuggested:   cfg.Failover.MaxSuggestedTTL,
		},
		Throttle: failover.ThrottleConfig{
			MinInterval: cfg.Failover.MinInterval,
			MaxCalls:    cfg.Failover.WindowCalls,
			Window:      cfg.Failover.Window,
		},
	})

	// HTTP server
	srv := server.NewServer(engine, registry, server.Config{
		Port:           cfg.Server.Port,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		MaxToolRounds:  cfg.Server.MaxToolRounds,
	})

	// Handle OS Signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("Server listening", "port", cfg.Server.Port)
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for Signal
	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)

	// Graceful Shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("Server stopped gracefully")
}
