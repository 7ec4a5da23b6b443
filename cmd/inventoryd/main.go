// inventoryd serves the extraction and inventory HTTP API.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/gakkiten/inventory-tracker/internal/acquire"
	"github.com/gakkiten/inventory-tracker/internal/common"
	"github.com/gakkiten/inventory-tracker/internal/export"
	"github.com/gakkiten/inventory-tracker/internal/extract"
	"github.com/gakkiten/inventory-tracker/internal/lexicon"
	"github.com/gakkiten/inventory-tracker/internal/llm/openai"
	"github.com/gakkiten/inventory-tracker/internal/pattern"
	"github.com/gakkiten/inventory-tracker/internal/repository"
	"github.com/gakkiten/inventory-tracker/internal/server"
	"github.com/gakkiten/inventory-tracker/internal/usage"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := common.LoadConfig()
	if err != nil {
		logger.Error("config load failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		lex, err = lexicon.LoadFile(cfg.LexiconPath)
		if err != nil {
			logger.Error("lexicon load failed", "path", cfg.LexiconPath, "error", err)
			os.Exit(1)
		}
		logger.Info("lexicon loaded", "path", cfg.LexiconPath, "brands", len(lex.Brands))
	}

	meter := usage.NewMeter(logger)
	if cfg.Usage.SQLitePath != "" {
		sink, err := usage.NewSQLiteSink(cfg.Usage.SQLitePath)
		if err != nil {
			logger.Error("usage sink open failed", "path", cfg.Usage.SQLitePath, "error", err)
			os.Exit(1)
		}
		defer sink.Close()
		meter.AttachSink(sink)
		logger.Info("usage sink attached", "path", cfg.Usage.SQLitePath)
	}

	aiClient := openai.NewClient(openai.Config{
		APIKey:      cfg.OpenAI.APIKey,
		BaseURL:     cfg.OpenAI.BaseURL,
		Model:       cfg.OpenAI.Model,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
		Timeout:     cfg.OpenAI.Timeout,
	}, meter, logger)

	acquirer := acquire.NewExtractor(acquire.Config{
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.TesseractLang,
		TessdataDir:   cfg.OCR.TessdataDir,
	}, logger)

	orch := extract.NewOrchestrator(acquirer, aiClient, pattern.NewExtractor(lex, logger), logger)

	handler := &server.Handler{
		Orchestrator: orch,
		Meter:        meter,
		AIAvailable:  aiClient.Available(),
		Logger:       logger,
	}

	// The database is optional: without it the extraction and usage
	// endpoints still work; inventory and export answer 503.
	if cfg.Database.DSN != "" {
		pool, err := repository.Open(ctx, cfg.Database, logger)
		if err != nil {
			logger.Error("database connect failed", "error", err)
			os.Exit(1)
		}
		defer pool.Close()

		if err := repository.HealthCheck(ctx, pool, 3*time.Second); err != nil {
			logger.Error("database ping failed", "error", err)
			os.Exit(1)
		}
		if err := repository.Migrate(ctx, pool); err != nil {
			logger.Error("database migrate failed", "error", err)
			os.Exit(1)
		}

		repo := repository.NewInventoryRepository(pool, logger)
		handler.Inventory = repo
		handler.Export = export.NewService(repo, logger)
	} else {
		logger.Warn("no database configured; inventory endpoints disabled")
	}

	router := server.SetupRouter(cfg, handler)
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("http serving", "addr", cfg.Server.Addr, "ai_available", handler.AIAvailable)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("stopped")
}
