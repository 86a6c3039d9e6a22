package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"spendtrack/internal/backend"
	"spendtrack/internal/config"
	"spendtrack/internal/event"
	apphttp "spendtrack/internal/http"
	applog "spendtrack/internal/log"
	"spendtrack/internal/ocr"
	"spendtrack/internal/services"
	"spendtrack/internal/upload"
)

func main() {
	// Load .env for local development; production sets real env vars.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := applog.Setup(cfg.LogLevel).With("component", applog.ComponentApp)

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to open record store", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}

	// Change events are optional; without a broker the API runs alone.
	var publisher *event.Client
	if cfg.AMQPURL != "" {
		publisher, err = event.Dial(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			logger.Warn("Failed to connect to AMQP, continuing without events", "error", err)
		} else {
			defer publisher.Close()
			logger.Info("Connected to AMQP", "exchange", cfg.AMQPExchange, "queue", cfg.AMQPQueue)
		}
	}

	expenses := services.NewExpenseService(st, publisher)
	defer expenses.Close()

	receipts, err := upload.NewSaver(cfg.UploadDir, "/uploads", upload.ReceiptPolicy(cfg.MaxUploadSize))
	if err != nil {
		logger.Error("Failed to prepare upload directory", "error", err, "dir", cfg.UploadDir)
		os.Exit(1)
	}
	scanDir, err := os.MkdirTemp("", "spendtrack-scans-")
	if err != nil {
		logger.Error("Failed to create scan scratch directory", "error", err)
		os.Exit(1)
	}
	defer os.RemoveAll(scanDir)
	scans, err := upload.NewSaver(scanDir, "/scans", upload.ImagePolicy(cfg.MaxOCRSize))
	if err != nil {
		logger.Error("Failed to prepare scan directory", "error", err)
		os.Exit(1)
	}

	server := apphttp.NewServer(expenses, receipts, scans, apphttp.Options{
		OCR:        buildOCRChain(cfg),
		OCRTimeout: cfg.OCRTimeout,
	})
	defer server.Close()

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        server.Router(),
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received", "signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", "error", err)
		}
		cancel()
	}()

	logger.Info("Starting spendtrack server", "port", cfg.Port, "backend", cfg.DataBackend)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", "error", err, "port", cfg.Port)
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("Server stopped gracefully")
}

// buildOCRChain assembles the engine chain from configuration. With no
// commands configured the endpoint reports itself unavailable.
func buildOCRChain(cfg *config.Config) apphttp.Extractor {
	var engines []ocr.Engine
	if e := ocr.NewCommandEngine("primary", cfg.OCRPrimaryCmd, ocr.ModeJSON); e != nil {
		engines = append(engines, e)
	}
	if e := ocr.NewCommandEngine("fallback", cfg.OCRFallbackCmd, ocr.ModeText); e != nil {
		engines = append(engines, e)
	}
	if len(engines) == 0 {
		return nil
	}
	return ocr.NewChain(engines...)
}
