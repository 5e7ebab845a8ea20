package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tendant/simple-ocr/internal/cache"
	"github.com/tendant/simple-ocr/internal/config"
	"github.com/tendant/simple-ocr/internal/extract"
	"github.com/tendant/simple-ocr/internal/handlers"
	"github.com/tendant/simple-ocr/internal/metrics"
	"github.com/tendant/simple-ocr/internal/pipeline"
	"github.com/tendant/simple-ocr/internal/textproc"
	"github.com/tendant/simple-ocr/internal/validation"
)

func main() {
	// Load .env file if it exists (silently ignore if not found)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("OCR Image Text Extraction API")
	log.Printf("  HTTP address: %s", cfg.HTTPAddr)
	log.Printf("  Engine: %s", cfg.Engine)
	log.Printf("  Max file size: %d bytes", cfg.MaxFileSize)
	log.Printf("  Max batch size: %d (concurrency %d)", cfg.MaxBatchSize, cfg.BatchConcurrency)

	// Content cache: in-memory LRU by default, SQLite when a path is set.
	var store cache.Store
	if cfg.CachePath != "" {
		sqliteStore, err := cache.NewSQLite(cfg.CachePath, cfg.CacheTTL)
		if err != nil {
			log.Fatalf("Failed to open cache database: %v", err)
		}
		defer sqliteStore.Close()
		store = sqliteStore
		log.Printf("✓ Persistent cache at %s", cfg.CachePath)
	} else {
		store = cache.NewMemory(cfg.CacheCapacity, cfg.CacheTTL)
		log.Printf("✓ In-memory cache (capacity %d)", cfg.CacheCapacity)
	}

	engine := newEngine(cfg)
	log.Printf("✓ OCR engine: %s", engine.Name())

	opts := pipeline.Options{
		ExtractTimeout: cfg.ExtractTimeout,
		MaxDimension:   cfg.MaxOCRDimension,
	}
	if cfg.DetectLanguage {
		opts.Detector = textproc.NewDetector()
		log.Printf("✓ Language detection enabled")
	}

	p := pipeline.New(validation.New(cfg.MaxFileSize), store, engine, opts)
	orchestrator := pipeline.NewOrchestrator(p, cfg.MaxBatchSize, cfg.BatchConcurrency)
	handler := handlers.NewOCRHandler(p, orchestrator)

	singleLimit := handlers.NewRateLimiter(cfg.SingleRateLimit)
	batchLimit := handlers.NewRateLimiter(cfg.BatchRateLimit)

	mux := http.NewServeMux()
	mux.HandleFunc("/", handlers.HandleHealth)
	mux.Handle("/extract-text", singleLimit.Wrap(http.HandlerFunc(handler.HandleExtract)))
	mux.Handle("/extract-text/batch", batchLimit.Wrap(http.HandlerFunc(handler.HandleExtractBatch)))
	mux.Handle("/metrics", metrics.Handler())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	// Start server in goroutine
	go func() {
		log.Printf("✓ OCR server ready on %s", cfg.HTTPAddr)
		log.Printf("")
		log.Printf("Available endpoints:")
		log.Printf("  GET  /                    - Health check")
		log.Printf("  POST /extract-text        - Extract text from one image")
		log.Printf("  POST /extract-text/batch  - Extract text from up to %d images", cfg.MaxBatchSize)
		log.Printf("  GET  /metrics             - Prometheus metrics")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for shutdown signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Printf("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
	log.Printf("✓ Server stopped")
}

// newEngine builds the configured OCR engine. Config validation already
// rejected unknown engine types.
func newEngine(cfg *config.Config) extract.Engine {
	switch cfg.Engine {
	case "remote":
		return extract.NewRemoteEngine(cfg.RemoteURL, cfg.Languages...)
	default:
		return extract.NewTesseractEngine(cfg.Languages...)
	}
}
