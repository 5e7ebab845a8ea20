package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.MaxFileSize != 10<<20 {
		t.Errorf("MaxFileSize = %d, want %d", cfg.MaxFileSize, 10<<20)
	}
	if cfg.MaxBatchSize != 10 {
		t.Errorf("MaxBatchSize = %d, want 10", cfg.MaxBatchSize)
	}
	if cfg.Engine != "tesseract" {
		t.Errorf("Engine = %q, want %q", cfg.Engine, "tesseract")
	}
	if cfg.CacheCapacity != 100 {
		t.Errorf("CacheCapacity = %d, want 100", cfg.CacheCapacity)
	}
	if cfg.SingleRateLimit != 30 || cfg.BatchRateLimit != 10 {
		t.Errorf("rate limits = %d/%d, want 30/10", cfg.SingleRateLimit, cfg.BatchRateLimit)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("OCR_HTTP_ADDR", ":9090")
	t.Setenv("OCR_MAX_BATCH_SIZE", "5")
	t.Setenv("OCR_EXTRACT_TIMEOUT", "10s")
	t.Setenv("OCR_LANGUAGES", "eng, deu")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":9090" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":9090")
	}
	if cfg.MaxBatchSize != 5 {
		t.Errorf("MaxBatchSize = %d, want 5", cfg.MaxBatchSize)
	}
	if cfg.ExtractTimeout != 10*time.Second {
		t.Errorf("ExtractTimeout = %v, want 10s", cfg.ExtractTimeout)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "eng" || cfg.Languages[1] != "deu" {
		t.Errorf("Languages = %v, want [eng deu]", cfg.Languages)
	}
}

func TestLoadYAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocr.yaml")
	yamlBody := "http_addr: \":7070\"\nmax_batch_size: 3\ncache_capacity: 42\n"
	if err := os.WriteFile(path, []byte(yamlBody), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	t.Setenv("OCR_CONFIG", path)
	t.Setenv("OCR_MAX_BATCH_SIZE", "7") // env wins over file

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HTTPAddr != ":7070" {
		t.Errorf("HTTPAddr = %q, want %q from file", cfg.HTTPAddr, ":7070")
	}
	if cfg.MaxBatchSize != 7 {
		t.Errorf("MaxBatchSize = %d, want env override 7", cfg.MaxBatchSize)
	}
	if cfg.CacheCapacity != 42 {
		t.Errorf("CacheCapacity = %d, want 42 from file", cfg.CacheCapacity)
	}
}

func TestLoadRejectsUnknownEngine(t *testing.T) {
	t.Setenv("OCR_ENGINE", "carrier-pigeon")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want unknown engine error")
	}
}

func TestLoadRemoteRequiresURL(t *testing.T) {
	t.Setenv("OCR_ENGINE", "remote")
	if _, err := Load(); err == nil {
		t.Fatal("Load() error = nil, want missing remote URL error")
	}
}
