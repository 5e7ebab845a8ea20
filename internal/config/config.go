// Package config loads service configuration from the environment, with an
// optional YAML file (OCR_CONFIG) supplying defaults that env vars override.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds OCR service configuration.
type Config struct {
	// HTTPAddr is the listen address.
	// Optional. Defaults to ":8080".
	HTTPAddr string `yaml:"http_addr"`

	// MaxFileSize is the upload ceiling in bytes.
	// Optional. Defaults to 10 MiB.
	MaxFileSize int64 `yaml:"max_file_size"`

	// MaxBatchSize is the maximum number of images per batch request.
	// Optional. Defaults to 10.
	MaxBatchSize int `yaml:"max_batch_size"`

	// BatchConcurrency bounds concurrent OCR calls within one batch.
	// Optional. Defaults to 4.
	BatchConcurrency int `yaml:"batch_concurrency"`

	// Engine selects the OCR provider: "tesseract" or "remote".
	// Optional. Defaults to "tesseract".
	Engine string `yaml:"engine"`

	// RemoteURL is the base URL of the remote OCR service.
	// Required when Engine is "remote".
	RemoteURL string `yaml:"remote_url"`

	// Languages are OCR language hints (Tesseract trained-data names).
	Languages []string `yaml:"languages"`

	// ExtractTimeout bounds a single OCR engine call.
	// Optional. Defaults to 30s.
	ExtractTimeout time.Duration `yaml:"extract_timeout"`

	// MaxOCRDimension downscales larger images before OCR. Zero disables.
	MaxOCRDimension int `yaml:"max_ocr_dimension"`

	// CacheCapacity is the in-memory cache entry bound.
	// Optional. Defaults to 100.
	CacheCapacity int `yaml:"cache_capacity"`

	// CacheTTL expires cache entries by age. Zero disables expiry.
	CacheTTL time.Duration `yaml:"cache_ttl"`

	// CachePath, when set, selects the persistent SQLite cache backend.
	CachePath string `yaml:"cache_path"`

	// DetectLanguage enables language detection on extracted text for
	// responses requested with include_metadata.
	DetectLanguage bool `yaml:"detect_language"`

	// SingleRateLimit and BatchRateLimit are per-client requests/minute.
	// Optional. Default to 30 and 10.
	SingleRateLimit int `yaml:"single_rate_limit"`
	BatchRateLimit  int `yaml:"batch_rate_limit"`
}

// WithDefaults fills in default values for optional fields.
func (c *Config) WithDefaults() {
	if c.HTTPAddr == "" {
		c.HTTPAddr = ":8080"
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = 10 << 20
	}
	if c.MaxBatchSize <= 0 {
		c.MaxBatchSize = 10
	}
	if c.BatchConcurrency <= 0 {
		c.BatchConcurrency = 4
	}
	if c.Engine == "" {
		c.Engine = "tesseract"
	}
	if c.ExtractTimeout <= 0 {
		c.ExtractTimeout = 30 * time.Second
	}
	if c.CacheCapacity <= 0 {
		c.CacheCapacity = 100
	}
	if c.SingleRateLimit <= 0 {
		c.SingleRateLimit = 30
	}
	if c.BatchRateLimit <= 0 {
		c.BatchRateLimit = 10
	}
}

// Load builds the configuration: YAML file (if OCR_CONFIG is set), then
// environment variables, then defaults.
func Load() (*Config, error) {
	cfg := &Config{}

	if path := os.Getenv("OCR_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.WithDefaults()

	if cfg.Engine != "tesseract" && cfg.Engine != "remote" {
		return nil, fmt.Errorf("unknown engine type: %s", cfg.Engine)
	}
	if cfg.Engine == "remote" && cfg.RemoteURL == "" {
		return nil, fmt.Errorf("OCR_REMOTE_URL is required for the remote engine")
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "OCR_HTTP_ADDR")
	setString(&c.Engine, "OCR_ENGINE")
	setString(&c.RemoteURL, "OCR_REMOTE_URL")
	setString(&c.CachePath, "OCR_CACHE_PATH")

	if v := os.Getenv("OCR_LANGUAGES"); v != "" {
		c.Languages = splitAndTrim(v)
	}

	if err := setInt64(&c.MaxFileSize, "OCR_MAX_FILE_SIZE"); err != nil {
		return err
	}
	for _, f := range []struct {
		dst *int
		env string
	}{
		{&c.MaxBatchSize, "OCR_MAX_BATCH_SIZE"},
		{&c.BatchConcurrency, "OCR_BATCH_CONCURRENCY"},
		{&c.MaxOCRDimension, "OCR_MAX_DIMENSION"},
		{&c.CacheCapacity, "OCR_CACHE_CAPACITY"},
		{&c.SingleRateLimit, "OCR_SINGLE_RATE_LIMIT"},
		{&c.BatchRateLimit, "OCR_BATCH_RATE_LIMIT"},
	} {
		if err := setInt(f.dst, f.env); err != nil {
			return err
		}
	}
	for _, f := range []struct {
		dst *time.Duration
		env string
	}{
		{&c.ExtractTimeout, "OCR_EXTRACT_TIMEOUT"},
		{&c.CacheTTL, "OCR_CACHE_TTL"},
	} {
		if err := setDuration(f.dst, f.env); err != nil {
			return err
		}
	}
	if v := os.Getenv("OCR_DETECT_LANGUAGE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid OCR_DETECT_LANGUAGE: %w", err)
		}
		c.DetectLanguage = b
	}
	return nil
}

func setString(dst *string, env string) {
	if v := os.Getenv(env); v != "" {
		*dst = v
	}
}

func setInt(dst *int, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = n
	return nil
}

func setInt64(dst *int64, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = n
	return nil
}

func setDuration(dst *time.Duration, env string) error {
	v := os.Getenv(env)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", env, err)
	}
	*dst = d
	return nil
}

func splitAndTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
