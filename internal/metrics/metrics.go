// Package metrics exposes Prometheus instrumentation for the OCR service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RequestsTotal counts HTTP requests by endpoint and response status.
	RequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_requests_total",
		Help: "HTTP requests handled, by endpoint and status code.",
	}, []string{"endpoint", "status"})

	// CacheLookups counts cache lookups by result (hit or miss).
	CacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ocr_cache_lookups_total",
		Help: "Content cache lookups, by result.",
	}, []string{"result"})

	// ExtractionDuration observes wall-clock time of OCR engine calls.
	ExtractionDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocr_extraction_duration_seconds",
		Help:    "Duration of OCR engine calls.",
		Buckets: prometheus.DefBuckets,
	})

	// ExtractionFailures counts failed OCR engine calls.
	ExtractionFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ocr_extraction_failures_total",
		Help: "OCR engine calls that returned an error or timed out.",
	})

	// BatchSize observes the number of images per batch request.
	BatchSize = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "ocr_batch_size",
		Help:    "Images submitted per batch request.",
		Buckets: []float64{1, 2, 3, 5, 8, 10},
	})

	// RateLimited counts requests rejected by the rate limiter.
	RateLimited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ocr_rate_limited_total",
		Help: "Requests rejected with 429.",
	})
)

// Handler serves the Prometheus exposition endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}
