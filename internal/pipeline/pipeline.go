// Package pipeline orchestrates validate → cache → extract → respond for
// single images and batches.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tendant/simple-ocr/internal/cache"
	"github.com/tendant/simple-ocr/internal/extract"
	"github.com/tendant/simple-ocr/internal/imagemeta"
	"github.com/tendant/simple-ocr/internal/metrics"
	"github.com/tendant/simple-ocr/internal/textproc"
	"github.com/tendant/simple-ocr/internal/validation"
	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

// DefaultExtractTimeout bounds a single OCR engine call.
const DefaultExtractTimeout = 30 * time.Second

// Blob is one uploaded image: raw bytes plus the declared content type and
// filename. Blobs are request-scoped and discarded once processing ends.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

// Result is the outcome of a successful pipeline run.
type Result struct {
	Text             string
	Confidence       float64
	Cached           bool
	NoText           bool
	ProcessingTimeMs int64
	Metadata         *ocrapi.ImageMetadata
}

// Pipeline runs the single-image flow. It is safe for concurrent use; the
// cache is the only shared mutable state and carries its own locking.
type Pipeline struct {
	validator      *validation.Validator
	cache          cache.Store
	engine         extract.Engine
	detector       *textproc.Detector
	extractTimeout time.Duration
	maxDimension   int
}

// Options configures optional pipeline behavior.
type Options struct {
	// ExtractTimeout bounds each OCR engine call. Zero means
	// DefaultExtractTimeout.
	ExtractTimeout time.Duration

	// MaxDimension downscales images larger than this (pixels per side)
	// before OCR. Zero disables downscaling.
	MaxDimension int

	// Detector, when set, adds detected-language metadata to results
	// requested with includeMetadata.
	Detector *textproc.Detector
}

// New creates a pipeline over the given collaborators.
func New(validator *validation.Validator, store cache.Store, engine extract.Engine, opts Options) *Pipeline {
	if opts.ExtractTimeout <= 0 {
		opts.ExtractTimeout = DefaultExtractTimeout
	}
	return &Pipeline{
		validator:      validator,
		cache:          store,
		engine:         engine,
		detector:       opts.Detector,
		extractTimeout: opts.ExtractTimeout,
		maxDimension:   opts.MaxDimension,
	}
}

// Process runs one image through the full pipeline. On failure the returned
// error is an *ocrapi.RequestError; ProcessingTimeMs covers the whole
// invocation including cache and extractor latency.
func (p *Pipeline) Process(ctx context.Context, blob Blob, includeMetadata bool) (*Result, error) {
	start := time.Now()
	runID := uuid.New().String()

	// Step 1: validate. Invalid uploads never reach the cache or engine.
	if _, err := p.validator.Validate(blob.Data, blob.ContentType, blob.Filename); err != nil {
		log.Printf("[%s] Validation failed for %q: %v", runID, blob.Filename, err)
		return nil, err
	}

	// Step 2: cache lookup by content fingerprint.
	fp := cache.FingerprintOf(blob.Data)
	if cached, ok := p.cache.Lookup(fp); ok {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		log.Printf("[%s] Cache hit for %q (fingerprint=%.12s)", runID, blob.Filename, fp)
		return p.buildResult(cached, blob, true, start, includeMetadata), nil
	}
	metrics.CacheLookups.WithLabelValues("miss").Inc()

	// Step 3: extract.
	raw, err := p.runExtract(ctx, blob.Data)
	if err != nil {
		metrics.ExtractionFailures.Inc()
		log.Printf("[%s] Extraction failed for %q: %v", runID, blob.Filename, err)
		return nil, ocrapi.NewRequestError(ocrapi.ReasonExtractionFailed,
			fmt.Sprintf("OCR processing failed: %v", err))
	}
	result := extract.Postprocess(raw)

	// Step 4: store. A cancelled request must not write a result the
	// client never received; the cache only holds fully-formed results.
	if ctx.Err() != nil {
		log.Printf("[%s] Request cancelled after extraction, skipping cache write", runID)
		return nil, ocrapi.NewRequestError(ocrapi.ReasonExtractionFailed,
			fmt.Sprintf("OCR processing failed: %v", ctx.Err()))
	}
	p.cache.Store(fp, result)

	log.Printf("[%s] Extracted %d chars from %q (confidence=%.4f)", runID, len(result.Text), blob.Filename, result.Confidence)
	return p.buildResult(result, blob, false, start, includeMetadata), nil
}

// runExtract invokes the engine under the configured timeout. Engines that
// ignore context cancellation are abandoned in their goroutine when the
// deadline fires.
func (p *Pipeline) runExtract(ctx context.Context, data []byte) (extract.RawResult, error) {
	if p.maxDimension > 0 {
		scaled, err := extract.Downscale(data, p.maxDimension)
		if err != nil {
			return extract.RawResult{}, fmt.Errorf("preprocess: %w", err)
		}
		data = scaled
	}

	ctx, cancel := context.WithTimeout(ctx, p.extractTimeout)
	defer cancel()

	type outcome struct {
		raw extract.RawResult
		err error
	}
	done := make(chan outcome, 1)

	timer := time.Now()
	go func() {
		raw, err := p.engine.Extract(ctx, data)
		done <- outcome{raw: raw, err: err}
	}()

	select {
	case <-ctx.Done():
		return extract.RawResult{}, ctx.Err()
	case out := <-done:
		if out.err == nil {
			metrics.ExtractionDuration.Observe(time.Since(timer).Seconds())
		}
		return out.raw, out.err
	}
}

func (p *Pipeline) buildResult(res extract.Result, blob Blob, fromCache bool, start time.Time, includeMetadata bool) *Result {
	out := &Result{
		Text:             res.Text,
		Confidence:       res.Confidence,
		Cached:           fromCache,
		NoText:           res.Text == "",
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	if includeMetadata {
		out.Metadata = imagemeta.Extract(blob.Data)
		if out.Metadata != nil && p.detector != nil && res.Text != "" {
			if lang, ok := p.detector.Detect(res.Text); ok {
				out.Metadata.Language = lang
			}
		}
	}
	return out
}

// AsRequestError converts any pipeline error to a *ocrapi.RequestError,
// mapping unexpected errors to InternalFault.
func AsRequestError(err error) *ocrapi.RequestError {
	var reqErr *ocrapi.RequestError
	if errors.As(err, &reqErr) {
		return reqErr
	}
	return ocrapi.NewRequestError(ocrapi.ReasonInternalFault, "Internal server error.")
}
