package pipeline

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/tendant/simple-ocr/internal/metrics"
	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

const (
	// DefaultMaxBatchSize is the batch ceiling.
	DefaultMaxBatchSize = 10

	// DefaultBatchConcurrency bounds concurrent pipeline runs per batch so
	// a single batch cannot flood the OCR engine.
	DefaultBatchConcurrency = 4
)

// Item is the outcome for one image within a batch. Exactly one of Result
// and Err is set.
type Item struct {
	Index    int
	Filename string
	Result   *Result
	Err      error
}

// BatchResult aggregates per-item outcomes in input order.
type BatchResult struct {
	Total     int
	Processed int
	Items     []Item
}

// Orchestrator fans a batch of images out over the single-image pipeline.
// Item failures are isolated: one bad image never aborts the rest.
type Orchestrator struct {
	pipeline     *Pipeline
	maxBatchSize int
	concurrency  int
}

// NewOrchestrator creates a batch orchestrator. Non-positive limits fall
// back to the defaults; concurrency never exceeds the batch ceiling.
func NewOrchestrator(p *Pipeline, maxBatchSize, concurrency int) *Orchestrator {
	if maxBatchSize <= 0 {
		maxBatchSize = DefaultMaxBatchSize
	}
	if concurrency <= 0 {
		concurrency = DefaultBatchConcurrency
	}
	if concurrency > maxBatchSize {
		concurrency = maxBatchSize
	}
	return &Orchestrator{
		pipeline:     p,
		maxBatchSize: maxBatchSize,
		concurrency:  concurrency,
	}
}

// ProcessBatch runs every blob through the pipeline with bounded
// concurrency. Output order always matches input order regardless of
// completion order. An oversized batch fails whole, before any item runs.
func (o *Orchestrator) ProcessBatch(ctx context.Context, blobs []Blob, includeMetadata bool) (*BatchResult, error) {
	if len(blobs) > o.maxBatchSize {
		return nil, ocrapi.NewRequestError(ocrapi.ReasonBatchSizeExceeded,
			fmt.Sprintf("Maximum %d images per batch request.", o.maxBatchSize))
	}
	metrics.BatchSize.Observe(float64(len(blobs)))

	items := make([]Item, len(blobs))

	var g errgroup.Group
	g.SetLimit(o.concurrency)
	for i, blob := range blobs {
		g.Go(func() error {
			res, err := o.pipeline.Process(ctx, blob, includeMetadata)
			items[i] = Item{
				Index:    i,
				Filename: blob.Filename,
				Result:   res,
				Err:      err,
			}
			// Item failures are reported per item, never propagated.
			return nil
		})
	}
	_ = g.Wait()

	processed := 0
	for _, item := range items {
		if item.Err == nil {
			processed++
		}
	}

	return &BatchResult{
		Total:     len(blobs),
		Processed: processed,
		Items:     items,
	}, nil
}
