package pipeline

import (
	"context"
	"fmt"
	"testing"

	"github.com/tendant/simple-ocr/internal/extract"
	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

func TestProcessBatchPartialFailure(t *testing.T) {
	engine := &fakeEngine{raw: extract.RawResult{
		Text:             "ok",
		BlockConfidences: []float64{0.9},
	}}
	o := NewOrchestrator(newTestPipeline(engine, Options{}), 10, 2)

	blobs := []Blob{
		pngBlob(t, 10, "a.png"),
		{Data: []byte("junk"), ContentType: "application/pdf", Filename: "b.pdf"},
		pngBlob(t, 11, "c.png"),
	}

	res, err := o.ProcessBatch(context.Background(), blobs, false)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}

	if len(res.Items) != 3 {
		t.Fatalf("len(Items) = %d, want 3", len(res.Items))
	}
	if res.Total != 3 {
		t.Errorf("Total = %d, want 3", res.Total)
	}
	if res.Processed != 2 {
		t.Errorf("Processed = %d, want 2", res.Processed)
	}

	for i, item := range res.Items {
		if item.Index != i {
			t.Errorf("Items[%d].Index = %d, want %d", i, item.Index, i)
		}
		if item.Filename != blobs[i].Filename {
			t.Errorf("Items[%d].Filename = %q, want %q", i, item.Filename, blobs[i].Filename)
		}
	}
	if res.Items[0].Err != nil || res.Items[2].Err != nil {
		t.Errorf("valid items failed: %v, %v", res.Items[0].Err, res.Items[2].Err)
	}
	if res.Items[1].Err == nil {
		t.Error("Items[1].Err = nil, want validation failure")
	}
}

func TestProcessBatchSizeExceeded(t *testing.T) {
	engine := &fakeEngine{}
	o := NewOrchestrator(newTestPipeline(engine, Options{}), 10, 4)

	blobs := make([]Blob, 11)
	for i := range blobs {
		blobs[i] = Blob{Data: []byte("x"), ContentType: "image/png", Filename: fmt.Sprintf("%d.png", i)}
	}

	_, err := o.ProcessBatch(context.Background(), blobs, false)
	if got := reasonOf(t, err); got != ocrapi.ReasonBatchSizeExceeded {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonBatchSizeExceeded)
	}
	if calls := engine.calls.Load(); calls != 0 {
		t.Errorf("engine calls = %d, want 0 for rejected batch", calls)
	}
}

func TestProcessBatchOrderPreservedUnderConcurrency(t *testing.T) {
	// Distinct blobs processed concurrently must come back in input order.
	engine := &fakeEngine{raw: extract.RawResult{
		Text:             "text",
		BlockConfidences: []float64{1.0},
	}}
	o := NewOrchestrator(newTestPipeline(engine, Options{}), 10, 4)

	blobs := make([]Blob, 8)
	for i := range blobs {
		blobs[i] = pngBlob(t, uint8(20+i), fmt.Sprintf("img-%d.png", i))
	}

	res, err := o.ProcessBatch(context.Background(), blobs, false)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if res.Processed != 8 || res.Total != 8 {
		t.Errorf("Processed/Total = %d/%d, want 8/8", res.Processed, res.Total)
	}
	for i, item := range res.Items {
		if item.Index != i || item.Filename != fmt.Sprintf("img-%d.png", i) {
			t.Errorf("Items[%d] = {Index: %d, Filename: %q}, out of input order", i, item.Index, item.Filename)
		}
	}
}

func TestProcessBatchDeduplicatesWithinBatch(t *testing.T) {
	engine := &fakeEngine{raw: extract.RawResult{
		Text:             "same",
		BlockConfidences: []float64{0.5},
	}}
	// Sequential processing so the first item's result is cached before the
	// duplicate runs.
	o := NewOrchestrator(newTestPipeline(engine, Options{}), 10, 1)

	shared := pngBlob(t, 30, "a.png")
	res, err := o.ProcessBatch(context.Background(), []Blob{
		shared,
		{Data: shared.Data, ContentType: "image/png", Filename: "dup.png"},
	}, false)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if res.Processed != 2 {
		t.Fatalf("Processed = %d, want 2", res.Processed)
	}
	if !res.Items[1].Result.Cached {
		t.Error("duplicate item not served from cache")
	}
	if got := engine.calls.Load(); got != 1 {
		t.Errorf("engine calls = %d, want 1 for duplicate bytes", got)
	}
}

func TestProcessBatchEmpty(t *testing.T) {
	o := NewOrchestrator(newTestPipeline(&fakeEngine{}, Options{}), 10, 4)
	res, err := o.ProcessBatch(context.Background(), nil, false)
	if err != nil {
		t.Fatalf("ProcessBatch() error = %v", err)
	}
	if res.Total != 0 || res.Processed != 0 || len(res.Items) != 0 {
		t.Errorf("empty batch result = %+v, want zeroes", res)
	}
}
