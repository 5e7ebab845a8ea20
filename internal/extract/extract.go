// Package extract defines the OCR engine capability contract and the
// post-processing the service applies to raw engine output.
package extract

import (
	"context"
	"math"

	"github.com/tendant/simple-ocr/internal/textproc"
)

// RawResult is the unprocessed output of an OCR engine: the recognized text
// and one confidence score per text block, each in [0,1].
type RawResult struct {
	Text             string
	BlockConfidences []float64
}

// Result is a finalized extraction: normalized text and the aggregate
// confidence, rounded to four decimal places.
type Result struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

// Engine is the capability required from an OCR provider. Implementations
// must honor context cancellation where the underlying provider allows it
// and must not retry on their own; transient provider failures surface as
// plain errors.
type Engine interface {
	Name() string
	Extract(ctx context.Context, image []byte) (RawResult, error)
}

// Postprocess turns raw engine output into a finalized result: text is
// whitespace-normalized and confidence is the arithmetic mean of the block
// confidences. An empty block list yields confidence 0.0 (the "no text
// found" condition, signaled by an empty Text).
func Postprocess(raw RawResult) Result {
	text := textproc.Normalize(raw.Text)

	var confidence float64
	if len(raw.BlockConfidences) > 0 {
		var sum float64
		for _, c := range raw.BlockConfidences {
			sum += c
		}
		confidence = sum / float64(len(raw.BlockConfidences))
	}

	return Result{
		Text:       text,
		Confidence: math.Round(confidence*10000) / 10000,
	}
}
