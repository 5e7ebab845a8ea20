package extract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// TesseractEngine runs OCR in-process through the gosseract bindings. Each
// Extract call uses a fresh client; gosseract clients are not safe for
// concurrent use.
type TesseractEngine struct {
	clientFactory func() *gosseract.Client
	languages     []string
}

// NewTesseractEngine constructs a Tesseract-backed engine. Languages are
// Tesseract trained-data names (e.g. "eng"); an empty list uses the
// installation default.
func NewTesseractEngine(languages ...string) *TesseractEngine {
	return &TesseractEngine{
		clientFactory: gosseract.NewClient,
		languages:     languages,
	}
}

func (e *TesseractEngine) Name() string { return "tesseract" }

// Extract recognizes text in the image. Block confidences come from
// Tesseract's per-block scores, scaled from percent to [0,1].
func (e *TesseractEngine) Extract(ctx context.Context, image []byte) (RawResult, error) {
	select {
	case <-ctx.Done():
		return RawResult{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetImageFromBytes(image); err != nil {
		return RawResult{}, fmt.Errorf("set image: %w", err)
	}
	if len(e.languages) > 0 {
		if err := c.SetLanguage(e.languages...); err != nil {
			return RawResult{}, fmt.Errorf("set languages: %w", err)
		}
	}

	text, err := c.Text()
	if err != nil {
		return RawResult{}, fmt.Errorf("recognize text: %w", err)
	}

	return RawResult{
		Text:             text,
		BlockConfidences: blockConfidences(c),
	}, nil
}

func blockConfidences(c *gosseract.Client) []float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil || len(boxes) == 0 {
		return nil
	}
	confidences := make([]float64, 0, len(boxes))
	for _, b := range boxes {
		if b.Confidence > 0 {
			confidences = append(confidences, b.Confidence/100.0)
		}
	}
	return confidences
}
