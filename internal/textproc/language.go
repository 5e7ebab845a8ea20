package textproc

import (
	"strings"

	"github.com/pemistahl/lingua-go"
)

// Detector identifies the dominant language of extracted text.
type Detector struct {
	detector lingua.LanguageDetector
}

// NewDetector builds a detector over a fixed set of common OCR target
// languages. Construction is expensive (language models are loaded lazily
// per language), so callers should build one detector and share it.
func NewDetector() *Detector {
	languages := []lingua.Language{
		lingua.English,
		lingua.Spanish,
		lingua.French,
		lingua.German,
		lingua.Italian,
		lingua.Portuguese,
	}
	return &Detector{
		detector: lingua.NewLanguageDetectorBuilder().
			FromLanguages(languages...).
			Build(),
	}
}

// Detect returns the ISO 639-1 code (e.g. "en") of the detected language.
// The second return is false when no language could be determined with
// reasonable confidence.
func (d *Detector) Detect(text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return "", false
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(language.IsoCode639_1().String()), true
}
