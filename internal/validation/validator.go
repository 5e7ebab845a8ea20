// Package validation verifies that an uploaded blob is a well-formed,
// supported, size-bounded image before any OCR work is attempted.
package validation

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"path/filepath"
	"slices"
	"strings"

	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

// DefaultMaxFileSize is the upload size ceiling (10 MiB).
const DefaultMaxFileSize = 10 << 20

// supportedFormats maps declared content types to their canonical filename
// extensions.
var supportedFormats = map[string][]string{
	"image/jpeg": {".jpg", ".jpeg"},
	"image/png":  {".png"},
	"image/gif":  {".gif"},
}

// magicSignatures holds the leading byte signatures accepted for each
// declared content type, independent of filename and declared metadata.
var magicSignatures = map[string][][]byte{
	"image/jpeg": {{0xFF, 0xD8, 0xFF}},
	"image/png":  {{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}},
	"image/gif":  {[]byte("GIF87a"), []byte("GIF89a")},
}

// Result describes a successfully validated image.
type Result struct {
	// Format is the decoded image format ("jpeg", "png", "gif"), which may
	// be trusted over the declared content type.
	Format string
	Width  int
	Height int
}

// Validator runs the multi-stage upload checks. Stages run in order and
// short-circuit on the first failure, so cheap checks reject before any
// decode work happens.
type Validator struct {
	maxFileSize int64
}

// New creates a validator. A non-positive maxFileSize falls back to
// DefaultMaxFileSize.
func New(maxFileSize int64) *Validator {
	if maxFileSize <= 0 {
		maxFileSize = DefaultMaxFileSize
	}
	return &Validator{maxFileSize: maxFileSize}
}

// SupportedFormats returns the human-readable list of accepted formats.
func SupportedFormats() string {
	return "JPG, PNG, GIF"
}

// Validate checks the blob and returns image details on success. On failure
// the returned error is an *ocrapi.RequestError carrying one of EmptyFile,
// FileTooLarge, UnsupportedType or CorruptedImage.
func (v *Validator) Validate(data []byte, contentType, filename string) (Result, error) {
	// Stage 1: reject empty uploads.
	if len(data) == 0 {
		return Result{}, ocrapi.NewRequestError(ocrapi.ReasonEmptyFile, "Empty file uploaded.")
	}

	// Stage 2: reject oversized uploads before looking at content.
	if int64(len(data)) > v.maxFileSize {
		return Result{}, ocrapi.NewRequestError(ocrapi.ReasonFileTooLarge,
			fmt.Sprintf("File too large. Maximum size is %dMB.", v.maxFileSize>>20))
	}

	// Stage 3: declared content type must be in the supported set.
	extensions, ok := supportedFormats[contentType]
	if !ok {
		return Result{}, unsupportedType()
	}

	// Stage 4: filename extension must match the declared type.
	ext := strings.ToLower(filepath.Ext(filename))
	if !slices.Contains(extensions, ext) {
		return Result{}, unsupportedType()
	}

	// Stage 5: leading bytes must carry the declared format's signature,
	// guarding against mislabeled or spoofed uploads.
	if !matchesSignature(data, contentType) {
		return Result{}, unsupportedType()
	}

	// Stage 6: the stream must fully decode. Dimensions come from the
	// decoded image, so truncated or corrupt payloads are rejected here.
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Result{}, ocrapi.NewRequestError(ocrapi.ReasonCorruptedImage,
			"Corrupted or truncated image file.")
	}

	bounds := img.Bounds()
	return Result{
		Format: format,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

func unsupportedType() *ocrapi.RequestError {
	return ocrapi.NewRequestError(ocrapi.ReasonUnsupportedType,
		fmt.Sprintf("Invalid file type. Supported formats: %s", SupportedFormats()))
}

func matchesSignature(data []byte, contentType string) bool {
	for _, sig := range magicSignatures[contentType] {
		if bytes.HasPrefix(data, sig) {
			return true
		}
	}
	return false
}
