package validation

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

func testImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), B: 128, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(w, h)); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("jpeg.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func encodeGIF(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := gif.Encode(&buf, testImage(w, h), nil); err != nil {
		t.Fatalf("gif.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func reasonOf(t *testing.T, err error) ocrapi.ErrorReason {
	t.Helper()
	var reqErr *ocrapi.RequestError
	if !errors.As(err, &reqErr) {
		t.Fatalf("error %v is not a *ocrapi.RequestError", err)
	}
	return reqErr.Reason
}

func TestValidateEmptyFile(t *testing.T) {
	v := New(0)
	_, err := v.Validate(nil, "image/png", "a.png")
	if err == nil {
		t.Fatal("Validate() error = nil, want EmptyFile")
	}
	if got := reasonOf(t, err); got != ocrapi.ReasonEmptyFile {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonEmptyFile)
	}
}

func TestValidateFileTooLarge(t *testing.T) {
	v := New(1024)
	data := bytes.Repeat([]byte{0xAB}, 1025)
	_, err := v.Validate(data, "image/png", "a.png")
	if got := reasonOf(t, err); got != ocrapi.ReasonFileTooLarge {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonFileTooLarge)
	}
}

func TestValidateSizeCheckedBeforeContent(t *testing.T) {
	// Oversized uploads are rejected regardless of declared type or content.
	v := New(16)
	data := bytes.Repeat([]byte{0x00}, 17)
	_, err := v.Validate(data, "application/pdf", "a.pdf")
	if got := reasonOf(t, err); got != ocrapi.ReasonFileTooLarge {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonFileTooLarge)
	}
}

func TestValidateUnsupportedContentType(t *testing.T) {
	v := New(0)
	_, err := v.Validate(encodePNG(t, 4, 4), "application/pdf", "a.pdf")
	if got := reasonOf(t, err); got != ocrapi.ReasonUnsupportedType {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonUnsupportedType)
	}
}

func TestValidateExtensionMismatch(t *testing.T) {
	v := New(0)
	_, err := v.Validate(encodePNG(t, 4, 4), "image/png", "photo.jpg")
	if got := reasonOf(t, err); got != ocrapi.ReasonUnsupportedType {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonUnsupportedType)
	}
}

func TestValidateSignatureMismatch(t *testing.T) {
	// Declared type and extension agree but the bytes are not a PNG.
	v := New(0)
	data := []byte("this is definitely not a png")
	_, err := v.Validate(data, "image/png", "fake.png")
	if got := reasonOf(t, err); got != ocrapi.ReasonUnsupportedType {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonUnsupportedType)
	}
}

func TestValidateTruncatedImage(t *testing.T) {
	v := New(0)
	data := encodePNG(t, 32, 32)
	truncated := data[:len(data)/2]
	_, err := v.Validate(truncated, "image/png", "cut.png")
	if got := reasonOf(t, err); got != ocrapi.ReasonCorruptedImage {
		t.Errorf("reason = %q, want %q", got, ocrapi.ReasonCorruptedImage)
	}
}

func TestValidateSuccess(t *testing.T) {
	v := New(0)

	tests := []struct {
		name        string
		data        []byte
		contentType string
		filename    string
		wantFormat  string
	}{
		{"png", encodePNG(t, 8, 6), "image/png", "a.png", "png"},
		{"jpeg", encodeJPEG(t, 8, 6), "image/jpeg", "a.jpg", "jpeg"},
		{"jpeg alt extension", encodeJPEG(t, 8, 6), "image/jpeg", "a.jpeg", "jpeg"},
		{"gif", encodeGIF(t, 8, 6), "image/gif", "a.gif", "gif"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := v.Validate(tt.data, tt.contentType, tt.filename)
			if err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if res.Format != tt.wantFormat {
				t.Errorf("Format = %q, want %q", res.Format, tt.wantFormat)
			}
			if res.Width != 8 || res.Height != 6 {
				t.Errorf("dimensions = %dx%d, want 8x6", res.Width, res.Height)
			}
		})
	}
}

func TestValidateUppercaseExtension(t *testing.T) {
	v := New(0)
	if _, err := v.Validate(encodePNG(t, 4, 4), "image/png", "PHOTO.PNG"); err != nil {
		t.Errorf("Validate() error = %v, want nil for uppercase extension", err)
	}
}
