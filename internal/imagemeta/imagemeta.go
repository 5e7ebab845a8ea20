// Package imagemeta extracts best-effort image metadata (format, dimensions,
// whitelisted EXIF tags) for responses requested with include_metadata.
package imagemeta

import (
	"bytes"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder
	"strconv"

	"github.com/rwcarlsen/goexif/exif"

	"github.com/tendant/simple-ocr/pkg/ocrapi"
)

// Extract returns metadata for the image, or nil if the bytes cannot be
// decoded. Absence of EXIF data is not an error; only a small whitelist of
// tags is ever exposed.
func Extract(data []byte) *ocrapi.ImageMetadata {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	meta := &ocrapi.ImageMetadata{
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}
	meta.EXIF = extractEXIF(data)
	return meta
}

func extractEXIF(data []byte) *ocrapi.EXIFData {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	out := &ocrapi.EXIFData{
		Make:     stringTag(x, exif.Make),
		Model:    stringTag(x, exif.Model),
		DateTime: stringTag(x, exif.DateTime),
		Software: stringTag(x, exif.Software),
	}
	if tag, err := x.Get(exif.Orientation); err == nil {
		if v, err := tag.Int(0); err == nil {
			out.Orientation = strconv.Itoa(v)
		}
	}

	if *out == (ocrapi.EXIFData{}) {
		return nil
	}
	return out
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}
