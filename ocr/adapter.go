package ocr

import (
	"bytes"
	"fmt"
	"image/png"
	"math"

	"github.com/wudi/pageview/raster"
)

// InputOption mutates an OCR input generated from a page surface.
type InputOption func(*Input)

// WithLanguages sets language hints on the OCR input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithRegion sets the recognition region on the OCR input.
func WithRegion(region Region) InputOption {
	return func(in *Input) {
		if region.IsEmpty() {
			in.Region = nil
			return
		}
		in.Region = &region
	}
}

// WithDPI overrides the DPI value on the OCR input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// InputFromSurface PNG-encodes a rendered page. The ID combines the caller's
// document id and the page number so results can be correlated. The DPI
// defaults to 72·scale·dpr, the surface's effective resolution.
func InputFromSurface(docID string, page int, scale float64, s *raster.Surface, opts ...InputOption) (Input, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, s.Image); err != nil {
		return Input{}, fmt.Errorf("encode page surface: %w", err)
	}
	in := Input{
		ID:     fmt.Sprintf("%s-p%d", docID, page),
		Image:  buf.Bytes(),
		Format: ImageFormatPNG,
		Page:   page,
		DPI:    int(math.Round(72 * scale * s.DevicePixelRatio)),
	}
	for _, opt := range opts {
		opt(&in)
	}
	return in, nil
}
