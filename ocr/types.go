package ocr

import "context"

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Region describes a rectangular area in pixel coordinates with the origin in
// the upper-left corner of the image.
type Region struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// IsEmpty reports whether the region has non-positive dimensions.
func (r Region) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Input is a single page image submitted for recognition.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded image payload in the format specified by Format.
	Image  []byte
	Format ImageFormat
	// Page is the 1-based page number the image was rendered from.
	Page int
	// DPI is the effective resolution of the image; zero means unknown.
	DPI int
	// Languages are trained-data hints such as "eng" or "deu".
	Languages []string
	// Region restricts recognition to part of the image. Nil means all of it.
	Region *Region
	// Metadata passes engine-specific variables through untouched.
	Metadata map[string]string
}

// TextWord represents a single recognized token.
type TextWord struct {
	Text       string
	Bounds     Region
	Confidence float64
}

// TextLine groups words that share a baseline.
type TextLine struct {
	Text       string
	Bounds     Region
	Words      []TextWord
	Confidence float64
}

// Result captures OCR output for a single input image.
type Result struct {
	InputID   string
	PlainText string
	Lines     []TextLine
	Language  string
}

// Words returns every recognized word in reading order.
func (r Result) Words() []TextWord {
	var out []TextWord
	for _, l := range r.Lines {
		out = append(out, l.Words...)
	}
	return out
}

// Engine is the provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
