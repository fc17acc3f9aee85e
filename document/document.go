// Package document defines the contract between the viewer and the external
// document-parsing collaborator. Parsers turn opaque document bytes into a
// Document whose pages expose their intrinsic size and positioned text runs;
// the byte format itself is never interpreted by the viewer.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pageview/coords"
)

var (
	// ErrPageRange is returned when a page number lies outside [1, PageCount].
	ErrPageRange = errors.New("page number out of range")
	// ErrPassword is returned when an encrypted document cannot be opened with
	// the supplied password.
	ErrPassword = errors.New("document password rejected")
)

// Parser opens documents from raw bytes.
type Parser interface {
	Open(ctx context.Context, data []byte) (Document, error)
}

// Document is an opened, immutable document handle. Close releases any
// resources held by the parser; it must be safe to call more than once.
type Document interface {
	PageCount() int
	// Page returns the handle of the 1-based page n.
	Page(ctx context.Context, n int) (Page, error)
	Close() error
}

// Outliner is implemented by documents that carry a navigation outline.
type Outliner interface {
	Outline() []OutlineItem
}

// Scripted is implemented by documents that carry document-level scripts to
// run once the document is displayed.
type Scripted interface {
	Scripts() []string
}

// Page is a single page of an opened document.
type Page interface {
	Number() int
	// Size is the page's width and height at scale 1, rotation 0.
	Size() (width, height float64)
	// Viewport returns the on-screen size at the given scale and rotation.
	Viewport(scale float64, rotation int) Viewport
	// TextContent returns the page's text runs in page space.
	TextContent(ctx context.Context) ([]TextRun, error)
}

// Viewport is the transformed page geometry used for rasterization and text
// overlay placement.
type Viewport struct {
	Width, Height float64
	Scale         float64
	Rotation      int
	// Transform maps page space to viewport space.
	Transform coords.Matrix
}

// NewViewport derives the viewport of a page of intrinsic size w×h.
func NewViewport(w, h, scale float64, rotation int) Viewport {
	rotation = coords.NormalizeRotation(rotation)
	vw, vh := coords.EffectiveDimensions(w, h, scale, rotation)
	return Viewport{
		Width:     vw,
		Height:    vh,
		Scale:     scale,
		Rotation:  rotation,
		Transform: coords.ViewportTransform(w, h, scale, rotation),
	}
}

// TextRun is a positioned run of text in page space: (X, Y) is the baseline
// origin relative to the page's lower-left corner.
type TextRun struct {
	Text     string
	X, Y     float64
	Width    float64
	FontSize float64
	Font     string
}

// Bounds returns the run's box in page space (y up), from the baseline
// descent to the ascent.
func (r TextRun) Bounds() coords.Rect {
	size := r.FontSize
	if size <= 0 {
		size = 1
	}
	return coords.Rect{X: r.X, Y: r.Y - size*0.2, W: r.Width, H: size}
}

// OutlineItem is a flattened outline entry.
type OutlineItem struct {
	Title string
	Level int
}

// CheckPage validates n against a document's page count.
func CheckPage(n, count int) error {
	if n < 1 || n > count {
		return fmt.Errorf("page %d of %d: %w", n, count, ErrPageRange)
	}
	return nil
}
