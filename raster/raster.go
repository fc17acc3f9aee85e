// Package raster defines the contract with the external raster engine and the
// device-pixel-ratio aware surfaces pages are drawn into.
package raster

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math"

	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/document"
	"golang.org/x/image/draw"
)

// ErrCancelled is the distinguished outcome of a render that was cancelled
// before it finished. It is not a failure.
var ErrCancelled = errors.New("render cancelled")

// IsCancelled reports whether err signals cancellation rather than failure.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}

// Surface is a raster target. Its pixel size is the CSS size multiplied by
// the device pixel ratio; Transform already includes that factor, so engines
// draw in page space and land on device pixels.
type Surface struct {
	Image            *image.RGBA
	CSSWidth         float64
	CSSHeight        float64
	DevicePixelRatio float64
	// Transform maps page space to device pixels.
	Transform coords.Matrix
}

// NewSurface allocates a surface for vp at the given device pixel ratio.
// A non-positive ratio is treated as 1.
func NewSurface(vp document.Viewport, dpr float64) *Surface {
	if dpr <= 0 {
		dpr = 1
	}
	w := int(math.Floor(vp.Width * dpr))
	h := int(math.Floor(vp.Height * dpr))
	return &Surface{
		Image:            image.NewRGBA(image.Rect(0, 0, w, h)),
		CSSWidth:         vp.Width,
		CSSHeight:        vp.Height,
		DevicePixelRatio: dpr,
		Transform:        vp.Transform.Multiply(coords.Scale(dpr, dpr)),
	}
}

// PixelSize returns the surface's backing size in device pixels.
func (s *Surface) PixelSize() (int, int) {
	b := s.Image.Bounds()
	return b.Dx(), b.Dy()
}

// ToCSS converts a device-pixel rectangle to CSS pixels.
func (s *Surface) ToCSS(r coords.Rect) coords.Rect {
	k := 1 / s.DevicePixelRatio
	return coords.Rect{X: r.X * k, Y: r.Y * k, W: r.W * k, H: r.H * k}
}

// Fill paints the whole surface with c.
func (s *Surface) Fill(c color.Color) {
	draw.Draw(s.Image, s.Image.Bounds(), &image.Uniform{C: c}, image.Point{}, draw.Src)
}

// Request describes one page render.
type Request struct {
	PageNumber int
	Page       document.Page
	Viewport   document.Viewport
	// Rotation is the viewer's rotation on top of the page's own /Rotate.
	// Viewport.Rotation is the total.
	Rotation int
	Surface  *Surface
}

// Factory is implemented by engines that need the document bytes, such as
// native renderers that parse the document themselves. The viewer calls
// ForDocument on every load and closes the returned engine when the document
// is replaced.
type Factory interface {
	ForDocument(data []byte) (Engine, error)
}

// Engine rasterizes a page into the request's surface. Implementations must
// honour ctx and return ErrCancelled (or the context error) when cancelled.
type Engine interface {
	Name() string
	Render(ctx context.Context, req Request) error
}

// Checkpoint returns ErrCancelled when ctx is done.
func Checkpoint(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ErrCancelled
	default:
		return nil
	}
}
