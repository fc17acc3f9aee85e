// Package basic is a pure-Go preview rasterizer: it paints the page
// background and draws the page's text runs with a TrueType face. It needs no
// native libraries, which makes it the default engine for headless use and
// tests.
package basic

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/raster"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/math/fixed"
)

// Config controls the engine's appearance.
type Config struct {
	Background color.Color
	Foreground color.Color
	// Font is a TrueType font; Go Regular is used when empty.
	Font []byte
	// SkipText paints only the background.
	SkipText bool
}

type Engine struct {
	cfg  Config
	font *truetype.Font
}

func New(cfg Config) (*Engine, error) {
	if cfg.Background == nil {
		cfg.Background = color.White
	}
	if cfg.Foreground == nil {
		cfg.Foreground = color.Black
	}
	data := cfg.Font
	if len(data) == 0 {
		data = goregular.TTF
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font: %w", err)
	}
	return &Engine{cfg: cfg, font: f}, nil
}

func (e *Engine) Name() string { return "basic" }

// Render draws upright at the target resolution and then turns the bitmap to
// the requested rotation, so glyphs follow the page when it is rotated.
func (e *Engine) Render(ctx context.Context, req raster.Request) error {
	if err := raster.Checkpoint(ctx); err != nil {
		return err
	}
	s := req.Surface
	vp := req.Viewport
	if vp.Scale <= 0 {
		return fmt.Errorf("invalid scale %v", vp.Scale)
	}
	// Intrinsic page box: undo the rotation swap and the scale.
	bw, bh := coords.EffectiveDimensions(vp.Width, vp.Height, 1/vp.Scale, vp.Rotation)
	k := vp.Scale * s.DevicePixelRatio
	base := image.NewRGBA(image.Rect(0, 0, int(math.Floor(bw*k)), int(math.Floor(bh*k))))
	draw.Draw(base, base.Bounds(), &image.Uniform{C: e.cfg.Background}, image.Point{}, draw.Src)

	if !e.cfg.SkipText && req.Page != nil {
		runs, err := req.Page.TextContent(ctx)
		if err != nil {
			if raster.IsCancelled(err) {
				return raster.ErrCancelled
			}
			return fmt.Errorf("page text: %w", err)
		}
		upright := coords.ViewportTransform(bw, bh, k, 0)
		fc := freetype.NewContext()
		fc.SetDPI(72)
		fc.SetFont(e.font)
		fc.SetClip(base.Bounds())
		fc.SetDst(base)
		fc.SetSrc(&image.Uniform{C: e.cfg.Foreground})
		fc.SetHinting(font.HintingNone)
		for _, run := range runs {
			if err := raster.Checkpoint(ctx); err != nil {
				return err
			}
			size := run.FontSize * k
			if size < 1 {
				continue
			}
			fc.SetFontSize(size)
			origin := upright.Transform(coords.Point{X: run.X, Y: run.Y})
			if _, err := fc.DrawString(run.Text, fixed.Point26_6{X: toFixed(origin.X), Y: toFixed(origin.Y)}); err != nil {
				return fmt.Errorf("draw run %q: %w", run.Text, err)
			}
		}
	}
	if err := raster.Checkpoint(ctx); err != nil {
		return err
	}
	rotated := raster.Rotate(base, vp.Rotation)
	draw.Draw(s.Image, s.Image.Bounds(), rotated, rotated.Bounds().Min, draw.Src)
	return nil
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}
