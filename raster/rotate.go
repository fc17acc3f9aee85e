package raster

import (
	"image"

	"github.com/wudi/pageview/coords"
	"golang.org/x/image/draw"
)

// Rotate returns src turned clockwise by rotation degrees (a multiple of 90).
func Rotate(src *image.RGBA, rotation int) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	rotation = coords.NormalizeRotation(rotation)
	if rotation == 0 {
		return src
	}
	var dst *image.RGBA
	if rotation == 180 {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	} else {
		dst = image.NewRGBA(image.Rect(0, 0, h, w))
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := src.RGBAAt(b.Min.X+x, b.Min.Y+y)
			switch rotation {
			case 90:
				dst.SetRGBA(h-1-y, x, c)
			case 180:
				dst.SetRGBA(w-1-x, h-1-y, c)
			case 270:
				dst.SetRGBA(y, w-1-x, c)
			}
		}
	}
	return dst
}

// Blit scales src onto the whole of the surface.
func (s *Surface) Blit(src image.Image) {
	draw.CatmullRom.Scale(s.Image, s.Image.Bounds(), src, src.Bounds(), draw.Src, nil)
}
