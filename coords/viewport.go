package coords

import "math"

// NormalizeRotation maps any multiple of 90 degrees into {0, 90, 180, 270}.
// Other angles are snapped down to the nearest quarter turn.
func NormalizeRotation(deg int) int {
	r := ((deg % 360) + 360) % 360
	return r - r%90
}

// EffectiveDimensions returns the on-screen size of a page with intrinsic size
// w×h (scale 1, rotation 0) once rotated and scaled.
func EffectiveDimensions(w, h, scale float64, rotation int) (float64, float64) {
	switch NormalizeRotation(rotation) {
	case 90, 270:
		w, h = h, w
	}
	return w * scale, h * scale
}

// FitMode selects which container dimension a page is fitted to.
type FitMode int

const (
	FitWidth FitMode = iota
	FitHeight
)

func (m FitMode) String() string {
	if m == FitHeight {
		return "height"
	}
	return "width"
}

// FitScale solves for the scale that makes the rotated page's width (or height)
// equal the container dimension minus padding. The result is rounded to four
// decimals. Degenerate inputs yield 0.
func FitScale(mode FitMode, w, h, containerW, containerH float64, rotation int, padding float64) float64 {
	ew, eh := EffectiveDimensions(w, h, 1, rotation)
	var avail, dim float64
	if mode == FitHeight {
		avail, dim = containerH-padding, eh
	} else {
		avail, dim = containerW-padding, ew
	}
	if avail <= 0 || dim <= 0 {
		return 0
	}
	return math.Round(avail/dim*1e4) / 1e4
}

// ViewportTransform maps page space (origin bottom-left, y up, size w×h) to
// viewport space (origin top-left, y down) for the given scale and clockwise
// rotation.
func ViewportTransform(w, h, scale float64, rotation int) Matrix {
	s := scale
	switch NormalizeRotation(rotation) {
	case 90:
		return Matrix{0, s, s, 0, 0, 0}
	case 180:
		return Matrix{-s, 0, 0, s, w * s, 0}
	case 270:
		return Matrix{0, -s, -s, 0, h * s, w * s}
	default:
		return Matrix{s, 0, 0, -s, 0, h * s}
	}
}
