package viewer

import (
	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/visibility"
)

// Buffer is the number of pages rendered on each side of the visible page.
const Buffer = 2

// PageInfo is the catalog entry of one page. Width and Height are at scale 1
// and rotation 0.
type PageInfo struct {
	Number   int
	Width    float64
	Height   float64
	Rendered bool
}

// ViewportState is the viewer's zoom, rotation and dominant page. Scale and
// Rotation change only through SetScale and SetRotation; VisiblePage only
// through visibility samples.
type ViewportState struct {
	Scale       float64
	Rotation    int
	VisiblePage int
}

// FitDimensions describes the visible page at scale 1 under the current
// rotation and the scroller it is shown in, with the scales that fit one to
// the other.
type FitDimensions struct {
	Page            int
	Width           float64
	Height          float64
	ContainerWidth  float64
	ContainerHeight float64
	FitWidth        float64
	FitHeight       float64
}

// Selection is the last captured text selection.
type Selection struct {
	Text string
	Page int
}

// Window returns the inclusive page range to keep rendered around visible.
func Window(visible, pageCount int) (lo, hi int) {
	if pageCount < 1 {
		return 1, 0
	}
	lo, hi = visible-Buffer, visible+Buffer
	if lo < 1 {
		lo = 1
	}
	if hi > pageCount {
		hi = pageCount
	}
	return lo, hi
}

// Tracker picks the dominant visible page from visibility samples.
type Tracker struct {
	current int
	total   int
}

// Reset forgets the previous page for a document of total pages.
func (t *Tracker) Reset(total int) {
	t.total = total
	t.current = 0
	if total > 0 {
		t.current = 1
	}
}

// Current returns the dominant page, or 0 before a document is loaded.
func (t *Tracker) Current() int { return t.current }

// Update selects the sample with the largest positive ratio. A candidate
// replaces the running best only with a strictly greater ratio, and the
// previous page is kept when its own ratio equals the maximum. It reports
// whether the dominant page changed.
func (t *Tracker) Update(samples []visibility.Sample) (int, bool) {
	best, bestRatio := t.current, 0.0
	prevRatio := -1.0
	for _, s := range samples {
		if s.Page < 1 || s.Page > t.total {
			continue
		}
		if s.Page == t.current {
			prevRatio = s.Ratio
		}
		if s.Ratio > bestRatio {
			best, bestRatio = s.Page, s.Ratio
		}
	}
	if bestRatio <= 0 || prevRatio == bestRatio || best == t.current {
		return t.current, false
	}
	t.current = best
	return best, true
}

// layout places pages top to bottom with gap CSS px between them.
func layout(pages []PageInfo, scale float64, rotation int, gap float64) []visibility.Region {
	regions := make([]visibility.Region, len(pages))
	top := 0.0
	for i, p := range pages {
		_, h := coords.EffectiveDimensions(p.Width, p.Height, scale, rotation)
		regions[i] = visibility.Region{Page: p.Number, Top: top, Height: h}
		top += h + gap
	}
	return regions
}
