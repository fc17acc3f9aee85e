// Package visibility reports how much of each mounted page region is inside
// the visible scroll area.
package visibility

import (
	"math"
	"sort"
	"sync"
)

// Region is a page's vertical extent inside the scroll content, in CSS px.
type Region struct {
	Page   int
	Top    float64
	Height float64
}

func (r Region) Bottom() float64 { return r.Top + r.Height }

// Sample is the visible fraction of one page region, in [0, 1].
type Sample struct {
	Page  int
	Ratio float64
}

// Callback receives a batch of samples.
type Callback func([]Sample)

// Observer watches page regions and reports intersection ratios.
type Observer interface {
	Observe(regions []Region, cb Callback)
	Unobserve(page int)
	Disconnect()
}

// Ratio returns the fraction of r inside the window [top, top+height).
func Ratio(r Region, top, height float64) float64 {
	if r.Height <= 0 || height <= 0 {
		return 0
	}
	lo := math.Max(r.Top, top)
	hi := math.Min(r.Bottom(), top+height)
	if hi <= lo {
		return 0
	}
	return (hi - lo) / r.Height
}

// Container is a headless scroll container. It serves as both the observer
// of page regions and the scroll target for a viewer. Callbacks run
// synchronously on the goroutine that scrolled, outside the container's lock.
type Container struct {
	mu      sync.Mutex
	width   float64
	height  float64
	offset  float64
	regions []Region
	cb      Callback
}

func NewContainer(width, height float64) *Container {
	return &Container{width: width, height: height}
}

// Observe replaces the observed regions and callback, then reports the
// current ratios.
func (c *Container) Observe(regions []Region, cb Callback) {
	c.mu.Lock()
	c.regions = append(c.regions[:0:0], regions...)
	sort.SliceStable(c.regions, func(i, j int) bool { return c.regions[i].Page < c.regions[j].Page })
	c.cb = cb
	c.offset = c.clamp(c.offset)
	cb, samples := c.snapshot()
	c.mu.Unlock()
	emit(cb, samples)
}

func (c *Container) Unobserve(page int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := c.regions[:0]
	for _, r := range c.regions {
		if r.Page != page {
			out = append(out, r)
		}
	}
	c.regions = out
}

func (c *Container) Disconnect() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.regions = nil
	c.cb = nil
}

// ScrollTo moves the top of the visible area to offset, clamped to the
// scrollable range.
func (c *Container) ScrollTo(offset float64) {
	c.mu.Lock()
	c.offset = c.clamp(offset)
	cb, samples := c.snapshot()
	c.mu.Unlock()
	emit(cb, samples)
}

func (c *Container) Offset() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.offset
}

func (c *Container) Size() (float64, float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.width, c.height
}

// SetSize resizes the visible area and reports the new ratios.
func (c *Container) SetSize(width, height float64) {
	c.mu.Lock()
	c.width, c.height = width, height
	c.offset = c.clamp(c.offset)
	cb, samples := c.snapshot()
	c.mu.Unlock()
	emit(cb, samples)
}

// ContentHeight is the bottom edge of the lowest observed region.
func (c *Container) ContentHeight() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contentHeight()
}

func (c *Container) contentHeight() float64 {
	var h float64
	for _, r := range c.regions {
		h = math.Max(h, r.Bottom())
	}
	return h
}

func (c *Container) clamp(offset float64) float64 {
	limit := math.Max(0, c.contentHeight()-c.height)
	return math.Min(math.Max(offset, 0), limit)
}

func (c *Container) snapshot() (Callback, []Sample) {
	if c.cb == nil || len(c.regions) == 0 {
		return nil, nil
	}
	samples := make([]Sample, len(c.regions))
	for i, r := range c.regions {
		samples[i] = Sample{Page: r.Page, Ratio: Ratio(r, c.offset, c.height)}
	}
	return c.cb, samples
}

func emit(cb Callback, samples []Sample) {
	if cb != nil && len(samples) > 0 {
		cb(samples)
	}
}
