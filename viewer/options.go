package viewer

import (
	"time"

	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/observability"
	"github.com/wudi/pageview/raster"
	"github.com/wudi/pageview/visibility"
)

// Scroller is the scroll container hosting the page strip.
type Scroller interface {
	ScrollTo(offset float64)
	// Size is the visible area in CSS px.
	Size() (width, height float64)
}

// Option configures a Viewer.
type Option func(*Viewer)

// WithLogger sets the structured logger.
func WithLogger(l observability.Logger) Option {
	return func(v *Viewer) {
		if l != nil {
			v.logger = l
		}
	}
}

// WithTracer sets the tracer wrapping loads and page renders.
func WithTracer(t observability.Tracer) Option {
	return func(v *Viewer) {
		if t != nil {
			v.tracer = t
		}
	}
}

// WithEngine sets the raster engine. When e also implements raster.Factory,
// a per-document engine is created on every load.
func WithEngine(e raster.Engine) Option {
	return func(v *Viewer) { v.engine = e }
}

// WithObserver sets the visibility observer.
func WithObserver(o visibility.Observer) Option {
	return func(v *Viewer) { v.observer = o }
}

// WithScroller sets the scroll container.
func WithScroller(s Scroller) Option {
	return func(v *Viewer) { v.scroller = s }
}

// WithContainer uses c as both observer and scroller.
func WithContainer(c *visibility.Container) Option {
	return func(v *Viewer) {
		v.observer = c
		v.scroller = c
	}
}

func WithDevicePixelRatio(dpr float64) Option {
	return func(v *Viewer) {
		if dpr > 0 {
			v.dpr = dpr
		}
	}
}

// WithPageGap sets the vertical gap between pages in CSS px.
func WithPageGap(gap float64) Option {
	return func(v *Viewer) {
		if gap >= 0 {
			v.gap = gap
		}
	}
}

// WithFitPadding sets the padding subtracted from the scroller size when
// computing fit scales.
func WithFitPadding(p float64) Option {
	return func(v *Viewer) {
		if p >= 0 {
			v.padding = p
		}
	}
}

// WithRetryDelay sets how long heading navigation waits before its single
// retry.
func WithRetryDelay(d time.Duration) Option {
	return func(v *Viewer) { v.retryDelay = d }
}

// WithOCR enables recognition for rendered pages without a text layer. The
// input options are applied to every page handed to e.
func WithOCR(e ocr.Engine, opts ...ocr.InputOption) Option {
	return func(v *Viewer) {
		v.ocr = e
		v.ocrOpts = append([]ocr.InputOption(nil), opts...)
	}
}

// WithScripting enables document scripts in RunScripts.
func WithScripting(enabled bool) Option {
	return func(v *Viewer) { v.scripting = enabled }
}

// WithPageChange registers the callback run when the dominant page changes.
func WithPageChange(fn func(current, total int)) Option {
	return func(v *Viewer) { v.onPageChange = fn }
}

// WithTextSelected registers the callback run when a non-empty selection is
// captured.
func WithTextSelected(fn func(text string, page int)) Option {
	return func(v *Viewer) { v.onTextSelected = fn }
}

// WithPageRendered registers the callback run when a page surface is
// published. It runs on the render goroutine and must not call Close.
func WithPageRendered(fn func(page int, s *raster.Surface)) Option {
	return func(v *Viewer) { v.onPageRendered = fn }
}

// WithHeadingRetried registers the callback run after a deferred heading
// search, with whether it found the heading.
func WithHeadingRetried(fn func(text string, page int, found bool)) Option {
	return func(v *Viewer) { v.onHeadingRetried = fn }
}

// WithAlert registers the handler for script alerts.
func WithAlert(fn func(message string)) Option {
	return func(v *Viewer) { v.onAlert = fn }
}
