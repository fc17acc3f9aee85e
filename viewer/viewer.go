// Package viewer is the paginated document viewport renderer. It keeps a
// bounded window of pages rendered around the dominant visible page, keeps
// each page's text overlay aligned with its surface, navigates to headings
// and captures text selections.
//
// All viewer state is guarded by one mutex. Document opening, page fetches,
// rasterization and overlay building run outside it on goroutines driven by
// a context, and publish their results only while they are still current.
package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/document"
	"github.com/wudi/pageview/observability"
	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/overlay"
	"github.com/wudi/pageview/raster"
	"github.com/wudi/pageview/raster/basic"
	"github.com/wudi/pageview/visibility"
)

const (
	defaultPageGap    = 10
	defaultFitPadding = 16
	defaultRetryDelay = 600 * time.Millisecond
)

type stopper interface {
	Stop() bool
}

// catalog is everything derived from one opened document.
type catalog struct {
	doc        document.Document
	engine     raster.Engine
	ownsEngine bool
	pages      []PageInfo
	outline    []document.OutlineItem
	scripts    []string
}

func (c *catalog) close() error {
	var errs []error
	if c.ownsEngine {
		if cl, ok := c.engine.(io.Closer); ok {
			errs = append(errs, cl.Close())
		}
	}
	errs = append(errs, c.doc.Close())
	return errors.Join(errs...)
}

// slot is the per-page render state.
type slot struct {
	task    *PageRenderTask
	key     renderKey
	settled bool
	surface *raster.Surface
}

// Viewer displays one document at a time.
type Viewer struct {
	parser     document.Parser
	logger     observability.Logger
	tracer     observability.Tracer
	engine     raster.Engine
	observer   visibility.Observer
	scroller   Scroller
	dpr        float64
	gap        float64
	padding    float64
	retryDelay time.Duration
	afterFunc  func(time.Duration, func()) stopper
	ocr        ocr.Engine
	ocrOpts    []ocr.InputOption
	scripting  bool

	onPageChange   func(current, total int)
	onTextSelected func(text string, page int)
	onPageRendered func(page int, s *raster.Surface)
	onAlert        func(message string)

	onHeadingRetried func(text string, page int, found bool)

	mu        sync.Mutex
	ctx       context.Context
	stop      context.CancelFunc
	closed    bool
	loadSeq   uint64
	taskSeq   uint64
	cat       *catalog
	docID     string
	pages     []PageInfo
	state     ViewportState
	tracker   Tracker
	slots     []slot
	running   map[*PageRenderTask]struct{}
	overlays  *overlay.Index
	regions   []visibility.Region
	selection SelectionTracker
	retryGen  uint64
	retry     stopper
}

// New creates a viewer that opens documents with parser. Without options it
// renders with the basic engine into a 1024×768 headless container.
func New(parser document.Parser, opts ...Option) *Viewer {
	ctx, stop := context.WithCancel(context.Background())
	v := &Viewer{
		parser:     parser,
		logger:     observability.NopLogger{},
		tracer:     observability.NopTracer(),
		dpr:        1,
		gap:        defaultPageGap,
		padding:    defaultFitPadding,
		retryDelay: defaultRetryDelay,
		afterFunc: func(d time.Duration, f func()) stopper {
			return time.AfterFunc(d, f)
		},
		ctx:      ctx,
		stop:     stop,
		state:    ViewportState{Scale: 1},
		running:  make(map[*PageRenderTask]struct{}),
		overlays: overlay.NewIndex(0),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.engine == nil {
		if e, err := basic.New(basic.Config{}); err == nil {
			v.engine = e
		} else {
			v.logger.Error("default raster engine unavailable", observability.Error("error", err))
		}
	}
	if v.observer == nil && v.scroller == nil {
		c := visibility.NewContainer(1024, 768)
		v.observer, v.scroller = c, c
	}
	return v
}

// Load opens data and replaces the displayed document. A load that is
// overtaken by a later one returns ErrSuperseded; a rejected document
// returns a *DocumentLoadError and leaves the current document in place.
func (v *Viewer) Load(ctx context.Context, data []byte) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	v.loadSeq++
	seq := v.loadSeq
	v.mu.Unlock()

	ctx, span := v.tracer.StartSpan(ctx, "viewer.load")
	defer span.Finish()
	start := time.Now()
	docID := document.Fingerprint(data)
	log := v.logger.With(observability.String("doc", docID))
	span.SetTag("doc", docID)

	cat, err := v.open(ctx, data)
	if err != nil {
		span.SetError(err)
		if lerr := v.loadState(seq); lerr != nil {
			log.Debug("failed load discarded", observability.Error("error", err))
			return lerr
		}
		log.Error("document load failed", observability.Error("error", err))
		return &DocumentLoadError{Err: err}
	}

	v.mu.Lock()
	if lerr := v.loadStateLocked(seq); lerr != nil {
		v.mu.Unlock()
		log.Debug("load discarded", observability.Error("reason", lerr))
		if cerr := cat.close(); cerr != nil {
			log.Warn("close discarded document", observability.Error("error", cerr))
		}
		return lerr
	}
	old, oldTasks := v.swapLocked(cat, docID)
	resubscribe := v.relayoutLocked(true)
	v.scheduleLocked()
	total := len(v.pages)
	onPageChange := v.onPageChange
	v.mu.Unlock()

	if old != nil {
		waitTasks(oldTasks)
		if cerr := old.close(); cerr != nil {
			log.Warn("close previous document", observability.Error("error", cerr))
		}
	}
	if onPageChange != nil {
		onPageChange(1, total)
	}
	resubscribe()
	span.SetTag("pages", total)
	log.Info("document loaded",
		observability.Int(observability.MetricPageCount, total),
		observability.Int64(observability.MetricLoadTime, time.Since(start).Milliseconds()),
	)
	return nil
}

func (v *Viewer) open(ctx context.Context, data []byte) (*catalog, error) {
	if v.parser == nil {
		return nil, errors.New("no document parser configured")
	}
	doc, err := v.parser.Open(ctx, data)
	if err != nil {
		return nil, err
	}
	n := doc.PageCount()
	if n < 1 {
		doc.Close()
		return nil, errors.New("document has no pages")
	}
	pages := make([]PageInfo, n)
	for i := range pages {
		p, err := doc.Page(ctx, i+1)
		if err != nil {
			doc.Close()
			return nil, fmt.Errorf("page %d: %w", i+1, err)
		}
		w, h := p.Size()
		pages[i] = PageInfo{Number: i + 1, Width: w, Height: h}
	}
	cat := &catalog{doc: doc, engine: v.engine, pages: pages}
	if f, ok := v.engine.(raster.Factory); ok {
		e, err := f.ForDocument(data)
		if err != nil {
			doc.Close()
			return nil, fmt.Errorf("raster engine: %w", err)
		}
		cat.engine, cat.ownsEngine = e, true
	}
	if o, ok := doc.(document.Outliner); ok {
		cat.outline = o.Outline()
	}
	if s, ok := doc.(document.Scripted); ok {
		cat.scripts = s.Scripts()
	}
	return cat, nil
}

func (v *Viewer) loadState(seq uint64) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.loadStateLocked(seq)
}

func (v *Viewer) loadStateLocked(seq uint64) error {
	if v.closed {
		return ErrClosed
	}
	if seq != v.loadSeq {
		return ErrSuperseded
	}
	return nil
}

// swapLocked installs cat and returns the previous catalog with the tasks
// still running against it.
func (v *Viewer) swapLocked(cat *catalog, docID string) (*catalog, []*PageRenderTask) {
	old := v.cat
	tasks := v.cancelAllLocked()
	v.stopRetryLocked()
	v.cat = cat
	v.docID = docID
	v.pages = cat.pages
	v.slots = make([]slot, len(cat.pages))
	v.overlays = overlay.NewIndex(len(cat.pages))
	v.tracker.Reset(len(cat.pages))
	v.state.VisiblePage = v.tracker.Current()
	v.selection.Clear()
	return old, tasks
}

func (v *Viewer) cancelAllLocked() []*PageRenderTask {
	for i := range v.slots {
		if t := v.slots[i].task; t != nil {
			t.Cancel()
			v.slots[i].task = nil
		}
	}
	tasks := make([]*PageRenderTask, 0, len(v.running))
	for t := range v.running {
		t.Cancel()
		tasks = append(tasks, t)
	}
	return tasks
}

func waitTasks(tasks []*PageRenderTask) {
	for _, t := range tasks {
		<-t.Done()
	}
}

// relayoutLocked recomputes the page strip and returns the effect that
// re-subscribes the observer to it.
func (v *Viewer) relayoutLocked(resetScroll bool) func() {
	v.regions = layout(v.pages, v.state.Scale, v.state.Rotation, v.gap)
	regions := append([]visibility.Region(nil), v.regions...)
	seq := v.loadSeq
	obs, sc := v.observer, v.scroller
	return func() {
		if obs != nil {
			obs.Disconnect()
		}
		if resetScroll && sc != nil {
			sc.ScrollTo(0)
		}
		if obs != nil {
			obs.Observe(regions, func(s []visibility.Sample) { v.onSamples(seq, s) })
		}
	}
}

func (v *Viewer) onSamples(seq uint64, samples []visibility.Sample) {
	v.mu.Lock()
	if v.closed || seq != v.loadSeq || v.cat == nil {
		v.mu.Unlock()
		return
	}
	page, changed := v.tracker.Update(samples)
	if !changed {
		v.mu.Unlock()
		return
	}
	v.state.VisiblePage = page
	v.scheduleLocked()
	total := len(v.pages)
	cb := v.onPageChange
	v.mu.Unlock()
	v.logger.Debug("visible page changed", observability.Int("page", page), observability.Int("total", total))
	if cb != nil {
		cb(page, total)
	}
}

func (v *Viewer) currentKeyLocked() renderKey {
	return renderKey{scale: v.state.Scale, rotation: v.state.Rotation, dpr: v.dpr}
}

// scheduleLocked cancels tasks outside the render window and starts one for
// every page in it that is neither rendered nor in flight at the current
// parameters.
func (v *Viewer) scheduleLocked() {
	if v.cat == nil {
		return
	}
	lo, hi := Window(v.state.VisiblePage, len(v.pages))
	for i := range v.slots {
		n := i + 1
		if t := v.slots[i].task; t != nil && (n < lo || n > hi) {
			t.Cancel()
			v.slots[i].task = nil
			v.logger.Debug("render cancelled", observability.Int("page", n), observability.String("reason", "outside window"))
		}
	}
	key := v.currentKeyLocked()
	for n := lo; n <= hi; n++ {
		s := &v.slots[n-1]
		if s.key == key && (s.task != nil || s.settled) {
			continue
		}
		v.startLocked(n, key)
	}
}

func (v *Viewer) startLocked(n int, key renderKey) {
	s := &v.slots[n-1]
	if s.task != nil {
		s.task.Cancel()
	}
	v.overlays.Invalidate(n)
	v.pages[n-1].Rendered = false
	v.taskSeq++
	t := newTask(v.ctx, n, v.taskSeq, key)
	s.task, s.key, s.settled = t, key, false
	v.running[t] = struct{}{}
	go v.run(t, v.cat, v.docID)
}

func (v *Viewer) run(t *PageRenderTask, cat *catalog, docID string) {
	log := v.logger.With(observability.String("doc", docID), observability.Int("page", t.Page))
	res := v.render(t, cat, docID, log)
	outcome, err := res.outcome, res.err

	v.mu.Lock()
	var s *slot
	if t.Page <= len(v.slots) {
		s = &v.slots[t.Page-1]
	}
	current := !v.closed && s != nil && s.task != nil && s.task.ID == t.ID
	if !current {
		outcome, err = Cancelled, nil
	}
	var onRendered func(int, *raster.Surface)
	if current {
		s.task = nil
		switch outcome {
		case Rendered, Degraded:
			s.settled, s.surface = true, res.surface
			v.pages[t.Page-1].Rendered = true
			if res.entry != nil {
				v.overlays.Set(t.Page, res.entry)
			}
			onRendered = v.onPageRendered
		}
	}
	v.mu.Unlock()

	switch outcome {
	case Failed:
		log.Error("page render failed", observability.Error("error", err))
	case Degraded:
		log.Warn("page has no text overlay", observability.Error("error", err))
	case Cancelled:
		log.Debug("page render cancelled")
	default:
		log.Debug("page rendered")
	}
	if onRendered != nil {
		onRendered(t.Page, res.surface)
	}

	v.mu.Lock()
	delete(v.running, t)
	v.mu.Unlock()
	t.finish(outcome, err)
}

// result is what a task produced before its commit point.
type result struct {
	outcome Outcome
	err     error
	surface *raster.Surface
	entry   *overlay.Entry
}

func (v *Viewer) render(t *PageRenderTask, cat *catalog, docID string, log observability.Logger) result {
	ctx, span := v.tracer.StartSpan(t.ctx, "viewer.render")
	defer span.Finish()
	span.SetTag("page", t.Page)

	start := time.Now()
	page, err := cat.doc.Page(ctx, t.Page)
	if ctx.Err() != nil {
		return result{outcome: Cancelled}
	}
	if err != nil {
		span.SetError(err)
		return result{outcome: Failed, err: &PageRasterError{Page: t.Page, Err: err}}
	}
	if cat.engine == nil {
		return result{outcome: Failed, err: &PageRasterError{Page: t.Page, Err: errors.New("no raster engine configured")}}
	}
	vp := page.Viewport(t.key.scale, t.key.rotation)
	surface := raster.NewSurface(vp, t.key.dpr)
	err = cat.engine.Render(ctx, raster.Request{
		PageNumber: t.Page,
		Page:       page,
		Viewport:   vp,
		Rotation:   t.key.rotation,
		Surface:    surface,
	})
	if raster.IsCancelled(err) || ctx.Err() != nil {
		return result{outcome: Cancelled}
	}
	if err != nil {
		span.SetError(err)
		return result{outcome: Failed, err: &PageRasterError{Page: t.Page, Err: err}}
	}
	log.Debug("page rasterized",
		observability.String("engine", cat.engine.Name()),
		observability.Int64(observability.MetricRenderCount, 1),
		observability.Int64(observability.MetricRenderTime, time.Since(start).Milliseconds()),
	)

	start = time.Now()
	entry, err := v.buildOverlay(ctx, t, page, vp, surface, docID)
	if ctx.Err() != nil {
		return result{outcome: Cancelled}
	}
	if err != nil {
		return result{outcome: Degraded, err: &TextOverlayError{Page: t.Page, Err: err}, surface: surface}
	}
	log.Debug("text overlay built",
		observability.Int("spans", len(entry.Spans)),
		observability.String("source", entry.Source.String()),
		observability.Int64(observability.MetricOverlayTime, time.Since(start).Milliseconds()),
	)
	return result{outcome: Rendered, surface: surface, entry: entry}
}

// buildOverlay places the page's text runs with vp. Pages without text fall
// back to recognition of the rendered surface when an OCR engine is set.
func (v *Viewer) buildOverlay(ctx context.Context, t *PageRenderTask, page document.Page, vp document.Viewport, surface *raster.Surface, docID string) (*overlay.Entry, error) {
	runs, err := page.TextContent(ctx)
	if err != nil && v.ocr == nil {
		return nil, err
	}
	var entry *overlay.Entry
	if err == nil {
		entry = overlay.FromRuns(t.Page, vp, runs)
		if len(entry.Spans) > 0 || v.ocr == nil {
			return entry, nil
		}
	}
	if cerr := raster.Checkpoint(ctx); cerr != nil {
		return nil, cerr
	}
	in, ierr := ocr.InputFromSurface(docID, t.Page, t.key.scale, surface, v.ocrOpts...)
	if ierr != nil {
		return nil, errors.Join(err, ierr)
	}
	start := time.Now()
	res, rerr := v.ocr.Recognize(ctx, in)
	if rerr != nil {
		return nil, errors.Join(err, fmt.Errorf("%s: %w", v.ocr.Name(), rerr))
	}
	v.logger.Debug("page recognized",
		observability.Int("page", t.Page),
		observability.Int64(observability.MetricOCRTime, time.Since(start).Milliseconds()),
	)
	return overlay.FromOCR(t.Page, vp, res, surface), nil
}

// SetScale changes the zoom factor. Scale must be positive and finite.
func (v *Viewer) SetScale(scale float64) error {
	if scale <= 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		return fmt.Errorf("invalid scale %v", scale)
	}
	return v.update(func() bool {
		if v.state.Scale == scale {
			return false
		}
		v.state.Scale = scale
		return true
	})
}

// SetRotation sets the clockwise rotation. deg must be a multiple of 90 and
// is normalized into [0, 360).
func (v *Viewer) SetRotation(deg int) error {
	if deg%90 != 0 {
		return fmt.Errorf("invalid rotation %d: not a multiple of 90", deg)
	}
	deg = coords.NormalizeRotation(deg)
	return v.update(func() bool {
		if v.state.Rotation == deg {
			return false
		}
		v.state.Rotation = deg
		return true
	})
}

// SetDevicePixelRatio changes the backing resolution of page surfaces.
func (v *Viewer) SetDevicePixelRatio(dpr float64) error {
	if dpr <= 0 || math.IsInf(dpr, 0) || math.IsNaN(dpr) {
		return fmt.Errorf("invalid device pixel ratio %v", dpr)
	}
	return v.update(func() bool {
		if v.dpr == dpr {
			return false
		}
		v.dpr = dpr
		return true
	})
}

// update applies change under the lock and, when it reports a change,
// relays out the strip and reschedules the render window.
func (v *Viewer) update(change func() bool) error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if !change() || v.cat == nil {
		v.mu.Unlock()
		return nil
	}
	resubscribe := v.relayoutLocked(false)
	v.scheduleLocked()
	v.mu.Unlock()
	resubscribe()
	return nil
}

// ScrollToPage scrolls the top of page n to the top of the viewport.
func (v *Viewer) ScrollToPage(n int) error {
	v.mu.Lock()
	if err := v.readyLocked(); err != nil {
		v.mu.Unlock()
		return err
	}
	if err := document.CheckPage(n, len(v.pages)); err != nil {
		v.mu.Unlock()
		return err
	}
	top := v.regions[n-1].Top
	v.mu.Unlock()
	v.scrollTo(top)
	return nil
}

// ScrollToHeading scrolls to the span best matching text, searching page
// when it is positive and every indexed page otherwise. When a hinted page
// has no match yet, it scrolls to that page and retries once after the
// retry delay. It reports whether a match was found immediately.
func (v *Viewer) ScrollToHeading(text string, page int) bool {
	v.mu.Lock()
	if v.readyLocked() != nil {
		v.mu.Unlock()
		return false
	}
	v.stopRetryLocked()
	if page < 0 || page > len(v.pages) {
		page = 0
	}
	if offset, ok := v.findHeadingLocked(text, page); ok {
		v.mu.Unlock()
		v.scrollTo(offset)
		return true
	}
	if page == 0 {
		v.mu.Unlock()
		return false
	}
	top := v.regions[page-1].Top
	gen := v.retryGen
	v.retry = v.afterFunc(v.retryDelay, func() { v.retryHeading(gen, text, page) })
	v.mu.Unlock()
	v.logger.Debug("heading not indexed yet", observability.String("heading", text), observability.Int("page", page))
	v.scrollTo(top)
	return false
}

func (v *Viewer) retryHeading(gen uint64, text string, page int) {
	v.mu.Lock()
	if v.closed || gen != v.retryGen {
		v.mu.Unlock()
		return
	}
	v.retry = nil
	offset, ok := v.findHeadingLocked(text, page)
	cb := v.onHeadingRetried
	v.mu.Unlock()
	if ok {
		v.scrollTo(offset)
	} else {
		v.logger.Debug("heading not found after retry", observability.String("heading", text), observability.Int("page", page))
	}
	if cb != nil {
		cb(text, page, ok)
	}
}

func (v *Viewer) stopRetryLocked() {
	if v.retry != nil {
		v.retry.Stop()
		v.retry = nil
	}
	v.retryGen++
}

func (v *Viewer) findHeadingLocked(text string, page int) (float64, bool) {
	var entries []*overlay.Entry
	if page > 0 {
		if e := v.trustedOverlayLocked(page); e != nil {
			entries = append(entries, e)
		}
	} else {
		for _, n := range v.overlays.Pages() {
			if e := v.trustedOverlayLocked(n); e != nil {
				entries = append(entries, e)
			}
		}
	}
	m, ok := overlay.Search(entries, text)
	if !ok {
		return 0, false
	}
	var height float64
	if v.scroller != nil {
		_, height = v.scroller.Size()
	}
	return v.regions[m.Page-1].Top + m.Box.Y - height/3, true
}

// trustedOverlayLocked returns page's overlay if it was built at the current
// scale and rotation.
func (v *Viewer) trustedOverlayLocked(page int) *overlay.Entry {
	e := v.overlays.Get(page)
	if e == nil {
		return nil
	}
	if !e.Matches(v.state.Scale, v.state.Rotation) {
		return nil
	}
	return e
}

func (v *Viewer) scrollTo(offset float64) {
	if v.scroller != nil {
		v.scroller.ScrollTo(offset)
	}
}

func (v *Viewer) readyLocked() error {
	if v.closed {
		return ErrClosed
	}
	if v.cat == nil {
		return ErrNoDocument
	}
	return nil
}

// FitDimensions returns the visible page's size at scale 1 under the current
// rotation, with the scales fitting it to the scroller's width and height.
func (v *Viewer) FitDimensions() (FitDimensions, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.readyLocked() != nil || v.state.VisiblePage < 1 {
		return FitDimensions{}, false
	}
	p := v.pages[v.state.VisiblePage-1]
	w, h := coords.EffectiveDimensions(p.Width, p.Height, 1, v.state.Rotation)
	fd := FitDimensions{Page: p.Number, Width: w, Height: h}
	if v.scroller != nil {
		cw, ch := v.scroller.Size()
		fd.ContainerWidth, fd.ContainerHeight = cw, ch
		fd.FitWidth = coords.FitScale(coords.FitWidth, p.Width, p.Height, cw, ch, v.state.Rotation, v.padding)
		fd.FitHeight = coords.FitScale(coords.FitHeight, p.Width, p.Height, cw, ch, v.state.Rotation, v.padding)
	}
	return fd, true
}

// SelectionEnd captures a finished selection.
func (v *Viewer) SelectionEnd(ev SelectionEvent) {
	v.mu.Lock()
	sel := v.selection.Resolve(ev, v.state.VisiblePage)
	cb := v.onTextSelected
	v.mu.Unlock()
	if sel != nil && cb != nil {
		cb(sel.Text, sel.Page)
	}
}

// SelectRegion selects the overlay words of page intersecting r, given in
// the page's CSS px.
func (v *Viewer) SelectRegion(page int, r coords.Rect) (Selection, bool) {
	v.mu.Lock()
	if v.readyLocked() != nil || document.CheckPage(page, len(v.pages)) != nil {
		v.mu.Unlock()
		return Selection{}, false
	}
	var words []string
	if e := v.trustedOverlayLocked(page); e != nil {
		words = e.WordsIn(r)
	}
	sel := v.selection.Set(joinWords(words), page)
	cb := v.onTextSelected
	v.mu.Unlock()
	if sel == nil {
		return Selection{}, false
	}
	if cb != nil {
		cb(sel.Text, sel.Page)
	}
	return *sel, true
}

// SelectedText returns the last captured selection.
func (v *Viewer) SelectedText() (Selection, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.selection.Last()
}

// State returns a snapshot of the viewport state.
func (v *Viewer) State() ViewportState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Pages returns a copy of the page catalog.
func (v *Viewer) Pages() []PageInfo {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]PageInfo(nil), v.pages...)
}

// PageCount returns the number of pages of the loaded document.
func (v *Viewer) PageCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.pages)
}

// Regions returns the current page strip.
func (v *Viewer) Regions() []visibility.Region {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]visibility.Region(nil), v.regions...)
}

// Surface returns the last published surface of page, or nil.
func (v *Viewer) Surface(page int) *raster.Surface {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 || page > len(v.slots) {
		return nil
	}
	return v.slots[page-1].surface
}

// Overlay returns page's text overlay if it matches the current scale and
// rotation.
func (v *Viewer) Overlay(page int) *overlay.Entry {
	v.mu.Lock()
	defer v.mu.Unlock()
	if page < 1 || page > len(v.slots) {
		return nil
	}
	return v.trustedOverlayLocked(page)
}

// Tasks returns the in-flight render tasks in page order.
func (v *Viewer) Tasks() []*PageRenderTask {
	v.mu.Lock()
	defer v.mu.Unlock()
	var out []*PageRenderTask
	for _, s := range v.slots {
		if s.task != nil {
			out = append(out, s.task)
		}
	}
	return out
}

// Outline returns the document's outline entries.
func (v *Viewer) Outline() []document.OutlineItem {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.cat == nil {
		return nil
	}
	return append([]document.OutlineItem(nil), v.cat.outline...)
}

// WaitIdle blocks until no render task is running.
func (v *Viewer) WaitIdle(ctx context.Context) error {
	for {
		v.mu.Lock()
		var t *PageRenderTask
		for t = range v.running {
			break
		}
		v.mu.Unlock()
		if t == nil {
			return nil
		}
		select {
		case <-t.Done():
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Close cancels all work, disconnects the observer and closes the document.
func (v *Viewer) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.stopRetryLocked()
	tasks := v.cancelAllLocked()
	v.stop()
	cat := v.cat
	v.cat = nil
	v.slots = nil
	v.overlays = overlay.NewIndex(0)
	v.selection.Clear()
	obs := v.observer
	v.mu.Unlock()

	if obs != nil {
		obs.Disconnect()
	}
	waitTasks(tasks)
	if cat == nil {
		return nil
	}
	return cat.close()
}
