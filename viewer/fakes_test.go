package viewer

import (
	"context"
	"errors"
	"image/color"
	"sync"
	"time"

	"github.com/wudi/pageview/document"
	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/raster"
)

type fakePage struct {
	n       int
	w, h    float64
	runs    []document.TextRun
	textErr error
}

func (p *fakePage) Number() int { return p.n }

func (p *fakePage) Size() (float64, float64) { return p.w, p.h }

func (p *fakePage) TextContent(context.Context) ([]document.TextRun, error) {
	return p.runs, p.textErr
}

func (p *fakePage) Viewport(scale float64, rotation int) document.Viewport {
	return document.NewViewport(p.w, p.h, scale, rotation)
}

type fakeDoc struct {
	mu      sync.Mutex
	pages   []*fakePage
	closed  int
	outline []document.OutlineItem
	scripts []string
}

func newDoc(n int) *fakeDoc {
	d := &fakeDoc{}
	for i := 1; i <= n; i++ {
		d.pages = append(d.pages, &fakePage{n: i, w: 600, h: 800})
	}
	return d
}

// heading places a 20pt run whose top edge sits 84 CSS px below the page top
// at scale 1.
func (d *fakeDoc) heading(page int, text string) *fakeDoc {
	p := d.pages[page-1]
	p.runs = append(p.runs, document.TextRun{Text: text, X: 72, Y: 700, Width: 200, FontSize: 20})
	return d
}

func (d *fakeDoc) PageCount() int { return len(d.pages) }

func (d *fakeDoc) Page(_ context.Context, n int) (document.Page, error) {
	if err := document.CheckPage(n, len(d.pages)); err != nil {
		return nil, err
	}
	return d.pages[n-1], nil
}

func (d *fakeDoc) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed++
	return nil
}

func (d *fakeDoc) isClosed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed > 0
}

func (d *fakeDoc) Outline() []document.OutlineItem { return d.outline }

func (d *fakeDoc) Scripts() []string { return d.scripts }

// fakeParser opens documents registered by name. Opening a gated name blocks
// until its gate is closed and announces itself on entered.
type fakeParser struct {
	mu      sync.Mutex
	docs    map[string]*fakeDoc
	gates   map[string]chan struct{}
	entered chan string
}

func newParser() *fakeParser {
	return &fakeParser{
		docs:    map[string]*fakeDoc{},
		gates:   map[string]chan struct{}{},
		entered: make(chan string, 8),
	}
}

func (p *fakeParser) add(name string, d *fakeDoc) *fakeParser {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[name] = d
	return p
}

func (p *fakeParser) gate(name string) chan struct{} {
	p.mu.Lock()
	defer p.mu.Unlock()
	g := make(chan struct{})
	p.gates[name] = g
	return g
}

func (p *fakeParser) Open(ctx context.Context, data []byte) (document.Document, error) {
	name := string(data)
	p.mu.Lock()
	g := p.gates[name]
	d, ok := p.docs[name]
	p.mu.Unlock()
	if g != nil {
		p.entered <- name
		select {
		case <-g:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if !ok {
		return nil, errors.New("not a document")
	}
	return d, nil
}

// fakeEngine paints surfaces white. With a gate it blocks until the gate is
// closed; stubborn engines ignore cancellation while blocked.
type fakeEngine struct {
	mu       sync.Mutex
	gate     chan struct{}
	stubborn bool
	fail     map[int]error
	calls    map[int]int
	requests map[int]raster.Request
}

func newEngine() *fakeEngine {
	return &fakeEngine{fail: map[int]error{}, calls: map[int]int{}, requests: map[int]raster.Request{}}
}

func newGatedEngine() *fakeEngine {
	e := newEngine()
	e.gate = make(chan struct{})
	return e
}

func (e *fakeEngine) Name() string { return "fake" }

func (e *fakeEngine) Render(ctx context.Context, req raster.Request) error {
	e.mu.Lock()
	e.calls[req.PageNumber]++
	e.requests[req.PageNumber] = req
	err := e.fail[req.PageNumber]
	e.mu.Unlock()
	if e.gate != nil {
		if e.stubborn {
			<-e.gate
		} else {
			select {
			case <-e.gate:
			case <-ctx.Done():
				return raster.ErrCancelled
			}
		}
	}
	if err != nil {
		return err
	}
	req.Surface.Fill(color.White)
	return nil
}

func (e *fakeEngine) heal(page int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.fail, page)
}

func (e *fakeEngine) callCount(page int) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls[page]
}

func (e *fakeEngine) request(page int) raster.Request {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.requests[page]
}

type fakeOCR struct {
	mu     sync.Mutex
	inputs []ocr.Input
	result ocr.Result
}

func (o *fakeOCR) Name() string { return "fake-ocr" }

func (o *fakeOCR) Recognize(_ context.Context, in ocr.Input) (ocr.Result, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.inputs = append(o.inputs, in)
	res := o.result
	res.InputID = in.ID
	return res, nil
}

// fakeClock captures deferred heading retries.
type fakeClock struct {
	mu      sync.Mutex
	delays  []time.Duration
	fns     []func()
	stopped int
}

func (c *fakeClock) after(d time.Duration, f func()) stopper {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.delays = append(c.delays, d)
	c.fns = append(c.fns, f)
	return fakeTimer{c}
}

func (c *fakeClock) scheduled() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.fns)
}

func (c *fakeClock) fire() {
	c.mu.Lock()
	f := c.fns[len(c.fns)-1]
	c.mu.Unlock()
	f()
}

type fakeTimer struct{ c *fakeClock }

func (t fakeTimer) Stop() bool {
	t.c.mu.Lock()
	defer t.c.mu.Unlock()
	t.c.stopped++
	return true
}
