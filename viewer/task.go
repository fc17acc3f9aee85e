package viewer

import (
	"context"
	"sync"
)

// Outcome is how a page render task ended.
type Outcome int

const (
	// Pending means the task has not finished yet.
	Pending Outcome = iota
	// Rendered means the surface and text overlay were published.
	Rendered
	// Degraded means the surface was published without a text overlay.
	Degraded
	// Failed means the page could not be rasterized.
	Failed
	// Cancelled means the task was superseded or torn down and published
	// nothing.
	Cancelled
)

func (o Outcome) String() string {
	switch o {
	case Rendered:
		return "rendered"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	case Cancelled:
		return "cancelled"
	}
	return "pending"
}

// renderKey is the set of parameters a page surface is valid for.
type renderKey struct {
	scale    float64
	rotation int
	dpr      float64
}

// PageRenderTask is the handle of one in-flight page render.
type PageRenderTask struct {
	Page int
	ID   uint64

	key    renderKey
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	once    sync.Once
	outcome Outcome
	err     error
}

func newTask(parent context.Context, page int, id uint64, key renderKey) *PageRenderTask {
	ctx, cancel := context.WithCancel(parent)
	return &PageRenderTask{
		Page:   page,
		ID:     id,
		key:    key,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Cancel requests cancellation. It is idempotent and safe after completion.
func (t *PageRenderTask) Cancel() { t.cancel() }

// Done is closed when the task has finished.
func (t *PageRenderTask) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its outcome. The error is
// a *PageRasterError for Failed and a *TextOverlayError for Degraded.
func (t *PageRenderTask) Wait() (Outcome, error) {
	<-t.done
	return t.outcome, t.err
}

func (t *PageRenderTask) finish(o Outcome, err error) {
	t.once.Do(func() {
		t.outcome, t.err = o, err
		t.cancel()
		close(t.done)
	})
}
