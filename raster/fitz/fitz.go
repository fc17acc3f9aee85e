// Package fitz renders pages with MuPDF through github.com/gen2brain/go-fitz.
// It requires cgo and implements raster.Factory: every loaded document gets
// its own MuPDF handle.
package fitz

import (
	"context"
	"errors"
	"fmt"
	"sync"

	gofitz "github.com/gen2brain/go-fitz"
	"github.com/wudi/pageview/raster"
)

// Factory creates per-document MuPDF engines.
type Factory struct{}

func (Factory) Name() string { return "fitz" }

// Render is unsupported on the factory itself; the viewer always renders
// through the engine returned by ForDocument.
func (Factory) Render(context.Context, raster.Request) error {
	return errors.New("fitz: no document bound")
}

func (Factory) ForDocument(data []byte) (raster.Engine, error) {
	doc, err := gofitz.NewFromMemory(data)
	if err != nil {
		return nil, fmt.Errorf("fitz open: %w", err)
	}
	return &Engine{doc: doc}, nil
}

// Engine renders pages of one document.
type Engine struct {
	doc      *gofitz.Document
	mu       sync.Mutex
	inflight sync.WaitGroup
	closed   bool
}

func (e *Engine) Name() string { return "fitz" }

// Render rasterizes the page at 72·scale·dpr DPI. MuPDF calls cannot be
// interrupted, so cancellation is observed before and after the call.
func (e *Engine) Render(ctx context.Context, req raster.Request) error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return raster.ErrCancelled
	}
	e.inflight.Add(1)
	e.mu.Unlock()
	defer e.inflight.Done()

	if err := raster.Checkpoint(ctx); err != nil {
		return err
	}
	dpi := 72 * req.Viewport.Scale * req.Surface.DevicePixelRatio
	img, err := e.doc.ImageDPI(req.PageNumber-1, dpi)
	if err != nil {
		return fmt.Errorf("fitz render page %d: %w", req.PageNumber, err)
	}
	if err := raster.Checkpoint(ctx); err != nil {
		return err
	}
	// MuPDF already applies the page's own /Rotate.
	req.Surface.Blit(raster.Rotate(img, req.Rotation))
	return nil
}

// Close waits for in-flight renders and releases the MuPDF handle.
func (e *Engine) Close() error {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil
	}
	e.closed = true
	e.mu.Unlock()
	e.inflight.Wait()
	return e.doc.Close()
}
