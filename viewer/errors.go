package viewer

import (
	"errors"
	"fmt"
)

var (
	// ErrSuperseded is returned by Load when a later Load started before this
	// one finished. The superseded document is closed and never displayed.
	ErrSuperseded = errors.New("load superseded by a later load")
	// ErrClosed is returned by operations on a closed viewer.
	ErrClosed = errors.New("viewer closed")
	// ErrNoDocument is returned by operations that need a loaded document.
	ErrNoDocument = errors.New("no document loaded")
)

// DocumentLoadError reports that a document could not be opened. The
// previously displayed document, if any, is left untouched.
type DocumentLoadError struct {
	Err error
}

func (e *DocumentLoadError) Error() string { return fmt.Sprintf("load document: %v", e.Err) }
func (e *DocumentLoadError) Unwrap() error { return e.Err }

// PageRasterError reports a failed page render. The page stays unrendered.
type PageRasterError struct {
	Page int
	Err  error
}

func (e *PageRasterError) Error() string { return fmt.Sprintf("render page %d: %v", e.Page, e.Err) }
func (e *PageRasterError) Unwrap() error { return e.Err }

// TextOverlayError reports that a rendered page has no usable text overlay.
type TextOverlayError struct {
	Page int
	Err  error
}

func (e *TextOverlayError) Error() string {
	return fmt.Sprintf("text overlay page %d: %v", e.Page, e.Err)
}
func (e *TextOverlayError) Unwrap() error { return e.Err }
