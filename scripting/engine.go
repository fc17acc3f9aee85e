package scripting

import (
	"context"
)

// Engine represents a scripting engine (e.g., JavaScript).
type Engine interface {
	// Execute executes a script against the registered viewer.
	Execute(ctx context.Context, script string) (interface{}, error)

	// RegisterDOM registers the viewer object model with the engine.
	RegisterDOM(dom ViewerDOM) error
}

// ViewerDOM exposes the viewer to scripts. Page numbers are 0-based, as in
// the document scripting API; zoom is a percentage.
type ViewerDOM interface {
	PageNum() int
	SetPageNum(index int) error
	NumPages() int

	Zoom() float64
	SetZoom(percent float64) error

	Rotation() int
	SetRotation(deg int) error

	// ScrollToHeading navigates to a heading; page is 0-based or -1 for
	// no hint.
	ScrollToHeading(text string, page int) bool

	// Alert shows an alert dialog (if supported by the host).
	Alert(message string)
}
