// Package overlay holds the per-page text overlay: the positioned text spans
// aligned with a page's raster surface that power heading search and text
// selection. Boxes are in CSS pixels of the page's viewport (origin at the
// page's top-left corner, y down).
package overlay

import (
	"strings"

	"github.com/go-text/typesetting/segmenter"
	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/document"
	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/raster"
)

// Source records where an entry's text came from.
type Source int

const (
	SourceText Source = iota
	SourceOCR
)

func (s Source) String() string {
	if s == SourceOCR {
		return "ocr"
	}
	return "text"
}

// Word is a selectable segment of a span.
type Word struct {
	Text string
	Box  coords.Rect
}

// Span is a single positioned piece of text.
type Span struct {
	Text     string
	Box      coords.Rect
	FontSize float64
	Words    []Word
}

// Entry is the overlay of one page, valid only for the scale and rotation it
// was built at.
type Entry struct {
	Page     int
	Scale    float64
	Rotation int
	Width    float64
	Height   float64
	Source   Source
	Spans    []Span
}

// Matches reports whether e was built for the given viewport parameters.
func (e *Entry) Matches(scale float64, rotation int) bool {
	return e != nil && e.Scale == scale && e.Rotation == coords.NormalizeRotation(rotation)
}

// Text joins the entry's spans with newlines.
func (e *Entry) Text() string {
	parts := make([]string, len(e.Spans))
	for i, s := range e.Spans {
		parts[i] = s.Text
	}
	return strings.Join(parts, "\n")
}

// WordsIn returns the text of every word whose box intersects r, in span order.
func (e *Entry) WordsIn(r coords.Rect) []string {
	var out []string
	for _, s := range e.Spans {
		if !s.Box.Intersects(r) {
			continue
		}
		for _, w := range s.Words {
			if w.Box.Intersects(r) {
				out = append(out, w.Text)
			}
		}
	}
	return out
}

// FromRuns builds an entry from document text runs placed with vp.
func FromRuns(page int, vp document.Viewport, runs []document.TextRun) *Entry {
	e := newEntry(page, vp, SourceText)
	for _, run := range runs {
		if strings.TrimSpace(run.Text) == "" {
			continue
		}
		box := vp.Transform.TransformRect(run.Bounds())
		e.Spans = append(e.Spans, Span{
			Text:     run.Text,
			Box:      box,
			FontSize: run.FontSize * vp.Scale,
			Words:    Segment(run.Text, box, vp.Rotation),
		})
	}
	return e
}

// FromOCR builds an entry from lines recognized on s. Recognized boxes are
// in device pixels of s.
func FromOCR(page int, vp document.Viewport, res ocr.Result, s *raster.Surface) *Entry {
	e := newEntry(page, vp, SourceOCR)
	toCSS := func(r ocr.Region) coords.Rect {
		return s.ToCSS(coords.Rect{X: r.X, Y: r.Y, W: r.Width, H: r.Height})
	}
	for _, line := range res.Lines {
		var words []Word
		var texts []string
		var box coords.Rect
		for _, w := range line.Words {
			wb := toCSS(w.Bounds)
			words = append(words, Word{Text: w.Text, Box: wb})
			texts = append(texts, w.Text)
			box = box.Union(wb)
		}
		text := line.Text
		if len(texts) > 0 {
			text = strings.Join(texts, " ")
		}
		if box.Empty() {
			box = toCSS(line.Bounds)
		}
		if strings.TrimSpace(text) == "" {
			continue
		}
		e.Spans = append(e.Spans, Span{Text: text, Box: box, FontSize: box.H, Words: words})
	}
	return e
}

func newEntry(page int, vp document.Viewport, src Source) *Entry {
	return &Entry{
		Page:     page,
		Scale:    vp.Scale,
		Rotation: vp.Rotation,
		Width:    vp.Width,
		Height:   vp.Height,
		Source:   src,
	}
}

// Segment splits text at Unicode line-break opportunities and spreads the
// span's box over the pieces in proportion to their rune counts, following
// the reading direction of the rotated page.
func Segment(text string, box coords.Rect, rotation int) []Word {
	runes := []rune(text)
	total := float64(len(runes))
	if total == 0 {
		return nil
	}
	var seg segmenter.Segmenter
	seg.Init(runes)
	it := seg.LineIterator()
	var out []Word
	for it.Next() {
		line := it.Line()
		word := strings.TrimSpace(string(line.Text))
		if word == "" {
			continue
		}
		start := float64(line.Offset) / total
		end := float64(line.Offset+len(line.Text)) / total
		var wb coords.Rect
		switch coords.NormalizeRotation(rotation) {
		case 90:
			wb = coords.Rect{X: box.X, Y: box.Y + box.H*start, W: box.W, H: box.H * (end - start)}
		case 180:
			wb = coords.Rect{X: box.MaxX() - box.W*end, Y: box.Y, W: box.W * (end - start), H: box.H}
		case 270:
			wb = coords.Rect{X: box.X, Y: box.MaxY() - box.H*end, W: box.W, H: box.H * (end - start)}
		default:
			wb = coords.Rect{X: box.X + box.W*start, Y: box.Y, W: box.W * (end - start), H: box.H}
		}
		out = append(out, Word{Text: word, Box: wb})
	}
	return out
}
