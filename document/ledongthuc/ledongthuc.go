// Package ledongthuc implements document.Parser on top of the pure-Go
// github.com/ledongthuc/pdf reader.
package ledongthuc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"sync"

	"github.com/ledongthuc/pdf"
	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/document"
)

// Config controls how documents are opened.
type Config struct {
	// Password opens encrypted documents. It is SASLprep-normalized first.
	Password string
}

// Parser opens PDF bytes with ledongthuc/pdf.
type Parser struct {
	cfg Config
}

func NewParser(cfg Config) *Parser {
	return &Parser{cfg: cfg}
}

// Open parses data. Malformed input surfaces as an error rather than a panic.
func (p *Parser) Open(ctx context.Context, data []byte) (doc document.Document, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errors.New("empty document")
	}
	defer func() {
		if r := recover(); r != nil {
			doc, err = nil, fmt.Errorf("malformed document: %v", r)
		}
	}()

	ra := bytes.NewReader(data)
	var reader *pdf.Reader
	if p.cfg.Password != "" {
		pw, perr := document.PreparePassword(p.cfg.Password)
		if perr != nil {
			return nil, perr
		}
		tried := false
		reader, err = pdf.NewReaderEncrypted(ra, int64(len(data)), func() string {
			if tried {
				return ""
			}
			tried = true
			return pw
		})
	} else {
		reader, err = pdf.NewReader(ra, int64(len(data)))
	}
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPassword) {
			return nil, fmt.Errorf("open: %w", document.ErrPassword)
		}
		return nil, fmt.Errorf("open: %w", err)
	}
	if reader.NumPage() <= 0 {
		return nil, errors.New("document has no pages")
	}
	return &Document{r: reader}, nil
}

// Document wraps a *pdf.Reader. The underlying reader is not safe for
// concurrent use, so every access is serialized.
type Document struct {
	mu     sync.Mutex
	r      *pdf.Reader
	closed bool
}

func (d *Document) PageCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return 0
	}
	return d.r.NumPage()
}

func (d *Document) Page(ctx context.Context, n int) (document.Page, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, errors.New("document closed")
	}
	if err := document.CheckPage(n, d.r.NumPage()); err != nil {
		return nil, err
	}
	pg := d.r.Page(n)
	if pg.V.IsNull() {
		return nil, fmt.Errorf("page %d: missing page object", n)
	}
	box := pageBox(pg.V)
	return &Page{
		doc:    d,
		page:   pg,
		number: n,
		box:    box,
		rotate: coords.NormalizeRotation(int(inherited(pg.V, "Rotate").Int64())),
	}, nil
}

func (d *Document) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

// Outline flattens the document outline depth-first.
func (d *Document) Outline() []document.OutlineItem {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	var out []document.OutlineItem
	var walk func(o pdf.Outline, level int)
	walk = func(o pdf.Outline, level int) {
		if o.Title != "" {
			out = append(out, document.OutlineItem{Title: o.Title, Level: level})
		}
		for _, c := range o.Child {
			walk(c, level+1)
		}
	}
	walk(d.r.Outline(), 0)
	return out
}

// Scripts returns the JavaScript of the catalog's OpenAction, if any.
func (d *Document) Scripts() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	action := d.r.Trailer().Key("Root").Key("OpenAction")
	if action.Key("S").Name() != "JavaScript" {
		return nil
	}
	js := action.Key("JS")
	var src string
	switch js.Kind() {
	case pdf.Stream:
		rc := js.Reader()
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil
		}
		src = string(data)
	case pdf.String:
		src = js.Text()
	}
	if src == "" {
		return nil
	}
	return []string{src}
}

type box struct {
	llx, lly, urx, ury float64
}

func (b box) width() float64  { return b.urx - b.llx }
func (b box) height() float64 { return b.ury - b.lly }

// Page is a single page handle.
type Page struct {
	doc    *Document
	page   pdf.Page
	number int
	box    box
	rotate int
}

func (p *Page) Number() int { return p.number }

// Size includes the page's intrinsic /Rotate.
func (p *Page) Size() (float64, float64) {
	return coords.EffectiveDimensions(p.box.width(), p.box.height(), 1, p.rotate)
}

func (p *Page) Viewport(scale float64, rotation int) document.Viewport {
	return document.NewViewport(p.box.width(), p.box.height(), scale, p.rotate+rotation)
}

// TextContent merges the reader's per-glyph output into runs, relative to the
// page box origin.
func (p *Page) TextContent(ctx context.Context) (runs []document.TextRun, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	p.doc.mu.Lock()
	defer p.doc.mu.Unlock()
	if p.doc.closed {
		return nil, errors.New("document closed")
	}
	defer func() {
		if r := recover(); r != nil {
			runs, err = nil, fmt.Errorf("page %d content: %v", p.number, r)
		}
	}()
	content := p.page.Content()
	glyphs := make([]document.TextRun, 0, len(content.Text))
	for _, t := range content.Text {
		if t.S == "" {
			continue
		}
		glyphs = append(glyphs, document.TextRun{
			Text:     t.S,
			X:        t.X - p.box.llx,
			Y:        t.Y - p.box.lly,
			Width:    t.W,
			FontSize: t.FontSize,
			Font:     t.Font,
		})
	}
	sortRuns(glyphs)
	return MergeRuns(glyphs), nil
}

// MergeRuns joins glyphs that share a font, size and baseline and follow each
// other horizontally. A gap wider than a fifth of the font size becomes a
// space; a larger jump or a baseline change starts a new run.
func MergeRuns(glyphs []document.TextRun) []document.TextRun {
	var out []document.TextRun
	for _, g := range glyphs {
		if len(out) > 0 {
			last := &out[len(out)-1]
			size := math.Max(last.FontSize, 1)
			sameLine := last.Font == g.Font && last.FontSize == g.FontSize && math.Abs(last.Y-g.Y) < size*0.1
			gap := g.X - (last.X + last.Width)
			if sameLine && gap > -size*0.5 && gap < size*1.5 {
				if gap > size*0.2 {
					last.Text += " "
				}
				last.Text += g.Text
				last.Width = g.X + g.Width - last.X
				continue
			}
		}
		out = append(out, g)
	}
	return out
}

func pageBox(v pdf.Value) box {
	for _, key := range []string{"CropBox", "MediaBox"} {
		arr := inherited(v, key)
		if arr.Kind() != pdf.Array || arr.Len() < 4 {
			continue
		}
		b := box{arr.Index(0).Float64(), arr.Index(1).Float64(), arr.Index(2).Float64(), arr.Index(3).Float64()}
		if b.llx > b.urx {
			b.llx, b.urx = b.urx, b.llx
		}
		if b.lly > b.ury {
			b.lly, b.ury = b.ury, b.lly
		}
		if b.width() > 0 && b.height() > 0 {
			return b
		}
	}
	// US Letter, the customary default.
	return box{0, 0, 612, 792}
}

// inherited looks a page attribute up along the page tree's Parent chain.
func inherited(v pdf.Value, key string) pdf.Value {
	for depth := 0; depth < 32 && !v.IsNull(); depth++ {
		if val := v.Key(key); !val.IsNull() {
			return val
		}
		v = v.Key("Parent")
	}
	return pdf.Value{}
}

// sortRuns orders runs top-to-bottom, then left-to-right, in page space.
func sortRuns(runs []document.TextRun) {
	sort.SliceStable(runs, func(i, j int) bool {
		if math.Abs(runs[i].Y-runs[j].Y) > 1 {
			return runs[i].Y > runs[j].Y
		}
		return runs[i].X < runs[j].X
	})
}
