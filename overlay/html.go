package overlay

import (
	"fmt"
	"io"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// WriteHTML renders e as an absolutely positioned text layer sized to the
// page's viewport.
func WriteHTML(w io.Writer, e *Entry) error {
	if e == nil {
		return fmt.Errorf("overlay: nil entry")
	}
	root := element(atom.Div,
		html.Attribute{Key: "class", Val: "textLayer"},
		html.Attribute{Key: "data-page-number", Val: strconv.Itoa(e.Page)},
		html.Attribute{Key: "data-source", Val: e.Source.String()},
		html.Attribute{Key: "style", Val: fmt.Sprintf("position:absolute;width:%spx;height:%spx", px(e.Width), px(e.Height))},
	)
	for _, s := range e.Spans {
		span := element(atom.Span,
			html.Attribute{Key: "style", Val: fmt.Sprintf("left:%spx;top:%spx;width:%spx;height:%spx;font-size:%spx",
				px(s.Box.X), px(s.Box.Y), px(s.Box.W), px(s.Box.H), px(s.FontSize))},
		)
		span.AppendChild(&html.Node{Type: html.TextNode, Data: s.Text})
		root.AppendChild(span)
	}
	return html.Render(w, root)
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, Data: a.String(), DataAtom: a, Attr: attrs}
}

func px(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
