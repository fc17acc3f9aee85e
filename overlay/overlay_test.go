package overlay

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pageview/coords"
	"github.com/wudi/pageview/document"
	"github.com/wudi/pageview/ocr"
	"github.com/wudi/pageview/raster"
)

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func nearRect(a, b coords.Rect) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.W, b.W) && near(a.H, b.H)
}

func TestFromRunsPlacesSpans(t *testing.T) {
	vp := document.NewViewport(600, 800, 1, 0)
	runs := []document.TextRun{
		{Text: "Hello world", X: 100, Y: 700, Width: 200, FontSize: 20},
		{Text: "   ", X: 100, Y: 600, Width: 30, FontSize: 20},
	}
	e := FromRuns(4, vp, runs)
	if e.Page != 4 || e.Source != SourceText || e.Width != 600 || e.Height != 800 {
		t.Fatalf("unexpected entry header: %+v", e)
	}
	if len(e.Spans) != 1 {
		t.Fatalf("expected blank run to be dropped, got %d spans", len(e.Spans))
	}
	s := e.Spans[0]
	if !nearRect(s.Box, coords.Rect{X: 100, Y: 84, W: 200, H: 20}) {
		t.Fatalf("span box = %+v", s.Box)
	}
	if len(s.Words) != 2 || s.Words[0].Text != "Hello" || s.Words[1].Text != "world" {
		t.Fatalf("words = %+v", s.Words)
	}
	if !near(s.Words[0].Box.W, 200*6.0/11) || !near(s.Words[1].Box.X, 100+200*6.0/11) {
		t.Fatalf("word boxes = %+v", s.Words)
	}
}

func TestFromRunsRotated(t *testing.T) {
	vp := document.NewViewport(600, 800, 1, 90)
	e := FromRuns(1, vp, []document.TextRun{{Text: "Hello world", X: 100, Y: 700, Width: 200, FontSize: 20}})
	s := e.Spans[0]
	if !nearRect(s.Box, coords.Rect{X: 696, Y: 100, W: 20, H: 200}) {
		t.Fatalf("span box = %+v", s.Box)
	}
	if got := s.Words[1].Box; !near(got.Y, 100+200*6.0/11) || !near(got.X, 696) {
		t.Fatalf("rotated word box = %+v", got)
	}
	if !e.Matches(1, 450) || e.Matches(2, 90) {
		t.Fatalf("Matches misreports viewport parameters")
	}
}

func TestFromOCRScalesByDevicePixelRatio(t *testing.T) {
	vp := document.NewViewport(600, 800, 1, 0)
	res := ocr.Result{Lines: []ocr.TextLine{
		{Text: "Scanned heading", Words: []ocr.TextWord{
			{Text: "Scanned", Bounds: ocr.Region{X: 20, Y: 40, Width: 100, Height: 30}},
			{Text: "heading", Bounds: ocr.Region{X: 140, Y: 40, Width: 100, Height: 30}},
		}},
		{Text: "", Bounds: ocr.Region{X: 0, Y: 0, Width: 10, Height: 10}},
	}}
	e := FromOCR(2, vp, res, raster.NewSurface(vp, 2))
	if e.Source != SourceOCR || len(e.Spans) != 1 {
		t.Fatalf("unexpected entry: %+v", e)
	}
	want := Span{
		Text:     "Scanned heading",
		Box:      coords.Rect{X: 10, Y: 20, W: 110, H: 15},
		FontSize: 15,
		Words: []Word{
			{Text: "Scanned", Box: coords.Rect{X: 10, Y: 20, W: 50, H: 15}},
			{Text: "heading", Box: coords.Rect{X: 70, Y: 20, W: 50, H: 15}},
		},
	}
	if diff := cmp.Diff(want, e.Spans[0]); diff != "" {
		t.Fatalf("span mismatch (-want +got):\n%s", diff)
	}
}

func TestWordsIn(t *testing.T) {
	vp := document.NewViewport(600, 800, 1, 0)
	e := FromRuns(1, vp, []document.TextRun{
		{Text: "alpha beta", X: 0, Y: 700, Width: 100, FontSize: 10},
		{Text: "gamma", X: 0, Y: 100, Width: 50, FontSize: 10},
	})
	got := e.WordsIn(coords.Rect{X: 60, Y: 0, W: 100, H: 200})
	if diff := cmp.Diff([]string{"beta"}, got); diff != "" {
		t.Fatalf("WordsIn mismatch (-want +got):\n%s", diff)
	}
	if got := e.Text(); got != "alpha beta\ngamma" {
		t.Fatalf("Text() = %q", got)
	}
}

func TestIndex(t *testing.T) {
	ix := NewIndex(3)
	ix.Set(2, &Entry{Page: 2})
	ix.Set(7, &Entry{Page: 7})
	if ix.Len() != 3 || ix.Get(2) == nil || ix.Get(0) != nil || ix.Get(4) != nil {
		t.Fatalf("unexpected index contents")
	}
	if diff := cmp.Diff([]int{2}, ix.Pages()); diff != "" {
		t.Fatalf("Pages mismatch: %s", diff)
	}
	ix.Invalidate(2)
	if ix.Get(2) != nil || len(ix.Entries()) != 0 {
		t.Fatalf("invalidate left an entry behind")
	}
}

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"  ＨＥＬＬＯ\tWorld ": "hello world",
		"Straße":             "strasse",
		"a\u00a0 b":          "a b",
		"":                   "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScoreTiers(t *testing.T) {
	tests := []struct {
		span, query string
		want        int
	}{
		{"Introduction", "introduction", ScoreExact},
		{"1 Introduction", "Introduction", ScoreContains},
		{"Intro", "Introduction", ScoreContains},
		{"Methods", "Introduction", ScoreNone},
		{"", "Introduction", ScoreNone},
		{"Introduction", "  ", ScoreNone},
	}
	for _, tt := range tests {
		if got := Score(tt.span, tt.query); got != tt.want {
			t.Fatalf("Score(%q, %q) = %d, want %d", tt.span, tt.query, got, tt.want)
		}
	}
}

func entry(page int, texts ...string) *Entry {
	e := &Entry{Page: page}
	for i, s := range texts {
		e.Spans = append(e.Spans, Span{Text: s, Box: coords.Rect{Y: float64(i * 20), W: 100, H: 10}})
	}
	return e
}

func TestSearchExactBeatsContainment(t *testing.T) {
	entries := []*Entry{entry(1, "Chapter 1 Introduction"), entry(2, "Preface", "Introduction")}
	m, ok := Search(entries, "introduction")
	if !ok || m.Page != 2 || m.Span != 1 || m.Score != ScoreExact {
		t.Fatalf("Search() = %+v, %v", m, ok)
	}
}

func TestSearchTiesKeepFirst(t *testing.T) {
	entries := []*Entry{nil, entry(1, "See Results below", "Results and discussion"), entry(3, "Results")}
	m, ok := Search(entries[:2], "results")
	if !ok || m.Page != 1 || m.Span != 0 || m.Score != ScoreContains {
		t.Fatalf("Search() = %+v, %v", m, ok)
	}
	m, ok = Search(entries, "results")
	if !ok || m.Page != 3 || m.Score != ScoreExact {
		t.Fatalf("exact on a later page should win: %+v", m)
	}
}

func TestSearchNoMatch(t *testing.T) {
	if _, ok := Search([]*Entry{entry(1, "Alpha")}, "Omega"); ok {
		t.Fatalf("unexpected match")
	}
	if _, ok := Search([]*Entry{entry(1, "Alpha")}, ""); ok {
		t.Fatalf("empty query must not match")
	}
}

func TestWriteHTML(t *testing.T) {
	e := &Entry{Page: 3, Width: 300, Height: 400, Spans: []Span{
		{Text: "a < b", Box: coords.Rect{X: 10, Y: 20.5, W: 30, H: 12}, FontSize: 12},
	}}
	var buf bytes.Buffer
	if err := WriteHTML(&buf, e); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		`class="textLayer"`,
		`data-page-number="3"`,
		`data-source="text"`,
		`left:10px;top:20.5px;width:30px;height:12px;font-size:12px`,
		`a &lt; b`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if err := WriteHTML(&buf, nil); err == nil {
		t.Fatalf("expected error for nil entry")
	}
}
