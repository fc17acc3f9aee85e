package ledongthuc

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pageview/document"
)

// buildPDF writes a minimal, well-formed PDF with one Helvetica text line per
// page. Offsets in the xref table are computed while writing.
func buildPDF(lines []string, rotate int) []byte {
	var buf bytes.Buffer
	var offsets []int
	obj := func(body string) {
		offsets = append(offsets, buf.Len())
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", len(offsets), body)
	}
	buf.WriteString("%PDF-1.4\n")

	n := len(lines)
	kids := make([]string, n)
	for i := range lines {
		kids[i] = fmt.Sprintf("%d 0 R", 4+2*i)
	}
	widths := strings.TrimSpace(strings.Repeat("500 ", 95))

	obj("<< /Type /Catalog /Pages 2 0 R >>")
	obj(fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d /MediaBox [0 0 612 792] /Rotate %d >>", strings.Join(kids, " "), n, rotate))
	obj(fmt.Sprintf("<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /FirstChar 32 /LastChar 126 /Widths [%s] >>", widths))
	for i, line := range lines {
		obj(fmt.Sprintf("<< /Type /Page /Parent 2 0 R /Resources << /Font << /F1 3 0 R >> >> /Contents %d 0 R >>", 5+2*i))
		stream := fmt.Sprintf("BT /F1 24 Tf 72 700 Td (%s) Tj ET", line)
		obj(fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream))
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(offsets)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(offsets)+1, xref)
	return buf.Bytes()
}

func TestParserOpen(t *testing.T) {
	data := buildPDF([]string{"Introduction", "Methods"}, 0)
	doc, err := NewParser(Config{}).Open(context.Background(), data)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer doc.Close()

	if got := doc.PageCount(); got != 2 {
		t.Fatalf("PageCount() = %d, want 2", got)
	}
	page, err := doc.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}
	if w, h := page.Size(); w != 612 || h != 792 {
		t.Fatalf("Size() = %vx%v, want 612x792", w, h)
	}
	runs, err := page.TextContent(context.Background())
	if err != nil {
		t.Fatalf("TextContent() error = %v", err)
	}
	var text []string
	for _, r := range runs {
		text = append(text, r.Text)
	}
	if !strings.Contains(strings.Join(text, " "), "Introduction") {
		t.Fatalf("page 1 text = %q", text)
	}
	if _, err := doc.Page(context.Background(), 3); err == nil {
		t.Fatalf("expected out of range error")
	}
}

func TestParserInheritedRotate(t *testing.T) {
	doc, err := NewParser(Config{}).Open(context.Background(), buildPDF([]string{"A"}, 90))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	page, err := doc.Page(context.Background(), 1)
	if err != nil {
		t.Fatalf("Page(1) error = %v", err)
	}
	if w, h := page.Size(); w != 792 || h != 612 {
		t.Fatalf("Size() = %vx%v, want 792x612", w, h)
	}
	vp := page.Viewport(1, 90)
	if vp.Rotation != 180 || vp.Width != 612 {
		t.Fatalf("unexpected viewport %+v", vp)
	}
}

func TestParserRejectsGarbage(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not pdf", []byte("This is not a PDF file")},
		{"truncated", []byte("%PDF-1.4\n1 0 obj\n<<")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewParser(Config{}).Open(context.Background(), tt.data); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParserClosedDocument(t *testing.T) {
	doc, err := NewParser(Config{}).Open(context.Background(), buildPDF([]string{"A"}, 0))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	doc.Close()
	doc.Close()
	if _, err := doc.Page(context.Background(), 1); err == nil {
		t.Fatalf("expected error on closed document")
	}
}

func TestMergeRuns(t *testing.T) {
	glyph := func(s string, x float64) document.TextRun {
		return document.TextRun{Text: s, X: x, Y: 100, Width: 5, FontSize: 10, Font: "F1"}
	}
	glyphs := []document.TextRun{
		glyph("H", 0), glyph("i", 5),
		glyph("y", 13), glyph("o", 18), // 3pt gap: word break
		glyph("Z", 200), // far away: new run
		{Text: "x", X: 210, Y: 50, Width: 5, FontSize: 10, Font: "F1"},
	}
	got := MergeRuns(glyphs)
	want := []document.TextRun{
		{Text: "Hi yo", X: 0, Y: 100, Width: 23, FontSize: 10, Font: "F1"},
		{Text: "Z", X: 200, Y: 100, Width: 5, FontSize: 10, Font: "F1"},
		{Text: "x", X: 210, Y: 50, Width: 5, FontSize: 10, Font: "F1"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("MergeRuns() mismatch (-want +got):\n%s", diff)
	}
}
