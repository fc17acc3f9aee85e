package document

import (
	"errors"
	"testing"
)

func TestNewViewport(t *testing.T) {
	vp := NewViewport(600, 800, 1.5, -270)
	if vp.Rotation != 90 {
		t.Fatalf("rotation not normalized: %d", vp.Rotation)
	}
	if vp.Width != 1200 || vp.Height != 900 {
		t.Fatalf("unexpected size %vx%v", vp.Width, vp.Height)
	}
}

func TestTextRunBoundsInViewport(t *testing.T) {
	run := TextRun{Text: "Introduction", X: 72, Y: 700, Width: 100, FontSize: 20}
	vp := NewViewport(600, 800, 1, 0)
	box := vp.Transform.TransformRect(run.Bounds())
	// Baseline at y=700 from the bottom: the ascent reaches 716 -> 84 from the top.
	if box.X != 72 || box.W != 100 || box.H != 20 {
		t.Fatalf("unexpected box %+v", box)
	}
	if box.Y < 83.99 || box.Y > 84.01 {
		t.Fatalf("unexpected top %v", box.Y)
	}
}

func TestCheckPage(t *testing.T) {
	if err := CheckPage(1, 3); err != nil {
		t.Fatalf("CheckPage(1, 3) error = %v", err)
	}
	for _, n := range []int{0, 4, -1} {
		if err := CheckPage(n, 3); !errors.Is(err, ErrPageRange) {
			t.Fatalf("CheckPage(%d, 3) = %v, want ErrPageRange", n, err)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("%PDF-1.7 a"))
	b := Fingerprint([]byte("%PDF-1.7 b"))
	if len(a) != 16 {
		t.Fatalf("unexpected fingerprint length %d", len(a))
	}
	if a == b {
		t.Fatalf("different documents share a fingerprint")
	}
	if a != Fingerprint([]byte("%PDF-1.7 a")) {
		t.Fatalf("fingerprint is not stable")
	}
}

func TestPreparePassword(t *testing.T) {
	// U+00AD SOFT HYPHEN is mapped to nothing by SASLprep.
	got, err := PreparePassword("pass\u00adword")
	if err != nil {
		t.Fatalf("PreparePassword() error = %v", err)
	}
	if got != "password" {
		t.Fatalf("PreparePassword() = %q", got)
	}
	if got, _ := PreparePassword(""); got != "" {
		t.Fatalf("empty password should stay empty, got %q", got)
	}
	if _, err := PreparePassword("bad\u0007"); err == nil {
		t.Fatalf("expected error for prohibited control character")
	}
}
