package viewer

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/wudi/pageview/visibility"
)

func TestWindow(t *testing.T) {
	tests := []struct {
		visible, count, lo, hi int
	}{
		{1, 10, 1, 3},
		{2, 10, 1, 4},
		{5, 10, 3, 7},
		{10, 10, 8, 10},
		{1, 1, 1, 1},
		{3, 4, 1, 4},
	}
	for _, tt := range tests {
		lo, hi := Window(tt.visible, tt.count)
		if lo != tt.lo || hi != tt.hi {
			t.Fatalf("Window(%d, %d) = [%d,%d], want [%d,%d]", tt.visible, tt.count, lo, hi, tt.lo, tt.hi)
		}
	}
	if lo, hi := Window(1, 0); lo <= hi {
		t.Fatalf("empty document must yield an empty window, got [%d,%d]", lo, hi)
	}
}

func TestTrackerPicksMaximum(t *testing.T) {
	var tr Tracker
	tr.Reset(5)
	page, changed := tr.Update([]visibility.Sample{{Page: 1, Ratio: 0.2}, {Page: 2, Ratio: 0.7}, {Page: 3, Ratio: 0.1}})
	if page != 2 || !changed {
		t.Fatalf("Update() = %d, %v", page, changed)
	}
	if page, changed = tr.Update([]visibility.Sample{{Page: 2, Ratio: 0.7}}); page != 2 || changed {
		t.Fatalf("same page reported as change: %d, %v", page, changed)
	}
}

func TestTrackerTiesKeepPrevious(t *testing.T) {
	var tr Tracker
	tr.Reset(5)
	tr.Update([]visibility.Sample{{Page: 3, Ratio: 1}})

	page, changed := tr.Update([]visibility.Sample{{Page: 2, Ratio: 0.5}, {Page: 3, Ratio: 0.5}})
	if page != 3 || changed {
		t.Fatalf("tie with the previous page must keep it, got %d", page)
	}
	page, _ = tr.Update([]visibility.Sample{{Page: 4, Ratio: 0.5}, {Page: 5, Ratio: 0.5}})
	if page != 4 {
		t.Fatalf("tie between new pages keeps the first, got %d", page)
	}
}

func TestTrackerIgnoresInvisibleAndForeignPages(t *testing.T) {
	var tr Tracker
	tr.Reset(3)
	if page, changed := tr.Update([]visibility.Sample{{Page: 2, Ratio: 0}, {Page: 9, Ratio: 1}}); page != 1 || changed {
		t.Fatalf("Update() = %d, %v", page, changed)
	}
	if page, changed := tr.Update(nil); page != 1 || changed {
		t.Fatalf("empty batch changed page: %d, %v", page, changed)
	}
}

func TestLayout(t *testing.T) {
	pages := []PageInfo{{Number: 1, Width: 600, Height: 800}, {Number: 2, Width: 800, Height: 600}}
	got := layout(pages, 0.5, 90, 10)
	want := []visibility.Region{{Page: 1, Top: 0, Height: 300}, {Page: 2, Top: 310, Height: 400}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("layout (-want +got):\n%s", diff)
	}
}

func TestSelectionTrackerResolve(t *testing.T) {
	var s SelectionTracker
	if sel := s.Resolve(SelectionEvent{Text: "x", Anchor: (*Element)(nil)}, 2); sel == nil || sel.Page != 2 {
		t.Fatalf("nil anchor should fall back, got %+v", sel)
	}
	if sel := s.Set("word", 7); sel == nil || *sel != (Selection{Text: "word", Page: 7}) {
		t.Fatalf("Set() = %+v", sel)
	}
	s.Clear()
	if _, ok := s.Last(); ok {
		t.Fatalf("Clear() left a selection")
	}
}

func TestOutcomeString(t *testing.T) {
	for o, want := range map[Outcome]string{Pending: "pending", Rendered: "rendered", Degraded: "degraded", Failed: "failed", Cancelled: "cancelled"} {
		if o.String() != want {
			t.Fatalf("%d.String() = %q", o, o.String())
		}
	}
}
