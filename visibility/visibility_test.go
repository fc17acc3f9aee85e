package visibility

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func strip() []Region {
	return []Region{
		{Page: 2, Top: 110, Height: 100},
		{Page: 1, Top: 0, Height: 100},
		{Page: 3, Top: 220, Height: 100},
	}
}

func TestRatio(t *testing.T) {
	r := Region{Page: 1, Top: 100, Height: 200}
	tests := []struct {
		top, height, want float64
	}{
		{0, 100, 0},
		{0, 150, 0.25},
		{100, 200, 1},
		{250, 100, 0.25},
		{400, 100, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		if got := Ratio(r, tt.top, tt.height); got != tt.want {
			t.Fatalf("Ratio(top=%v, h=%v) = %v, want %v", tt.top, tt.height, got, tt.want)
		}
	}
}

func TestContainerReportsOnObserveAndScroll(t *testing.T) {
	c := NewContainer(400, 100)
	var batches [][]Sample
	c.Observe(strip(), func(s []Sample) { batches = append(batches, s) })

	want := []Sample{{Page: 1, Ratio: 1}, {Page: 2, Ratio: 0}, {Page: 3, Ratio: 0}}
	if len(batches) != 1 {
		t.Fatalf("expected initial report, got %d batches", len(batches))
	}
	if diff := cmp.Diff(want, batches[0]); diff != "" {
		t.Fatalf("initial samples (-want +got):\n%s", diff)
	}

	c.ScrollTo(160)
	want = []Sample{{Page: 1, Ratio: 0}, {Page: 2, Ratio: 0.5}, {Page: 3, Ratio: 0.4}}
	if diff := cmp.Diff(want, batches[1]); diff != "" {
		t.Fatalf("scrolled samples (-want +got):\n%s", diff)
	}
}

func TestContainerClampsOffset(t *testing.T) {
	c := NewContainer(400, 100)
	c.Observe(strip(), func([]Sample) {})
	c.ScrollTo(10_000)
	if got := c.Offset(); got != 220 {
		t.Fatalf("Offset() = %v, want 220", got)
	}
	c.ScrollTo(-5)
	if got := c.Offset(); got != 0 {
		t.Fatalf("Offset() = %v, want 0", got)
	}
	if got := c.ContentHeight(); got != 320 {
		t.Fatalf("ContentHeight() = %v", got)
	}
}

func TestContainerUnobserveAndDisconnect(t *testing.T) {
	c := NewContainer(400, 100)
	var last []Sample
	calls := 0
	c.Observe(strip(), func(s []Sample) { last = s; calls++ })
	c.Unobserve(2)
	c.ScrollTo(0)
	if len(last) != 2 || last[0].Page != 1 || last[1].Page != 3 {
		t.Fatalf("unexpected samples after Unobserve: %+v", last)
	}
	c.Disconnect()
	c.ScrollTo(50)
	if calls != 2 {
		t.Fatalf("callback ran after Disconnect (%d calls)", calls)
	}
}

func TestContainerSetSize(t *testing.T) {
	c := NewContainer(400, 100)
	var last []Sample
	c.Observe(strip(), func(s []Sample) { last = s })
	c.SetSize(400, 210)
	if w, h := c.Size(); w != 400 || h != 210 {
		t.Fatalf("Size() = %v, %v", w, h)
	}
	if last[1].Ratio != 1 || last[2].Ratio != 0 {
		t.Fatalf("unexpected samples after resize: %+v", last)
	}
}
