package viewer

import "strings"

// Node is a node of the host's view tree that a selection can be anchored in.
type Node interface {
	ParentNode() Node
}

// PageContainer is a node that holds one rendered page.
type PageContainer interface {
	Node
	PageNumber() int
}

// Element is a minimal Node. An Element with a positive Page is a page
// container.
type Element struct {
	Parent Node
	Page   int
}

func (e *Element) ParentNode() Node {
	if e == nil || e.Parent == nil {
		return nil
	}
	return e.Parent
}

func (e *Element) PageNumber() int {
	if e == nil {
		return 0
	}
	return e.Page
}

// SelectionEvent is a finished user selection.
type SelectionEvent struct {
	Text   string
	Anchor Node
}

// SelectionTracker keeps the last selection.
type SelectionTracker struct {
	last *Selection
}

// Resolve publishes the selection for ev. The page is taken from the nearest
// page container above the anchor, or fallback when there is none. Blank
// text clears the selection.
func (s *SelectionTracker) Resolve(ev SelectionEvent, fallback int) *Selection {
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		s.last = nil
		return nil
	}
	page := fallback
	if p := containerOf(ev.Anchor); p != nil {
		page = p.PageNumber()
	}
	s.last = &Selection{Text: text, Page: page}
	return s.last
}

// Set publishes a selection whose page is already known.
func (s *SelectionTracker) Set(text string, page int) *Selection {
	return s.Resolve(SelectionEvent{Text: text, Anchor: &Element{Page: page}}, page)
}

func (s *SelectionTracker) Last() (Selection, bool) {
	if s.last == nil {
		return Selection{}, false
	}
	return *s.last, true
}

func (s *SelectionTracker) Clear() { s.last = nil }

func containerOf(n Node) PageContainer {
	for n != nil {
		if p, ok := n.(PageContainer); ok && p.PageNumber() > 0 {
			return p
		}
		n = n.ParentNode()
	}
	return nil
}

func joinWords(words []string) string { return strings.Join(words, " ") }
