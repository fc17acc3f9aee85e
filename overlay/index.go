package overlay

// Index is an arena of overlay entries addressed by 1-based page number. It
// is not safe for concurrent use; the viewer mutates it under its own lock.
type Index struct {
	entries []*Entry
}

func NewIndex(pageCount int) *Index {
	if pageCount < 0 {
		pageCount = 0
	}
	return &Index{entries: make([]*Entry, pageCount)}
}

func (ix *Index) Len() int { return len(ix.entries) }

// Get returns the entry for page, or nil.
func (ix *Index) Get(page int) *Entry {
	if page < 1 || page > len(ix.entries) {
		return nil
	}
	return ix.entries[page-1]
}

// Set publishes e for page. Out-of-range pages are ignored.
func (ix *Index) Set(page int, e *Entry) {
	if page < 1 || page > len(ix.entries) {
		return
	}
	ix.entries[page-1] = e
}

func (ix *Index) Invalidate(page int) { ix.Set(page, nil) }

// Pages returns the indexed page numbers in ascending order.
func (ix *Index) Pages() []int {
	var out []int
	for i, e := range ix.entries {
		if e != nil {
			out = append(out, i+1)
		}
	}
	return out
}

// Entries returns the indexed entries in ascending page order.
func (ix *Index) Entries() []*Entry {
	var out []*Entry
	for _, e := range ix.entries {
		if e != nil {
			out = append(out, e)
		}
	}
	return out
}
