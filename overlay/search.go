package overlay

import (
	"strings"
	"unicode"

	"github.com/wudi/pageview/coords"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Match scores.
const (
	ScoreNone     = 0
	ScoreContains = 2
	ScoreExact    = 3
)

// Match is the best span found for a query.
type Match struct {
	Page  int
	Span  int
	Text  string
	Box   coords.Rect
	Score int
}

var folder = cases.Fold()

// Normalize maps s to the form used for comparison: NFKC, case folded, with
// whitespace runs collapsed to single spaces and trimmed.
func Normalize(s string) string {
	s = folder.String(norm.NFKC.String(s))
	return strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
}

// Score compares a span's text with a query after normalization. Empty
// strings never match.
func Score(spanText, query string) int {
	return score(Normalize(spanText), Normalize(query))
}

func score(span, query string) int {
	if span == "" || query == "" {
		return ScoreNone
	}
	if span == query {
		return ScoreExact
	}
	if strings.Contains(span, query) || strings.Contains(query, span) {
		return ScoreContains
	}
	return ScoreNone
}

// Search scans entries in order and returns the highest scoring span. An
// exact match ends the scan; among equal scores the first one wins.
func Search(entries []*Entry, query string) (Match, bool) {
	q := Normalize(query)
	var best Match
	for _, e := range entries {
		if e == nil {
			continue
		}
		for i, s := range e.Spans {
			sc := score(Normalize(s.Text), q)
			if sc <= best.Score {
				continue
			}
			best = Match{Page: e.Page, Span: i, Text: s.Text, Box: s.Box, Score: sc}
			if sc == ScoreExact {
				return best, true
			}
		}
	}
	return best, best.Score > ScoreNone
}
