// Package outline extracts navigable headings from markdown notes so a host
// can jump to them with the viewer's heading navigation.
package outline

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	treeblood "github.com/wyatt915/goldmark-treeblood"
	"github.com/yuin/goldmark"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Heading is a markdown heading. Page is the 1-based page hint written in
// the heading, or 0 when there is none.
type Heading struct {
	Text  string
	Level int
	Page  int
}

// pageHint matches a trailing "(p. 3)", "(page 3)", "[p 3]" or "[page 3]".
var pageHint = regexp.MustCompile(`(?i)\s*[\(\[]\s*p(?:age|\.)?\s*(\d+)\s*[\)\]]\s*$`)

// mathSpan matches $$…$$ and $…$ on one line. Single-dollar math may not
// start or end with a space, so prices stay text.
var mathSpan = regexp.MustCompile(`\$\$([^$\n]+)\$\$|\$([^\s$](?:[^$\n]*[^\s$])?)\$`)

// mathToken stands in for a formula while the markdown is converted.
var mathToken = regexp.MustCompile("\uE000(\\d+)\uE001")

var md = goldmark.New()

// mathMD only ever sees one display formula per document.
var mathMD = goldmark.New(goldmark.WithExtensions(treeblood.MathML()))

// FromMarkdown converts source to HTML and returns its headings in document
// order. Math in a heading is rendered to MathML on its own so the heading
// carries the same glyph text a rendered page would.
func FromMarkdown(source string) ([]Heading, error) {
	var formulas []string
	source = mathSpan.ReplaceAllStringFunc(source, func(m string) string {
		formulas = append(formulas, strings.Trim(m, "$"))
		return "\uE000" + strconv.Itoa(len(formulas)-1) + "\uE001"
	})
	restore := func(text string) string {
		return mathToken.ReplaceAllStringFunc(text, func(tok string) string {
			i, err := strconv.Atoi(mathToken.FindStringSubmatch(tok)[1])
			if err != nil || i >= len(formulas) {
				return tok
			}
			return " " + renderMath(formulas[i]) + " "
		})
	}

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return nil, err
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return nil, err
	}
	var out []Heading
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if level := headingLevel(n.DataAtom); level > 0 {
				if h, ok := parseHeading(restore(extractText(n)), level); ok {
					out = append(out, h)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out, nil
}

// SplitHint strips a trailing page hint from text.
func SplitHint(text string) (string, int) {
	m := pageHint.FindStringSubmatchIndex(text)
	if m == nil {
		return strings.TrimSpace(text), 0
	}
	page, err := strconv.Atoi(text[m[2]:m[3]])
	if err != nil || page < 1 {
		return strings.TrimSpace(text), 0
	}
	return strings.TrimSpace(text[:m[0]]), page
}

// renderMath returns the glyph text of a LaTeX formula, or the source when
// it does not render.
func renderMath(latex string) string {
	var buf bytes.Buffer
	if err := mathMD.Convert([]byte("$$"+latex+"$$"), &buf); err != nil {
		return latex
	}
	doc, err := html.Parse(&buf)
	if err != nil {
		return latex
	}
	text := strings.Join(strings.Fields(extractText(doc)), " ")
	if text == "" || strings.Contains(text, "$") {
		return latex
	}
	return text
}

func parseHeading(text string, level int) (Heading, bool) {
	text = strings.Join(strings.Fields(text), " ")
	title, page := SplitHint(text)
	if title == "" {
		return Heading{}, false
	}
	return Heading{Text: title, Level: level, Page: page}, true
}

func headingLevel(a atom.Atom) int {
	switch a {
	case atom.H1:
		return 1
	case atom.H2:
		return 2
	case atom.H3:
		return 3
	case atom.H4:
		return 4
	case atom.H5:
		return 5
	case atom.H6:
		return 6
	}
	return 0
}

// extractText concatenates text nodes, skipping MathML source annotations.
func extractText(n *html.Node) string {
	var sb strings.Builder
	var f func(*html.Node)
	f = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && (n.Data == "annotation" || n.Data == "annotation-xml") {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			f(c)
		}
	}
	f(n)
	return sb.String()
}
