// Package extract pulls weighted text out of an HTML document: the page's
// full text counts once, and text inside bold, heading, and title elements
// counts again at a higher weight, so a term search engine can favor pages
// that call a term out rather than merely mention it.
package extract

import (
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/corpusdex/engine/pkg/corpusdex/corpuserr"
)

// Weight multipliers applied on top of the base count-of-1 every word gets
// from full-text tokenization. A bolded word is counted BoldWeight times
// total, not BoldWeight times in addition to its plain occurrence.
const (
	BodyWeight   = 1.0
	BoldWeight   = 3.0
	HeaderWeight = 5.0
	TitleWeight  = 10.0
)

var (
	boldSelector   = cascadia.MustCompile("b, strong")
	titleSelector  = cascadia.MustCompile("title")
	headerSelector = cascadia.MustCompile("h1, h2, h3, h4, h5")
)

// Weighted holds the four text streams pulled from a document, each
// carrying its emphasis weight.
type Weighted struct {
	Body   string
	Bold   string
	Title  string
	Header string
}

// Parse parses raw HTML and extracts its weighted text streams.
func Parse(rawHTML string) (Weighted, error) {
	doc, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return Weighted{}, corpuserr.Parse("parse html document", err)
	}

	return Weighted{
		Body:   nodeText(doc),
		Bold:   selectText(doc, boldSelector),
		Title:  selectText(doc, titleSelector),
		Header: selectText(doc, headerSelector),
	}, nil
}

// selectText joins the text content of every element the selector matches,
// space-separated, mirroring a `select(...).map(|e| e.text()).join(" ")`
// pass over the document.
func selectText(doc *html.Node, sel cascadia.Selector) string {
	var parts []string
	for _, n := range cascadia.QueryAll(doc, sel) {
		if text := strings.TrimSpace(nodeText(n)); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

// nodeText concatenates every text node under n, depth-first.
func nodeText(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(nodeText(c))
		if c.Type == html.ElementNode {
			sb.WriteByte(' ')
		}
	}
	return sb.String()
}
