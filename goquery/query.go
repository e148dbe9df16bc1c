package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// findFirst returns the first element under sel matching tag with a class
// attribute containing class. An empty tag matches any element. Returns
// nil when nothing matches.
func findFirst(sel *goquery.Selection, tag, class string) *goquery.Selection {
	selector := tag
	if class != "" {
		selector += "." + class
	}
	found := sel.Find(selector).First()
	if found.Length() == 0 {
		return nil
	}
	return found
}

// children returns the immediate child nodes of sel, including text and
// comment nodes, in document order.
func children(sel *goquery.Selection) []*html.Node {
	return sel.Contents().Nodes
}

// serializeChildren renders each immediate child of sel followed by a newline.
func serializeChildren(sel *goquery.Selection) (string, error) {
	var b strings.Builder
	var buf bytes.Buffer
	for _, n := range children(sel) {
		buf.Reset()
		if err := html.Render(&buf, n); err != nil {
			return "", err
		}
		b.Write(buf.Bytes())
		b.WriteByte('\n')
	}
	return b.String(), nil
}
