// Package htmltext strips an HTML document down to plain text: script/style
// removed, block-level elements separated by newlines. The extraction is
// intentionally heuristic; the Gopher quality filter measures its output.
package htmltext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockElements are tags treated as line breaks when walking the DOM.
var blockElements = map[string]struct{}{
	"p": {}, "div": {}, "br": {}, "li": {}, "tr": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"section": {}, "article": {}, "header": {}, "footer": {},
	"pre": {}, "blockquote": {}, "ul": {}, "ol": {}, "table": {},
}

// Extract returns the plain text of an HTML document: script/style content
// dropped, block elements separated by newlines, blank lines removed.
func Extract(htmlSource string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlSource))
	if err != nil {
		return ""
	}

	doc.Find("script, style, noscript").Remove()

	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if _, isBlock := blockElements[n.Data]; isBlock {
				b.WriteString("\n")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode {
			if _, isBlock := blockElements[n.Data]; isBlock {
				b.WriteString("\n")
			}
		}
	}

	for _, node := range doc.Nodes {
		walk(node)
	}

	return collapseBlankLines(b.String())
}

// collapseBlankLines trims surrounding whitespace per line and drops the
// empty lines left behind by adjacent block elements.
func collapseBlankLines(text string) string {
	lines := strings.Split(text, "\n")
	var out []string
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return strings.Join(out, "\n")
}
