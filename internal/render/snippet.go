package render

import (
	"strings"

	"golang.org/x/net/html"
)

// CleanSnippet strips markup from a search-result or source snippet.
// Backends highlight query terms with tags (<b>, <em>), which would leak
// into terminal output verbatim.
func CleanSnippet(snippet string) string {
	if !strings.ContainsRune(snippet, '<') {
		return collapseSpace(snippet)
	}

	doc, err := html.Parse(strings.NewReader(snippet))
	if err != nil {
		return collapseSpace(snippet)
	}

	var buf strings.Builder

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe":
				return
			}
		}

		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}

	walk(doc)
	return collapseSpace(buf.String())
}

// collapseSpace trims and folds runs of whitespace into single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
