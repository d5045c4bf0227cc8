package extract

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Webpage strips markup from raw HTML and returns the visible text, text
// nodes joined with single spaces and whitespace collapsed. Script, style
// and noscript subtrees are skipped.
func Webpage(markup string) (string, error) {
	if strings.TrimSpace(markup) == "" {
		return "", ErrNoContent
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.Join(strings.Fields(n.Data), " "); t != "" {
				parts = append(parts, t)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	text := strings.Join(parts, " ")
	if text == "" {
		return "", ErrNoContent
	}
	return text, nil
}
