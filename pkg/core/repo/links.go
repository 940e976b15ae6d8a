package repo

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// Link is a hyperlink scraped from a page: its visible text and target.
type Link struct {
	Label string
	Href  string
}

// ExtractLinks parses an HTML document and returns every anchor that has an
// href attribute, in document order. Labels are the anchor's text content,
// text nodes joined as rendered, with runs of whitespace collapsed.
func ExtractLinks(r io.Reader) ([]Link, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var links []Link
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			if href, ok := attr(n, "href"); ok {
				links = append(links, Link{Label: text(n), Href: strings.TrimSpace(href)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return links, nil
}

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val, true
		}
	}
	return "", false
}

func text(n *html.Node) string {
	var b strings.Builder
	var collect func(*html.Node)
	collect = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			collect(c)
		}
	}
	collect(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

// firstLabelled returns the first link whose label contains token.
// The match is case-sensitive.
func firstLabelled(links []Link, token string) (Link, bool) {
	for _, l := range links {
		if strings.Contains(l.Label, token) {
			return l, true
		}
	}
	return Link{}, false
}
