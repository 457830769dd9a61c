package parser

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// inlineElements continue the surrounding line of loose text.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "cite": true,
	"code": true, "em": true, "font": true, "i": true, "mark": true, "q": true,
	"s": true, "small": true, "span": true, "strong": true, "sub": true,
	"sup": true, "u": true,
}

// HTMLExtractor pulls mARkdown out of an HTML page. Text inside <pre>
// keeps its line breaks; every other block element becomes one line, and
// loose text outside those blocks breaks at <br> and block boundaries.
type HTMLExtractor struct{}

func (p *HTMLExtractor) Extract(r io.Reader, filename string) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var lines []string
	emit := func(s string) {
		for _, l := range strings.Split(s, "\n") {
			l = strings.TrimRight(l, " \t\r")
			if strings.TrimSpace(l) != "" {
				lines = append(lines, l)
			}
		}
	}

	// Text outside the handled blocks, e.g. directly in <body> or <div>
	// with <br> between lines, collects here until a break.
	var loose strings.Builder
	flush := func() {
		emit(strings.TrimSpace(loose.String()))
		loose.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			loose.WriteString(whitespaceRun.ReplaceAllString(n.Data, " "))
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "nav", "footer", "header", "title":
				return
			case "br":
				flush()
				return
			case "pre", "textarea":
				flush()
				emit(textContent(n, true))
				return
			case "p", "li", "td", "blockquote", "h1", "h2", "h3", "h4", "h5", "h6":
				flush()
				emit(textContent(n, false))
				return
			}
			if !inlineElements[n.Data] {
				flush()
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && !inlineElements[n.Data] {
			flush()
		}
	}

	if body := findBody(doc); body != nil {
		walk(body)
	} else {
		walk(doc)
	}
	flush()
	return strings.Join(lines, "\n"), nil
}

// textContent concatenates the text under n. Unless preformatted, runs of
// whitespace collapse to one space and only <br> breaks the line.
func textContent(n *html.Node, preformatted bool) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			if preformatted {
				buf.WriteString(n.Data)
			} else {
				buf.WriteString(whitespaceRun.ReplaceAllString(n.Data, " "))
			}
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
