// Package preview reduces server-rendered message HTML to a bounded,
// single-line plain-text summary for the conversation list.
package preview

import (
	"path"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// DefaultMaxLen is the preview length budget in runes.
const DefaultMaxLen = 150

const (
	ellipsis        = "…"
	codeToken       = "[code]"
	imageToken      = "[image]"
	imageAttachMark = "📷"
	fileAttachMark  = "📎"

	uploadPathPrefix = "/user_uploads/"
)

var imageExtensions = map[string]struct{}{
	".png": {}, ".jpg": {}, ".jpeg": {}, ".gif": {},
	".webp": {}, ".bmp": {}, ".svg": {},
}

// Extract converts rendered message HTML into a whitespace-collapsed
// plain-text preview of at most maxLen runes, ending in an ellipsis when the
// content did not fit. Malformed markup never fails: anything the walker
// does not recognise is traversed for its text content.
//
// The walk stops as soon as the collapsed buffer exceeds maxLen, so cost is
// bounded by maxLen rather than by message size.
func Extract(content string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxLen
	}

	w := &writer{max: maxLen}
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		w.writeText(content)
	} else {
		walk(body(doc), w)
	}
	return w.result()
}

func walk(n *html.Node, w *writer) {
	if n == nil || w.overflow {
		return
	}

	switch n.Type {
	case html.TextNode:
		w.writeText(n.Data)
		return
	case html.CommentNode, html.DoctypeNode:
		return
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "head", "template":
			return
		case "img":
			w.boundary()
			if alt := attr(n, "alt"); alt != "" {
				w.writeText("[" + alt + "]")
			} else {
				w.writeText(imageToken)
			}
			w.boundary()
			return
		case "pre":
			// Inline <code> keeps its text; only block code collapses.
			w.boundary()
			w.writeText(codeToken)
			w.boundary()
			return
		case "a":
			if href := attr(n, "href"); strings.HasPrefix(href, uploadPathPrefix) {
				w.boundary()
				w.writeText(attachmentToken(href))
				w.boundary()
				return
			}
		case "p", "div", "li", "ul", "ol", "blockquote", "table", "tr", "br", "hr":
			w.boundary()
		}
	}

	for c := n.FirstChild; c != nil && !w.overflow; c = c.NextSibling {
		walk(c, w)
	}
}

func attachmentToken(href string) string {
	name := path.Base(strings.TrimSuffix(href, "/"))
	ext := strings.ToLower(path.Ext(name))
	if _, ok := imageExtensions[ext]; ok {
		return imageAttachMark + " " + name
	}
	return fileAttachMark + " " + name
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// body locates the <body> element html.Parse always synthesises.
func body(doc *html.Node) *html.Node {
	var found *html.Node
	var find func(*html.Node)
	find = func(n *html.Node) {
		if found != nil || n == nil {
			return
		}
		if n.Type == html.ElementNode && n.Data == "body" {
			found = n
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			find(c)
		}
	}
	find(doc)
	if found == nil {
		return doc
	}
	return found
}

// writer accumulates runes with inline whitespace collapsing, so its length
// is always the length of the final collapsed string. It stores at most
// max+1 runes: one past the budget is enough to know truncation is needed.
type writer struct {
	buf          []rune
	max          int
	pendingSpace bool
	overflow     bool
}

func (w *writer) writeText(s string) {
	for _, r := range s {
		if w.overflow {
			return
		}
		if unicode.IsSpace(r) {
			if len(w.buf) > 0 {
				w.pendingSpace = true
			}
			continue
		}
		if w.pendingSpace {
			w.buf = append(w.buf, ' ')
			w.pendingSpace = false
			if len(w.buf) > w.max {
				w.overflow = true
				return
			}
		}
		w.buf = append(w.buf, r)
		if len(w.buf) > w.max {
			w.overflow = true
		}
	}
}

// boundary marks a block-level edge: the next text gets a single leading
// space if anything precedes it.
func (w *writer) boundary() {
	if len(w.buf) > 0 {
		w.pendingSpace = true
	}
}

func (w *writer) result() string {
	if w.overflow {
		return string(w.buf[:w.max-1]) + ellipsis
	}
	return string(w.buf)
}
