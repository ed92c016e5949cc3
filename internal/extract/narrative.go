// Package extract turns narrative files into the plain text the analyzer sends.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// MaxNarrativeBytes bounds a narrative file read from disk
const MaxNarrativeBytes = 1 << 20

// ErrNarrativeTooLarge is returned for files over MaxNarrativeBytes
var ErrNarrativeTooLarge = errors.New("narrative file too large")

// ReadNarrative loads a narrative file. HTML is flattened to its visible
// text; anything else is returned as written, minus a UTF-8 BOM.
func ReadNarrative(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open narrative: %w", err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(io.LimitReader(f, MaxNarrativeBytes+1))
	if err != nil {
		return "", fmt.Errorf("read narrative: %w", err)
	}
	if len(data) > MaxNarrativeBytes {
		return "", fmt.Errorf("%w: %s", ErrNarrativeTooLarge, path)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	switch strings.ToLower(filepath.Ext(path)) {
	case ".html", ".htm":
		return FlattenHTML(string(data))
	default:
		return strings.TrimSpace(string(data)), nil
	}
}

// FlattenHTML extracts visible text, one paragraph per block element
func FlattenHTML(content string) (string, error) {
	doc, err := html.Parse(strings.NewReader(content))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	var paragraphs []string
	var current strings.Builder
	pendingSpace := false

	flush := func() {
		if p := strings.TrimSpace(current.String()); p != "" {
			paragraphs = append(paragraphs, p)
		}
		current.Reset()
		pendingSpace = false
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head", "template":
				return
			case "br":
				flush()
				return
			}
		}

		if n.Type == html.TextNode {
			text := strings.Join(strings.Fields(n.Data), " ")
			switch {
			case text == "":
				pendingSpace = pendingSpace || n.Data != ""
			default:
				if current.Len() > 0 && (pendingSpace || startsWithSpace(n.Data)) {
					current.WriteByte(' ')
				}
				current.WriteString(text)
				pendingSpace = endsWithSpace(n.Data)
			}
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}

		if n.Type == html.ElementNode && isBlock(n.Data) {
			flush()
		}
	}

	walk(doc)
	flush()
	return strings.Join(paragraphs, "\n\n"), nil
}

func isBlock(tag string) bool {
	switch tag {
	case "p", "div", "li", "ul", "ol", "h1", "h2", "h3", "h4", "h5", "h6",
		"blockquote", "pre", "tr", "table", "section", "article", "header", "footer":
		return true
	}
	return false
}

func startsWithSpace(s string) bool {
	return strings.TrimLeftFunc(s, unicode.IsSpace) != s
}

func endsWithSpace(s string) bool {
	return strings.TrimRightFunc(s, unicode.IsSpace) != s
}
