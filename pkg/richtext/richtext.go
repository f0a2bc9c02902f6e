// Package richtext flattens CMS rich-text payloads into plain text.
//
// A payload is either a list of structured blocks ({type, text, spans}) or a
// single markup string. Markup starting with '<' is treated as HTML, anything
// else as Markdown.
package richtext

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

// Span marks a formatted range inside a block's text.
type Span struct {
	Start int             `json:"start"`
	End   int             `json:"end"`
	Type  string          `json:"type"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Block is one structured rich-text element (paragraph, heading, list item...).
type Block struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Spans []Span `json:"spans,omitempty"`
}

// Document is a decoded rich-text field.
type Document struct {
	Blocks []Block
	Markup string
}

// UnmarshalJSON accepts a block array, a markup string or null.
func (d *Document) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*d = Document{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var blocks []Block
		if err := json.Unmarshal(trimmed, &blocks); err != nil {
			return fmt.Errorf("decode rich text blocks: %w", err)
		}
		*d = Document{Blocks: blocks}
	case '"':
		var markup string
		if err := json.Unmarshal(trimmed, &markup); err != nil {
			return fmt.Errorf("decode rich text markup: %w", err)
		}
		*d = Document{Markup: markup}
	default:
		return fmt.Errorf("unsupported rich text payload starting with %q", trimmed[0])
	}
	return nil
}

// MarshalJSON writes blocks back as an array, markup as a string.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.Markup != "" {
		return json.Marshal(d.Markup)
	}
	if d.Blocks == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(d.Blocks)
}

// IsEmpty reports whether the document carries no content at all.
func (d Document) IsEmpty() bool {
	return len(d.Blocks) == 0 && strings.TrimSpace(d.Markup) == ""
}

// Paragraphs returns the plain text of every block, in order.
func Paragraphs(d Document) []string {
	if d.Markup != "" {
		if strings.HasPrefix(strings.TrimSpace(d.Markup), "<") {
			return htmlParagraphs(d.Markup)
		}
		return markdownParagraphs(d.Markup)
	}
	out := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		out = append(out, b.Text)
	}
	return out
}

// AsPlainText joins every block's text with a single space.
func AsPlainText(d Document) string {
	return strings.Join(Paragraphs(d), " ")
}

func markdownParagraphs(src string) []string {
	source := []byte(src)
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var out []string
	for n := root.FirstChild(); n != nil; n = n.NextSibling() {
		var buf strings.Builder
		collectMarkdownText(&buf, n, source)
		if s := strings.TrimSpace(buf.String()); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func collectMarkdownText(buf *strings.Builder, n gmast.Node, source []byte) {
	_ = gmast.Walk(n, func(node gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch t := node.(type) {
		case *gmast.Text:
			buf.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				buf.WriteByte(' ')
			}
		case *gmast.String:
			buf.Write(t.Value)
		case *gmast.FencedCodeBlock, *gmast.CodeBlock:
			lines := node.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				buf.Write(seg.Value(source))
			}
			return gmast.WalkSkipChildren, nil
		case *gmast.ListItem, *gmast.Paragraph, *gmast.TextBlock:
			if buf.Len() > 0 {
				buf.WriteByte(' ')
			}
		}
		return gmast.WalkContinue, nil
	})
}

// blockElements start a new paragraph when flattening HTML.
var blockElements = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"li": true, "pre": true, "blockquote": true, "div": true,
}

func htmlParagraphs(src string) []string {
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		// html.Parse only fails on reader errors; keep the raw text.
		return []string{src}
	}

	var out []string
	var cur strings.Builder
	flush := func() {
		if s := strings.Join(strings.Fields(cur.String()), " "); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		isBlock := n.Type == html.ElementNode && blockElements[n.Data]
		if isBlock {
			flush()
		}
		if n.Type == html.TextNode {
			cur.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			cur.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if isBlock {
			flush()
		}
	}
	walk(doc)
	flush()
	return out
}
