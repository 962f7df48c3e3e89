// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"gopkg.in/yaml.v3"
)

// htmlSanitizer uses bluemonday's UGCPolicy which allows safe formatting
// tags and links but strips scripts and event handlers.
var htmlSanitizer = bluemonday.UGCPolicy()

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Span is a run of text inside a block.
type Span struct {
	Type  string   `json:"_type,omitempty" yaml:"_type,omitempty"`
	Key   string   `json:"_key,omitempty" yaml:"_key,omitempty"`
	Text  string   `json:"text" yaml:"text"`
	Marks []string `json:"marks,omitempty" yaml:"marks,omitempty"`
}

// MarkDef is an annotation referenced from span marks, e.g. a link.
type MarkDef struct {
	Key  string `json:"_key" yaml:"_key"`
	Type string `json:"_type" yaml:"_type"`
	Href string `json:"href,omitempty" yaml:"href,omitempty"`
}

// Block is a Portable Text block.
type Block struct {
	Type     string    `json:"_type" yaml:"_type"`
	Key      string    `json:"_key,omitempty" yaml:"_key,omitempty"`
	Style    string    `json:"style,omitempty" yaml:"style,omitempty"`
	ListItem string    `json:"listItem,omitempty" yaml:"listItem,omitempty"`
	Level    int       `json:"level,omitempty" yaml:"level,omitempty"`
	Children []Span    `json:"children,omitempty" yaml:"children,omitempty"`
	MarkDefs []MarkDef `json:"markDefs,omitempty" yaml:"markDefs,omitempty"`
}

// RichText is body content authored either as Portable Text blocks (CMS) or
// as a Markdown string (content files).
type RichText struct {
	Blocks   []Block
	Markdown string
}

// IsEmpty reports whether there is nothing to render.
func (r RichText) IsEmpty() bool {
	return len(r.Blocks) == 0 && strings.TrimSpace(r.Markdown) == ""
}

// MarshalJSON encodes blocks as an array and Markdown as a string.
func (r RichText) MarshalJSON() ([]byte, error) {
	if len(r.Blocks) > 0 {
		return json.Marshal(r.Blocks)
	}
	if r.Markdown != "" {
		return json.Marshal(r.Markdown)
	}
	return []byte("null"), nil
}

// UnmarshalJSON accepts a block array, a Markdown string or null.
func (r *RichText) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0 || bytes.Equal(data, []byte("null")):
		*r = RichText{}
		return nil
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RichText{Markdown: s}
		return nil
	}
	var blocks []Block
	if err := json.Unmarshal(data, &blocks); err != nil {
		return fmt.Errorf("decoding rich text: %w", err)
	}
	*r = RichText{Blocks: blocks}
	return nil
}

// UnmarshalYAML accepts a block sequence or a Markdown scalar.
func (r *RichText) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*r = RichText{Markdown: node.Value}
		return nil
	case yaml.SequenceNode:
		var blocks []Block
		if err := node.Decode(&blocks); err != nil {
			return fmt.Errorf("decoding rich text: %w", err)
		}
		*r = RichText{Blocks: blocks}
		return nil
	}
	return fmt.Errorf("rich text must be a string or a list of blocks, line %d", node.Line)
}

// HTML renders the content to sanitized HTML.
func (r RichText) HTML() template.HTML {
	var raw string
	if len(r.Blocks) > 0 {
		raw = renderBlocks(r.Blocks)
	} else if r.Markdown != "" {
		var buf bytes.Buffer
		if err := markdown.Convert([]byte(r.Markdown), &buf); err != nil {
			raw = "<p>" + html.EscapeString(r.Markdown) + "</p>"
		} else {
			raw = buf.String()
		}
	}
	return template.HTML(htmlSanitizer.Sanitize(raw))
}

var blockTags = map[string]string{
	"normal":     "p",
	"h1":         "h2", // the page title is the only h1
	"h2":         "h2",
	"h3":         "h3",
	"h4":         "h4",
	"blockquote": "blockquote",
}

var decoratorTags = map[string]string{
	"strong":         "strong",
	"em":             "em",
	"code":           "code",
	"underline":      "u",
	"strike-through": "s",
}

func renderBlocks(blocks []Block) string {
	var sb strings.Builder
	var lists []string // open list tags, innermost last

	closeList := func() {
		sb.WriteString("</li></")
		sb.WriteString(lists[len(lists)-1])
		sb.WriteString(">")
		lists = lists[:len(lists)-1]
	}

	for _, b := range blocks {
		if b.Type != "" && b.Type != "block" {
			continue
		}

		if b.ListItem == "" {
			for len(lists) > 0 {
				closeList()
			}
			tag, ok := blockTags[b.Style]
			if !ok {
				tag = "p"
			}
			sb.WriteString("<" + tag + ">")
			renderSpans(&sb, b)
			sb.WriteString("</" + tag + ">")
			continue
		}

		level := b.Level
		if level < 1 {
			level = 1
		}
		tag := "ul"
		if b.ListItem == "number" {
			tag = "ol"
		}

		for len(lists) > level {
			closeList()
		}
		if len(lists) == level && lists[level-1] != tag {
			closeList()
		}
		if len(lists) == level {
			sb.WriteString("</li>")
		}
		for len(lists) < level {
			sb.WriteString("<" + tag + ">")
			lists = append(lists, tag)
		}
		sb.WriteString("<li>")
		renderSpans(&sb, b)
	}

	for len(lists) > 0 {
		closeList()
	}
	return sb.String()
}

func renderSpans(sb *strings.Builder, b Block) {
	defs := make(map[string]MarkDef, len(b.MarkDefs))
	for _, d := range b.MarkDefs {
		defs[d.Key] = d
	}

	for _, span := range b.Children {
		var open, closing []string
		for _, mark := range span.Marks {
			if tag, ok := decoratorTags[mark]; ok {
				open = append(open, "<"+tag+">")
				closing = append(closing, "</"+tag+">")
				continue
			}
			if def, ok := defs[mark]; ok && def.Type == "link" && def.Href != "" {
				open = append(open, `<a href="`+html.EscapeString(def.Href)+`">`)
				closing = append(closing, "</a>")
			}
		}

		for _, o := range open {
			sb.WriteString(o)
		}
		text := html.EscapeString(span.Text)
		sb.WriteString(strings.ReplaceAll(text, "\n", "<br>"))
		for i := len(closing) - 1; i >= 0; i-- {
			sb.WriteString(closing[i])
		}
	}
}
