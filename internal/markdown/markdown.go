// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package markdown converts post bodies from Markdown to HTML using
// goldmark. Post bodies are written by tenants and served on their public
// sites, so the output is passed through a bluemonday policy before it is
// trusted as HTML.
package markdown

import (
	"bytes"
	"fmt"
	"html"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	highlighting "github.com/yuin/goldmark-highlighting/v2"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// md is the configured goldmark instance, reused across calls.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,         // tables, strikethrough, autolinks, task lists
		extension.Typographer, // smart quotes and dashes
		highlighting.NewHighlighting(
			highlighting.WithStyle("monokai"),
			highlighting.WithFormatOptions(),
		),
	),
	goldmark.WithParserOptions(
		parser.WithAutoHeadingID(),
	),
	goldmark.WithRendererOptions(
		gmhtml.WithUnsafe(), // raw HTML is allowed in source; the policy below strips what is unsafe
	),
)

// policy is bluemonday's UGC policy plus the inline colours the
// highlighter emits and the ids generated for headings.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("id").OnElements("h1", "h2", "h3", "h4", "h5", "h6")
	p.AllowStyles("color", "background-color", "font-weight", "font-style", "text-decoration").
		OnElements("span", "pre")
	p.AllowAttrs("tabindex").OnElements("pre")
	return p
}

// ToHTML converts Markdown source into sanitized HTML.
func ToHTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return policy.Sanitize(buf.String()), nil
}

// Sanitize strips unsafe markup from already-rendered HTML. Form
// submissions and post excerpts go through it before storage.
func Sanitize(s string) string {
	return policy.Sanitize(s)
}

// StripTags removes all markup and returns plain text. Entities the
// policy escapes are decoded again, so the result must be escaped when it
// is written into HTML.
func StripTags(s string) string {
	return html.UnescapeString(strict.Sanitize(s))
}

var strict = bluemonday.StrictPolicy()
