// internal/app/system/markdown/markdown.go
//
// Package markdown renders markdown from assistant replies into HTML
// safe to embed in pages and email bodies.
package markdown

import (
	"html/template"
	"strings"

	"github.com/russross/blackfriday/v2"

	"github.com/scribeworks/scribehub/internal/app/system/htmlsanitize"
)

// Render converts markdown to sanitized HTML. The output carries only
// markup the sanitizer allows, so it can be embedded without further
// escaping.
func Render(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	raw := blackfriday.Run([]byte(md),
		blackfriday.WithExtensions(blackfriday.CommonExtensions))
	return htmlsanitize.Sanitize(strings.TrimSpace(string(raw)))
}

// RenderHTML wraps Render for direct template use.
func RenderHTML(md string) template.HTML {
	return template.HTML(Render(md))
}
