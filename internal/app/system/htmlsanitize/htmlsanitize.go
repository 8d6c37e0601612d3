// internal/app/system/htmlsanitize/htmlsanitize.go
//
// Package htmlsanitize cleans HTML destined for rendering in views or
// email bodies. Assistant replies and transcript summaries pass through
// here before they reach a template.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = buildPolicy()

func buildPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()

	// Formatting the markdown renderer emits beyond the UGC defaults.
	p.AllowElements("u", "s", "sub", "sup", "mark")

	// Assistant replies lean on styled tables for structured answers.
	tableEls := []string{"table", "thead", "tbody", "tfoot", "tr", "td", "th", "caption"}
	p.AllowAttrs("class").OnElements(tableEls...)
	p.AllowAttrs("style").OnElements(tableEls...)

	return p
}

// Sanitize strips unsafe markup and returns the cleaned HTML string.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return policy.Sanitize(s)
}

// SanitizeToHTML sanitizes and wraps the result for direct template use.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// IsPlainText reports whether s carries no HTML markup. A string needs
// both an opening and a closing angle bracket to count as markup, so
// ordinary prose like "5 < 10" stays plain.
func IsPlainText(s string) bool {
	return !(strings.Contains(s, "<") && strings.Contains(s, ">"))
}

// PlainTextToHTML escapes plain text and wraps it in a paragraph,
// turning newlines into line breaks.
func PlainTextToHTML(s string) string {
	if s == "" {
		return ""
	}
	escaped := html.EscapeString(s)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return "<p>" + escaped + "</p>"
}

// PrepareForDisplay renders arbitrary stored content for a view: plain
// text is escaped and paragraph-wrapped, HTML is sanitized.
func PrepareForDisplay(s string) template.HTML {
	if s == "" {
		return ""
	}
	if IsPlainText(s) {
		return template.HTML(PlainTextToHTML(s))
	}
	return SanitizeToHTML(s)
}
