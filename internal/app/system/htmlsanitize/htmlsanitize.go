// Package htmlsanitize cleans configured HTML snippets and visitor free text.
package htmlsanitize

import (
	"html"
	"html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	snippetPolicy *bluemonday.Policy
	strictPolicy  *bluemonday.Policy
	policyOnce    sync.Once
)

func policies() (*bluemonday.Policy, *bluemonday.Policy) {
	policyOnce.Do(func() {
		// Operator-supplied snippets (footer): inline formatting and links.
		snippetPolicy = bluemonday.UGCPolicy()
		snippetPolicy.AllowElements("u", "s", "mark")

		strictPolicy = bluemonday.StrictPolicy()
	})
	return snippetPolicy, strictPolicy
}

// Sanitize removes dangerous markup from an operator-supplied HTML snippet.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	p, _ := policies()
	return p.Sanitize(s)
}

// SanitizeToHTML sanitizes s and marks it safe for templates.
func SanitizeToHTML(s string) template.HTML {
	return template.HTML(Sanitize(s))
}

// StripTags reduces visitor input to plain text: every tag is dropped
// (script and style bodies with it), entities are decoded, and
// surrounding space is trimmed. Line breaks are kept.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	_, p := policies()
	return strings.TrimSpace(html.UnescapeString(p.Sanitize(s)))
}

// PlainTextToHTML escapes text and turns newlines into <br>, wrapped in <p>.
func PlainTextToHTML(text string) template.HTML {
	if text == "" {
		return ""
	}
	escaped := template.HTMLEscapeString(text)
	escaped = strings.ReplaceAll(escaped, "\r\n", "\n")
	escaped = strings.ReplaceAll(escaped, "\n", "<br>")
	return template.HTML("<p>" + escaped + "</p>")
}
