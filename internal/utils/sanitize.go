package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	richTextPolicy = newRichTextPolicy()
	stripPolicy    = bluemonday.StrictPolicy()
)

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "strong", "b", "em", "i", "u", "ul", "ol", "li")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// SanitizeHTML keeps the rich text subset the editors produce and drops everything else
func SanitizeHTML(s string) string {
	return strings.TrimSpace(richTextPolicy.Sanitize(s))
}

// StripHTML removes all markup and returns plain text
func StripHTML(s string) string {
	return strings.TrimSpace(html.UnescapeString(stripPolicy.Sanitize(s)))
}
