// Package sanitize cleans user supplied text before it is stored or rendered.
package sanitize

import (
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

var richText = newRichTextPolicy()

func newRichTextPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowStandardURLs()
	p.AllowElements(
		"p", "br", "strong", "em", "u", "s",
		"h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li",
		"blockquote", "pre", "code",
		"span", "div",
	)
	p.AllowAttrs("href", "target", "rel").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowAttrs("title", "class").Globally()
	return p
}

// HTML keeps a small allow-list of formatting tags and attributes and drops
// everything else, including scripts, event handlers and data attributes.
func HTML(dirty string) string {
	return richText.Sanitize(dirty)
}

// Text removes anything that looks like a tag and trims the result.
func Text(s string) string {
	return strings.TrimSpace(tagPattern.ReplaceAllString(s, ""))
}
