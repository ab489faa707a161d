// Package render turns generated recommendation text into display HTML.
package render

import (
	"html"
	"regexp"
)

var (
	boldPattern       = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern     = regexp.MustCompile(`\*(.*?)\*`)
	newlinePattern    = regexp.MustCompile(`\n`)
	paragraphPattern  = regexp.MustCompile(`<br>\s*<br>`)
	wrapPattern       = regexp.MustCompile(`^(.+)$`)
	emptyParagraphTag = regexp.MustCompile(`<p></p>`)
)

// Markdown applies the minimal markdown substitution set used by the result
// view. Order matters: bold before italic, then line breaks, then paragraphs.
// Lists, headings and nesting are not supported.
func Markdown(text string) string {
	if text == "" {
		return ""
	}

	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, `<strong class="markdown-bold">${1}</strong>`)
	out = italicPattern.ReplaceAllString(out, `<em class="markdown-italic">${1}</em>`)
	out = newlinePattern.ReplaceAllString(out, "<br>")
	out = paragraphPattern.ReplaceAllString(out, "</p><p>")
	out = wrapPattern.ReplaceAllString(out, "<p>${1}</p>")
	out = emptyParagraphTag.ReplaceAllString(out, "")
	return out
}
