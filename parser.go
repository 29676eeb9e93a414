package main

import (
	"bytes"
	"html"
	"regexp"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	emoji "github.com/yuin/goldmark-emoji"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// parseMarkdownToHTML renders submission descriptions for the topics page.
func parseMarkdownToHTML(text string) string {
	var buf bytes.Buffer

	md := goldmark.New(
		goldmark.WithExtensions(
			emoji.Emoji,
			extension.Strikethrough,
			// Linkify URLs but not email addresses.
			// Note: passing nil uses goldmark's default email finder, so we use
			// a regex that only matches empty strings to effectively disable it.
			extension.NewLinkify(
				extension.WithLinkifyEmailRegexp(regexp.MustCompile(`^$`)),
			),
		),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
		),
	)

	if err := md.Convert([]byte(text), &buf); err != nil {
		return text // Fall back to the original text on error
	}

	return buf.String()
}

// sanitizePlainText strips all HTML, then unescapes entities to get plain
// text. The template engine re-escapes on output. Used for topic text and
// submitter names.
func sanitizePlainText(text string) string {
	strict := bluemonday.StrictPolicy()
	return html.UnescapeString(strict.Sanitize(text))
}

// sanitizeDescriptionHTML sanitizes rendered description markdown before it
// reaches the page.
func sanitizeDescriptionHTML(text string) string {
	return descriptionPolicy().Sanitize(text)
}

// descriptionPolicy allows inline formatting, lists and code but no headings,
// tables or images: descriptions are supporting text, not page content.
func descriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()

	p.AllowElements("p", "br", "span")
	p.AllowElements("blockquote", "pre")
	p.AllowElements("ul", "ol", "li")

	p.AllowElements("b", "i", "strong", "em", "s", "del")

	p.AllowElements("code")
	p.AllowAttrs("class").Matching(regexp.MustCompile(`^language-[\w-]+$`)).OnElements("code")

	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("title").OnElements("a")
	p.RequireNoFollowOnLinks(true)
	p.RequireNoReferrerOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)

	return p
}
