package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMarkdownToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"bold", "**hello**", "<strong>hello</strong>"},
		{"italic", "*hello*", "<em>hello</em>"},
		{"strikethrough", "~~gone~~", "<del>gone</del>"},
		{"inline code", "`fmt.Println`", "<code>fmt.Println</code>"},
		{"emoji shortcode", "ship it :rocket:", "&#x1f680;"},
		{"bare url is linkified", "see https://example.com now", `<a href="https://example.com"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, parseMarkdownToHTML(tt.input), tt.contains)
		})
	}

	t.Run("email addresses are not linkified", func(t *testing.T) {
		out := parseMarkdownToHTML("mail me at user@example.com please")
		assert.NotContains(t, out, "mailto:")
	})
}

func TestSanitizePlainText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text untouched", "just some words", "just some words"},
		{"tags stripped, text kept", "<b>bold</b> words", "bold words"},
		{"script stripped", `<script>alert("x")</script>hi`, "hi"},
		{"entities unescaped", "a &amp; b", "a & b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sanitizePlainText(tt.input))
		})
	}
}

func TestSanitizeDescriptionHTML(t *testing.T) {
	t.Run("keeps inline formatting and lists", func(t *testing.T) {
		input := "<p>intro</p><ul><li><strong>bold</strong> and <code>code</code></li></ul>"
		out := sanitizeDescriptionHTML(input)
		assert.Contains(t, out, "<strong>bold</strong>")
		assert.Contains(t, out, "<code>code</code>")
		assert.Contains(t, out, "<li>")
	})

	t.Run("drops headings images and tables", func(t *testing.T) {
		input := `<h1>big</h1><img src="x"><table><tr><td>cell</td></tr></table>`
		out := sanitizeDescriptionHTML(input)
		assert.NotContains(t, out, "<h1>")
		assert.NotContains(t, out, "<img")
		assert.NotContains(t, out, "<table")
	})

	t.Run("drops event handlers", func(t *testing.T) {
		out := sanitizeDescriptionHTML(`<p onclick="alert(1)">hi</p>`)
		assert.NotContains(t, out, "onclick")
		assert.Contains(t, out, "hi")
	})

	t.Run("links get rel and target hardening", func(t *testing.T) {
		out := sanitizeDescriptionHTML(`<a href="https://example.com">x</a>`)
		assert.Contains(t, out, "nofollow")
		assert.Contains(t, out, "noreferrer")
		assert.Contains(t, out, `target="_blank"`)
	})
}
