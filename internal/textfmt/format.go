// Package textfmt turns free-text popup fields into HTML fragments where
// URIs and e-mail addresses become clickable anchors.
//
// Format emits only the anchors as markup and returns every other token
// as-is; FormatEscaped also escapes the text for untrusted input.
package textfmt

import (
	"html"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// ZeroWidthSpace is inserted after wrap points in anchor text.
	ZeroWidthSpace = "&#8203;"

	// AnchorClass is set on every generated anchor.
	AnchorClass = "no-focus"

	mailtoPrefix = "mailto:"
	targetBlank  = ` target="_blank"`
)

var wrapReplacer = strings.NewReplacer(
	"/", "/"+ZeroWidthSpace,
	"-", "-"+ZeroWidthSpace,
)

// Format returns text with every whitespace-delimited URI or e-mail token
// rendered as an anchor. Tokens are rejoined with single spaces.
func Format(text string) string {
	return format(text, noEscape)
}

// FormatEscaped is Format for untrusted text: plain tokens are HTML-escaped,
// and anchor hrefs and visible text are escaped before wrap markers are added.
func FormatEscaped(text string) string {
	return format(text, html.EscapeString)
}

// FormatOptional is Format for values that may be absent; nil yields "".
func FormatOptional(text *string) string {
	if text == nil {
		return ""
	}
	return Format(*text)
}

// Anchor renders token as a "no-focus" anchor. prefix is prepended to the
// href, extra is appended verbatim to the opening tag, and trailing
// punctuation is moved after the closing tag.
func Anchor(prefix, token, extra string) string {
	return anchor(prefix, token, extra, noEscape)
}

func noEscape(s string) string { return s }

func format(text string, escape func(string) string) string {
	tokens := splitWhitespace(text)
	for i, token := range tokens {
		switch Classify(token) {
		case URI:
			tokens[i] = anchor("", token, targetBlank, escape)
		case Email:
			tokens[i] = anchor(mailtoPrefix, token, "", escape)
		default:
			tokens[i] = escape(token)
		}
	}
	return strings.Join(tokens, " ")
}

// anchor escapes never introduce '/' or '-', so wrapping after escaping
// only marks characters from the original token.
func anchor(prefix, token, extra string, escape func(string) string) string {
	href, punctuation := SplitPunctuation(token)
	href = escape(href)

	var b strings.Builder
	b.Grow(len(token)*2 + len(prefix) + len(extra) + 32)
	b.WriteString(`<a class="`)
	b.WriteString(AnchorClass)
	b.WriteString(`" href="`)
	b.WriteString(prefix)
	b.WriteString(href)
	b.WriteString(`"`)
	b.WriteString(extra)
	b.WriteString(`>`)
	b.WriteString(wrapReplacer.Replace(href))
	b.WriteString(`</a>`)
	b.WriteString(punctuation)
	return b.String()
}

// splitWhitespace splits on every single whitespace rune, so runs of
// whitespace produce empty tokens.
func splitWhitespace(text string) []string {
	tokens := make([]string, 0, strings.Count(text, " ")+1)
	start := 0
	for i, r := range text {
		if isSpace(r) {
			tokens = append(tokens, text[start:i])
			start = i + utf8.RuneLen(r)
		}
	}
	return append(tokens, text[start:])
}

// isSpace matches the ECMAScript \s class: Unicode white space plus BOM,
// without NEL.
func isSpace(r rune) bool {
	if r == '\uFEFF' {
		return true
	}
	return r != '\u0085' && unicode.IsSpace(r)
}
