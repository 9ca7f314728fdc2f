package textfmt

import (
	"regexp"
	"strings"
)

// Kind is the classification of a single whitespace-delimited token.
type Kind int

const (
	// Plain tokens are passed through unmodified.
	Plain Kind = iota
	// URI tokens start with "http" (case-insensitive).
	URI
	// Email tokens contain an RFC 5322 style address.
	Email
)

// String returns a lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case URI:
		return "uri"
	case Email:
		return "email"
	default:
		return "plain"
	}
}

// Regex Patterns (both applied to the lowercased token)
var (
	// Prefix only; the rest of the URI grammar is not checked.
	uriRegex = regexp.MustCompile(`^http`)

	// local-part@domain, domain is a dotted hostname or a bracketed literal.
	// Unanchored, so a token like "(me@example.com)" still counts.
	emailRegex = regexp.MustCompile(
		`(?:` +
			`[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` + // dot-atom local part
			`|"(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21\x23-\x5b\x5d-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])*"` + // quoted local part
			`)@(?:` +
			`(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?` + // hostname
			`|\[(?:(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9]))\.){3}` + // [a.b.c.
			`(?:(2(5[0-5]|[0-4][0-9])|1[0-9][0-9]|[1-9]?[0-9])` + // d]
			`|[a-z0-9-]*[a-z0-9]:(?:[\x01-\x08\x0b\x0c\x0e-\x1f\x21-\x5a\x53-\x7f]|\\[\x01-\x09\x0b\x0c\x0e-\x7f])+)\])`,
	)

	// Maximal run of trailing punctuation kept outside of anchors.
	punctuationRegex = regexp.MustCompile(`[.,;:!]+$`)
)

// IsURI reports whether token looks like a URI.
func IsURI(token string) bool {
	return uriRegex.MatchString(strings.ToLower(token))
}

// IsEmail reports whether token contains an e-mail address.
func IsEmail(token string) bool {
	return emailRegex.MatchString(strings.ToLower(token))
}

// Classify returns the kind of token. URI wins over Email.
func Classify(token string) Kind {
	if IsURI(token) {
		return URI
	}
	if IsEmail(token) {
		return Email
	}
	return Plain
}

// SplitPunctuation splits token into its body and the trailing run of
// [.,;:!] characters. body+punctuation always equals token.
func SplitPunctuation(token string) (body, punctuation string) {
	loc := punctuationRegex.FindStringIndex(token)
	if loc == nil {
		return token, ""
	}
	return token[:loc[0]], token[loc[0]:]
}
