// Package normalize canonicalizes user-entered field values before they
// are stored or compared.
package normalize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// strict strips all HTML. Free text from operators (goal descriptions,
// client names arriving via sync payloads) passes through here so markup
// never reaches stored documents.
var strict = bluemonday.StrictPolicy()

// Email lowercases and trims an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims a display name, preserving case.
func Name(s string) string {
	return strings.TrimSpace(s)
}

// Text trims free text and strips any HTML markup.
func Text(s string) string {
	return strings.TrimSpace(strict.Sanitize(s))
}

// CPF reduces a CPF to its digits. "123.456.789-09" and "12345678909"
// normalize to the same value, so equality filters work regardless of how
// the number was typed.
func CPF(s string) string {
	var b strings.Builder
	b.Grow(11)
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
