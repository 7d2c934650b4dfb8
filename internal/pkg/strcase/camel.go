// Package strcase converts Go identifiers to the casing used on the wire.
package strcase

import (
	"strings"
	"unicode"
)

// ToLowerCamel converts a Go identifier to lowerCamelCase (initialism-safe).
//
//	FirstName -> firstName
//	OTP       -> otp
//	HTTPCode  -> httpCode
func ToLowerCamel(s string) string {
	if s == "" {
		return ""
	}

	runes := []rune(s)

	// length of the leading upper-case run that belongs to the first word
	n := 0
	for n < len(runes) && unicode.IsUpper(runes[n]) {
		n++
	}
	if n > 1 && n < len(runes) && unicode.IsLower(runes[n]) {
		// HTTPCode: the last upper rune starts the next word
		n--
	}
	if n == 0 {
		n = 1
	}

	var b strings.Builder
	b.Grow(len(s))
	for i, r := range runes {
		if i < n {
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}

	return b.String()
}
