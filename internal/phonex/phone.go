// Package phonex normalizes phone numbers to E.164 form for sign-up.
package phonex

import (
	"errors"
	"strings"
)

var ErrInvalidPhone = errors.New("invalid phone number")

// NormalizeE164 strips separators from a phone number and returns it in
// E.164 form ("+" followed by 8–15 digits). Numbers given without a
// leading "+" are assumed to already include a country code.
func NormalizeE164(raw string) (string, error) {
	var b strings.Builder
	for i, r := range raw {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			// leading plus handled below
		case r == ' ' || r == '-' || r == '(' || r == ')' || r == '.':
			// separator, drop
		default:
			return "", ErrInvalidPhone
		}
	}

	digits := b.String()
	if len(digits) < 8 || len(digits) > 15 {
		return "", ErrInvalidPhone
	}
	if digits[0] == '0' {
		return "", ErrInvalidPhone
	}
	return "+" + digits, nil
}
