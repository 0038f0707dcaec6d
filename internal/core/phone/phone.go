// Package phone validates and canonicalizes mobile-money subscriber numbers
// for the numbering plans the supported providers operate in.
package phone

import (
	"fmt"
	"strings"

	"github.com/gurihub/payments/internal/core"
)

// Plan identifies a national numbering plan.
type Plan string

const (
	// PlanKenya covers Safaricom M-Pesa numbers (country code 254).
	PlanKenya Plan = "KE"
	// PlanSomalia covers EVC Plus / WAAFI numbers (country code 252).
	PlanSomalia Plan = "SO"
)

// Normalize converts a raw phone number into the canonical country-code
// prefixed form the provider expects, with no separators and no plus sign.
// Accepted local formats: with or without a leading 0, with or without the
// country code. Anything the plan does not recognize fails with
// core.ErrInvalidPhoneNumber.
func Normalize(raw string, plan Plan) (string, error) {
	digits, err := stripSeparators(raw)
	if err != nil {
		return "", err
	}

	switch plan {
	case PlanKenya:
		return normalizeKenyan(raw, digits)
	case PlanSomalia:
		return normalizeSomali(raw, digits)
	default:
		return "", fmt.Errorf("%w: unsupported numbering plan %q", core.ErrInvalidPhoneNumber, plan)
	}
}

// stripSeparators removes spaces, dashes and a single leading plus sign.
func stripSeparators(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "+")

	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
			// separator, drop it
		default:
			return "", fmt.Errorf("%w: unexpected character %q", core.ErrInvalidPhoneNumber, r)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("%w: empty number", core.ErrInvalidPhoneNumber)
	}
	return b.String(), nil
}

// normalizeKenyan canonicalizes to 254XXXXXXXXX (12 digits). Kenyan mobile
// subscriber numbers are 9 digits starting with 7 or 1.
func normalizeKenyan(raw, digits string) (string, error) {
	var subscriber string
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "254"):
		subscriber = digits[3:]
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		subscriber = digits[1:]
	case len(digits) == 9:
		subscriber = digits
	default:
		return "", fmt.Errorf("%w: %q does not match the Kenyan plan", core.ErrInvalidPhoneNumber, raw)
	}

	if subscriber[0] != '7' && subscriber[0] != '1' {
		return "", fmt.Errorf("%w: %q does not match the Kenyan plan", core.ErrInvalidPhoneNumber, raw)
	}
	return "254" + subscriber, nil
}

// normalizeSomali canonicalizes to 252XXXXXXXXX (12 digits). Somali mobile
// subscriber numbers are 9 digits starting with 6 or 7.
func normalizeSomali(raw, digits string) (string, error) {
	var subscriber string
	switch {
	case len(digits) == 12 && strings.HasPrefix(digits, "252"):
		subscriber = digits[3:]
	case len(digits) == 10 && strings.HasPrefix(digits, "0"):
		subscriber = digits[1:]
	case len(digits) == 9:
		subscriber = digits
	default:
		return "", fmt.Errorf("%w: %q does not match the Somali plan", core.ErrInvalidPhoneNumber, raw)
	}

	if subscriber[0] != '6' && subscriber[0] != '7' {
		return "", fmt.Errorf("%w: %q does not match the Somali plan", core.ErrInvalidPhoneNumber, raw)
	}
	return "252" + subscriber, nil
}
