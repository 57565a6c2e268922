package checkout

import (
	"regexp"
	"strings"
)

const (
	cardNumberDigits = 16
	cvvMaxLen        = 3
)

var (
	whitespaceRegex = regexp.MustCompile(`\s+`)
	nonDigitRegex   = regexp.MustCompile(`[^0-9]`)
	cardDigitsRegex = regexp.MustCompile(`[0-9]{4,16}`)
)

func digitsOnly(s string) string {
	return nonDigitRegex.ReplaceAllString(whitespaceRegex.ReplaceAllString(s, ""), "")
}

// FormatCardNumber keeps the first 4 to 16 digits of value and groups them by 4, e.g. "4111 1111 1111 1111".
// value is returned unchanged when it holds fewer than 4 digits.
func FormatCardNumber(value string) string {
	match := cardDigitsRegex.FindString(digitsOnly(value))
	if match == "" {
		return value
	}

	parts := make([]string, 0, cardNumberDigits/4)
	for i := 0; i < len(match); i += 4 {
		parts = append(parts, match[i:min(i+4, len(match))])
	}
	return strings.Join(parts, " ")
}

// FormatExpiryDate formats value as MM/YY once it holds at least 2 digits.
func FormatExpiryDate(value string) string {
	v := digitsOnly(value)
	if len(v) >= 2 {
		return v[:2] + "/" + v[2:min(4, len(v))]
	}
	return v
}

// FilterCVV drops non-digits and truncates value to 3 characters.
func FilterCVV(value string) string {
	v := nonDigitRegex.ReplaceAllString(value, "")
	if len(v) > cvvMaxLen {
		return v[:cvvMaxLen]
	}
	return v
}
