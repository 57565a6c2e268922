package checkout

import (
	"math/rand"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: ""},
		{name: "mixed separators", value: "4111 1111-1111 1111", want: "4111 1111 1111 1111"},
		{name: "plain digits", value: "4111111111111111", want: "4111 1111 1111 1111"},
		{name: "partial group", value: "411111", want: "4111 11"},
		{name: "exactly 4", value: "4111", want: "4111"},
		{name: "too many digits", value: "41111111111111112222", want: "4111 1111 1111 1111"},
		{name: "letters dropped", value: "41a1 1b1", want: "4111 1"},
		{name: "fewer than 4 digits is left as typed", value: "41a", want: "41a"},
		{name: "no digits is left as typed", value: "abc", want: "abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCardNumber(tt.value))
		})
	}
}

func TestFormatExpiryDate(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{name: "empty", value: "", want: ""},
		{name: "one digit", value: "1", want: "1"},
		{name: "non digits dropped", value: "a1", want: "1"},
		{name: "two digits", value: "12", want: "12/"},
		{name: "three digits", value: "122", want: "12/2"},
		{name: "MMYY", value: "1225", want: "12/25"},
		{name: "already formatted", value: "12/25", want: "12/25"},
		{name: "truncated", value: "122599", want: "12/25"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatExpiryDate(tt.value))
		})
	}
}

func TestFilterCVV(t *testing.T) {
	tests := []struct {
		value string
		want  string
	}{
		{value: "", want: ""},
		{value: "12", want: "12"},
		{value: "123", want: "123"},
		{value: "1234", want: "123"},
		{value: "1a2b3c4", want: "123"},
		{value: "abc", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterCVV(tt.value))
		})
	}
}

var fuzzAlphabet = []rune("0123456789 -/abcXYZ\t.٣")

func randomInput(r *rand.Rand) string {
	n := r.Intn(30)
	var sb strings.Builder
	for i := 0; i < n; i++ {
		sb.WriteRune(fuzzAlphabet[r.Intn(len(fuzzAlphabet))])
	}
	return sb.String()
}

func TestFormatters_Properties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	groupedCard := regexp.MustCompile(`^[0-9]{4}( [0-9]{4}){0,2}( [0-9]{1,4})?$`)
	expiry := regexp.MustCompile(`^[0-9]{2}/[0-9]{0,2}$`)
	digits := regexp.MustCompile(`^[0-9]*$`)

	for i := 0; i < 2000; i++ {
		in := randomInput(r)
		inDigits := len(digitsOnly(in))

		card := FormatCardNumber(in)
		if inDigits >= 4 {
			assert.Regexp(t, groupedCard, card, "FormatCardNumber(%q)", in)
			assert.LessOrEqual(t, len(strings.ReplaceAll(card, " ", "")), 16, "FormatCardNumber(%q)", in)
		} else {
			assert.Equal(t, in, card, "FormatCardNumber(%q)", in)
		}

		exp := FormatExpiryDate(in)
		if inDigits >= 2 {
			assert.Regexp(t, expiry, exp, "FormatExpiryDate(%q)", in)
			assert.LessOrEqual(t, len(exp), 5, "FormatExpiryDate(%q)", in)
		} else {
			assert.Equal(t, digitsOnly(in), exp, "FormatExpiryDate(%q)", in)
		}

		cvv := FilterCVV(in)
		assert.Regexp(t, digits, cvv, "FilterCVV(%q)", in)
		assert.LessOrEqual(t, len(cvv), 3, "FilterCVV(%q)", in)
	}
}
