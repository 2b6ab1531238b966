package currency

import (
	"regexp"
	"strings"

	"github.com/Rhymond/go-money"
)

var codePattern = regexp.MustCompile(`^[A-Za-z]{3}$`)

func normalize(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// ValidCode reports whether code looks like an ISO 4217 alphabetic code.
func ValidCode(code string) bool {
	return codePattern.MatchString(code)
}

// FractionDigits returns the number of minor-unit digits of an ISO 4217
// currency. Unknown codes default to 2.
func FractionDigits(code string) int32 {
	if c := money.GetCurrency(strings.ToUpper(code)); c != nil {
		return int32(c.Fraction)
	}
	return defaultFractionDigits
}
