// Package money implements integer-cent arithmetic shared by the billing core.
package money

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ErrInvalidAmount indicates an unparseable monetary input.
var ErrInvalidAmount = errors.New("money: invalid amount")

// RoundHalfUp rounds to the nearest integer cent, halves away from zero.
func RoundHalfUp(x float64) int64 {
	if x < 0 {
		return -int64(math.Floor(-x + 0.5))
	}
	return int64(math.Floor(x + 0.5))
}

// PercentOf returns pct percent of amount, rounded half-up.
func PercentOf(amount int64, pct float64) int64 {
	return RoundHalfUp(float64(amount) * pct / 100)
}

// ClampPercent forces pct into the [0,100] range.
func ClampPercent(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// ParseCents converts a decimal string such as "123.45" or "123,45" to cents.
// At most two fractional digits are accepted.
func ParseCents(s string) (int64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, ErrInvalidAmount
	}
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > 2 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	for len(frac) < 2 {
		frac += "0"
	}
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	cents, err := strconv.ParseInt(frac, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	total := units*100 + cents
	if neg {
		total = -total
	}
	return total, nil
}

var printer = message.NewPrinter(language.French)

// Format renders cents as a human readable amount with the currency code,
// e.g. 123456 "EUR" -> "1 234,56 EUR".
func Format(cents int64, currency string) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return printer.Sprintf("%s%d,%02d %s", sign, cents/100, cents%100, currency)
}
