package decimal

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Zero is decimal zero
var Zero = decimal.Zero

// FromInt creates decimal from int
func FromInt(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

// MaxDigits bounds the digits accepted in one amount
const MaxDigits = 32

// plainNumber is signed positional notation; exponents are not accepted
var plainNumber = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)$`)

var (
	ErrNotPlainNumber = errors.New("not a plain decimal number")
	ErrTooManyDigits  = errors.New("too many digits")
)

// FromString parses decimal from form text. Surrounding whitespace is ignored.
// Exponent notation ("1e3") is rejected, as is text longer than MaxDigits.
func FromString(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if !plainNumber.MatchString(s) {
		return Zero, ErrNotPlainNumber
	}
	if digits(s) > MaxDigits {
		return Zero, ErrTooManyDigits
	}
	return decimal.NewFromString(s)
}

func digits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}

// MustFromString parses decimal from string, panics on error
func MustFromString(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// ParseOrZero parses form text, returning zero for anything unparsable.
// Used for live totals, which must render while the form is incomplete.
func ParseOrZero(s string) decimal.Decimal {
	d, err := FromString(s)
	if err != nil {
		return Zero
	}
	return d
}

// Mul multiplies two decimals without rounding
func Mul(a, b decimal.Decimal) decimal.Decimal {
	return a.Mul(b)
}

// Sum sums a slice of decimals
func Sum(values []decimal.Decimal) decimal.Decimal {
	result := Zero
	for _, v := range values {
		result = result.Add(v)
	}
	return result
}

// IsPositive returns true if decimal is greater than zero
func IsPositive(d decimal.Decimal) bool {
	return d.GreaterThan(Zero)
}

// IsNonNegative returns true if decimal is >= zero
func IsNonNegative(d decimal.Decimal) bool {
	return d.GreaterThanOrEqual(Zero)
}

// RoundCents rounds to two decimal places (display precision)
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}
