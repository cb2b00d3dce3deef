package money

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("invalid money amount")
)

// Thousand is the block size loyalty programs price points in: costs and
// rates are always expressed per 1000 points/miles.
var Thousand = decimal.NewFromInt(1000)

var Hundred = decimal.NewFromInt(100)

// Round2 rounds half-up to 2 decimal places. decimal.Round rounds half away
// from zero, which for the non-negative values flowing through the ledger is
// the same thing.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// Parse parses a user-entered decimal string like "1234.56".
// Rejects negatives; the ledger never stores signed amounts.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, ErrInvalidAmount
	}
	if d.IsNegative() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParsePositive is Parse with a strict > 0 requirement.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}
	if !d.IsPositive() {
		return decimal.Zero, ErrInvalidAmount
	}
	return d, nil
}

// ParseOptional parses a nullable decimal field. A nil or empty input means
// "not provided" and yields ok=false.
func ParseOptional(s *string) (decimal.Decimal, bool, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return decimal.Zero, false, nil
	}
	d, err := Parse(*s)
	if err != nil {
		return decimal.Zero, false, err
	}
	return d, true, nil
}

// String2 formats with exactly two fractional digits, the way balances and
// costs are presented everywhere in the API.
func String2(d decimal.Decimal) string {
	return d.StringFixed(2)
}
