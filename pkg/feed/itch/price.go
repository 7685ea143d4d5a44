package itch

import (
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// PriceScale is the number of implied decimals in ITCH 5.0 price fields
const PriceScale int32 = 4

// FormatPrice renders an integer price with scale implied decimals
func FormatPrice(p int64, scale int32) string {
	return decimal.New(p, -scale).StringFixed(scale)
}

// ParsePrice converts a decimal string to integer ticks at scale. Extra
// precision is rejected rather than rounded.
func ParsePrice(s string, scale int32) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, errors.Wrapf(err, "parse price %q", s)
	}
	shifted := d.Shift(scale)
	if !shifted.Equal(shifted.Truncate(0)) {
		return 0, errors.Errorf("price %q has more than %d decimals", s, scale)
	}
	return shifted.IntPart(), nil
}
