// Package types provides common type aliases and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Quantity represents a fuel volume in litres with full decimal precision.
// Uses decimal.Decimal to avoid floating-point errors; persisted as
// NUMERIC(18,4).
type Quantity = decimal.Decimal

// Rate represents a dimensionless fraction (e.g. 0.0025 = 0.25% loss rate).
// Persisted as NUMERIC(8,6).
type Rate = decimal.Decimal

// QuantityScale is the number of fractional digits kept for stored volumes.
const QuantityScale int32 = 4

// RateScale is the number of fractional digits kept for stored rates.
const RateScale int32 = 6

// NewQuantity creates a Quantity from a float.
// WARNING: Use MustQuantity / decimal.NewFromString for precise values.
func NewQuantity(f float64) Quantity {
	return decimal.NewFromFloat(f)
}

// NewQuantityFromString creates a Quantity from a string.
// This is the preferred constructor for exact values.
func NewQuantityFromString(s string) (Quantity, error) {
	return decimal.NewFromString(s)
}

// MustQuantity creates a Quantity from a string, panics on error.
// Use only for constants and tests.
func MustQuantity(s string) Quantity {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// MustRate creates a Rate from a string, panics on error.
// Use only for constants and tests.
func MustRate(s string) Rate {
	return MustQuantity(s)
}

// Zero returns the zero Quantity.
func Zero() Quantity {
	return decimal.Zero
}

// RoundQuantity normalizes a computed volume to the stored scale (half-up).
func RoundQuantity(q Quantity) Quantity {
	return q.Round(QuantityScale)
}

// maxLossRate is the sanity bound for loss-rate entry: 10%. Anything above is
// almost certainly a whole percentage typed where a fraction was expected.
var maxLossRate = decimal.NewFromFloat(0.10)

// ValidLossRate reports whether r lies in [0, 0.10].
func ValidLossRate(r Rate) bool {
	return !r.IsNegative() && r.LessThanOrEqual(maxLossRate)
}
