// Package money provides the Money value object used for all balances and
// transaction amounts.
package money

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"

	"github.com/amirasaad/custodia/pkg/currency"
)

// ErrCurrencyMismatch is returned when arithmetic mixes currencies.
var ErrCurrencyMismatch = errors.New("currency mismatch")

// ErrInvalidAmount is returned when an amount cannot be represented in the
// currency's smallest unit, e.g. too many decimal places.
var ErrInvalidAmount = errors.New("invalid amount")

// Amount is a monetary amount as an integer in the smallest currency unit
// (e.g. cents for USD).
type Amount = int64

// Money represents a monetary value in a specific currency.
// Invariants:
//   - Amount is always stored in the smallest currency unit.
//   - Currency must be one of the supported currencies.
//   - All arithmetic operations require matching currencies.
type Money struct {
	amount   Amount
	currency currency.Code
}

// New creates a Money value from an amount in main currency units.
// The amount must not carry more decimal places than the currency allows.
func New(amount float64, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	smallest, err := toSmallestUnit(amount, code)
	if err != nil {
		return Money{}, err
	}
	return Money{amount: smallest, currency: code}, nil
}

// NewFromSmallestUnit creates a Money value directly from the smallest
// currency unit, as stored in the ledger.
func NewFromSmallestUnit(amount int64, code currency.Code) (Money, error) {
	if code == "" {
		code = currency.DefaultCurrency
	}
	if !currency.IsSupported(code) {
		return Money{}, currency.ErrUnsupportedCurrency
	}
	return Money{amount: amount, currency: code}, nil
}

// NewRounded creates a Money value from main currency units, rounding to
// the currency's precision. Used for converted amounts, where the rate
// arithmetic can produce sub-unit fractions.
func NewRounded(amount float64, code currency.Code) (Money, error) {
	meta, err := currency.Get(code)
	if err != nil {
		return Money{}, err
	}
	multiplier := math.Pow10(meta.Decimals)
	scaled := math.Round(amount * multiplier)
	// float64(MaxInt64) is exactly 1<<63, so the representable range is
	// [MinInt64, MaxInt64); the conversion below would otherwise be
	// implementation-defined. NaN fails both comparisons.
	if !(scaled >= math.MinInt64 && scaled < math.MaxInt64) {
		return Money{}, fmt.Errorf("%w: exceeds maximum representable value", ErrInvalidAmount)
	}
	return Money{
		amount:   Amount(scaled),
		currency: code,
	}, nil
}

// Amount returns the amount in the smallest currency unit.
func (m Money) Amount() Amount { return m.amount }

// Currency returns the currency of the Money value.
func (m Money) Currency() currency.Code { return m.currency }

// AmountFloat returns the amount in main currency units.
func (m Money) AmountFloat() float64 {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return 0
	}
	return float64(m.amount) / math.Pow10(meta.Decimals)
}

// Add adds another Money value. Currencies must match.
func (m Money) Add(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount + other.amount, currency: m.currency}, nil
}

// Subtract subtracts another Money value. Currencies must match.
func (m Money) Subtract(other Money) (Money, error) {
	if !m.IsSameCurrency(other) {
		return Money{}, ErrCurrencyMismatch
	}
	return Money{amount: m.amount - other.amount, currency: m.currency}, nil
}

// Equals reports whether two Money values have the same currency and amount.
func (m Money) Equals(other Money) bool {
	return m.IsSameCurrency(other) && m.amount == other.amount
}

// GreaterThanOrEqual reports whether m >= other. Currencies must match.
func (m Money) GreaterThanOrEqual(other Money) (bool, error) {
	if !m.IsSameCurrency(other) {
		return false, ErrCurrencyMismatch
	}
	return m.amount >= other.amount, nil
}

// IsSameCurrency reports whether both values share a currency.
func (m Money) IsSameCurrency(other Money) bool {
	return m.currency == other.currency
}

// IsPositive reports whether the amount is greater than zero.
func (m Money) IsPositive() bool { return m.amount > 0 }

// IsNegative reports whether the amount is less than zero.
func (m Money) IsNegative() bool { return m.amount < 0 }

// IsZero reports whether the amount is zero.
func (m Money) IsZero() bool { return m.amount == 0 }

// String formats the value with the currency's precision, e.g. "10.50 USD".
func (m Money) String() string {
	meta, err := currency.Get(m.currency)
	if err != nil {
		return fmt.Sprintf("%d %s", m.amount, m.currency)
	}
	return fmt.Sprintf("%.*f %s", meta.Decimals, m.AmountFloat(), m.currency)
}

// toSmallestUnit converts a float64 amount to the smallest currency unit
// using big.Rat to avoid floating-point drift.
func toSmallestUnit(amount float64, code currency.Code) (int64, error) {
	meta, err := currency.Get(code)
	if err != nil {
		return 0, err
	}

	amountStr := fmt.Sprintf("%.10f", amount)
	parts := strings.Split(amountStr, ".")
	if len(parts) > 1 {
		decimals := strings.TrimRight(parts[1], "0")
		if len(decimals) > meta.Decimals {
			return 0, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, meta.Decimals)
		}
	}

	amountStr = fmt.Sprintf("%.*f", meta.Decimals, amount)
	amountRat, ok := new(big.Rat).SetString(amountStr)
	if !ok {
		return 0, fmt.Errorf("%w: %f", ErrInvalidAmount, amount)
	}

	multiplier := math.Pow10(meta.Decimals)
	smallestRat := new(big.Rat).Mul(amountRat, big.NewRat(int64(multiplier), 1))
	if !smallestRat.IsInt() {
		return 0, fmt.Errorf("%w: more than %d decimal places", ErrInvalidAmount, meta.Decimals)
	}

	smallest := smallestRat.Num()
	if !smallest.IsInt64() {
		return 0, fmt.Errorf("%w: exceeds maximum representable value", ErrInvalidAmount)
	}
	return smallest.Int64(), nil
}
