// Package currency defines the set of currencies the ledger supports and
// the static exchange-rate table used for cross-currency transfers.
//
// The rate table is a process-wide constant expressed relative to a single
// base unit (USD = 1). It is never mutated at runtime and is safe for
// unsynchronized concurrent reads.
package currency

import "errors"

// Code is an ISO 4217 currency code, e.g. "USD".
type Code string

// String returns the code as a plain string.
func (c Code) String() string { return string(c) }

// Supported currency codes.
const (
	USD Code = "USD"
	VND Code = "VND"
	EUR Code = "EUR"
	JPY Code = "JPY"
)

// DefaultCurrency is the fallback currency code.
const DefaultCurrency = USD

// ErrUnsupportedCurrency is returned when a currency is not present in the
// registry or the rate table.
var ErrUnsupportedCurrency = errors.New("unsupported currency type")

// Meta holds currency-specific metadata.
type Meta struct {
	Decimals int
	Symbol   string
}

// registry maps each supported currency to its metadata.
var registry = map[Code]Meta{
	USD: {Decimals: 2, Symbol: "$"},
	VND: {Decimals: 0, Symbol: "₫"},
	EUR: {Decimals: 2, Symbol: "€"},
	JPY: {Decimals: 0, Symbol: "¥"},
}

// rates maps each supported currency to its value relative to the base
// unit. A transfer of amount a from currency f to currency t yields
// a * rates[f] / rates[t].
var rates = map[Code]float64{
	USD: 1,
	VND: 1.0 / 25000,
	EUR: 1.08,
	JPY: 1.0 / 155,
}

// Get returns the metadata for a currency code.
func Get(code Code) (Meta, error) {
	meta, ok := registry[code]
	if !ok {
		return Meta{}, ErrUnsupportedCurrency
	}
	return meta, nil
}

// IsSupported reports whether the code is a supported currency.
func IsSupported(code Code) bool {
	_, ok := registry[code]
	return ok
}

// Supported returns the list of supported currency codes.
func Supported() []Code {
	codes := make([]Code, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	return codes
}
