package currency

// ConversionInfo records the details of a completed conversion so callers
// can persist the original amount alongside the converted one.
type ConversionInfo struct {
	OriginalAmount    float64
	OriginalCurrency  Code
	ConvertedAmount   float64
	ConvertedCurrency Code
	Rate              float64
}

// Rate returns the exchange rate from one currency to another.
// Returns ErrUnsupportedCurrency if either side is not in the rate table.
func Rate(from, to Code) (float64, error) {
	fromRate, ok := rates[from]
	if !ok {
		return 0, ErrUnsupportedCurrency
	}
	toRate, ok := rates[to]
	if !ok {
		return 0, ErrUnsupportedCurrency
	}
	return fromRate / toRate, nil
}

// Convert converts an amount between two supported currencies using the
// static rate table. The identity conversion returns the input unchanged,
// with no rounding drift. Convert is pure and safe for concurrent use.
func Convert(amount float64, from, to Code) (*ConversionInfo, error) {
	if !IsSupported(from) || !IsSupported(to) {
		return nil, ErrUnsupportedCurrency
	}
	info := &ConversionInfo{
		OriginalAmount:    amount,
		OriginalCurrency:  from,
		ConvertedCurrency: to,
	}
	if from == to {
		info.ConvertedAmount = amount
		info.Rate = 1
		return info, nil
	}
	rate, err := Rate(from, to)
	if err != nil {
		return nil, err
	}
	info.ConvertedAmount = amount * rate
	info.Rate = rate
	return info, nil
}
