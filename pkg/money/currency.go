package money

import (
	"fmt"
	"strings"
)

// Currency enumerates the settlement currencies the engine understands
// natively. Arbitrary SPL tokens are represented by Unit instead.
type Currency string

const (
	CurrencySOL  Currency = "SOL"
	CurrencyUSDC Currency = "USDC"
	CurrencyUSD  Currency = "USD"
)

var validCurrencies = []Currency{
	CurrencySOL,
	CurrencyUSDC,
	CurrencyUSD,
}

// defaultScale is applied to currencies outside the closed enum.
const defaultScale int32 = 2

// IsValid reports whether the value matches the canonical currency enum.
func (c Currency) IsValid() bool {
	for _, candidate := range validCurrencies {
		if candidate == c {
			return true
		}
	}
	return false
}

// Decimals returns the smallest-unit scale for the currency. SOL uses the
// native 9-decimal lamport scale; stable and fiat-pegged units use 2.
func (c Currency) Decimals() int32 {
	switch c {
	case CurrencySOL:
		return 9
	case CurrencyUSDC, CurrencyUSD:
		return 2
	default:
		return defaultScale
	}
}

// Unit returns the Unit representation of the currency.
func (c Currency) Unit() Unit {
	return Unit{Code: string(c), Decimals: c.Decimals()}
}

// ParseCurrency converts the raw string to a Currency.
func ParseCurrency(value string) (Currency, error) {
	normalized := Currency(strings.ToUpper(strings.TrimSpace(value)))
	for _, candidate := range validCurrencies {
		if candidate == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid currency %q", value)
}
