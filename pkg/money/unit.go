package money

import "strings"

// Well-known mint addresses used when bridging the closed currency enum into
// token-addressed rate lookups.
const (
	MintSOL  = "So11111111111111111111111111111111111111112"
	MintUSDC = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

// TokenRef identifies a fungible token by mint address together with the
// display metadata needed to scale amounts.
type TokenRef struct {
	Address  string
	Symbol   string
	Decimals int32
}

// Unit is the smallest-unit scale a batch settles in: either one of the
// native currencies or an arbitrary token.
type Unit struct {
	Code     string
	Decimals int32
}

// UnitForToken builds a Unit from token metadata.
func UnitForToken(token TokenRef) Unit {
	return Unit{Code: token.Symbol, Decimals: token.Decimals}
}

// Currency returns the closed-enum currency matching the unit code, if any.
func (u Unit) Currency() (Currency, bool) {
	c := Currency(strings.ToUpper(u.Code))
	if c.IsValid() {
		return c, true
	}
	return "", false
}

// TokenForCurrency resolves the well-known mint for a native currency. The
// second return is false for currencies with no on-chain representation.
func TokenForCurrency(c Currency) (TokenRef, bool) {
	switch c {
	case CurrencySOL:
		return TokenRef{Address: MintSOL, Symbol: string(CurrencySOL), Decimals: 9}, true
	case CurrencyUSDC:
		return TokenRef{Address: MintUSDC, Symbol: string(CurrencyUSDC), Decimals: 6}, true
	default:
		return TokenRef{}, false
	}
}

// SameAsset reports whether a currency and a token reference name the same
// fungible asset, matching by mint or by symbol.
func SameAsset(c Currency, token TokenRef) bool {
	if known, ok := TokenForCurrency(c); ok && known.Address == token.Address {
		return true
	}
	return strings.EqualFold(string(c), token.Symbol)
}
