package coupons

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store fetches coupon definitions.
type Store interface {
	// ActiveCoupon returns the active, unexpired coupon with the given
	// code, or nil when no such coupon exists.
	ActiveCoupon(ctx context.Context, code string) (*Coupon, error)
}

// BalanceSource answers token-holding rules. Implementations query the
// buyer's on-chain balance of a mint, in display units.
type BalanceSource interface {
	TokenBalance(ctx context.Context, wallet, mint string) (decimal.Decimal, error)
}
