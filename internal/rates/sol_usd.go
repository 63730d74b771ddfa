package rates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/logger"
	"github.com/minthouse/storefront-backend/pkg/money"
)

// SOLUSDEstimator produces a SOL/USD price for display estimates and
// analytics metadata. Unlike the settlement path it may fall back to a
// configured constant when the feed is down, so it must never be used to
// price an actual charge.
type SOLUSDEstimator struct {
	resolver *Resolver
	fallback decimal.Decimal
	logg     *logger.Logger
}

// NewSOLUSDEstimator wires the estimator over the shared resolver. The
// fallback string comes from configuration and must parse as a positive
// decimal.
func NewSOLUSDEstimator(resolver *Resolver, fallback string, logg *logger.Logger) (*SOLUSDEstimator, error) {
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	fb, err := decimal.NewFromString(fallback)
	if err != nil {
		return nil, fmt.Errorf("parse SOL/USD fallback %q: %w", fallback, err)
	}
	if !fb.IsPositive() {
		return nil, fmt.Errorf("SOL/USD fallback must be positive, got %s", fallback)
	}
	return &SOLUSDEstimator{resolver: resolver, fallback: fb, logg: logg}, nil
}

// Estimate returns USDC per SOL, falling back to the configured constant when
// every provider fails. The second return reports whether the value is live.
func (e *SOLUSDEstimator) Estimate(ctx context.Context) (decimal.Decimal, bool) {
	usdc, _ := money.TokenForCurrency(money.CurrencyUSDC)
	quote, err := e.resolver.Rate(ctx, money.CurrencySOL, usdc)
	if err != nil {
		if e.logg != nil {
			e.logg.Warn(ctx, fmt.Sprintf("SOL/USD estimate unavailable, using fallback %s: %v", e.fallback, err))
		}
		return e.fallback, false
	}
	return quote.Rate, true
}
