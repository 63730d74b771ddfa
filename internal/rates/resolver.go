// Package rates resolves conversion rates between settlement currencies and
// arbitrary tokens by consulting external quote providers in priority order.
// Nothing is cached: every checkout re-quotes.
package rates

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/logger"
	"github.com/minthouse/storefront-backend/pkg/metrics"
	"github.com/minthouse/storefront-backend/pkg/money"
)

// QuoteProvider is one external rate source. Implementations return the
// number of target units per one source unit, or an error when the provider
// cannot answer for the pair.
type QuoteProvider interface {
	Name() string
	Quote(ctx context.Context, base money.Currency, target money.TokenRef) (decimal.Decimal, error)
}

// Quote is a resolved conversion rate with its provenance.
type Quote struct {
	Base   money.Currency
	Target money.TokenRef
	Rate   decimal.Decimal
	Source string
}

// Resolver tries providers in a fixed priority order and returns the first
// structurally valid, positive rate.
type Resolver struct {
	providers []QuoteProvider
	logg      *logger.Logger
	metrics   *metrics.CheckoutMetrics
}

// NewResolver builds a resolver over the ordered provider chain.
func NewResolver(providers []QuoteProvider, logg *logger.Logger, m *metrics.CheckoutMetrics) (*Resolver, error) {
	if len(providers) == 0 {
		return nil, fmt.Errorf("at least one quote provider required")
	}
	return &Resolver{providers: providers, logg: logg, metrics: m}, nil
}

// Rate resolves the target-per-source conversion rate. Same-asset pairs
// short-circuit to 1 without touching any provider. Provider exhaustion is an
// error: defaulting the rate would mis-price real money.
func (r *Resolver) Rate(ctx context.Context, base money.Currency, target money.TokenRef) (Quote, error) {
	if money.SameAsset(base, target) {
		return Quote{Base: base, Target: target, Rate: decimal.NewFromInt(1), Source: sourceIdentity}, nil
	}

	var failures []string
	for _, provider := range r.providers {
		rate, err := provider.Quote(ctx, base, target)
		if err != nil {
			r.noteFailure(ctx, provider.Name(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}
		if !rate.IsPositive() {
			err := fmt.Errorf("non-positive rate %s", rate)
			r.noteFailure(ctx, provider.Name(), err)
			failures = append(failures, fmt.Sprintf("%s: %v", provider.Name(), err))
			continue
		}
		if r.metrics != nil {
			r.metrics.IncProviderQuote(provider.Name())
		}
		return Quote{Base: base, Target: target, Rate: rate, Source: provider.Name()}, nil
	}

	return Quote{}, fmt.Errorf("no provider could quote %s/%s: %s", base, targetLabel(target), strings.Join(failures, "; "))
}

const sourceIdentity = "identity"

func (r *Resolver) noteFailure(ctx context.Context, provider string, err error) {
	if r.metrics != nil {
		r.metrics.IncProviderError(provider)
	}
	if r.logg != nil {
		r.logg.Warn(r.logg.WithProvider(ctx, provider), fmt.Sprintf("quote provider failed: %v", err))
	}
}

func targetLabel(target money.TokenRef) string {
	if target.Symbol != "" {
		return target.Symbol
	}
	return target.Address
}
