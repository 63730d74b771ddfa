package rates

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/money"
)

// USDLegsProvider derives a rate from two USD prices: the USD value of one
// source unit and the USD value of one target token. Both legs must resolve
// from the price feed; there is no fallback constant here because the result
// prices real charges.
type USDLegsProvider struct {
	http httpClient
}

// NewUSDLegsProvider builds the USD-bridged provider. It sits last in the
// chain.
func NewUSDLegsProvider(baseURL string, timeout time.Duration) *USDLegsProvider {
	return &USDLegsProvider{http: newHTTPClient(baseURL, timeout)}
}

func (p *USDLegsProvider) Name() string { return "usd_legs" }

type priceResponse struct {
	Data map[string]struct {
		Price decimal.Decimal `json:"price"`
	} `json:"data"`
}

func (p *USDLegsProvider) Quote(ctx context.Context, base money.Currency, target money.TokenRef) (decimal.Decimal, error) {
	if target.Address == "" {
		return decimal.Zero, fmt.Errorf("target mint required")
	}

	sourceUSD, err := p.sourceLegUSD(ctx, base)
	if err != nil {
		return decimal.Zero, err
	}

	targetUSD, err := p.priceUSD(ctx, target.Address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("target leg: %w", err)
	}

	// target units per source unit.
	return sourceUSD.Div(targetUSD), nil
}

// sourceLegUSD values one unit of the source currency in USD. Dollar-pegged
// currencies are 1 by definition; anything else needs its own feed lookup.
func (p *USDLegsProvider) sourceLegUSD(ctx context.Context, base money.Currency) (decimal.Decimal, error) {
	switch base {
	case money.CurrencyUSD, money.CurrencyUSDC:
		return decimal.NewFromInt(1), nil
	}
	source, ok := money.TokenForCurrency(base)
	if !ok {
		return decimal.Zero, fmt.Errorf("no USD leg for source currency %s", base)
	}
	price, err := p.priceUSD(ctx, source.Address)
	if err != nil {
		return decimal.Zero, fmt.Errorf("source leg: %w", err)
	}
	return price, nil
}

func (p *USDLegsProvider) priceUSD(ctx context.Context, mint string) (decimal.Decimal, error) {
	query := url.Values{}
	query.Set("ids", mint)

	var resp priceResponse
	if err := p.http.getJSON(ctx, "/v4/price?"+query.Encode(), &resp); err != nil {
		return decimal.Zero, err
	}

	for id, entry := range resp.Data {
		if !strings.EqualFold(id, mint) {
			continue
		}
		if !entry.Price.IsPositive() {
			return decimal.Zero, fmt.Errorf("non-positive USD price for %s", mint)
		}
		return entry.Price, nil
	}
	return decimal.Zero, fmt.Errorf("no USD price for %s", mint)
}
