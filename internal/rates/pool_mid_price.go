package rates

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/money"
)

// PoolMidPriceProvider infers a rate from a liquidity pool's mid-price. The
// pool's reported price is quote units per one base unit, so the result must
// be inverted depending on which side of the pool the target token sits on.
type PoolMidPriceProvider struct {
	http httpClient
}

// NewPoolMidPriceProvider builds the AMM-pool-backed provider.
func NewPoolMidPriceProvider(baseURL string, timeout time.Duration) *PoolMidPriceProvider {
	return &PoolMidPriceProvider{http: newHTTPClient(baseURL, timeout)}
}

func (p *PoolMidPriceProvider) Name() string { return "pool_mid_price" }

type poolInfo struct {
	BaseMint  string `json:"baseMint"`
	QuoteMint string `json:"quoteMint"`
	Price     string `json:"price"`
}

type poolsResponse struct {
	Pools []poolInfo `json:"pools"`
}

func (p *PoolMidPriceProvider) Quote(ctx context.Context, base money.Currency, target money.TokenRef) (decimal.Decimal, error) {
	source, ok := money.TokenForCurrency(base)
	if !ok {
		return decimal.Zero, fmt.Errorf("no mint for source currency %s", base)
	}
	if target.Address == "" {
		return decimal.Zero, fmt.Errorf("target mint required")
	}

	query := url.Values{}
	query.Set("mint", target.Address)

	var resp poolsResponse
	if err := p.http.getJSON(ctx, "/v2/pools?"+query.Encode(), &resp); err != nil {
		return decimal.Zero, err
	}

	for _, pool := range resp.Pools {
		price, err := decimal.NewFromString(pool.Price)
		if err != nil || !price.IsPositive() {
			continue
		}
		switch {
		case pool.BaseMint == source.Address && pool.QuoteMint == target.Address:
			// price is target units per source unit already.
			return price, nil
		case pool.BaseMint == target.Address && pool.QuoteMint == source.Address:
			// price is source units per target unit; invert.
			return decimal.NewFromInt(1).Div(price), nil
		}
	}

	return decimal.Zero, fmt.Errorf("no pool pairs %s with %s", targetLabel(target), base)
}
