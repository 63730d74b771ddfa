package rates

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/money"
)

// SwapQuoteProvider asks a swap aggregator for an exact quote of one source
// unit into the target token. It is the highest-fidelity source and sits
// first in the chain.
type SwapQuoteProvider struct {
	http httpClient
}

// NewSwapQuoteProvider builds the aggregator-backed provider.
func NewSwapQuoteProvider(baseURL string, timeout time.Duration) *SwapQuoteProvider {
	return &SwapQuoteProvider{http: newHTTPClient(baseURL, timeout)}
}

func (p *SwapQuoteProvider) Name() string { return "swap_quote" }

type swapQuoteResponse struct {
	InAmount  string `json:"inAmount"`
	OutAmount string `json:"outAmount"`
}

func (p *SwapQuoteProvider) Quote(ctx context.Context, base money.Currency, target money.TokenRef) (decimal.Decimal, error) {
	source, ok := money.TokenForCurrency(base)
	if !ok {
		return decimal.Zero, fmt.Errorf("no mint for source currency %s", base)
	}
	if target.Address == "" {
		return decimal.Zero, fmt.Errorf("target mint required")
	}

	// Quote exactly one source unit, in on-chain units.
	inAmount := decimal.New(1, source.Decimals).IntPart()
	query := url.Values{}
	query.Set("inputMint", source.Address)
	query.Set("outputMint", target.Address)
	query.Set("amount", fmt.Sprintf("%d", inAmount))
	query.Set("swapMode", "ExactIn")

	var resp swapQuoteResponse
	if err := p.http.getJSON(ctx, "/v6/quote?"+query.Encode(), &resp); err != nil {
		return decimal.Zero, err
	}

	in, err := decimal.NewFromString(resp.InAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse inAmount %q: %w", resp.InAmount, err)
	}
	out, err := decimal.NewFromString(resp.OutAmount)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parse outAmount %q: %w", resp.OutAmount, err)
	}
	if !in.IsPositive() || !out.IsPositive() {
		return decimal.Zero, fmt.Errorf("degenerate quote in=%s out=%s", resp.InAmount, resp.OutAmount)
	}

	// Scale both legs back to display units before dividing.
	inDisplay := in.Shift(-source.Decimals)
	outDisplay := out.Shift(-target.Decimals)
	return outDisplay.Div(inDisplay), nil
}
