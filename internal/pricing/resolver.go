// Package pricing derives a product's unit price from its pricing snapshot,
// the buyer's variant selection, and the bonding-curve configuration.
package pricing

import (
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/money"
)

// ProductPricing is the read-only snapshot fetched per cart item.
type ProductPricing struct {
	ProductID    uuid.UUID
	Name         string
	CollectionID *uuid.UUID
	BasePrice    decimal.Decimal
	BaseCurrency money.Currency

	MOQ            int
	CurrentOrders  int
	ModifierBefore *decimal.Decimal
	ModifierAfter  *decimal.Decimal
	StockCeiling   *int

	// VariantPrices maps the canonical variant key to a price override.
	VariantPrices map[string]decimal.Decimal
	// VariantNames maps variant id to its display name.
	VariantNames map[string]string
}

// Resolution is the resolved unit price for one cart item.
type Resolution struct {
	// UnitPrice is rounded to the base currency's display precision.
	UnitPrice decimal.Decimal
	// RawUnitPrice keeps full precision for chained in-process math.
	RawUnitPrice decimal.Decimal
	BaseCurrency money.Currency
	VariantKey   string
	// VariantDisplay maps resolved variant display names to the selected
	// values, for order metadata.
	VariantDisplay map[string]string
}

var one = decimal.NewFromInt(1)

// Resolve applies variant overrides and the bonding-curve modifier to the
// snapshot. Missing MOQ defaults to 1 and missing order counts to 0; a
// product with no modifiers returns the unmodified price at any order count.
func Resolve(product ProductPricing, selectedOptions map[string]string) Resolution {
	key := VariantKey(selectedOptions)

	base := product.BasePrice
	if key != "" {
		if override, ok := product.VariantPrices[key]; ok {
			base = override
		}
	}

	raw := applyCurve(base, product)

	currency := product.BaseCurrency
	if !currency.IsValid() {
		currency = money.CurrencyUSDC
	}

	return Resolution{
		UnitPrice:      currency.Unit().RoundDisplay(raw),
		RawUnitPrice:   raw,
		BaseCurrency:   currency,
		VariantKey:     key,
		VariantDisplay: displayNames(product, selectedOptions),
	}
}

func applyCurve(base decimal.Decimal, product ProductPricing) decimal.Decimal {
	moq := product.MOQ
	if moq <= 0 {
		moq = 1
	}
	orders := product.CurrentOrders
	if orders < 0 {
		orders = 0
	}

	switch {
	case orders < moq:
		if product.ModifierBefore == nil {
			return base
		}
		// The launch discount decays linearly from the full modifier at
		// zero orders to nothing at MOQ.
		progress := decimal.NewFromInt(int64(orders)).Div(decimal.NewFromInt(int64(moq)))
		remaining := product.ModifierBefore.Mul(one.Sub(progress))
		return base.Mul(one.Add(remaining))

	case orders == moq:
		return base

	default:
		if product.ModifierAfter == nil {
			return base
		}
		if product.StockCeiling == nil {
			// Unlimited stock: the surcharge applies flat, no ramp.
			return base.Mul(one.Add(*product.ModifierAfter))
		}
		span := *product.StockCeiling - moq
		if span <= 0 {
			return base
		}
		progress := decimal.NewFromInt(int64(orders - moq)).Div(decimal.NewFromInt(int64(span)))
		if progress.GreaterThan(one) {
			progress = one
		}
		return base.Mul(one.Add(progress.Mul(*product.ModifierAfter)))
	}
}

// VariantKey renders the canonical "id:value[,id:value...]" composite key
// for a variant selection, with ids sorted for determinism.
func VariantKey(selectedOptions map[string]string) string {
	if len(selectedOptions) == 0 {
		return ""
	}
	ids := make([]string, 0, len(selectedOptions))
	for id := range selectedOptions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, id+":"+selectedOptions[id])
	}
	return strings.Join(parts, ",")
}

func displayNames(product ProductPricing, selectedOptions map[string]string) map[string]string {
	if len(selectedOptions) == 0 {
		return nil
	}
	resolved := make(map[string]string, len(selectedOptions))
	for id, value := range selectedOptions {
		name := product.VariantNames[id]
		if name == "" {
			name = id
		}
		resolved[name] = value
	}
	return resolved
}
