package pricing

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/minthouse/storefront-backend/pkg/money"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func intPtr(v int) *int {
	return &v
}

func snapshot() ProductPricing {
	return ProductPricing{
		ProductID:    uuid.New(),
		Name:         "Launch Tee",
		BasePrice:    dec("10"),
		BaseCurrency: money.CurrencyUSDC,
		MOQ:          100,
	}
}

func TestResolveNoModifiersReturnsBasePrice(t *testing.T) {
	t.Parallel()

	product := snapshot()
	for _, orders := range []int{0, 50, 100, 101, 100000} {
		product.CurrentOrders = orders
		res := Resolve(product, nil)
		assert.True(t, dec("10").Equal(res.UnitPrice), "orders=%d got %s", orders, res.UnitPrice)
	}
}

func TestResolvePreMOQDiscountDecaysLinearly(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierBefore = decPtr("-0.2")

	cases := []struct {
		orders int
		want   string
	}{
		{orders: 0, want: "8"},     // full 20% discount
		{orders: 50, want: "9"},    // half decayed
		{orders: 75, want: "9.5"},  // three quarters decayed
		{orders: 100, want: "10"},  // at MOQ, exactly base
		{orders: 100000, want: "10"}, // past MOQ with no after-modifier
	}
	for _, tc := range cases {
		product.CurrentOrders = tc.orders
		res := Resolve(product, nil)
		assert.True(t, dec(tc.want).Equal(res.UnitPrice), "orders=%d got %s", tc.orders, res.UnitPrice)
	}
}

func TestResolveAtMOQAlwaysBasePrice(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierBefore = decPtr("-0.5")
	product.ModifierAfter = decPtr("0.8")
	product.StockCeiling = intPtr(200)
	product.CurrentOrders = product.MOQ

	res := Resolve(product, nil)
	assert.True(t, dec("10").Equal(res.UnitPrice))
}

func TestResolvePostMOQSurchargeRampsToCeiling(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierAfter = decPtr("0.5")
	product.StockCeiling = intPtr(200)

	cases := []struct {
		orders int
		want   string
	}{
		{orders: 150, want: "12.5"}, // halfway through remaining stock
		{orders: 200, want: "15"},   // full surcharge at ceiling
		{orders: 500, want: "15"},   // ramp capped at 1
	}
	for _, tc := range cases {
		product.CurrentOrders = tc.orders
		res := Resolve(product, nil)
		assert.True(t, dec(tc.want).Equal(res.UnitPrice), "orders=%d got %s", tc.orders, res.UnitPrice)
	}
}

func TestResolveUnlimitedStockAppliesFlatSurcharge(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierAfter = decPtr("0.25")
	product.CurrentOrders = 101

	res := Resolve(product, nil)
	assert.True(t, dec("12.5").Equal(res.UnitPrice))
}

func TestResolveZeroRemainingStockSkipsSurcharge(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierAfter = decPtr("0.5")
	product.StockCeiling = intPtr(100)
	product.CurrentOrders = 150

	res := Resolve(product, nil)
	assert.True(t, dec("10").Equal(res.UnitPrice))
}

func TestResolveMissingMOQDefaultsToOne(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.MOQ = 0
	product.ModifierBefore = decPtr("-0.2")
	product.CurrentOrders = 0

	res := Resolve(product, nil)
	assert.True(t, dec("8").Equal(res.UnitPrice))

	product.CurrentOrders = 1
	res = Resolve(product, nil)
	assert.True(t, dec("10").Equal(res.UnitPrice))
}

func TestResolveVariantPriceOverride(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.VariantPrices = map[string]decimal.Decimal{
		"color:black,size:xl": dec("14"),
	}
	product.VariantNames = map[string]string{"size": "Size", "color": "Color"}

	res := Resolve(product, map[string]string{"size": "xl", "color": "black"})
	assert.Equal(t, "color:black,size:xl", res.VariantKey)
	assert.True(t, dec("14").Equal(res.UnitPrice))
	assert.Equal(t, map[string]string{"Size": "xl", "Color": "black"}, res.VariantDisplay)
}

func TestResolveUnknownVariantKeyFallsBackToBase(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.VariantPrices = map[string]decimal.Decimal{"size:xl": dec("14")}

	res := Resolve(product, map[string]string{"size": "m"})
	assert.Equal(t, "size:m", res.VariantKey)
	assert.True(t, dec("10").Equal(res.UnitPrice))
}

func TestResolveCurveAppliesToVariantPrice(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.ModifierBefore = decPtr("-0.5")
	product.CurrentOrders = 0
	product.VariantPrices = map[string]decimal.Decimal{"size:xl": dec("20")}

	res := Resolve(product, map[string]string{"size": "xl"})
	assert.True(t, dec("10").Equal(res.UnitPrice))
}

func TestResolveRoundsAtDisplayBoundaryOnly(t *testing.T) {
	t.Parallel()

	product := snapshot()
	product.MOQ = 3
	product.ModifierBefore = decPtr("-0.2")
	product.CurrentOrders = 1

	res := Resolve(product, nil)
	// 10 * (1 - 0.2*(2/3)) = 8.6666..., display-rounded to 2 decimals
	assert.True(t, dec("8.67").Equal(res.UnitPrice))
	assert.True(t, res.RawUnitPrice.GreaterThan(dec("8.6666")))
	assert.True(t, res.RawUnitPrice.LessThan(dec("8.6667")))
}
