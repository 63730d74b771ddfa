package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/enums"
	"github.com/minthouse/storefront-backend/pkg/types"
)

// CartItem is one line of the inbound cart.
type CartItem struct {
	ProductID         uuid.UUID
	Quantity          int
	SelectedOptions   map[string]string
	CustomizationData map[string]any
}

// PaymentMetadata carries the buyer's settlement choices.
type PaymentMetadata struct {
	Method      enums.PaymentMethod
	CouponCode  string
	TokenSymbol string
}

// Request is a full checkout submission.
type Request struct {
	Items         []CartItem
	ShippingInfo  *types.ShippingInfo
	WalletAddress string
	Payment       PaymentMetadata
}

// ItemResult reports one successfully created order.
type ItemResult struct {
	OrderID     uuid.UUID
	OrderNumber int64
	ProductID   uuid.UUID
	Status      enums.OrderStatus
	Quantity    int
	UnitPrice   decimal.Decimal
	ItemTotal   decimal.Decimal
	VariantKey  string
}

// BatchResult is the full settlement breakdown returned to the caller. A
// batch whose Orders slice is shorter than the submitted item count had
// per-item failures.
type BatchResult struct {
	BatchOrderID uuid.UUID
	Orders       []ItemResult
	OrderIDs     []uuid.UUID
	OrderNumbers []int64

	CurrencyUnit       string
	OriginalPrice      decimal.Decimal
	CouponDiscount     decimal.Decimal
	Fee                decimal.Decimal
	TotalPaymentAmount decimal.Decimal

	ReceiverWallet string
	WalletAmounts  map[string]decimal.Decimal

	IsFreeOrder          bool
	TransactionSignature string
}
