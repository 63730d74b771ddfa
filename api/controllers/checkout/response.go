package checkout

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
)

type checkoutResponse struct {
	Success              bool                `json:"success"`
	BatchOrderID         uuid.UUID           `json:"batchOrderId"`
	OrderNumbers         []int64             `json:"orderNumbers"`
	OrderIDs             []uuid.UUID         `json:"orderIds"`
	IsFreeOrder          bool                `json:"isFreeOrder"`
	Fee                  decimal.Decimal     `json:"fee"`
	TransactionSignature string              `json:"transactionSignature,omitempty"`
	Orders               []orderItemResponse `json:"orders"`
	ReceiverWallet       string              `json:"receiverWallet"`
	TotalPaymentAmount   decimal.Decimal     `json:"totalPaymentAmount"`
	CouponDiscount       decimal.Decimal     `json:"couponDiscount"`
	OriginalPrice        decimal.Decimal     `json:"originalPrice"`
	WalletAmounts        map[string]string   `json:"walletAmounts"`
	CurrencyUnit         string              `json:"currencyUnit"`
}

type orderItemResponse struct {
	OrderID     uuid.UUID       `json:"orderId"`
	OrderNumber int64           `json:"orderNumber"`
	ProductID   uuid.UUID       `json:"productId"`
	Status      string          `json:"status"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	ItemTotal   decimal.Decimal `json:"itemTotal"`
	VariantKey  string          `json:"variantKey,omitempty"`
}

type checkoutFailure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

func newCheckoutResponse(result *checkoutsvc.BatchResult) checkoutResponse {
	if result == nil {
		return checkoutResponse{}
	}

	orders := make([]orderItemResponse, 0, len(result.Orders))
	for _, item := range result.Orders {
		orders = append(orders, orderItemResponse{
			OrderID:     item.OrderID,
			OrderNumber: item.OrderNumber,
			ProductID:   item.ProductID,
			Status:      string(item.Status),
			Quantity:    item.Quantity,
			Price:       item.UnitPrice,
			ItemTotal:   item.ItemTotal,
			VariantKey:  item.VariantKey,
		})
	}

	amounts := make(map[string]string, len(result.WalletAmounts))
	for wallet, amount := range result.WalletAmounts {
		amounts[wallet] = amount.String()
	}

	return checkoutResponse{
		Success:              true,
		BatchOrderID:         result.BatchOrderID,
		OrderNumbers:         result.OrderNumbers,
		OrderIDs:             result.OrderIDs,
		IsFreeOrder:          result.IsFreeOrder,
		Fee:                  result.Fee,
		TransactionSignature: result.TransactionSignature,
		Orders:               orders,
		ReceiverWallet:       result.ReceiverWallet,
		TotalPaymentAmount:   result.TotalPaymentAmount,
		CouponDiscount:       result.CouponDiscount,
		OriginalPrice:        result.OriginalPrice,
		WalletAmounts:        amounts,
		CurrencyUnit:         result.CurrencyUnit,
	}
}
