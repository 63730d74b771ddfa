package payloads

import (
	"github.com/google/uuid"
)

// OrderBatchCreatedEvent announces a completed checkout batch to downstream
// settlement and fulfillment consumers.
type OrderBatchCreatedEvent struct {
	BatchOrderID         uuid.UUID         `json:"batch_order_id"`
	OrderIDs             []uuid.UUID       `json:"order_ids"`
	OrderNumbers         []int64           `json:"order_numbers"`
	ItemCount            int               `json:"item_count"`
	CreatedCount         int               `json:"created_count"`
	TotalPaymentAmount   string            `json:"total_payment_amount"`
	CouponDiscount       string            `json:"coupon_discount"`
	Fee                  string            `json:"fee"`
	CurrencyUnit         string            `json:"currency_unit"`
	ReceiverWallet       string            `json:"receiver_wallet"`
	WalletAmounts        map[string]string `json:"wallet_amounts"`
	PaymentMethod        string            `json:"payment_method"`
	IsFreeOrder          bool              `json:"is_free_order"`
	TransactionSignature string            `json:"transaction_signature,omitempty"`
}
