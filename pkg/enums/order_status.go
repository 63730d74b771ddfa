package enums

import "fmt"

// OrderStatus tracks an order from creation to payment confirmation.
type OrderStatus string

const (
	// OrderStatusDraft is the state of paid orders awaiting confirmation.
	OrderStatusDraft OrderStatus = "draft"
	// OrderStatusPendingPayment marks free orders queued for settlement.
	OrderStatusPendingPayment OrderStatus = "pending_payment"
	// OrderStatusConfirmed marks settled orders.
	OrderStatusConfirmed OrderStatus = "confirmed"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusDraft,
	OrderStatusPendingPayment,
	OrderStatusConfirmed,
}

// IsValid reports whether the value matches the canonical order status enum.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts the raw string to an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
