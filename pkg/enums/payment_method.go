package enums

import "fmt"

// PaymentMethod describes how a checkout batch settles.
type PaymentMethod string

const (
	// PaymentMethodSol routes to the configured default token.
	PaymentMethodSol PaymentMethod = "sol"
	// PaymentMethodSpl routes to a collection strict token when present,
	// otherwise to the stable settlement currency.
	PaymentMethodSpl PaymentMethod = "spl"
	// PaymentMethodCard settles through a card processor; the engine only
	// records the stable-currency amount.
	PaymentMethodCard PaymentMethod = "card"
	// PaymentMethodCrossChain covers bridged payments; routed like card.
	PaymentMethodCrossChain PaymentMethod = "crosschain"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodSol,
	PaymentMethodSpl,
	PaymentMethodCard,
	PaymentMethodCrossChain,
}

// IsValid reports whether the value matches the canonical payment method enum.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// FeeBearing reports whether the multi-wallet distribution fee applies to
// batches settled with this method.
func (p PaymentMethod) FeeBearing() bool {
	return p == PaymentMethodSol || p == PaymentMethodSpl
}

// ParsePaymentMethod converts the raw string to a PaymentMethod.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	for _, candidate := range validPaymentMethods {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
