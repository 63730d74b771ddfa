package checkout

import (
	"strings"

	"github.com/google/uuid"

	checkoutsvc "github.com/minthouse/storefront-backend/internal/checkout"
	"github.com/minthouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/types"
)

type checkoutRequest struct {
	Items         []cartItemRequest   `json:"items" validate:"required,min=1,dive"`
	ShippingInfo  *types.ShippingInfo `json:"shippingInfo,omitempty"`
	WalletAddress string              `json:"walletAddress,omitempty"`
	Payment       paymentMetadataBody `json:"paymentMetadata" validate:"required"`
}

type cartItemRequest struct {
	Product         productRef        `json:"product" validate:"required"`
	SelectedOptions map[string]string `json:"selectedOptions,omitempty"`
	// Quantity is not validated here: non-positive values are coerced to 1
	// by the settlement engine.
	Quantity          int            `json:"quantity"`
	CustomizationData map[string]any `json:"customizationData,omitempty"`
}

type productRef struct {
	ID           uuid.UUID      `json:"id" validate:"required"`
	Name         string         `json:"name,omitempty"`
	CollectionID *uuid.UUID     `json:"collectionId,omitempty"`
	Variants     map[string]any `json:"variants,omitempty"`
}

type paymentMetadataBody struct {
	PaymentMethod string `json:"paymentMethod" validate:"required"`
	CouponCode    string `json:"couponCode,omitempty"`
	DefaultToken  string `json:"defaultToken,omitempty"`
	TokenSymbol   string `json:"tokenSymbol,omitempty"`
}

// toServiceRequest maps the wire body onto the settlement engine's input.
// Product name, collection id, and variants are advisory client context;
// pricing always comes from the catalog, so only the product id is carried.
func (req *checkoutRequest) toServiceRequest() (checkoutsvc.Request, error) {
	method, err := enums.ParsePaymentMethod(strings.ToLower(strings.TrimSpace(req.Payment.PaymentMethod)))
	if err != nil {
		return checkoutsvc.Request{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}

	items := make([]checkoutsvc.CartItem, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, checkoutsvc.CartItem{
			ProductID:         item.Product.ID,
			Quantity:          item.Quantity,
			SelectedOptions:   item.SelectedOptions,
			CustomizationData: item.CustomizationData,
		})
	}

	return checkoutsvc.Request{
		Items:         items,
		ShippingInfo:  req.ShippingInfo,
		WalletAddress: strings.TrimSpace(req.WalletAddress),
		Payment: checkoutsvc.PaymentMetadata{
			Method:      method,
			CouponCode:  strings.TrimSpace(req.Payment.CouponCode),
			TokenSymbol: strings.TrimSpace(req.Payment.TokenSymbol),
		},
	}, nil
}
