package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/internal/coupons"
	"github.com/minthouse/storefront-backend/internal/pricing"
	"github.com/minthouse/storefront-backend/internal/rates"
	"github.com/minthouse/storefront-backend/internal/wallets"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/money"
	"github.com/minthouse/storefront-backend/pkg/outbox"
)

type pricingSource interface {
	Pricing(ctx context.Context, productID uuid.UUID) (pricing.ProductPricing, error)
}

type walletDirectory interface {
	CollectionInfo(ctx context.Context, collectionID uuid.UUID) (wallets.CollectionInfo, error)
}

type couponStore interface {
	ActiveCoupon(ctx context.Context, code string) (*coupons.Coupon, error)
}

type couponEvaluator interface {
	Evaluate(ctx context.Context, coupon *coupons.Coupon, wallet string, collectionIDs []string) (coupons.Result, error)
}

type rateSource interface {
	Rate(ctx context.Context, base money.Currency, target money.TokenRef) (rates.Quote, error)
}

type tokenInfoSource interface {
	TokenInfo(ctx context.Context, mint, symbolHint string) (money.TokenRef, error)
}

// orderStore writes run against the supplied transaction handle; a nil
// handle falls back to the store's own connection.
type orderStore interface {
	CreateOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Order, error)
	UpdateOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, fields map[string]any) error
	CreateCustomDataEntry(ctx context.Context, tx *gorm.DB, entry *models.CustomDataEntry) error
}

type outboxPublisher interface {
	EmitIfNotExists(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}
