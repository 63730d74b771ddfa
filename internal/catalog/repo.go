// Package catalog loads per-product pricing snapshots for checkout.
package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/internal/pricing"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/money"
)

// Repository reads product pricing snapshots from the database.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Pricing loads the product's pricing snapshot together with its confirmed
// order count, which positions the product on its bonding curve.
func (r *Repository) Pricing(ctx context.Context, productID uuid.UUID) (pricing.ProductPricing, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = true", productID).
		First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.ProductPricing{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("product %s not found", productID))
	}
	if err != nil {
		return pricing.ProductPricing{}, fmt.Errorf("load product %s: %w", productID, err)
	}

	var orderCount int64
	err = r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("product_id = ? AND status <> ?", productID, enums.OrderStatusDraft).
		Count(&orderCount).Error
	if err != nil {
		return pricing.ProductPricing{}, fmt.Errorf("count orders for %s: %w", productID, err)
	}

	currency, err := money.ParseCurrency(product.BaseCurrency)
	if err != nil {
		return pricing.ProductPricing{}, fmt.Errorf("product %s: %w", productID, err)
	}

	return pricing.ProductPricing{
		ProductID:      product.ID,
		Name:           product.Name,
		CollectionID:   product.CollectionID,
		BasePrice:      product.BasePrice,
		BaseCurrency:   currency,
		MOQ:            product.MOQ,
		CurrentOrders:  int(orderCount),
		ModifierBefore: product.ModifierBefore,
		ModifierAfter:  product.ModifierAfter,
		StockCeiling:   product.StockCeiling,
		VariantPrices:  product.VariantPrices,
		VariantNames:   variantNames(product.Variants),
	}, nil
}

// variantNames pulls the id -> display-name map out of the variants JSON.
// The stored shape is {"<variantId>": {"name": "...", ...}, ...}.
func variantNames(raw map[string]any) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	names := make(map[string]string, len(raw))
	for id, entry := range raw {
		if obj, ok := entry.(map[string]any); ok {
			if name, ok := obj["name"].(string); ok {
				names[id] = name
			}
		}
	}
	return names
}
