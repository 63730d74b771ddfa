package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/types"
)

// Product is the storefront listing whose pricing snapshot feeds checkout.
type Product struct {
	ID           uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectionID *uuid.UUID `gorm:"column:collection_id;type:uuid"`
	Name         string     `gorm:"column:name;not null"`
	IsActive     bool       `gorm:"column:is_active;not null;default:true"`

	BasePrice    decimal.Decimal `gorm:"column:base_price;type:numeric(30,12);not null"`
	BaseCurrency string          `gorm:"column:base_currency;not null;default:'SOL'"`

	// Bonding curve configuration. Modifiers are fractions: negative
	// before MOQ reads as a launch discount, positive after MOQ as a
	// scarcity surcharge. A nil stock ceiling means unlimited stock.
	MOQ            int              `gorm:"column:moq;not null;default:1"`
	ModifierBefore *decimal.Decimal `gorm:"column:modifier_before;type:numeric(10,6)"`
	ModifierAfter  *decimal.Decimal `gorm:"column:modifier_after;type:numeric(10,6)"`
	StockCeiling   *int             `gorm:"column:stock_ceiling"`

	// Variants holds display metadata; VariantPrices maps the canonical
	// "id:value[,id:value...]" key to a price override.
	Variants      types.JSONMap              `gorm:"column:variants;type:jsonb;serializer:json"`
	VariantPrices map[string]decimal.Decimal `gorm:"column:variant_prices;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
