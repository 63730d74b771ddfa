package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/enums"
	"github.com/minthouse/storefront-backend/pkg/types"
)

// Order is one cart item's durable settlement record. Quantity is stored as
// a field rather than expanded into rows; batch linkage fields reconstruct
// the originating checkout.
type Order struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber int64     `gorm:"column:order_number;not null;uniqueIndex:ux_orders_number"`

	ProductID  uuid.UUID     `gorm:"column:product_id;type:uuid;not null"`
	Quantity   int           `gorm:"column:quantity;not null"`
	Variants   types.JSONMap `gorm:"column:variants;type:jsonb;serializer:json"`
	VariantKey string        `gorm:"column:variant_key"`

	WalletAddress string              `gorm:"column:wallet_address"`
	ShippingInfo  *types.ShippingInfo `gorm:"column:shipping_info;type:jsonb;serializer:json"`

	Status enums.OrderStatus `gorm:"column:status;not null;default:'draft'"`

	// UnitPrice and ItemTotal are display-scale amounts in CurrencyUnit.
	UnitPrice    decimal.Decimal `gorm:"column:unit_price;type:numeric(30,12);not null"`
	ItemTotal    decimal.Decimal `gorm:"column:item_total;type:numeric(30,12);not null"`
	CurrencyUnit string          `gorm:"column:currency_unit;not null"`

	BatchOrderID uuid.UUID `gorm:"column:batch_order_id;type:uuid;not null;index:ix_orders_batch"`
	ItemIndex    int       `gorm:"column:item_index;not null"`
	ItemCount    int       `gorm:"column:item_count;not null"`

	TransactionSignature *string       `gorm:"column:transaction_signature"`
	Metadata             types.JSONMap `gorm:"column:metadata;type:jsonb;serializer:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
