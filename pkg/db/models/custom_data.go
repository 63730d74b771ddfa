package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minthouse/storefront-backend/pkg/types"
)

// CustomDataEntry stores an order's opaque customization payload.
type CustomDataEntry struct {
	ID        uuid.UUID     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID     `gorm:"column:order_id;type:uuid;not null;index:ix_custom_data_order"`
	Kind      string        `gorm:"column:kind;not null;default:'customization'"`
	Payload   types.JSONMap `gorm:"column:payload;type:jsonb;serializer:json"`
	CreatedAt time.Time     `gorm:"column:created_at;autoCreateTime"`
}
