package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/minthouse/storefront-backend/pkg/types"
)

// Coupon is a conditional discount. RuleGroups holds the serialized
// eligibility rule groups evaluated by the coupon engine; Collections, when
// non-empty, restricts the coupon to carts containing those collections.
type Coupon struct {
	ID     uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Code   string    `gorm:"column:code;not null;uniqueIndex:ux_coupons_code"`
	Active bool      `gorm:"column:active;not null;default:true"`

	DiscountType     string          `gorm:"column:discount_type;not null"`
	DiscountValue    decimal.Decimal `gorm:"column:discount_value;type:numeric(30,12);not null"`
	DiscountCurrency string          `gorm:"column:discount_currency;not null;default:'USDC'"`

	RuleGroups  types.JSONMap  `gorm:"column:rule_groups;type:jsonb;serializer:json"`
	Collections pq.StringArray `gorm:"column:collections;type:text[]"`

	ExpiresAt *time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
