package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/minthouse/storefront-backend/pkg/types"
)

// Collection groups products under one merchant destination wallet and an
// optional strict-token payment requirement.
type Collection struct {
	ID            uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name          string             `gorm:"column:name;not null"`
	WalletAddress *string            `gorm:"column:wallet_address"`
	StrictToken   *types.StrictToken `gorm:"column:strict_token;type:jsonb;serializer:json"`
	CreatedAt     time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
