package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is a platform-managed destination wallet. The main active wallet is
// the fallback for collections without their own wallet address.
type Wallet struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Address   string    `gorm:"column:address;not null;uniqueIndex:ux_wallets_address"`
	Label     string    `gorm:"column:label"`
	IsActive  bool      `gorm:"column:is_active;not null;default:true"`
	IsMain    bool      `gorm:"column:is_main;not null;default:false"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
