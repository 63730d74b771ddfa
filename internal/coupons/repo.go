package coupons

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/pkg/db/models"
)

// Repository loads coupon rows and converts them to their evaluated form.
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

// ActiveCoupon returns the active, unexpired coupon with the given code.
// A missing code is not an error; it returns nil so the caller can degrade
// to zero discount.
func (r *Repository) ActiveCoupon(ctx context.Context, code string) (*Coupon, error) {
	var row models.Coupon
	err := r.db.WithContext(ctx).
		Where("code = ? AND active = true", code).
		Where("expires_at IS NULL OR expires_at > ?", time.Now().UTC()).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load coupon %s: %w", code, err)
	}
	return FromModel(&row)
}
