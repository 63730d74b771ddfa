// Package orders persists the per-item settlement records created by
// checkout.
package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/pkg/db"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
)

// Repository persists orders and their customization payloads.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{db: conn}
}

// handle picks the transaction when one is supplied, mirroring the outbox
// repository's tx-first write signatures.
func (r *Repository) handle(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

// CreateOrder inserts the order with the next sequential order number. The
// number assignment retries once on a unique violation from a concurrent
// insert; each attempt runs in its own scope so the retry works inside an
// open transaction.
func (r *Repository) CreateOrder(ctx context.Context, tx *gorm.DB, order *models.Order) (*models.Order, error) {
	conn := r.handle(tx)
	for attempt := 0; attempt < 2; attempt++ {
		number, err := r.nextOrderNumber(ctx, conn)
		if err != nil {
			return nil, err
		}
		order.OrderNumber = number

		err = conn.Transaction(func(scope *gorm.DB) error {
			return scope.WithContext(ctx).Create(order).Error
		})
		if err == nil {
			return order, nil
		}
		if db.IsUniqueViolation(err, "ux_orders_number") && attempt == 0 {
			continue
		}
		return nil, fmt.Errorf("create order: %w", err)
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "could not allocate order number")
}

func (r *Repository) nextOrderNumber(ctx context.Context, conn *gorm.DB) (int64, error) {
	var next int64
	err := conn.WithContext(ctx).
		Model(&models.Order{}).
		Select("COALESCE(MAX(order_number), 0) + 1").
		Scan(&next).Error
	if err != nil {
		return 0, fmt.Errorf("next order number: %w", err)
	}
	return next, nil
}

// UpdateOrder applies the given column updates to an existing order.
func (r *Repository) UpdateOrder(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.handle(tx).WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(fields)
	if result.Error != nil {
		return fmt.Errorf("update order %s: %w", orderID, result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
	}
	return nil
}

// GetOrder loads a single order.
func (r *Repository) GetOrder(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("id = ?", orderID).First(&order).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Newf(pkgerrors.CodeNotFound, "order %s not found", orderID)
	}
	if err != nil {
		return nil, fmt.Errorf("load order %s: %w", orderID, err)
	}
	return &order, nil
}

// ListByBatch returns the orders created by one checkout batch, in item
// order.
func (r *Repository) ListByBatch(ctx context.Context, batchID uuid.UUID) ([]models.Order, error) {
	var list []models.Order
	err := r.db.WithContext(ctx).
		Where("batch_order_id = ?", batchID).
		Order("item_index ASC").
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("list batch %s: %w", batchID, err)
	}
	return list, nil
}

// CreateCustomDataEntry stores an item's customization payload against its
// order.
func (r *Repository) CreateCustomDataEntry(ctx context.Context, tx *gorm.DB, entry *models.CustomDataEntry) error {
	if err := r.handle(tx).WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create custom data for order %s: %w", entry.OrderID, err)
	}
	return nil
}
