package orders

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/enums"
	pkgerrors "github.com/minthouse/storefront-backend/pkg/errors"
	"github.com/minthouse/storefront-backend/pkg/types"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number INTEGER NOT NULL UNIQUE,
  product_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  variants TEXT,
  variant_key TEXT,
  wallet_address TEXT,
  shipping_info TEXT,
  status TEXT NOT NULL DEFAULT 'draft',
  unit_price NUMERIC NOT NULL,
  item_total NUMERIC NOT NULL,
  currency_unit TEXT NOT NULL,
  batch_order_id TEXT NOT NULL,
  item_index INTEGER NOT NULL,
  item_count INTEGER NOT NULL,
  transaction_signature TEXT,
  metadata TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	customData := `
CREATE TABLE IF NOT EXISTS custom_data_entries (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  kind TEXT NOT NULL DEFAULT 'customization',
  payload TEXT,
  created_at DATETIME
);`

	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(customData).Error)
	return db
}

func testOrder(batchID uuid.UUID, index int) *models.Order {
	return &models.Order{
		ID:           uuid.New(),
		ProductID:    uuid.New(),
		Quantity:     1,
		Status:       enums.OrderStatusDraft,
		UnitPrice:    decimal.RequireFromString("10"),
		ItemTotal:    decimal.RequireFromString("10"),
		CurrencyUnit: "USDC",
		BatchOrderID: batchID,
		ItemIndex:    index,
		ItemCount:    3,
	}
}

func TestCreateOrderAssignsSequentialNumbers(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	batchID := uuid.New()

	first, err := repo.CreateOrder(context.Background(), nil, testOrder(batchID, 0))
	require.NoError(t, err)
	second, err := repo.CreateOrder(context.Background(), nil, testOrder(batchID, 1))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first.OrderNumber)
	assert.Equal(t, int64(2), second.OrderNumber)
}

func TestListByBatchOrdersByItemIndex(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	batchID := uuid.New()

	for _, index := range []int{2, 0, 1} {
		_, err := repo.CreateOrder(context.Background(), nil, testOrder(batchID, index))
		require.NoError(t, err)
	}
	_, err := repo.CreateOrder(context.Background(), nil, testOrder(uuid.New(), 0))
	require.NoError(t, err)

	list, err := repo.ListByBatch(context.Background(), batchID)
	require.NoError(t, err)
	require.Len(t, list, 3)
	for i, order := range list {
		assert.Equal(t, i, order.ItemIndex)
		assert.Equal(t, batchID, order.BatchOrderID)
	}
}

func TestUpdateOrderAppliesFields(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order, err := repo.CreateOrder(context.Background(), nil, testOrder(uuid.New(), 0))
	require.NoError(t, err)

	sig := "FREE_ORDER_1700000000_buyer"
	err = repo.UpdateOrder(context.Background(), nil, order.ID, map[string]any{
		"status":                enums.OrderStatusPendingPayment,
		"transaction_signature": sig,
	})
	require.NoError(t, err)

	loaded, err := repo.GetOrder(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPendingPayment, loaded.Status)
	require.NotNil(t, loaded.TransactionSignature)
	assert.Equal(t, sig, *loaded.TransactionSignature)
}

func TestUpdateOrderMissingRowIsNotFound(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	err := repo.UpdateOrder(context.Background(), nil, uuid.New(), map[string]any{"status": enums.OrderStatusConfirmed})
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetOrderMissingRowIsNotFound(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))

	_, err := repo.GetOrder(context.Background(), uuid.New())
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreateOrderCommitsWithTransaction(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	batchID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateOrder(context.Background(), tx, testOrder(batchID, 0)); err != nil {
			return err
		}
		_, err := repo.CreateOrder(context.Background(), tx, testOrder(batchID, 1))
		return err
	})
	require.NoError(t, err)

	list, err := repo.ListByBatch(context.Background(), batchID)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestCreateOrderRollsBackWithTransaction(t *testing.T) {
	conn := setupOrdersTestDB(t)
	repo := NewRepository(conn)
	batchID := uuid.New()

	err := conn.Transaction(func(tx *gorm.DB) error {
		if _, err := repo.CreateOrder(context.Background(), tx, testOrder(batchID, 0)); err != nil {
			return err
		}
		return errors.New("abort batch")
	})
	require.Error(t, err)

	list, err := repo.ListByBatch(context.Background(), batchID)
	require.NoError(t, err)
	assert.Empty(t, list, "rolled-back batch leaves no orders behind")
}

func TestCreateCustomDataEntry(t *testing.T) {
	repo := NewRepository(setupOrdersTestDB(t))
	order, err := repo.CreateOrder(context.Background(), nil, testOrder(uuid.New(), 0))
	require.NoError(t, err)

	entry := &models.CustomDataEntry{
		ID:      uuid.New(),
		OrderID: order.ID,
		Payload: types.JSONMap{"engraving": "mint forever"},
	}
	require.NoError(t, repo.CreateCustomDataEntry(context.Background(), nil, entry))

	var count int64
	require.NoError(t, repo.db.Model(&models.CustomDataEntry{}).Where("order_id = ?", order.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
