package outbox

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/enums"
)

func setupOutboxTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS outbox_events (
  id TEXT PRIMARY KEY,
  event_type TEXT NOT NULL,
  aggregate_type TEXT NOT NULL,
  aggregate_id TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at DATETIME,
  published_at DATETIME,
  attempt_count INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func batchEvent(aggregateID uuid.UUID) DomainEvent {
	return DomainEvent{
		EventType:     enums.EventOrderBatchCreated,
		AggregateType: enums.AggregateOrderBatch,
		AggregateID:   aggregateID,
		Version:       1,
		Data:          map[string]any{"batch_order_id": aggregateID.String()},
	}
}

func countEvents(t *testing.T, db *gorm.DB, aggregateID uuid.UUID) int64 {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&models.OutboxEvent{}).
		Where("aggregate_id = ?", aggregateID).
		Count(&count).Error)
	return count
}

func TestEmitRequiresTransaction(t *testing.T) {
	svc := NewService(NewRepository(setupOutboxTestDB(t)), nil)

	err := svc.Emit(context.Background(), nil, batchEvent(uuid.New()))
	require.Error(t, err)

	err = svc.EmitIfNotExists(context.Background(), nil, batchEvent(uuid.New()))
	require.Error(t, err)
}

func TestEmitIfNotExistsInsertsOnce(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	batchID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		return svc.EmitIfNotExists(context.Background(), tx, batchEvent(batchID))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countEvents(t, db, batchID))
}

func TestEmitIfNotExistsSkipsDuplicateAggregate(t *testing.T) {
	db := setupOutboxTestDB(t)
	svc := NewService(NewRepository(db), nil)
	batchID := uuid.New()

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := svc.Emit(context.Background(), tx, batchEvent(batchID)); err != nil {
			return err
		}
		// A replayed checkout must not queue the batch event again.
		return svc.EmitIfNotExists(context.Background(), tx, batchEvent(batchID))
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), countEvents(t, db, batchID))
}
