package main

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	gcppubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minthouse/storefront-backend/pkg/config"
	"github.com/minthouse/storefront-backend/pkg/db/models"
	"github.com/minthouse/storefront-backend/pkg/enums"
	"github.com/minthouse/storefront-backend/pkg/logger"
)

type stubRepo struct {
	events    []models.OutboxEvent
	published []uuid.UUID
	failed    []uuid.UUID
	fetchErr  error
}

func (s *stubRepo) FetchUnpublished(limit, maxAttempts int) ([]models.OutboxEvent, error) {
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	if len(s.events) > limit {
		return s.events[:limit], nil
	}
	return s.events, nil
}

func (s *stubRepo) MarkPublished(id uuid.UUID) error {
	s.published = append(s.published, id)
	return nil
}

func (s *stubRepo) MarkFailed(id uuid.UUID, _ error) error {
	s.failed = append(s.failed, id)
	return nil
}

type stubResult struct {
	err error
}

func (s stubResult) Get(context.Context) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return "msg-1", nil
}

type stubPublisher struct {
	messages []*gcppubsub.Message
	errFor   map[string]error
}

func (s *stubPublisher) Publish(_ context.Context, msg *gcppubsub.Message) publishResult {
	s.messages = append(s.messages, msg)
	if err, ok := s.errFor[msg.Attributes["event_id"]]; ok {
		return stubResult{err: err}
	}
	return stubResult{}
}

func testService(t *testing.T, repo *stubRepo, pub *stubPublisher) *Service {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "outbox-test", Output: io.Discard})
	svc, err := NewService(ServiceParams{
		Config:     &config.Config{Outbox: config.OutboxConfig{BatchSize: 10, PollIntervalMS: 10, MaxAttempts: 3}},
		Logger:     logg,
		Repository: repo,
		Publisher:  pub,
	})
	require.NoError(t, err)
	return svc
}

func testEvent() models.OutboxEvent {
	payload, _ := json.Marshal(map[string]any{"batchOrderId": uuid.NewString()})
	return models.OutboxEvent{
		ID:            uuid.New(),
		EventType:     enums.EventOrderBatchCreated,
		AggregateType: enums.AggregateOrderBatch,
		AggregateID:   uuid.New(),
		Payload:       payload,
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessBatchPublishesAndMarks(t *testing.T) {
	event := testEvent()
	repo := &stubRepo{events: []models.OutboxEvent{event}}
	pub := &stubPublisher{}
	svc := testService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	require.Len(t, pub.messages, 1)
	msg := pub.messages[0]
	assert.Equal(t, event.ID.String(), msg.Attributes["event_id"])
	assert.Equal(t, string(enums.EventOrderBatchCreated), msg.Attributes["event_type"])
	assert.Equal(t, event.AggregateID.String(), msg.Attributes["aggregate_id"])
	assert.JSONEq(t, string(event.Payload), string(msg.Data))

	assert.Equal(t, []uuid.UUID{event.ID}, repo.published)
	assert.Empty(t, repo.failed)
}

func TestProcessBatchMarksFailedAndContinues(t *testing.T) {
	bad := testEvent()
	good := testEvent()
	repo := &stubRepo{events: []models.OutboxEvent{bad, good}}
	pub := &stubPublisher{errFor: map[string]error{bad.ID.String(): errors.New("broker down")}}
	svc := testService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.True(t, processed)

	assert.Equal(t, []uuid.UUID{bad.ID}, repo.failed)
	assert.Equal(t, []uuid.UUID{good.ID}, repo.published)
}

func TestProcessBatchEmptyIsNotProcessed(t *testing.T) {
	repo := &stubRepo{}
	pub := &stubPublisher{}
	svc := testService(t, repo, pub)

	processed, err := svc.processBatch(context.Background())
	require.NoError(t, err)
	assert.False(t, processed)
}

func TestProcessBatchSurfacesFetchError(t *testing.T) {
	repo := &stubRepo{fetchErr: errors.New("db offline")}
	svc := testService(t, repo, &stubPublisher{})

	_, err := svc.processBatch(context.Background())
	require.Error(t, err)
}

func TestRunStopsOnContextCancel(t *testing.T) {
	repo := &stubRepo{}
	svc := testService(t, repo, &stubPublisher{})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err := svc.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestNextBackoffDoublesToCeiling(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, 200*time.Millisecond, nextBackoff(base, base, time.Second))
	assert.Equal(t, time.Second, nextBackoff(900*time.Millisecond, base, time.Second))
	assert.Equal(t, base, nextBackoff(0, base, time.Second))
}
