package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/pkg/logger"
	"github.com/medicore/hospital-api/pkg/metrics"
)

var testMetrics = metrics.NewMetrics("test", "worker")

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Create(ctx context.Context, event *model.OutboxEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *mockOutboxRepo) GetPendingEvents(ctx context.Context, limit int) ([]*model.OutboxEvent, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.OutboxEvent), args.Error(1)
}

func (m *mockOutboxRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OutboxStatus, errMessage *string) error {
	return m.Called(ctx, id, status, errMessage).Error(0)
}

type mockBroker struct {
	mock.Mock
}

func (m *mockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	return m.Called(ctx, channel, message).Error(0)
}

func (m *mockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan []byte), args.Error(1)
}

func (m *mockBroker) Close() error {
	return m.Called().Error(0)
}

func pendingEvent(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   []byte(`{"id":"x"}`),
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}
}

func newTestProcessor(repo *mockOutboxRepo, broker *mockBroker) *OutboxProcessor {
	return NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
	}, logger.FromZerolog(zerolog.Nop()), testMetrics)
}

func TestProcessEventsMarksProcessed(t *testing.T) {
	repo := new(mockOutboxRepo)
	broker := new(mockBroker)
	p := newTestProcessor(repo, broker)

	event := pendingEvent("appointment.created")
	repo.On("GetPendingEvents", mock.Anything, 10).Return([]*model.OutboxEvent{event}, nil)
	broker.On("Publish", mock.Anything, event.EventType, event.Payload).Return(nil)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, (*string)(nil)).Return(nil)

	require.NoError(t, p.processEvents(context.Background()))
	repo.AssertExpectations(t)
	broker.AssertExpectations(t)
}

func TestProcessEventRetriesThenFails(t *testing.T) {
	repo := new(mockOutboxRepo)
	broker := new(mockBroker)
	p := newTestProcessor(repo, broker)

	event := pendingEvent("appointment.cancelled")
	broker.On("Publish", mock.Anything, event.EventType, event.Payload).
		Return(errors.New("redis down")).Times(2)
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusFailed, mock.AnythingOfType("*string")).
		Return(nil)

	err := p.processEvent(context.Background(), event)
	require.Error(t, err)
	broker.AssertNumberOfCalls(t, "Publish", 2)
	repo.AssertExpectations(t)
}

func TestProcessEventRecoversOnRetry(t *testing.T) {
	repo := new(mockOutboxRepo)
	broker := new(mockBroker)
	p := newTestProcessor(repo, broker)

	event := pendingEvent("doctor.updated")
	broker.On("Publish", mock.Anything, event.EventType, event.Payload).
		Return(errors.New("transient")).Once()
	broker.On("Publish", mock.Anything, event.EventType, event.Payload).
		Return(nil).Once()
	repo.On("UpdateStatus", mock.Anything, event.ID, model.OutboxStatusProcessed, (*string)(nil)).Return(nil)

	require.NoError(t, p.processEvent(context.Background(), event))
	broker.AssertNumberOfCalls(t, "Publish", 2)
}

func TestProcessEventsPropagatesFetchError(t *testing.T) {
	repo := new(mockOutboxRepo)
	broker := new(mockBroker)
	p := newTestProcessor(repo, broker)

	repo.On("GetPendingEvents", mock.Anything, 10).Return(nil, errors.New("db down"))

	err := p.processEvents(context.Background())
	assert.Error(t, err)
	broker.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}
