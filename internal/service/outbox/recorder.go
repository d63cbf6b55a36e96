package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/medicore/hospital-api/internal/model"
	"github.com/medicore/hospital-api/internal/repository"
)

// Recorder appends domain events to the outbox table for the worker to
// publish. Recording is best-effort: a failed append is logged and never
// fails the mutation that produced it.
type Recorder struct {
	repo   repository.OutboxRepository
	logger zerolog.Logger
}

func NewRecorder(repo repository.OutboxRepository, logger zerolog.Logger) *Recorder {
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) Record(ctx context.Context, eventType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to marshal outbox payload")
		return
	}

	event := &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   data,
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := r.repo.Create(ctx, event); err != nil {
		r.logger.Error().Err(err).Str("event_type", eventType).Msg("failed to record outbox event")
	}
}
