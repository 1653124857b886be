package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/pkg/jobs"
)

type letterEventWriter interface {
	InsertEvent(ctx context.Context, event *models.OfferLetterEvent) error
}

// EventLogger records offer letter lifecycle events through a background
// queue. A failed or dropped write is logged and swallowed so the
// triggering operation is never affected.
type EventLogger struct {
	queue  *jobs.Queue
	logger *zap.Logger
}

// NewEventLogger constructs an EventLogger over the given writer.
func NewEventLogger(repo letterEventWriter, workers, bufferSize int, logger *zap.Logger) *EventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	handler := func(ctx context.Context, job jobs.Job) error {
		event, ok := job.Payload.(*models.OfferLetterEvent)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", job.Payload)
		}
		return repo.InsertEvent(ctx, event)
	}
	queue := jobs.NewQueue("offer-letter-events", handler, jobs.QueueConfig{
		Workers:    workers,
		BufferSize: bufferSize,
		MaxRetries: 1,
		Logger:     logger,
	})
	return &EventLogger{queue: queue, logger: logger}
}

// Start launches the queue workers.
func (l *EventLogger) Start(ctx context.Context) {
	l.queue.Start(ctx)
}

// Stop drains the queue workers.
func (l *EventLogger) Stop() {
	l.queue.Stop()
}

// Record enqueues an event write without blocking the caller path.
func (l *EventLogger) Record(event *models.OfferLetterEvent) {
	if err := l.queue.Enqueue(jobs.Job{Type: event.Action, Payload: event}); err != nil {
		l.logger.Warn("dropping offer letter event",
			zap.String("action", event.Action),
			zap.String("application_id", event.ApplicationID),
			zap.Error(err))
	}
}
