package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

type fakeEventWriter struct {
	mu     sync.Mutex
	events []*models.OfferLetterEvent
}

func (f *fakeEventWriter) InsertEvent(ctx context.Context, event *models.OfferLetterEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakeEventWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func TestEventLoggerRecordsAsynchronously(t *testing.T) {
	writer := &fakeEventWriter{}
	logger := NewEventLogger(writer, 1, 8, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger.Start(ctx)

	logger.Record(&models.OfferLetterEvent{
		OfferLetterID: "letter-1",
		ApplicationID: "app-1",
		Action:        models.LetterActionGenerated,
	})

	require.Eventually(t, func() bool { return writer.count() == 1 }, time.Second, 10*time.Millisecond)
	logger.Stop()
	assert.Equal(t, models.LetterActionGenerated, writer.events[0].Action)
}

func TestEventLoggerDropsWhenFull(t *testing.T) {
	writer := &fakeEventWriter{}
	logger := NewEventLogger(writer, 1, 1, nil)
	// Queue never started: every record is rejected and must be dropped
	// without blocking the caller.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			logger.Record(&models.OfferLetterEvent{Action: models.LetterActionDownloaded})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Record blocked on a full queue")
	}
}
