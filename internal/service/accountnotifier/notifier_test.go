package accountnotifier

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/smartbin/portal/internal/observability/notify"
)

func TestServiceNotify(t *testing.T) {
	ctx := context.Background()
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	var mu sync.Mutex
	var received []notify.AccountEvent
	svc := NewService(Options{
		Now: func() time.Time { return fixed },
		Sinks: []SinkRegistration{
			{
				Name: "capture",
				Sink: notify.SinkFunc(func(ctx context.Context, event notify.AccountEvent) error {
					mu.Lock()
					defer mu.Unlock()
					received = append(received, event)
					return nil
				}),
			},
		},
	})

	svc.Notify(ctx, notify.AccountEvent{Kind: notify.EventRegistered, Username: "alice"})

	if len(received) != 1 {
		t.Fatalf("expected 1 event, got %d", len(received))
	}
	if !received[0].OccurredAt.Equal(fixed) {
		t.Fatalf("expected OccurredAt to default to now, got %s", received[0].OccurredAt)
	}
}

func TestServiceDisabled(t *testing.T) {
	svc := NewService(Options{})
	if svc.Enabled() {
		t.Fatal("expected Enabled() to be false when no sinks registered")
	}
	var nilSvc *Service
	nilSvc.Notify(context.Background(), notify.AccountEvent{Kind: notify.EventRegistered})
}

func TestServiceLogsErrors(t *testing.T) {
	// Ensure we don't panic when sink returns an error.
	svc := NewService(Options{
		Sinks: []SinkRegistration{
			{
				Name: "fail",
				Sink: notify.SinkFunc(func(ctx context.Context, event notify.AccountEvent) error {
					return errors.New("boom")
				}),
			},
			{Name: "log", Sink: LogSink{}},
		},
	})

	svc.Notify(context.Background(), notify.AccountEvent{Kind: notify.EventPasswordResetRequested})
}
