package accountnotifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/smartbin/portal/internal/observability/notify"
)

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the account notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	Now    func() time.Time
}

// Service dispatches account events to all registered sinks.
type Service struct {
	logger *slog.Logger
	sinks  []SinkRegistration
	now    func() time.Time
}

// NewService constructs an account notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default().With("component", "account_notifier")
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		name := entry.Name
		if name == "" {
			name = "sink"
		}
		sinks = append(sinks, SinkRegistration{Name: name, Sink: entry.Sink})
	}

	return &Service{logger: logger, sinks: sinks, now: now}
}

// Notify fan-outs the event to all sinks. Delivery errors are logged, never returned.
func (s *Service) Notify(ctx context.Context, event notify.AccountEvent) {
	if s == nil || len(s.sinks) == 0 {
		return
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = s.now()
	}

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendAccountEvent(ctx, event); err != nil {
				s.logger.Error("account notifier delivery error",
					"sink", entry.Name,
					"kind", event.Kind,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}

// LogSink writes account events to a structured logger. It stands in for
// real mail/SMS delivery in development.
type LogSink struct {
	Logger *slog.Logger
}

// SendAccountEvent implements notify.Sink.
func (l LogSink) SendAccountEvent(ctx context.Context, event notify.AccountEvent) error {
	logger := l.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.InfoContext(ctx, "account event",
		"kind", event.Kind,
		"user_id", event.UserID,
		"username", event.Username,
		"contact", event.Contact,
		"channel", event.Channel,
	)
	return nil
}
