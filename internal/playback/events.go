package playback

import (
	"context"
	"log/slog"
)

// EventType identifies a cascade lifecycle event.
type EventType string

const (
	EventAttemptStarted    EventType = "attempt_started"
	EventAttemptFailed     EventType = "attempt_failed"
	EventPlaying           EventType = "playing"
	EventExhausted         EventType = "exhausted"
	EventCanceled          EventType = "canceled"
	EventSelectionRequired EventType = "selection_required"
)

// Event is one structured cascade event. Attempt counts the load attempts
// made so far including the primary; Total is primary plus all
// alternatives.
type Event struct {
	Type    EventType
	URL     string
	Attempt int
	Total   int
	Reason  FailureReason
	Err     error
}

// EventSink receives cascade events. Implementations must be safe for
// concurrent use and must not block for long; the controller emits inline.
type EventSink interface {
	Emit(ctx context.Context, event Event)
}

// SlogSink emits cascade events as leveled structured logs.
type SlogSink struct {
	logger *slog.Logger
}

// NewSlogSink creates a sink writing to the given logger. A nil logger
// falls back to slog.Default.
func NewSlogSink(logger *slog.Logger) *SlogSink {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogSink{logger: logger}
}

// Emit implements EventSink.
func (s *SlogSink) Emit(ctx context.Context, event Event) {
	attrs := []any{
		slog.String("event", string(event.Type)),
		slog.Int("attempt", event.Attempt),
		slog.Int("total", event.Total),
	}
	if event.URL != "" {
		attrs = append(attrs, slog.String("url", event.URL))
	}
	if event.Reason != "" {
		attrs = append(attrs, slog.String("reason", string(event.Reason)))
	}
	if event.Err != nil {
		attrs = append(attrs, slog.String("error", event.Err.Error()))
	}

	switch event.Type {
	case EventAttemptFailed:
		s.logger.WarnContext(ctx, "playback attempt failed", attrs...)
	case EventExhausted:
		s.logger.ErrorContext(ctx, "playback alternatives exhausted", attrs...)
	default:
		s.logger.DebugContext(ctx, "playback event", attrs...)
	}
}

// NopSink discards all events.
type NopSink struct{}

// Emit implements EventSink.
func (NopSink) Emit(context.Context, Event) {}
