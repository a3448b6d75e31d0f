package events

import (
	"context"

	com_events "github.com/mr-shifu/pedersen-commit/pkg/common/events"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

// LogSink logs every reveal at info level.
type LogSink struct {
	logger *log.Logger
}

var _ com_events.Sink = (*LogSink)(nil)

func NewLogSink(logger *log.Logger) *LogSink {
	return &LogSink{logger: logger.WithModule("events")}
}

func (s *LogSink) Publish(_ context.Context, ev com_events.RevealEvent) {
	s.logger.Info("commitment revealed",
		"event_id", ev.ID.String(),
		"identity", ev.Identity,
		"revealed_at", uint64(ev.RevealedAt),
		"message", string(ev.Message),
	)
}

// Multi publishes to several sinks in order.
type Multi []com_events.Sink

func (m Multi) Publish(ctx context.Context, ev com_events.RevealEvent) {
	for _, s := range m {
		s.Publish(ctx, ev)
	}
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(context.Context, com_events.RevealEvent) {}
