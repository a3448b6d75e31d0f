package events

import (
	"context"

	"github.com/google/uuid"

	"github.com/mr-shifu/pedersen-commit/pkg/common/clock"
)

// RevealEvent is emitted after a successful reveal.
type RevealEvent struct {
	ID         uuid.UUID
	Identity   string
	RevealedAt clock.Timestamp
	Message    []byte
}

// Sink accepts reveal notifications. Publish is fire-and-forget: it must not
// block the caller and reports no error.
type Sink interface {
	Publish(ctx context.Context, ev RevealEvent)
}
