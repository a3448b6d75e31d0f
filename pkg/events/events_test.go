package events

import (
	"bytes"
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	com_events "github.com/mr-shifu/pedersen-commit/pkg/common/events"
	"github.com/mr-shifu/pedersen-commit/pkg/log"
)

func newEvent(identity string) com_events.RevealEvent {
	return com_events.RevealEvent{
		ID:         uuid.New(),
		Identity:   identity,
		RevealedAt: 7,
		Message:    []byte("hello"),
	}
}

func TestBus_PublishSubscribe(t *testing.T) {
	b := NewBus(4)
	s1 := b.Subscribe()
	s2 := b.Subscribe()

	ev := newEvent("alice")
	b.Publish(context.Background(), ev)

	assert.Equal(t, ev, <-s1)
	assert.Equal(t, ev, <-s2)
}

func TestBus_DropsOnBackpressure(t *testing.T) {
	b := NewBus(1)
	s := b.Subscribe()

	b.Publish(context.Background(), newEvent("alice"))
	b.Publish(context.Background(), newEvent("bob"))

	got := <-s
	assert.Equal(t, "alice", got.Identity)
	assert.Len(t, s, 0)
}

func TestBus_Close(t *testing.T) {
	b := NewBus(0)
	s := b.Subscribe()
	b.Close()

	_, ok := <-s
	assert.False(t, ok)

	b.Publish(context.Background(), newEvent("alice"))
}

func TestLogSink(t *testing.T) {
	var buf bytes.Buffer
	logger, err := log.NewLogger("test", &buf, log.FmtJSON, log.LevelDebug)
	require.NoError(t, err)

	NewLogSink(logger).Publish(context.Background(), newEvent("alice"))
	assert.Contains(t, buf.String(), `"identity":"alice"`)
	assert.Contains(t, buf.String(), `"revealed_at":7`)
	assert.Contains(t, buf.String(), `"module":"events"`)
}

func TestMulti(t *testing.T) {
	b1, b2 := NewBus(1), NewBus(1)
	s1, s2 := b1.Subscribe(), b2.Subscribe()

	Multi{b1, Discard{}, b2}.Publish(context.Background(), newEvent("alice"))

	assert.Equal(t, "alice", (<-s1).Identity)
	assert.Equal(t, "alice", (<-s2).Identity)
}
