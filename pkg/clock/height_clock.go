// Package clock implements the clocks commitments are stamped with.
package clock

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"

	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
	com_vault "github.com/mr-shifu/pedersen-commit/pkg/common/vault"
)

// HeightKey is the vault key holding the last applied height. Commitment
// entries live under hex-encoded digests, so it never collides with them.
const HeightKey = "pedersen-commit/height"

// HeightClock is a block-height clock. The host advances it once per applied
// block; every operation inside the block observes the same height.
type HeightClock struct {
	mtx    sync.Mutex
	height atomic.Uint64

	// vault persists the height when set.
	vault com_vault.Vault
}

var _ com_clock.Clock = (*HeightClock)(nil)

// NewHeightClock returns an in-memory clock starting at height.
func NewHeightClock(height uint64) *HeightClock {
	c := &HeightClock{}
	c.height.Store(height)
	return c
}

// OpenHeightClock returns a clock resuming from the height persisted in v, or
// from zero if v holds none. Next persists every new height to v.
func OpenHeightClock(ctx context.Context, v com_vault.Vault) (*HeightClock, error) {
	c := &HeightClock{vault: v}

	data, err := v.Get(ctx, HeightKey)
	if errors.Is(err, com_vault.ErrKeyNotFound) {
		return c, nil
	}
	if err != nil {
		return nil, errors.WithMessage(err, "clock: failed to load height")
	}

	var height uint64
	if err := cbor.Unmarshal(data, &height); err != nil {
		return nil, errors.Wrap(err, "clock: malformed persisted height")
	}
	c.height.Store(height)
	return c, nil
}

// Now returns the current height.
func (c *HeightClock) Now() com_clock.Timestamp {
	return com_clock.Timestamp(c.height.Load())
}

// Advance moves to the next height and returns it without persisting it.
func (c *HeightClock) Advance() com_clock.Timestamp {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	return com_clock.Timestamp(c.height.Add(1))
}

// Next moves to the next height and returns it. For a clock opened over a
// vault the height is stored before it becomes visible; on failure the clock
// does not move.
func (c *HeightClock) Next(ctx context.Context) (com_clock.Timestamp, error) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	next := c.height.Load() + 1
	if c.vault != nil {
		data, err := cbor.Marshal(next)
		if err != nil {
			return 0, errors.Wrap(err, "clock: failed to encode height")
		}
		if err := c.vault.Import(ctx, HeightKey, data); err != nil {
			return 0, errors.WithMessage(err, "clock: failed to persist height")
		}
	}
	c.height.Store(next)
	return com_clock.Timestamp(next), nil
}
