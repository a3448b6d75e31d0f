package clock

import (
	"sync/atomic"
	"time"

	com_clock "github.com/mr-shifu/pedersen-commit/pkg/common/clock"
)

// SystemClock reports unix milliseconds, clamped so that it never goes
// backwards when the wall clock is stepped.
type SystemClock struct {
	now  func() time.Time
	last atomic.Uint64
}

var _ com_clock.Clock = (*SystemClock)(nil)

// NewSystemClock returns a clock backed by time.Now.
func NewSystemClock() *SystemClock {
	return &SystemClock{now: time.Now}
}

// Now returns max(wall clock, last returned value).
func (c *SystemClock) Now() com_clock.Timestamp {
	wall := uint64(c.now().UnixMilli())
	for {
		last := c.last.Load()
		if wall <= last {
			return com_clock.Timestamp(last)
		}
		if c.last.CompareAndSwap(last, wall) {
			return com_clock.Timestamp(wall)
		}
	}
}
