package commitreveal

import (
	"sync"

	"github.com/zeebo/blake3"
)

const lockStripes = 256

// stripedLock linearizes operations per identity. Distinct identities only
// contend when they hash to the same stripe.
type stripedLock struct {
	stripes [lockStripes]sync.Mutex
}

func (l *stripedLock) get(identity string) *sync.Mutex {
	sum := blake3.Sum256([]byte(identity))
	return &l.stripes[sum[0]]
}
