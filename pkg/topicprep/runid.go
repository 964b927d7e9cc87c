package topicprep

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// runIDs issues lexically sortable run identifiers.
type runIDs struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newRunIDs() *runIDs {
	return &runIDs{
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

func (r *runIDs) next(t time.Time) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), r.entropy).String()
}
