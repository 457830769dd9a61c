package pipeline

import (
	"crypto/rand"
	"sync"

	"github.com/oklog/ulid/v2"
)

var (
	ulidMu  sync.Mutex
	entropy = ulid.Monotonic(rand.Reader, 0)
)

// generateULID returns a new job ID. IDs from one process sort in
// creation order.
func generateULID() string {
	ulidMu.Lock()
	defer ulidMu.Unlock()
	return ulid.MustNew(ulid.Now(), entropy).String()
}
