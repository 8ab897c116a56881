// Package ids generates the identifiers used around the event pipeline:
// ULIDs for per-record message ids on the bus sink and random GUIDs for
// activity correlation chains.
package ids

import (
	"crypto/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

var (
	entropyMu sync.Mutex
	entropy   = ulid.Monotonic(rand.Reader, 0)
)

// CreateULID returns a time-sortable ULID encoded as a 26-character string.
func CreateULID() string {
	entropyMu.Lock()
	defer entropyMu.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// NewActivityID returns a fresh random activity identifier for starting a
// correlation chain.
func NewActivityID() uuid.UUID {
	return uuid.New()
}
