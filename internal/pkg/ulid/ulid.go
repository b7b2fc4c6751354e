// Package ulid provides ULID generation utilities.
package ulid

import (
	"crypto/rand"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	entropy     = ulid.Monotonic(rand.Reader, 0)
	entropyLock sync.Mutex
)

// New generates a new ULID.
func New() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	id := ulid.MustNew(ulid.Timestamp(time.Now()), entropy)
	return id.String()
}

// Suffix returns the last n characters of a new ULID in lower case. The
// tail is drawn from the random component, so it is suitable for making
// human-readable identifiers unique.
func Suffix(n int) string {
	id := strings.ToLower(New())
	if n <= 0 || n >= len(id) {
		return id
	}
	return id[len(id)-n:]
}

// IsValid checks if a string is a valid ULID.
func IsValid(s string) bool {
	_, err := ulid.Parse(s)
	return err == nil
}
