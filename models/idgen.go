package models

import (
	"math/rand"
	"sync"
	"time"
)

var clientIDMutex sync.Mutex
var lastClientID int64

// GenerateClientOrderID returns a collision-resistant, monotonically
// increasing integer built from the current millisecond timestamp and a
// random 4 digit suffix.
func GenerateClientOrderID() int64 {
	clientIDMutex.Lock()
	defer clientIDMutex.Unlock()

	now := time.Now().UnixMilli()
	candidate := now*10000 + rand.Int63n(10000)
	if candidate <= lastClientID {
		// clock did not advance past the previous id, keep it monotone
		candidate = lastClientID + 1
	}

	lastClientID = candidate
	return candidate
}
