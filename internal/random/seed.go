// Package random seeds the pseudo-random sources the engine and generator
// draw from.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"math/rand"
	"time"
)

// Seed returns a seed from crypto/rand, or the clock if that fails.
func Seed() int64 {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return time.Now().UnixNano()
	}
	return int64(binary.LittleEndian.Uint64(b[:]))
}

// New returns a source seeded with seed, or with Seed() when seed is 0.
func New(seed int64) *rand.Rand {
	if seed == 0 {
		seed = Seed()
	}
	return rand.New(rand.NewSource(seed))
}
