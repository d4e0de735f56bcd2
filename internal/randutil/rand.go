package randutil

import (
	rand "math/rand/v2"
	"time"
)

const (
	goldenRatio64 = 0x9e3779b97f4a7c15
)

// New returns a *rand.Rand seeded deterministically from the provided int64.
// Every deck shuffle and turn-order shuffle goes through a source built here
// so a configured seed replays the same sessions.
func New(seed int64) *rand.Rand {
	u := uint64(seed)
	return rand.New(rand.NewPCG(mix(u), mix(u+goldenRatio64)))
}

// ForSession returns the source for the nth session. A zero base seed means
// "not configured" and falls back to the wall clock.
func ForSession(base int64, n uint64) *rand.Rand {
	if base == 0 {
		return New(time.Now().UnixNano() ^ int64(mix(n)))
	}
	return New(base + int64(n))
}

func mix(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
