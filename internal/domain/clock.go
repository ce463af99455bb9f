package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Production code uses the real clock; tests and fixture tooling inject a
// fake for deterministic output.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source for generated-at stamps. Pass nil to reset
// to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the package clock. Callers that need a
// scoring run anchored to "today" read it here so tests can freeze it.
func Now() time.Time {
	return clock.Now()
}
