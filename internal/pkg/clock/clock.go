// Package clock abstracts wall time and deferred execution so expiry
// behavior can be tested without real delays.
package clock

import "time"

// Timer is a cancellable deferred call.
type Timer interface {
	// Stop prevents the timer from firing. It reports whether the call
	// stopped the timer before it ran.
	Stop() bool
}

// Clock provides the current time and schedules deferred calls.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

// New returns a Clock backed by the time package.
func New() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
