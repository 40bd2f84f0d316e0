package clock

import "time"

// Clock provides the time source for find/solve timestamps. Within a
// single process it must be monotonic enough that later events never
// get earlier timestamps; ordering ties are the ranking comparator's
// problem, not the clock's.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}
