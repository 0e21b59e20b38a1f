package clock

import "time"

// Clock provides the current time so cache freshness can be tested
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time in UTC. Snapshots persist this value, so the
// monotonic reading is stripped to keep it comparable after a round trip.
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Round(0)
}
