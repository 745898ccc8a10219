package clock

import "time"

// Precision is the resolution of timestamps handed out by the real clock.
// Every storage backend can persist it without loss.
const Precision = time.Millisecond

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time truncated to Precision
func (c *RealClock) Now() time.Time {
	return time.Now().UTC().Truncate(Precision)
}
