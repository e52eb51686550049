// Package clock abstracts wall-clock reads so slot validation, the
// cancellation window, and reminder scans can be tested at fixed instants.
package clock

import "time"

type Clock interface {
	Now() time.Time
}

func NewRealClock() Clock {
	return systemClock{}
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// MockClock is a manually advanced clock. Not safe for concurrent use;
// tests drive it from a single goroutine.
type MockClock struct {
	now time.Time
}

func NewMockClock(t time.Time) *MockClock {
	return &MockClock{now: t}
}

func (c *MockClock) Now() time.Time {
	return c.now
}

func (c *MockClock) Set(t time.Time) {
	c.now = t
}

func (c *MockClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
