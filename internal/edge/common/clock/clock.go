// Package clock lets request timing be driven by a fake in tests.
package clock

import "time"

type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

func (RealClock) Since(t time.Time) time.Duration { return time.Since(t) }

// MockClock returns CurrentTime until advanced.
type MockClock struct {
	CurrentTime time.Time
}

func (c *MockClock) Now() time.Time { return c.CurrentTime }

func (c *MockClock) Since(t time.Time) time.Duration { return c.CurrentTime.Sub(t) }

func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}
