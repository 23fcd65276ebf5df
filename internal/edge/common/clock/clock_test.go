package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	now := c.Now()
	after := time.Now()

	assert.False(t, now.Before(before))
	assert.False(t, now.After(after))
}

func TestRealClock_Since(t *testing.T) {
	c := RealClock{}
	start := c.Now().Add(-time.Second)
	assert.GreaterOrEqual(t, c.Since(start), time.Second)
}

func TestMockClock_AdvanceAndSince(t *testing.T) {
	fixed := time.Date(2025, 8, 1, 12, 0, 0, 0, time.UTC)
	c := &MockClock{CurrentTime: fixed}

	assert.Equal(t, fixed, c.Now())

	c.Advance(250 * time.Millisecond)
	assert.Equal(t, fixed.Add(250*time.Millisecond), c.Now())
	assert.Equal(t, 250*time.Millisecond, c.Since(fixed))
}
