package mocks

import (
	"time"

	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
)

// MockClock is a mock implementation of Clock for testing
type MockClock struct {
	CurrentTime time.Time

	// Timers holds every timer created via NewTimer, in creation order,
	// so tests can fire them deterministically
	Timers []*MockTimer
}

// Ensure MockClock implements Clock
var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock set to the given time
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the mocked current time
func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set sets the clock to the given time
func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}

// NewTimer records and returns a manually-fired timer
func (c *MockClock) NewTimer(d time.Duration) clock.Timer {
	t := &MockTimer{
		clock:    c,
		Duration: d,
		ch:       make(chan time.Time, 1),
		armed:    true,
	}
	c.Timers = append(c.Timers, t)
	return t
}

// LastTimer returns the most recently created timer, or nil if none
func (c *MockClock) LastTimer() *MockTimer {
	if len(c.Timers) == 0 {
		return nil
	}
	return c.Timers[len(c.Timers)-1]
}

// MockTimer is a Timer fired manually from tests
type MockTimer struct {
	clock    *MockClock
	Duration time.Duration
	ch       chan time.Time
	armed    bool
	Stopped  bool
}

var _ clock.Timer = (*MockTimer)(nil)

// C returns the timer's channel
func (t *MockTimer) C() <-chan time.Time {
	return t.ch
}

// Stop disarms the timer
func (t *MockTimer) Stop() bool {
	wasArmed := t.armed
	t.armed = false
	t.Stopped = true
	return wasArmed
}

// Reset re-arms the timer with a new duration
func (t *MockTimer) Reset(d time.Duration) bool {
	wasArmed := t.armed
	t.Duration = d
	t.armed = true
	t.Stopped = false
	return wasArmed
}

// Fire delivers a tick at the mock clock's current time if the timer is armed
func (t *MockTimer) Fire() {
	if !t.armed {
		return
	}
	t.armed = false
	t.ch <- t.clock.CurrentTime
}

// Armed reports whether the timer is currently armed
func (t *MockTimer) Armed() bool {
	return t.armed
}
