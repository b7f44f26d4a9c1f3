package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// NewTimer returns a timer that fires once after d. Callers must Stop
	// timers they no longer need; Reset re-arms a stopped or fired timer.
	NewTimer(d time.Duration) Timer
}

// Timer is a cancellable one-shot timer
type Timer interface {
	// C returns the channel the timer fires on
	C() <-chan time.Time

	// Stop cancels the timer; it reports whether the timer was still armed
	Stop() bool

	// Reset re-arms the timer to fire after d
	Reset(d time.Duration) bool
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// NewTimer returns a timer backed by time.Timer
func (c *RealClock) NewTimer(d time.Duration) Timer {
	return &realTimer{t: time.NewTimer(d)}
}

type realTimer struct {
	t *time.Timer
}

func (t *realTimer) C() <-chan time.Time {
	return t.t.C
}

func (t *realTimer) Stop() bool {
	return t.t.Stop()
}

func (t *realTimer) Reset(d time.Duration) bool {
	return t.t.Reset(d)
}
