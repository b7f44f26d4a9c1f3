package mocks

import (
	"github.com/crosswirehq/crosswire/internal/dependencies/random"
)

// MockRandom returns queued values in FIFO order. When a queue runs dry
// it falls back to the type's zero value, which keeps tests deterministic
// even when code under test draws more than the test queued.
type MockRandom struct {
	ints    []int
	strings []string
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a MockRandom with empty queues
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// Intn pops the next queued int, or returns 0 when the queue is empty
func (r *MockRandom) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v
}

// String pops the next queued string, or returns "" when the queue is empty
func (r *MockRandom) String(length int, alphabet string) string {
	if len(r.strings) == 0 {
		return ""
	}
	v := r.strings[0]
	r.strings = r.strings[1:]
	return v
}

// QueueIntn appends values for Intn to return
func (r *MockRandom) QueueIntn(values ...int) {
	r.ints = append(r.ints, values...)
}

// QueueString appends values for String to return
func (r *MockRandom) QueueString(values ...string) {
	r.strings = append(r.strings, values...)
}

// Reset clears both queues
func (r *MockRandom) Reset() {
	r.ints = nil
	r.strings = nil
}
