package factory

import (
	"context"
	"time"

	"github.com/crosswirehq/crosswire/internal/dependencies/mocks"
	"github.com/crosswirehq/crosswire/internal/identity"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage/memory"
	"github.com/crosswirehq/crosswire/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, mockClock, mockRandom, identity.DefaultConfig(), testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// SeedTestPuzzle stores a small solvable puzzle and returns its id
func (t *TestApp) SeedTestPuzzle() model.PuzzleID {
	p := &model.Puzzle{
		ID:     "test-3x3",
		Title:  "Test 3x3",
		Width:  3,
		Height: 3,
		Solution: []string{
			"CAT",
			"A#O",
			"BEE",
		},
	}
	if err := t.PuzzleService.Save(context.Background(), p); err != nil {
		panic(err)
	}
	return p.ID
}
