package registry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/crosswirehq/crosswire/internal/completion"
	"github.com/crosswirehq/crosswire/internal/dependencies/mocks"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/puzzle"
	"github.com/crosswirehq/crosswire/internal/storage/memory"
	"github.com/crosswirehq/crosswire/internal/testutil"
)

type RegistrySuite struct {
	suite.Suite
	ctx      context.Context
	clock    *mocks.MockClock
	random   *mocks.MockRandom
	registry *Registry
}

func TestRegistrySuite(t *testing.T) {
	suite.Run(t, new(RegistrySuite))
}

func (s *RegistrySuite) SetupTest() {
	s.ctx = context.Background()
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.random = mocks.NewMockRandom()

	store := memory.New()
	logger := testutil.NopLogger()
	puzzles := puzzle.New(store, logger)
	s.Require().NoError(puzzles.Save(s.ctx, &model.Puzzle{
		ID:     "test-3x3",
		Title:  "Test 3x3",
		Width:  3,
		Height: 3,
		Solution: []string{
			"CAT",
			"A#O",
			"BEE",
		},
	}))

	s.registry = New(puzzles, s.clock, s.random, completion.New(store, logger), logger)
}

func (s *RegistrySuite) create(params CreateParams) model.RoomCode {
	actor, err := s.registry.Create(s.ctx, params)
	s.Require().NoError(err)
	return actor.Code()
}

func (s *RegistrySuite) TestCreateAssignsGeneratedCode() {
	s.random.QueueString("ABC234")

	code := s.create(CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "test-3x3"})

	s.Equal(model.RoomCode("ABC234"), code)
	s.Equal(1, s.registry.Count())

	actor, err := s.registry.Resolve("ABC234")
	s.Require().NoError(err)

	info, err := actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.ModeCollaborative, info.Mode)
	s.Equal(model.RoomStateLobby, info.State)
	s.Equal(model.PlayerID("p1"), info.HostID)
	s.Equal(model.PuzzleID("test-3x3"), info.PuzzleID)
	s.Equal(s.clock.Now(), info.CreatedAt)
}

func (s *RegistrySuite) TestCreateRetriesOnCodeCollision() {
	s.random.QueueString("AAAAAA", "AAAAAA", "BBB222")

	first := s.create(CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "test-3x3"})
	second := s.create(CreateParams{HostID: "p2", Mode: model.ModeRace, PuzzleID: "test-3x3"})

	s.Equal(model.RoomCode("AAAAAA"), first)
	s.Equal(model.RoomCode("BBB222"), second)
	s.Equal(2, s.registry.Count())
}

func (s *RegistrySuite) TestResolveIsCaseInsensitive() {
	s.random.QueueString("ABC234")
	s.create(CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "test-3x3"})

	actor, err := s.registry.Resolve("abc234")
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ABC234"), actor.Code())
}

func (s *RegistrySuite) TestResolveUnknownCode() {
	_, err := s.registry.Resolve("ZZZZZZ")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestCreateDefaultsToCollaborative() {
	s.random.QueueString("ABC234")

	actor, err := s.registry.Create(s.ctx, CreateParams{HostID: "p1", PuzzleID: "test-3x3"})
	s.Require().NoError(err)

	info, err := actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.ModeCollaborative, info.Mode)
}

func (s *RegistrySuite) TestCreateRejectsInvalidMode() {
	_, err := s.registry.Create(s.ctx, CreateParams{HostID: "p1", Mode: "battle", PuzzleID: "test-3x3"})
	s.ErrorIs(err, model.ErrInvalidMode)
	s.Equal(0, s.registry.Count())
}

func (s *RegistrySuite) TestCreateRejectsUnknownPuzzle() {
	_, err := s.registry.Create(s.ctx, CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "nope"})
	s.ErrorIs(err, model.ErrPuzzleNotFound)
}

func (s *RegistrySuite) TestCreateAppliesCapacityAndPasscode() {
	s.random.QueueString("ABC234")

	actor, err := s.registry.Create(s.ctx, CreateParams{
		HostID:   "p1",
		Mode:     model.ModeCollaborative,
		PuzzleID: "test-3x3",
		Capacity: 4,
		Passcode: "secret",
	})
	s.Require().NoError(err)

	info, err := actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(4, info.Capacity)
	s.True(info.Private)
}

func (s *RegistrySuite) TestTerminatedRoomIsForgotten() {
	s.random.QueueString("ABC234")
	actor, err := s.registry.Create(s.ctx, CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "test-3x3"})
	s.Require().NoError(err)

	s.Require().NoError(actor.Close(s.ctx, "p1"))

	s.Eventually(func() bool {
		return s.registry.Count() == 0
	}, time.Second, 5*time.Millisecond)

	_, err = s.registry.Resolve("ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *RegistrySuite) TestShutdownStopsAllRooms() {
	s.random.QueueString("AAAAAA", "BBB222")
	s.create(CreateParams{HostID: "p1", Mode: model.ModeCollaborative, PuzzleID: "test-3x3"})
	s.create(CreateParams{HostID: "p2", Mode: model.ModeRelay, PuzzleID: "test-3x3"})

	s.registry.Shutdown()

	s.Eventually(func() bool {
		return s.registry.Count() == 0
	}, time.Second, 5*time.Millisecond)
}
