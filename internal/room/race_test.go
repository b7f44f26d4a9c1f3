package room

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/crosswirehq/crosswire/internal/dependencies/mocks"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

type RaceSuite struct {
	suite.Suite
	clock  *mocks.MockClock
	puzzle *model.Puzzle
	state  *State
}

func TestRaceSuite(t *testing.T) {
	suite.Run(t, new(RaceSuite))
}

func (s *RaceSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.puzzle = testPuzzle()
	s.state = NewState(model.Room{
		Code:      "RACE01",
		Mode:      model.ModeRace,
		State:     model.RoomStateLobby,
		Config:    model.DefaultRoomConfig(),
		PuzzleID:  s.puzzle.ID,
		HostID:    "p1",
		CreatedAt: s.clock.Now(),
	}, s.puzzle, s.clock)
}

func (s *RaceSuite) start(ids ...model.PlayerID) {
	for _, id := range ids {
		_, err := s.state.Join(id, string(id), &protocol.JoinRoom{})
		s.Require().NoError(err)
	}
	for _, id := range ids {
		_, err := s.state.SetReady(id, true)
		s.Require().NoError(err)
	}
	_, err := s.state.Start(ids[0])
	s.Require().NoError(err)
}

func (s *RaceSuite) solveAll(id model.PlayerID) []Event {
	var last []Event
	for y, row := range s.puzzle.Solution {
		for x, r := range row {
			if r == model.BlockRune {
				continue
			}
			events, err := s.state.CellUpdate(id, &protocol.CellUpdate{X: x, Y: y, Value: string(r)})
			s.Require().NoError(err)
			last = events
		}
	}
	return last
}

func (s *RaceSuite) TestWriteEchoesToSenderOnly() {
	s.start("p1", "p2")

	events, err := s.state.CellUpdate("p1", &protocol.CellUpdate{X: 0, Y: 0, Value: "C"})
	s.Require().NoError(err)

	updated, ev := findMsg[protocol.CellUpdated](s.T(), events)
	s.Equal(model.PlayerID("p1"), ev.To)
	s.Equal("C", updated.Value)

	progress, ev := findMsg[protocol.RaceProgress](s.T(), events)
	s.Equal(model.PlayerID(""), ev.To)
	s.Equal(model.PlayerID("p1"), progress.PlayerID)
	s.InDelta(1.0/8.0, progress.Percent, 1e-9)
}

func (s *RaceSuite) TestGridsAreIndependent() {
	s.start("p1", "p2")

	s.state.CellUpdate("p1", &protocol.CellUpdate{X: 0, Y: 0, Value: "C"})
	events, err := s.state.CellUpdate("p2", &protocol.CellUpdate{X: 0, Y: 0, Value: "X"})
	s.Require().NoError(err)

	// p2's wrong letter does not affect p1's progress
	progress, _ := findMsg[protocol.RaceProgress](s.T(), events)
	s.InDelta(0, progress.Percent, 1e-9)
	s.Equal("C", s.state.grids["p1"].ValueAt(model.Coord{X: 0, Y: 0}))
	s.Equal("X", s.state.grids["p2"].ValueAt(model.Coord{X: 0, Y: 0}))
}

func (s *RaceSuite) TestSnapshotShowsOwnGridAndAllProgress() {
	s.start("p1", "p2")
	s.state.CellUpdate("p1", &protocol.CellUpdate{X: 0, Y: 0, Value: "C"})
	s.state.CellUpdate("p2", &protocol.CellUpdate{X: 0, Y: 0, Value: "X"})

	events, err := s.state.Join("p2", "p2", &protocol.JoinRoom{})
	s.Require().NoError(err)
	snap, _ := findMsg[protocol.RoomState](s.T(), events)

	s.Require().Len(snap.Cells, 1)
	s.Equal("X", snap.Cells[0].Value)
	s.InDelta(1.0/8.0, snap.Progress["p1"], 1e-9)
	s.InDelta(0, snap.Progress["p2"], 1e-9)
}

func (s *RaceSuite) TestSequentialRanks() {
	s.start("p1", "p2", "p3")

	events := s.solveAll("p1")
	finished, _ := findMsg[protocol.PlayerFinished](s.T(), events)
	s.Equal(1, finished.Rank)
	s.Equal(s.clock.Now(), finished.FinishedAt)

	s.clock.Advance(30 * time.Second)
	events = s.solveAll("p2")
	finished, _ = findMsg[protocol.PlayerFinished](s.T(), events)
	s.Equal(2, finished.Rank)

	// Two finished, one still solving: room stays active
	s.Equal(model.RoomStateActive, s.state.Room().State)
}

func (s *RaceSuite) TestRankIsImmutable() {
	s.start("p1", "p2")
	s.solveAll("p1")
	s.Equal(1, s.state.Player("p1").Rank)

	// Clearing a cell and refilling it must not hand out a second rank
	_, err := s.state.CellUpdate("p1", &protocol.CellUpdate{X: 0, Y: 0, Value: ""})
	s.Require().NoError(err)
	events, err := s.state.CellUpdate("p1", &protocol.CellUpdate{X: 0, Y: 0, Value: "C"})
	s.Require().NoError(err)

	for _, ev := range events {
		_, isFinished := ev.Msg.(protocol.PlayerFinished)
		s.False(isFinished)
	}
	s.Equal(1, s.state.Player("p1").Rank)
}

func (s *RaceSuite) TestCompletionWhenAllFinish() {
	s.start("p1", "p2")
	s.solveAll("p1")

	s.clock.Advance(time.Minute)
	events := s.solveAll("p2")

	completed, _ := findMsg[protocol.PuzzleCompleted](s.T(), events)
	s.Require().Len(completed.Ranks, 2)
	s.Equal(model.PlayerID("p1"), completed.Ranks[0].PlayerID)
	s.Equal(1, completed.Ranks[0].Rank)
	s.Equal(model.PlayerID("p2"), completed.Ranks[1].PlayerID)
	s.Equal(2, completed.Ranks[1].Rank)

	result := s.state.PendingCompletion()
	s.Require().NotNil(result)
	s.Equal(completed.Ranks, result.Ranks)
}

func (s *RaceSuite) TestAbandonedPlayerDoesNotBlockCompletion() {
	s.start("p1", "p2")
	s.solveAll("p1")

	s.state.Disconnect("p2")
	s.clock.Advance(s.state.Room().Config.DisconnectGrace)

	events := s.state.GraceExpired("p2")
	findMsg[protocol.PuzzleCompleted](s.T(), events)
	s.Equal(model.RoomStateCompleted, s.state.Room().State)
}

func (s *RaceSuite) TestDisconnectWithinGraceBlocksCompletion() {
	s.start("p1", "p2")
	s.state.Disconnect("p2")

	events := s.solveAll("p1")
	for _, ev := range events {
		_, isCompleted := ev.Msg.(protocol.PuzzleCompleted)
		s.False(isCompleted)
	}
	s.Equal(model.RoomStateActive, s.state.Room().State)
}

func (s *RaceSuite) TestLateSpectatorCannotWrite() {
	s.start("p1", "p2")

	_, err := s.state.Join("p3", "p3", &protocol.JoinRoom{Spectator: true})
	s.Require().NoError(err)
	_, err = s.state.CellUpdate("p3", &protocol.CellUpdate{X: 0, Y: 0, Value: "C"})
	s.ErrorIs(err, model.ErrSpectator)
}

func (s *RaceSuite) TestHintCountsTowardProgress() {
	s.start("p1", "p2")

	events, err := s.state.RequestHint("p1", &protocol.RequestHint{X: 0, Y: 0})
	s.Require().NoError(err)

	updated, _ := findMsg[protocol.CellUpdated](s.T(), events)
	s.Equal("C", updated.Value)
	s.True(updated.Hint)
	progress, _ := findMsg[protocol.RaceProgress](s.T(), events)
	s.InDelta(1.0/8.0, progress.Percent, 1e-9)
}
