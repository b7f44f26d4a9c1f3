package factory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
	"github.com/crosswirehq/crosswire/internal/registry"
	"github.com/crosswirehq/crosswire/internal/room"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

// recordingConn implements room.Conn for driving an actor without a socket
type recordingConn struct {
	mu     sync.Mutex
	frames [][]byte
}

func (c *recordingConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return true
}

func (c *recordingConn) Close() {}

func (c *recordingConn) sawType(msgType string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, frame := range c.frames {
		env, err := protocol.DecodeServer(frame)
		if err == nil && env.Type == msgType {
			return true
		}
	}
	return false
}

// Test: complete collaborative flow from room creation to persisted result
func (s *IntegrationSuite) TestCollaborativeRoomLifecycle() {
	puzzleID := s.app.SeedTestPuzzle()
	s.app.MockRandom.QueueString("ROOM01")

	// Step 1: Create the room
	actor, err := s.app.Registry.Create(s.ctx, registry.CreateParams{
		HostID:   "host",
		Mode:     model.ModeCollaborative,
		PuzzleID: puzzleID,
	})
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ROOM01"), actor.Code())
	s.Equal(1, s.app.Registry.Count())

	// Step 2: Both players connect and join
	hostConn, guestConn := &recordingConn{}, &recordingConn{}
	actor.Deliver(hostConn, "host", "Host Player", &protocol.JoinRoom{})
	actor.Deliver(guestConn, "guest", "Guest Player", &protocol.JoinRoom{})

	// Step 3: Ready up and start
	actor.Deliver(hostConn, "host", "Host Player", &protocol.SetReady{Ready: true})
	actor.Deliver(guestConn, "guest", "Guest Player", &protocol.SetReady{Ready: true})
	actor.Deliver(hostConn, "host", "Host Player", &protocol.StartGame{})

	info, err := actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.RoomStateActive, info.State)
	s.Equal(2, info.Connected)
	s.True(hostConn.sawType(protocol.TypeGameStarted))

	// Step 4: Solve the puzzle together, one player per row
	puzzle, err := s.app.PuzzleService.Get(s.ctx, puzzleID)
	s.Require().NoError(err)
	for y, rowStr := range puzzle.Solution {
		conn, id, name := hostConn, model.PlayerID("host"), "Host Player"
		if y%2 == 1 {
			conn, id, name = guestConn, "guest", "Guest Player"
		}
		for x, r := range rowStr {
			if r == model.BlockRune {
				continue
			}
			actor.Deliver(conn, id, name, &protocol.CellUpdate{X: x, Y: y, Value: string(r)})
		}
	}

	info, err = actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.RoomStateCompleted, info.State)
	s.True(guestConn.sawType(protocol.TypePuzzleCompleted))

	// Step 5: The result lands in storage via the completion sink
	s.Eventually(func() bool {
		results, err := s.app.Storage.ListCompletions(s.ctx, "ROOM01")
		return err == nil && len(results) == 1
	}, time.Second, 5*time.Millisecond)

	results, err := s.app.Storage.ListCompletions(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Equal(model.ModeCollaborative, results[0].Mode)
	s.Equal(puzzleID, results[0].PuzzleID)
	s.ElementsMatch([]model.PlayerID{"host", "guest"}, results[0].Players)
	s.InDelta(1.0, results[0].Contributions["host"]+results[0].Contributions["guest"], 1e-9)
}

// Test: race flow produces ranked results
func (s *IntegrationSuite) TestRaceRoomProducesRanks() {
	puzzleID := s.app.SeedTestPuzzle()
	s.app.MockRandom.QueueString("RACE01")

	actor, err := s.app.Registry.Create(s.ctx, registry.CreateParams{
		HostID:   "host",
		Mode:     model.ModeRace,
		PuzzleID: puzzleID,
	})
	s.Require().NoError(err)

	hostConn, guestConn := &recordingConn{}, &recordingConn{}
	actor.Deliver(hostConn, "host", "Host Player", &protocol.JoinRoom{})
	actor.Deliver(guestConn, "guest", "Guest Player", &protocol.JoinRoom{})
	actor.Deliver(hostConn, "host", "Host Player", &protocol.SetReady{Ready: true})
	actor.Deliver(guestConn, "guest", "Guest Player", &protocol.SetReady{Ready: true})
	actor.Deliver(hostConn, "host", "Host Player", &protocol.StartGame{})

	puzzle, err := s.app.PuzzleService.Get(s.ctx, puzzleID)
	s.Require().NoError(err)
	solve := func(conn room.Conn, id model.PlayerID, name string) {
		for y, rowStr := range puzzle.Solution {
			for x, r := range rowStr {
				if r == model.BlockRune {
					continue
				}
				actor.Deliver(conn, id, name, &protocol.CellUpdate{X: x, Y: y, Value: string(r)})
			}
		}
	}

	solve(guestConn, "guest", "Guest Player")
	solve(hostConn, "host", "Host Player")

	info, err := actor.Info(s.ctx)
	s.Require().NoError(err)
	s.Equal(model.RoomStateCompleted, info.State)

	s.Eventually(func() bool {
		results, err := s.app.Storage.ListCompletions(s.ctx, "RACE01")
		return err == nil && len(results) == 1
	}, time.Second, 5*time.Millisecond)

	results, err := s.app.Storage.ListCompletions(s.ctx, "RACE01")
	s.Require().NoError(err)
	s.Require().Len(results[0].Ranks, 2)
	s.Equal(model.PlayerID("guest"), results[0].Ranks[0].PlayerID)
	s.Equal(1, results[0].Ranks[0].Rank)
	s.Equal(model.PlayerID("host"), results[0].Ranks[1].PlayerID)
	s.Equal(2, results[0].Ranks[1].Rank)
}

// Test: guest identity issued through the factory-wired service round-trips
func (s *IntegrationSuite) TestIdentityRoundTrip() {
	s.app.MockRandom.QueueString("token-1", "guestabcdef1")

	token, ident, err := s.app.IdentityService.IssueGuest(s.ctx, "Alice")
	s.Require().NoError(err)

	verified, err := s.app.IdentityService.Verify(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(ident.PlayerID, verified.PlayerID)

	// The raw session record is inspectable through storage
	session, err := s.app.Storage.GetSession(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(ident.PlayerID, session.PlayerID)
	s.Equal(s.app.MockClock.Now().Add(24*time.Hour), session.ExpiresAt)
}
