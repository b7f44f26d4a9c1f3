package room

import (
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/crosswirehq/crosswire/internal/dependencies/mocks"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
	"github.com/crosswirehq/crosswire/internal/testutil"
)

// fakeConn records outbound frames, standing in for a websocket client
type fakeConn struct {
	mu     sync.Mutex
	frames [][]byte
	closed bool
}

var _ Conn = (*fakeConn)(nil)

func (c *fakeConn) Send(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.frames = append(c.frames, data)
	return true
}

func (c *fakeConn) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// types returns the envelope type of every received frame, in order
func (c *fakeConn) types() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.frames))
	for _, frame := range c.frames {
		env, err := protocol.DecodeServer(frame)
		if err != nil {
			continue
		}
		out = append(out, env.Type)
	}
	return out
}

func (c *fakeConn) countType(msgType string) int {
	n := 0
	for _, t := range c.types() {
		if t == msgType {
			n++
		}
	}
	return n
}

// lastPayload unmarshals the most recent frame of the given type into dst
// and reports whether one was found
func (c *fakeConn) lastPayload(msgType string, dst any) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := len(c.frames) - 1; i >= 0; i-- {
		env, err := protocol.DecodeServer(c.frames[i])
		if err != nil || env.Type != msgType {
			continue
		}
		return json.Unmarshal(env.Payload, dst) == nil
	}
	return false
}

// fakeSink records persisted completion results
type fakeSink struct {
	mu      sync.Mutex
	results []*model.CompletionResult
}

func (s *fakeSink) PersistCompletion(result *model.CompletionResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
}

func (s *fakeSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.results)
}

type ActorSuite struct {
	suite.Suite
	clock      *mocks.MockClock
	sink       *fakeSink
	terminated chan model.RoomCode
	actor      *Actor
}

func TestActorSuite(t *testing.T) {
	suite.Run(t, new(ActorSuite))
}

func (s *ActorSuite) SetupTest() {
	s.clock = mocks.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	s.sink = &fakeSink{}
	s.terminated = make(chan model.RoomCode, 1)
	s.startActor(model.ModeCollaborative)
}

func (s *ActorSuite) startActor(mode model.Mode) {
	state := NewState(model.Room{
		Code:      "ROOM01",
		Mode:      mode,
		State:     model.RoomStateLobby,
		Config:    model.DefaultRoomConfig(),
		PuzzleID:  "test-3x3",
		HostID:    "p1",
		CreatedAt: s.clock.Now(),
	}, testPuzzle(), s.clock)

	s.actor = NewActor(state, s.clock, s.sink, testutil.NopLogger(), func(code model.RoomCode) {
		s.terminated <- code
	})
	go s.actor.Run()
}

// flush waits for every previously delivered command to be applied. Info
// replies are ordered after all prior inbox work, so it doubles as a
// synchronization barrier.
func (s *ActorSuite) flush() Info {
	info, err := s.actor.Info(context.Background())
	s.Require().NoError(err)
	return info
}

func (s *ActorSuite) join(conn *fakeConn, id model.PlayerID) {
	s.actor.Deliver(conn, id, string(id), &protocol.JoinRoom{})
	s.flush()
}

func (s *ActorSuite) deliver(conn *fakeConn, id model.PlayerID, msg protocol.ClientMessage) {
	s.actor.Deliver(conn, id, string(id), msg)
	s.flush()
}

func (s *ActorSuite) startGame(conn1, conn2 *fakeConn) {
	s.join(conn1, "p1")
	s.join(conn2, "p2")
	s.deliver(conn1, "p1", &protocol.SetReady{Ready: true})
	s.deliver(conn2, "p2", &protocol.SetReady{Ready: true})
	s.deliver(conn1, "p1", &protocol.StartGame{})
}

func (s *ActorSuite) eventuallyTerminated() {
	s.Eventually(func() bool {
		_, err := s.actor.Info(context.Background())
		return err != nil
	}, time.Second, 5*time.Millisecond)

	select {
	case code := <-s.terminated:
		s.Equal(model.RoomCode("ROOM01"), code)
	case <-time.After(time.Second):
		s.Fail("registry was never told to forget the room")
	}
}

func (s *ActorSuite) TestJoinDeliversSnapshotThenBroadcast() {
	conn := &fakeConn{}
	s.join(conn, "p1")

	s.Equal([]string{protocol.TypeRoomState, protocol.TypePlayerJoined}, conn.types())
}

func (s *ActorSuite) TestBroadcastReachesAllConnections() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.join(conn1, "p1")
	s.join(conn2, "p2")

	s.deliver(conn1, "p1", &protocol.SendMessage{Text: "hello"})

	s.Equal(1, conn1.countType(protocol.TypeNewMessage))
	s.Equal(1, conn2.countType(protocol.TypeNewMessage))
}

func (s *ActorSuite) TestErrorRepliesGoToSenderOnly() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.join(conn1, "p1")
	s.join(conn2, "p2")

	s.deliver(conn1, "p1", &protocol.SendMessage{Text: "   "})

	s.Equal(1, conn1.countType(protocol.TypeError))
	s.Equal(0, conn2.countType(protocol.TypeError))

	var reply protocol.Error
	s.Require().True(conn1.lastPayload(protocol.TypeError, &reply))
	s.Equal("INVALID_REQUEST", reply.Code)
}

func (s *ActorSuite) TestRejoinReplacesConnection() {
	conn1 := &fakeConn{}
	s.join(conn1, "p1")

	conn2 := &fakeConn{}
	s.join(conn2, "p1")

	s.True(conn1.isClosed())
	s.Equal(1, conn2.countType(protocol.TypeRoomState))

	// Broadcasts now land on the replacement only
	s.deliver(conn2, "p1", &protocol.SendMessage{Text: "hi"})
	s.Equal(0, conn1.countType(protocol.TypeNewMessage))
	s.Equal(1, conn2.countType(protocol.TypeNewMessage))
}

func (s *ActorSuite) TestDetachStartsGraceAndExpiryMovesHost() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.startGame(conn1, conn2)

	s.actor.Detach(conn1, "p1")
	info := s.flush()
	s.Equal(1, info.Connected)
	s.Equal(model.PlayerID("p1"), info.HostID)

	graceTimer := s.clock.LastTimer()
	s.Require().NotNil(graceTimer)
	s.Equal(model.DefaultRoomConfig().DisconnectGrace, graceTimer.Duration)

	s.clock.Advance(graceTimer.Duration)
	graceTimer.Fire()

	s.Eventually(func() bool {
		return s.flush().HostID == "p2"
	}, time.Second, 5*time.Millisecond)

	var left protocol.PlayerLeft
	s.Require().True(conn2.lastPayload(protocol.TypePlayerLeft, &left))
	s.Equal(model.PlayerID("p2"), left.NewHost)
}

func (s *ActorSuite) TestStaleDetachIsIgnored() {
	conn1 := &fakeConn{}
	s.join(conn1, "p1")
	conn2 := &fakeConn{}
	s.join(conn2, "p1")

	// The replaced connection's read loop reports its death late; the live
	// binding must survive it
	s.actor.Detach(conn1, "p1")
	info := s.flush()
	s.Equal(1, info.Connected)
}

func (s *ActorSuite) TestEmptyRoomTearsDownAfterGrace() {
	conn := &fakeConn{}
	s.join(conn, "p1")

	s.actor.Detach(conn, "p1")
	s.flush()

	// Detach arms the player grace timer first, then the empty-room timer
	emptyTimer := s.clock.LastTimer()
	s.Require().NotNil(emptyTimer)
	s.Equal(model.DefaultRoomConfig().EmptyGrace, emptyTimer.Duration)

	s.clock.Advance(emptyTimer.Duration)
	emptyTimer.Fire()

	s.eventuallyTerminated()
}

func (s *ActorSuite) TestRejoinKeepsEmptyRoomAlive() {
	conn := &fakeConn{}
	s.join(conn, "p1")
	s.actor.Detach(conn, "p1")
	s.flush()
	emptyTimer := s.clock.LastTimer()

	replacement := &fakeConn{}
	s.join(replacement, "p1")

	// A stale tick from the already-cancelled timer must not tear the
	// room down now that a connection is attached
	emptyTimer.Fire()

	s.Eventually(func() bool {
		return s.flush().Connected == 1
	}, time.Second, 5*time.Millisecond)
}

func (s *ActorSuite) TestLeaveRemovesConnection() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.join(conn1, "p1")
	s.join(conn2, "p2")

	s.deliver(conn1, "p1", &protocol.LeaveRoom{})

	s.True(conn1.isClosed())
	info := s.flush()
	s.Equal(1, info.Connected)
	s.Equal(model.PlayerID("p2"), info.HostID)
}

func (s *ActorSuite) TestCompletionPersistsAndRoomLingers() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.startGame(conn1, conn2)

	puzzle := testPuzzle()
	for y, row := range puzzle.Solution {
		for x, r := range row {
			if r == model.BlockRune {
				continue
			}
			s.deliver(conn1, "p1", &protocol.CellUpdate{X: x, Y: y, Value: string(r)})
		}
	}

	s.Equal(1, conn2.countType(protocol.TypePuzzleCompleted))
	s.Require().Equal(1, s.sink.count())
	s.Equal(model.RoomCode("ROOM01"), s.sink.results[0].RoomCode)

	// The room stays readable for a while, then tears down on its own
	info := s.flush()
	s.Equal(model.RoomStateCompleted, info.State)

	lingerTimer := s.clock.LastTimer()
	s.Require().NotNil(lingerTimer)
	s.clock.Advance(lingerTimer.Duration)
	lingerTimer.Fire()
	s.eventuallyTerminated()
}

func (s *ActorSuite) TestRelayDeadlineTimerAdvancesTurn() {
	s.startActor(model.ModeRelay)
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.startGame(conn1, conn2)

	turnTimer := s.clock.LastTimer()
	s.Require().NotNil(turnTimer)
	s.Equal(model.DefaultRoomConfig().TurnDuration, turnTimer.Duration)

	s.clock.Advance(turnTimer.Duration)
	turnTimer.Fire()

	var changed protocol.TurnChanged
	s.Eventually(func() bool {
		s.flush()
		return conn1.lastPayload(protocol.TypeTurnChanged, &changed)
	}, time.Second, 5*time.Millisecond)
	s.Equal(model.PlayerID("p2"), changed.ActivePlayer)
	s.Equal("timeout", changed.Reason)

	// The timer re-arms for the new deadline
	s.NotSame(turnTimer, s.clock.LastTimer())
}

func (s *ActorSuite) TestStaleDeadlineTickDoesNotSkipTurn() {
	s.startActor(model.ModeRelay)
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.startGame(conn1, conn2)

	staleDeadline, ok := s.actor.state.TurnDeadline()
	s.Require().True(ok)

	// The active player passes just as the deadline tick lands in the
	// inbox. The tick was armed for the old deadline and must be
	// discarded, not advance the turn a second time.
	s.clock.Advance(10 * time.Second)
	s.actor.Deliver(conn1, "p1", "p1", &protocol.PassTurn{})
	s.actor.send(deadlineCmd{deadline: staleDeadline})
	s.flush()

	s.Equal(1, conn2.countType(protocol.TypeTurnChanged))

	var changed protocol.TurnChanged
	s.Require().True(conn2.lastPayload(protocol.TypeTurnChanged, &changed))
	s.Equal(model.PlayerID("p2"), changed.ActivePlayer)
	s.Equal("pass", changed.Reason)

	deadline, ok := s.actor.state.TurnDeadline()
	s.Require().True(ok)
	s.Equal(s.clock.Now().Add(model.DefaultRoomConfig().TurnDuration), deadline)
}

func (s *ActorSuite) TestCloseRequiresHost() {
	conn1, conn2 := &fakeConn{}, &fakeConn{}
	s.join(conn1, "p1")
	s.join(conn2, "p2")

	err := s.actor.Close(context.Background(), "p2")
	s.ErrorIs(err, model.ErrNotHost)

	err = s.actor.Close(context.Background(), "p1")
	s.Require().NoError(err)

	s.Equal(1, conn2.countType(protocol.TypeRoomDeleted))
	s.True(conn1.isClosed())
	s.True(conn2.isClosed())
	s.eventuallyTerminated()
}

func (s *ActorSuite) TestStopBroadcastsAndTerminates() {
	conn := &fakeConn{}
	s.join(conn, "p1")

	s.actor.Stop()
	s.eventuallyTerminated()

	s.Equal(1, conn.countType(protocol.TypeRoomDeleted))
	s.True(conn.isClosed())
}

func (s *ActorSuite) TestInfoSummarizesRoom() {
	conn := &fakeConn{}
	s.join(conn, "p1")

	info := s.flush()
	s.Equal(model.RoomCode("ROOM01"), info.Code)
	s.Equal(model.ModeCollaborative, info.Mode)
	s.Equal(model.RoomStateLobby, info.State)
	s.Equal(model.PlayerID("p1"), info.HostID)
	s.Equal(1, info.Players)
	s.Equal(1, info.Connected)
	s.False(info.Private)
}
