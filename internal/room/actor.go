package room

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crosswirehq/crosswire/internal/completion"
	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// Conn is one attached connection's outbound side. Send must never block:
// implementations queue into a bounded buffer and report false when the
// message was dropped.
type Conn interface {
	Send(data []byte) bool
	Close()
}

const inboxSize = 256

// Actor is the exclusive owner of one room's State. All mutations flow
// through its inbox and are applied one at a time in arrival order, which
// is what gives the room a total order over player actions. Nothing outside
// the actor goroutine ever touches the State.
type Actor struct {
	code   model.RoomCode
	state  *State
	clock  clock.Clock
	sink   completion.Sink
	logger *slog.Logger

	inbox chan command
	done  chan struct{}

	// onTerminate tells the registry to forget this room; called once,
	// after the run loop has stopped accepting work
	onTerminate func(model.RoomCode)

	// Everything below is owned by the run goroutine
	conns        map[model.PlayerID]Conn
	graceCancels map[model.PlayerID]func()
	turnCancel   func()
	turnDeadline time.Time
	emptyCancel  func()

	terminateOnce sync.Once
}

type command interface{}

type inboundCmd struct {
	conn        Conn
	playerID    model.PlayerID
	displayName string
	msg         protocol.ClientMessage
}

type detachCmd struct {
	conn     Conn
	playerID model.PlayerID
}

type deadlineCmd struct{ deadline time.Time }
type graceCmd struct{ playerID model.PlayerID }
type emptyCmd struct{}
type lingerCmd struct{}

type stopCmd struct{}

type closeCmd struct {
	playerID model.PlayerID
	reply    chan error
}

type infoCmd struct {
	reply chan Info
}

// Info is a read-only room summary for the REST layer
type Info struct {
	Code      model.RoomCode  `json:"code"`
	Mode      model.Mode      `json:"mode"`
	State     model.RoomState `json:"state"`
	PuzzleID  model.PuzzleID  `json:"puzzle_id"`
	HostID    model.PlayerID  `json:"host_id"`
	Capacity  int             `json:"capacity"`
	Players   int             `json:"players"`
	Connected int             `json:"connected"`
	CreatedAt time.Time       `json:"created_at"`
	Private   bool            `json:"private"`
}

// NewActor creates the actor for a room. The caller must invoke Run on its
// own goroutine.
func NewActor(state *State, clk clock.Clock, sink completion.Sink, logger *slog.Logger, onTerminate func(model.RoomCode)) *Actor {
	code := state.Room().Code
	return &Actor{
		code:         code,
		state:        state,
		clock:        clk,
		sink:         sink,
		logger:       logger.With(slog.String("room", string(code))),
		inbox:        make(chan command, inboxSize),
		done:         make(chan struct{}),
		onTerminate:  onTerminate,
		conns:        make(map[model.PlayerID]Conn),
		graceCancels: make(map[model.PlayerID]func()),
	}
}

// Code returns the room's public code
func (a *Actor) Code() model.RoomCode {
	return a.code
}

// Run consumes the inbox until the room terminates
func (a *Actor) Run() {
	a.logger.Info("room actor started", slog.String("mode", string(a.state.Room().Mode)))
	for {
		select {
		case cmd := <-a.inbox:
			a.handle(cmd)
		case <-a.done:
			return
		}
	}
}

// Deliver routes one decoded client message into the room's inbox
func (a *Actor) Deliver(conn Conn, playerID model.PlayerID, displayName string, msg protocol.ClientMessage) {
	a.send(inboundCmd{conn: conn, playerID: playerID, displayName: displayName, msg: msg})
}

// Detach reports a dead or closed connection
func (a *Actor) Detach(conn Conn, playerID model.PlayerID) {
	a.send(detachCmd{conn: conn, playerID: playerID})
}

// Stop force-closes the room, broadcasting room_deleted first. Used on
// server shutdown.
func (a *Actor) Stop() {
	a.send(stopCmd{})
}

// Close tears the room down on behalf of its host
func (a *Actor) Close(ctx context.Context, playerID model.PlayerID) error {
	reply := make(chan error, 1)
	select {
	case a.inbox <- closeCmd{playerID: playerID, reply: reply}:
	case <-a.done:
		return model.ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-a.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Info returns a point-in-time summary, ordered after all prior mutations
func (a *Actor) Info(ctx context.Context) (Info, error) {
	reply := make(chan Info, 1)
	select {
	case a.inbox <- infoCmd{reply: reply}:
	case <-a.done:
		return Info{}, model.ErrRoomNotFound
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
	select {
	case info := <-reply:
		return info, nil
	case <-a.done:
		return Info{}, model.ErrRoomNotFound
	case <-ctx.Done():
		return Info{}, ctx.Err()
	}
}

func (a *Actor) send(cmd command) {
	select {
	case a.inbox <- cmd:
	case <-a.done:
	}
}

// handle applies one command. A panic here is an internal invariant
// violation: rather than leaving the room inconsistent, it is logged and
// the room is force-closed with a room_deleted broadcast.
func (a *Actor) handle(cmd command) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("invariant violation, force-closing room", slog.Any("panic", r))
			a.fanOut(a.state.Close("internal error"))
			a.terminate()
		}
	}()

	switch c := cmd.(type) {
	case inboundCmd:
		a.handleInbound(c)
	case detachCmd:
		a.handleDetach(c)
	case deadlineCmd:
		// A tick can already be queued when a pass or game end moves the
		// deadline; cancelTurnTimer cannot retract it. Only a tick for the
		// live deadline may advance the turn.
		if current, ok := a.state.TurnDeadline(); !ok || !c.deadline.Equal(current) {
			return
		}
		a.fanOut(a.state.DeadlineExpired())
		a.syncTurnTimer()
	case graceCmd:
		delete(a.graceCancels, c.playerID)
		a.fanOut(a.state.GraceExpired(c.playerID))
		a.postProcess()
	case emptyCmd:
		a.emptyCancel = nil
		if len(a.conns) == 0 {
			a.logger.Info("room empty past grace, tearing down")
			a.terminate()
		}
	case lingerCmd:
		a.terminate()
	case stopCmd:
		a.fanOut(a.state.Close("server shutting down"))
		a.terminate()
	case closeCmd:
		events, err := a.state.CloseByHost(c.playerID)
		c.reply <- err
		if err == nil {
			a.fanOut(events)
			a.terminate()
		}
	case infoCmd:
		c.reply <- a.info()
	}
}

func (a *Actor) handleInbound(c inboundCmd) {
	events, err := a.state.HandleMessage(c.playerID, c.displayName, c.msg)
	if err != nil {
		// Per-message errors go to the offending sender only
		if data, encErr := protocol.EncodeServer(ErrorReply(err)); encErr == nil {
			c.conn.Send(data)
		}
		return
	}

	switch c.msg.(type) {
	case *protocol.JoinRoom:
		// Bind (or rebind) the connection; a replaced connection is closed
		if old, ok := a.conns[c.playerID]; ok && old != c.conn {
			old.Close()
		}
		a.conns[c.playerID] = c.conn
		a.cancelGrace(c.playerID)
		a.cancelEmpty()
	case *protocol.LeaveRoom:
		delete(a.conns, c.playerID)
		a.cancelGrace(c.playerID)
		c.conn.Close()
		a.checkEmpty()
	}

	a.fanOut(events)
	a.postProcess()
	a.syncTurnTimer()
}

func (a *Actor) handleDetach(c detachCmd) {
	bound, ok := a.conns[c.playerID]
	if !ok || bound != c.conn {
		return
	}
	delete(a.conns, c.playerID)

	a.fanOut(a.state.Disconnect(c.playerID))

	grace := a.state.Room().Config.DisconnectGrace
	a.cancelGrace(c.playerID)
	a.graceCancels[c.playerID] = a.schedule(grace, graceCmd{playerID: c.playerID})

	a.checkEmpty()
}

// fanOut delivers events to attached connections. Delivery to one slow
// connection never blocks the others; Conn.Send queues or drops.
func (a *Actor) fanOut(events []Event) {
	for _, ev := range events {
		data, err := protocol.EncodeServer(ev.Msg)
		if err != nil {
			a.logger.Error("failed to encode event",
				slog.String("type", ev.Msg.ServerType()),
				slog.String("error", err.Error()))
			continue
		}

		if ev.To != "" {
			if conn, ok := a.conns[ev.To]; ok {
				conn.Send(data)
			}
			continue
		}
		for _, conn := range a.conns {
			conn.Send(data)
		}
	}
}

// postProcess handles side effects of a state transition: completion
// persistence and the completed room's linger-then-close timer.
func (a *Actor) postProcess() {
	result := a.state.PendingCompletion()
	if result == nil {
		return
	}

	a.logger.Info("room completed", slog.String("mode", string(result.Mode)))
	a.sink.PersistCompletion(result)

	a.cancelTurnTimer()
	a.schedule(a.state.Room().Config.EmptyGrace, lingerCmd{})
}

// syncTurnTimer re-arms the relay deadline timer whenever the deadline moves
func (a *Actor) syncTurnTimer() {
	deadline, ok := a.state.TurnDeadline()
	if !ok {
		a.cancelTurnTimer()
		return
	}
	if deadline.Equal(a.turnDeadline) {
		return
	}

	a.cancelTurnTimer()
	a.turnDeadline = deadline
	a.turnCancel = a.schedule(deadline.Sub(a.clock.Now()), deadlineCmd{deadline: deadline})
}

func (a *Actor) cancelTurnTimer() {
	if a.turnCancel != nil {
		a.turnCancel()
		a.turnCancel = nil
	}
	a.turnDeadline = time.Time{}
}

func (a *Actor) cancelGrace(playerID model.PlayerID) {
	if cancel, ok := a.graceCancels[playerID]; ok {
		cancel()
		delete(a.graceCancels, playerID)
	}
}

func (a *Actor) cancelEmpty() {
	if a.emptyCancel != nil {
		a.emptyCancel()
		a.emptyCancel = nil
	}
}

func (a *Actor) checkEmpty() {
	if len(a.conns) > 0 || a.emptyCancel != nil {
		return
	}
	a.emptyCancel = a.schedule(a.state.Room().Config.EmptyGrace, emptyCmd{})
}

// schedule arms a cancellable timer that posts cmd back into the inbox when
// it fires. Every timer is tied to the actor's lifetime, so a closed room
// cannot leak timers or receive stale ticks.
func (a *Actor) schedule(d time.Duration, cmd command) func() {
	timer := a.clock.NewTimer(d)
	cancelCh := make(chan struct{})

	go func() {
		select {
		case <-timer.C():
			select {
			case a.inbox <- cmd:
			case <-a.done:
			}
		case <-cancelCh:
			timer.Stop()
		case <-a.done:
			timer.Stop()
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() { close(cancelCh) })
	}
}

func (a *Actor) info() Info {
	room := a.state.Room()
	return Info{
		Code:      room.Code,
		Mode:      room.Mode,
		State:     room.State,
		PuzzleID:  room.PuzzleID,
		HostID:    room.HostID,
		Capacity:  room.Config.Capacity,
		Players:   a.state.playerCount(),
		Connected: a.state.ConnectedCount(),
		CreatedAt: room.CreatedAt,
		Private:   room.Config.PasscodeHash != "",
	}
}

// terminate stops the run loop and unregisters the room. Idempotent.
func (a *Actor) terminate() {
	a.terminateOnce.Do(func() {
		for _, conn := range a.conns {
			conn.Close()
		}
		a.conns = make(map[model.PlayerID]Conn)
		close(a.done)
		if a.onTerminate != nil {
			go a.onTerminate(a.code)
		}
		a.logger.Info("room actor stopped")
	})
}
