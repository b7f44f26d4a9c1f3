package room

import (
	"errors"
	"fmt"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// HandleMessage routes one decoded client message to its handler. The
// switch is exhaustive over the closed message set; a new protocol type
// without a case here falls through to the unhandled error below, which
// only ever indicates a missing branch, not bad client input.
func (s *State) HandleMessage(sender model.PlayerID, displayName string, msg protocol.ClientMessage) ([]Event, error) {
	switch m := msg.(type) {
	case *protocol.JoinRoom:
		return s.Join(sender, displayName, m)
	case *protocol.LeaveRoom:
		return s.Leave(sender)
	case *protocol.CellUpdate:
		return s.CellUpdate(sender, m)
	case *protocol.CursorMove:
		return s.CursorMove(sender, m)
	case *protocol.SendMessage:
		return s.Chat(sender, m.Text)
	case *protocol.Reaction:
		return s.React(sender, m)
	case *protocol.RequestHint:
		return s.RequestHint(sender, m)
	case *protocol.StartGame:
		return s.Start(sender)
	case *protocol.PassTurn:
		return s.PassTurn(sender)
	case *protocol.SetReady:
		return s.SetReady(sender, m.Ready)
	default:
		return nil, fmt.Errorf("unhandled message type %q", msg.ClientType())
	}
}

// Error reply codes
const (
	codeUnauthorized   = "UNAUTHORIZED"
	codeNotYourTurn    = "NOT_YOUR_TURN"
	codeNotHost        = "NOT_HOST"
	codeRoomFull       = "ROOM_FULL"
	codeNotJoinable    = "ROOM_NOT_JOINABLE"
	codeBadPasscode    = "INVALID_PASSCODE"
	codeNotInRoom      = "NOT_IN_ROOM"
	codeInvalidCell    = "INVALID_CELL"
	codeInvalidRequest = "INVALID_REQUEST"
	codeWrongState     = "WRONG_STATE"
	codeInternal       = "INTERNAL_ERROR"
)

// ErrorReply converts a handler error into the protocol error sent back to
// the offending sender. Per-message failures are never broadcast.
func ErrorReply(err error) protocol.Error {
	code := codeInvalidRequest
	switch {
	case errors.Is(err, model.ErrNotYourTurn):
		code = codeNotYourTurn
	case errors.Is(err, model.ErrNotHost):
		code = codeNotHost
	case errors.Is(err, model.ErrSpectator):
		code = codeUnauthorized
	case errors.Is(err, model.ErrRoomFull):
		code = codeRoomFull
	case errors.Is(err, model.ErrRoomNotJoinable), errors.Is(err, model.ErrRoomClosed):
		code = codeNotJoinable
	case errors.Is(err, model.ErrInvalidPasscode):
		code = codeBadPasscode
	case errors.Is(err, model.ErrNotInRoom):
		code = codeNotInRoom
	case errors.Is(err, model.ErrInvalidCell), errors.Is(err, model.ErrCellBlocked),
		errors.Is(err, model.ErrInvalidValue):
		code = codeInvalidCell
	case errors.Is(err, model.ErrGameNotStarted), errors.Is(err, model.ErrGameInProgress),
		errors.Is(err, model.ErrInsufficientPlayers), errors.Is(err, model.ErrNotReady):
		code = codeWrongState
	case errors.Is(err, protocol.ErrUnknownType), errors.Is(err, protocol.ErrMalformedFrame),
		errors.Is(err, model.ErrEmptyMessage), errors.Is(err, model.ErrInvalidEmoji):
		code = codeInvalidRequest
	}
	return protocol.Error{Code: code, Message: err.Error()}
}
