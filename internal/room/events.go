package room

import (
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// Event is one outbound message produced by a state transition. An empty To
// means broadcast to every attached connection; otherwise it is delivered to
// that player's connection only.
type Event struct {
	To  model.PlayerID
	Msg protocol.ServerMessage
}

func broadcast(msg protocol.ServerMessage) Event {
	return Event{Msg: msg}
}

func to(player model.PlayerID, msg protocol.ServerMessage) Event {
	return Event{To: player, Msg: msg}
}
