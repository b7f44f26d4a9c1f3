// Package protocol defines the wire envelope exchanged over a room
// connection and the closed set of typed messages it can carry.
//
// Every frame in both directions is a JSON envelope:
//
//	{ "type": "<message type>", "payload": { ... } }
//
// Inbound frames decode into one of the ClientMessage implementations;
// dispatch is an exhaustive type switch, so an unhandled kind is a
// compile-time-visible gap rather than a stray string comparison.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Envelope is the wire framing for all messages
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Decoding errors
var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrMalformedFrame = errors.New("malformed message frame")
)

// Client -> server message types
const (
	TypeJoinRoom    = "join_room"
	TypeLeaveRoom   = "leave_room"
	TypeCellUpdate  = "cell_update"
	TypeCursorMove  = "cursor_move"
	TypeSendMessage = "send_message"
	TypeReaction    = "reaction"
	TypeRequestHint = "request_hint"
	TypeStartGame   = "start_game"
	TypePassTurn    = "pass_turn"
	TypeSetReady    = "set_ready"
)

// ClientMessage is implemented by every inbound payload type
type ClientMessage interface {
	ClientType() string
}

// JoinRoom attaches the sender to the room, creating or reattaching the
// player entry keyed by their identity.
type JoinRoom struct {
	DisplayName string `json:"display_name"`
	Spectator   bool   `json:"spectator,omitempty"`
	Passcode    string `json:"passcode,omitempty"`
}

// LeaveRoom marks a deliberate exit
type LeaveRoom struct{}

// CellUpdate writes a single character to a cell; an empty value clears it
type CellUpdate struct {
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Value string `json:"value"`
}

// CursorMove reports the sender's cursor position
type CursorMove struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// SendMessage posts a chat message
type SendMessage struct {
	Text string `json:"text"`
}

// Reaction toggles an emoji reaction on a clue
type Reaction struct {
	ClueID string `json:"clue_id"`
	Emoji  string `json:"emoji"`
}

// RequestHint asks for one cell's solution letter to be revealed
type RequestHint struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// StartGame moves the room from lobby to active (host only)
type StartGame struct{}

// PassTurn ends the active player's relay turn early
type PassTurn struct{}

// SetReady toggles the sender's pre-start ready flag
type SetReady struct {
	Ready bool `json:"ready"`
}

func (JoinRoom) ClientType() string    { return TypeJoinRoom }
func (LeaveRoom) ClientType() string   { return TypeLeaveRoom }
func (CellUpdate) ClientType() string  { return TypeCellUpdate }
func (CursorMove) ClientType() string  { return TypeCursorMove }
func (SendMessage) ClientType() string { return TypeSendMessage }
func (Reaction) ClientType() string    { return TypeReaction }
func (RequestHint) ClientType() string { return TypeRequestHint }
func (StartGame) ClientType() string   { return TypeStartGame }
func (PassTurn) ClientType() string    { return TypePassTurn }
func (SetReady) ClientType() string    { return TypeSetReady }

// DecodeClient parses a raw frame into a typed client message
func DecodeClient(data []byte) (ClientMessage, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	return decodePayload(env)
}

func decodePayload(env Envelope) (ClientMessage, error) {
	var msg ClientMessage
	switch env.Type {
	case TypeJoinRoom:
		msg = &JoinRoom{}
	case TypeLeaveRoom:
		msg = &LeaveRoom{}
	case TypeCellUpdate:
		msg = &CellUpdate{}
	case TypeCursorMove:
		msg = &CursorMove{}
	case TypeSendMessage:
		msg = &SendMessage{}
	case TypeReaction:
		msg = &Reaction{}
	case TypeRequestHint:
		msg = &RequestHint{}
	case TypeStartGame:
		msg = &StartGame{}
	case TypePassTurn:
		msg = &PassTurn{}
	case TypeSetReady:
		msg = &SetReady{}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	if len(env.Payload) > 0 {
		if err := json.Unmarshal(env.Payload, msg); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
		}
	}
	return msg, nil
}
