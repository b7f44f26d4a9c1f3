package protocol

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/suite"
)

type ProtocolSuite struct {
	suite.Suite
}

func TestProtocolSuite(t *testing.T) {
	suite.Run(t, new(ProtocolSuite))
}

// DecodeClient tests

func (s *ProtocolSuite) TestDecodeJoinRoom() {
	msg, err := DecodeClient([]byte(`{"type":"join_room","payload":{"display_name":"Alice","spectator":true,"passcode":"pw"}}`))
	s.Require().NoError(err)

	join, ok := msg.(*JoinRoom)
	s.Require().True(ok)
	s.Equal("Alice", join.DisplayName)
	s.True(join.Spectator)
	s.Equal("pw", join.Passcode)
}

func (s *ProtocolSuite) TestDecodeCellUpdate() {
	msg, err := DecodeClient([]byte(`{"type":"cell_update","payload":{"x":2,"y":1,"value":"A"}}`))
	s.Require().NoError(err)

	update, ok := msg.(*CellUpdate)
	s.Require().True(ok)
	s.Equal(2, update.X)
	s.Equal(1, update.Y)
	s.Equal("A", update.Value)
}

func (s *ProtocolSuite) TestDecodePayloadlessTypes() {
	for _, frame := range []string{
		`{"type":"leave_room"}`,
		`{"type":"start_game"}`,
		`{"type":"pass_turn"}`,
	} {
		msg, err := DecodeClient([]byte(frame))
		s.Require().NoError(err, frame)
		s.NotNil(msg)
	}
}

func (s *ProtocolSuite) TestDecodeCoversEveryClientType() {
	types := []string{
		TypeJoinRoom, TypeLeaveRoom, TypeCellUpdate, TypeCursorMove,
		TypeSendMessage, TypeReaction, TypeRequestHint, TypeStartGame,
		TypePassTurn, TypeSetReady,
	}
	for _, t := range types {
		env, err := json.Marshal(Envelope{Type: t})
		s.Require().NoError(err)
		msg, err := DecodeClient(env)
		s.Require().NoError(err, t)
		s.Equal(t, msg.ClientType())
	}
}

func (s *ProtocolSuite) TestDecodeUnknownType() {
	_, err := DecodeClient([]byte(`{"type":"server_takeover","payload":{}}`))
	s.ErrorIs(err, ErrUnknownType)
}

func (s *ProtocolSuite) TestDecodeMalformedJSON() {
	_, err := DecodeClient([]byte(`{"type":"join_room","payload"`))
	s.ErrorIs(err, ErrMalformedFrame)
}

func (s *ProtocolSuite) TestDecodeMalformedPayload() {
	_, err := DecodeClient([]byte(`{"type":"cell_update","payload":{"x":"not a number"}}`))
	s.ErrorIs(err, ErrMalformedFrame)
}

// EncodeServer tests

func (s *ProtocolSuite) TestEncodeServerEnvelope() {
	data, err := EncodeServer(Error{Code: "NOT_HOST", Message: "player is not the host"})
	s.Require().NoError(err)

	env, err := DecodeServer(data)
	s.Require().NoError(err)
	s.Equal(TypeError, env.Type)

	var decoded Error
	s.Require().NoError(json.Unmarshal(env.Payload, &decoded))
	s.Equal("NOT_HOST", decoded.Code)
	s.Equal("player is not the host", decoded.Message)
}

func (s *ProtocolSuite) TestServerTypesAreDistinct() {
	msgs := []ServerMessage{
		RoomState{}, PlayerJoined{}, PlayerLeft{}, PlayerReady{},
		CellUpdated{}, CursorMoved{}, NewMessage{}, GameStarted{},
		PuzzleCompleted{}, RaceProgress{}, PlayerFinished{}, TurnChanged{},
		ReactionAdded{}, RoomDeleted{}, Error{},
	}
	seen := make(map[string]bool, len(msgs))
	for _, msg := range msgs {
		s.False(seen[msg.ServerType()], msg.ServerType())
		seen[msg.ServerType()] = true
	}
}
