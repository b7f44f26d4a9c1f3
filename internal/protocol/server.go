package protocol

import (
	"encoding/json"
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
)

// Server -> client message types
const (
	TypeRoomState       = "room_state"
	TypePlayerJoined    = "player_joined"
	TypePlayerLeft      = "player_left"
	TypePlayerReady     = "player_ready"
	TypeCellUpdated     = "cell_updated"
	TypeCursorMoved     = "cursor_moved"
	TypeNewMessage      = "new_message"
	TypeGameStarted     = "game_started"
	TypePuzzleCompleted = "puzzle_completed"
	TypeRaceProgress    = "race_progress"
	TypePlayerFinished  = "player_finished"
	TypeTurnChanged     = "turn_changed"
	TypeReactionAdded   = "reaction_added"
	TypeRoomDeleted     = "room_deleted"
	TypeError           = "error"
)

// ServerMessage is implemented by every outbound payload type
type ServerMessage interface {
	ServerType() string
}

// PlayerInfo is the wire representation of a room member
type PlayerInfo struct {
	ID           model.PlayerID `json:"id"`
	DisplayName  string         `json:"display_name"`
	Color        string         `json:"color"`
	Status       string         `json:"status"`
	Ready        bool           `json:"ready"`
	Spectator    bool           `json:"spectator"`
	IsHost       bool           `json:"is_host"`
	Contribution float64        `json:"contribution,omitempty"`
	Rank         int            `json:"rank,omitempty"`
	FinishedAt   *time.Time     `json:"finished_at,omitempty"`
}

// CellInfo is one filled cell in a snapshot
type CellInfo struct {
	X      int            `json:"x"`
	Y      int            `json:"y"`
	Value  string         `json:"value"`
	Writer model.PlayerID `json:"writer"`
}

// TurnInfo is the relay turn state in a snapshot or turn_changed event
type TurnInfo struct {
	Order         []model.PlayerID `json:"order"`
	ActivePlayer  model.PlayerID   `json:"active_player"`
	Deadline      time.Time        `json:"deadline"`
	WordsThisTurn int              `json:"words_this_turn"`
}

// CursorInfo is one player's cursor position
type CursorInfo struct {
	PlayerID model.PlayerID `json:"player_id"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
}

// RoomState is the full snapshot sent to one connection on join and
// reconnect. It is always sufficient to recover from a transient disconnect
// without replaying history.
type RoomState struct {
	Code      model.RoomCode  `json:"code"`
	Mode      model.Mode      `json:"mode"`
	State     model.RoomState `json:"state"`
	Capacity  int             `json:"capacity"`
	PuzzleID  model.PuzzleID  `json:"puzzle_id"`
	Width     int             `json:"width"`
	Height    int             `json:"height"`
	Blocks    []model.Coord   `json:"blocks"`
	You       model.PlayerID  `json:"you"`
	Players   []PlayerInfo    `json:"players"`
	// Cells is the shared grid (collaborative/relay) or the recipient's own
	// grid (race)
	Cells     []CellInfo                     `json:"cells"`
	Progress  map[model.PlayerID]float64     `json:"progress,omitempty"` // Race mode
	Turn      *TurnInfo                      `json:"turn,omitempty"`     // Relay mode
	Chat      []model.ChatMessage            `json:"chat"`
	Reactions map[model.ClueID]ReactionTally `json:"reactions,omitempty"`
	Cursors   []CursorInfo                   `json:"cursors,omitempty"`
}

// ReactionTally is the aggregate emoji counts for one clue
type ReactionTally map[model.Emoji]int

// PlayerJoined announces a new or reconnected member
type PlayerJoined struct {
	Player PlayerInfo `json:"player"`
}

// PlayerLeft announces a departure or disconnect. NewHost is set when the
// host role was reassigned as a result.
type PlayerLeft struct {
	PlayerID model.PlayerID `json:"player_id"`
	Reason   string         `json:"reason"` // "left" or "disconnected"
	NewHost  model.PlayerID `json:"new_host,omitempty"`
}

// PlayerReady announces a ready-flag change in the lobby
type PlayerReady struct {
	PlayerID model.PlayerID `json:"player_id"`
	Ready    bool           `json:"ready"`
}

// CellUpdated broadcasts an accepted cell write with attribution.
// Contributions is included in collaborative mode.
type CellUpdated struct {
	X             int                        `json:"x"`
	Y             int                        `json:"y"`
	Value         string                     `json:"value"`
	Writer        model.PlayerID             `json:"writer"`
	Hint          bool                       `json:"hint,omitempty"`
	Contributions map[model.PlayerID]float64 `json:"contributions,omitempty"`
	// WordsThisTurn reports the relay per-turn word counter
	WordsThisTurn int `json:"words_this_turn,omitempty"`
}

// CursorMoved broadcasts a cursor position
type CursorMoved struct {
	PlayerID model.PlayerID `json:"player_id"`
	X        int            `json:"x"`
	Y        int            `json:"y"`
}

// NewMessage broadcasts a chat message
type NewMessage struct {
	Message model.ChatMessage `json:"message"`
}

// GameStarted announces the lobby -> active transition
type GameStarted struct {
	Mode      model.Mode `json:"mode"`
	StartedAt time.Time  `json:"started_at"`
	Turn      *TurnInfo  `json:"turn,omitempty"` // Relay mode
}

// PuzzleCompleted announces the room-level completion condition
type PuzzleCompleted struct {
	Mode          model.Mode                 `json:"mode"`
	CompletedAt   time.Time                  `json:"completed_at"`
	Contributions map[model.PlayerID]float64 `json:"contributions,omitempty"`
	Ranks         []model.RankEntry          `json:"ranks,omitempty"`
}

// RaceProgress broadcasts one player's correctness percentage
type RaceProgress struct {
	PlayerID model.PlayerID `json:"player_id"`
	Percent  float64        `json:"percent"`
}

// PlayerFinished announces a race finish with its immutable rank
type PlayerFinished struct {
	PlayerID   model.PlayerID `json:"player_id"`
	Rank       int            `json:"rank"`
	FinishedAt time.Time      `json:"finished_at"`
}

// TurnChanged announces a relay turn advance
type TurnChanged struct {
	ActivePlayer model.PlayerID `json:"active_player"`
	Deadline     time.Time      `json:"deadline"`
	Reason       string         `json:"reason"` // "pass" or "timeout"
}

// ReactionAdded broadcasts the recomputed tally after a toggle
type ReactionAdded struct {
	ClueID   model.ClueID   `json:"clue_id"`
	PlayerID model.PlayerID `json:"player_id"`
	Emoji    model.Emoji    `json:"emoji"`
	Removed  bool           `json:"removed"`
	Counts   ReactionTally  `json:"counts"`
}

// RoomDeleted announces that the room has been torn down
type RoomDeleted struct {
	Reason string `json:"reason"`
}

// Error is an inline per-message failure, sent only to the offending sender
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (RoomState) ServerType() string       { return TypeRoomState }
func (PlayerJoined) ServerType() string    { return TypePlayerJoined }
func (PlayerLeft) ServerType() string      { return TypePlayerLeft }
func (PlayerReady) ServerType() string     { return TypePlayerReady }
func (CellUpdated) ServerType() string     { return TypeCellUpdated }
func (CursorMoved) ServerType() string     { return TypeCursorMoved }
func (NewMessage) ServerType() string      { return TypeNewMessage }
func (GameStarted) ServerType() string     { return TypeGameStarted }
func (PuzzleCompleted) ServerType() string { return TypePuzzleCompleted }
func (RaceProgress) ServerType() string    { return TypeRaceProgress }
func (PlayerFinished) ServerType() string  { return TypePlayerFinished }
func (TurnChanged) ServerType() string     { return TypeTurnChanged }
func (ReactionAdded) ServerType() string   { return TypeReactionAdded }
func (RoomDeleted) ServerType() string     { return TypeRoomDeleted }
func (Error) ServerType() string           { return TypeError }

// EncodeServer wraps a server message in its envelope and marshals it
func EncodeServer(msg ServerMessage) ([]byte, error) {
	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: msg.ServerType(), Payload: payload})
}

// DecodeServer parses a raw frame into its envelope; the CLI client and
// tests use this to inspect event streams without a full type registry.
func DecodeServer(data []byte) (*Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, err
	}
	return &env, nil
}
