// Package room implements the authoritative state and processing for one
// multiplayer puzzle session.
//
// State is the synchronous core: plain methods that validate a single
// action, mutate room state, and return the outbound events it produced.
// It holds no locks and spawns no goroutines. Actor wraps a State in a
// single-consumer inbox loop, which is the only place State methods are
// called from once a room is live; that exclusivity is what gives a room
// its total order over mutations.
package room

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// Departure reasons carried in player_left events
const (
	reasonLeft         = "left"
	reasonDisconnected = "disconnected"
)

// State is the authoritative state of one room. It must only be mutated by
// a single owner; see Actor.
type State struct {
	room   model.Room
	puzzle *model.Puzzle
	clock  clock.Clock
	engine engine

	players   map[model.PlayerID]*model.Player
	joinOrder []model.PlayerID

	// Shared grid for collaborative and relay; per-player grids for race
	shared model.Grid
	grids  map[model.PlayerID]model.Grid

	turn        *model.TurnState
	solvedWords map[model.WordSpan]bool

	chat      *model.ChatHistory
	reactions model.Reactions
	cursors   map[model.PlayerID]model.Coord

	// participants is the set of non-spectator players snapshotted at start
	participants []model.PlayerID

	ranks    []model.RankEntry
	nextRank int

	// completion is set exactly once, on the transition to completed
	completion *model.CompletionResult
}

// NewState creates the state for a freshly created room
func NewState(room model.Room, puzzle *model.Puzzle, clk clock.Clock) *State {
	s := &State{
		room:      room,
		puzzle:    puzzle,
		clock:     clk,
		players:   make(map[model.PlayerID]*model.Player),
		shared:    model.NewGrid(),
		grids:     make(map[model.PlayerID]model.Grid),
		chat:      model.NewChatHistory(),
		reactions: model.NewReactions(),
		cursors:   make(map[model.PlayerID]model.Coord),
	}

	switch room.Mode {
	case model.ModeRace:
		s.engine = raceEngine{}
	case model.ModeRelay:
		s.engine = relayEngine{}
	default:
		s.engine = collaborativeEngine{}
	}

	return s
}

// Room returns a copy of the room's lifecycle record
func (s *State) Room() model.Room {
	return s.room
}

// Puzzle returns the room's puzzle
func (s *State) Puzzle() *model.Puzzle {
	return s.puzzle
}

// Player returns the member entry for id, or nil
func (s *State) Player(id model.PlayerID) *model.Player {
	return s.players[id]
}

// PendingCompletion returns the completion result once, if the room has
// completed since the last call.
func (s *State) PendingCompletion() *model.CompletionResult {
	result := s.completion
	s.completion = nil
	return result
}

// TurnDeadline returns the relay turn deadline, if one is active
func (s *State) TurnDeadline() (time.Time, bool) {
	if s.turn == nil || s.room.State != model.RoomStateActive {
		return time.Time{}, false
	}
	return s.turn.Deadline, true
}

// ConnectedCount returns the number of connected members
func (s *State) ConnectedCount() int {
	n := 0
	for _, p := range s.players {
		if p.Connected() {
			n++
		}
	}
	return n
}

// Join admits a player, or reattaches them if they already have an entry.
// Rejoining with an existing identity never duplicates the entry or resets
// progress; the joiner always receives a full room_state snapshot.
func (s *State) Join(id model.PlayerID, displayName string, msg *protocol.JoinRoom) ([]Event, error) {
	if s.room.State == model.RoomStateClosed {
		return nil, model.ErrRoomClosed
	}

	if existing, ok := s.players[id]; ok {
		// Reattach. A replayed join after a successful one lands here too,
		// which makes the operation idempotent.
		wasConnected := existing.Connected()
		existing.Status = model.StatusConnected
		existing.DisconnectedAt = time.Time{}

		events := []Event{to(id, s.snapshotFor(existing))}
		if !wasConnected {
			events = append(events, broadcast(protocol.PlayerJoined{Player: s.playerInfo(existing)}))
		}
		return events, nil
	}

	if s.room.Config.PasscodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.room.Config.PasscodeHash), []byte(msg.Passcode)); err != nil {
			return nil, model.ErrInvalidPasscode
		}
	}

	// New players may only enter the lobby; later arrivals can still watch
	if !msg.Spectator {
		if s.room.State != model.RoomStateLobby {
			return nil, model.ErrRoomNotJoinable
		}
		if s.playerCount() >= s.room.Config.Capacity {
			return nil, model.ErrRoomFull
		}
	} else if s.room.State != model.RoomStateLobby && s.room.State != model.RoomStateActive {
		return nil, model.ErrRoomNotJoinable
	}

	name := strings.TrimSpace(displayName)
	if name == "" {
		name = "anonymous"
	}

	player := &model.Player{
		ID:          id,
		DisplayName: name,
		Color:       s.assignColor(),
		Status:      model.StatusConnected,
		Spectator:   msg.Spectator,
		JoinedAt:    s.clock.Now(),
	}
	s.players[id] = player
	s.joinOrder = append(s.joinOrder, id)

	return []Event{
		to(id, s.snapshotFor(player)),
		broadcast(protocol.PlayerJoined{Player: s.playerInfo(player)}),
	}, nil
}

// Leave handles a deliberate exit. The player entry is retained so the
// identity can rejoin; only teardown removes entries.
func (s *State) Leave(id model.PlayerID) ([]Event, error) {
	player, ok := s.players[id]
	if !ok {
		return nil, model.ErrNotInRoom
	}
	return s.depart(player, reasonLeft), nil
}

// Disconnect handles a connection loss
func (s *State) Disconnect(id model.PlayerID) []Event {
	player, ok := s.players[id]
	if !ok || !player.Connected() {
		return nil
	}
	return s.depart(player, reasonDisconnected)
}

func (s *State) depart(player *model.Player, reason string) []Event {
	player.Status = model.StatusDisconnected
	player.DisconnectedAt = s.clock.Now()
	player.Ready = false
	delete(s.cursors, player.ID)

	left := protocol.PlayerLeft{PlayerID: player.ID, Reason: reason}

	// In the lobby the host role moves immediately; in an active room it
	// moves only once the disconnect grace expires (see GraceExpired).
	if s.room.HostID == player.ID && (s.room.State == model.RoomStateLobby || reason == reasonLeft) {
		if next := s.nextHost(); next != "" {
			s.room.HostID = next
			left.NewHost = next
		}
	}

	return []Event{broadcast(left)}
}

// GraceExpired handles a disconnect grace window running out for a player
// who never reconnected.
func (s *State) GraceExpired(id model.PlayerID) []Event {
	player, ok := s.players[id]
	if !ok || player.Connected() {
		return nil
	}

	var events []Event

	if s.room.HostID == id {
		if next := s.nextHost(); next != "" {
			s.room.HostID = next
			events = append(events, broadcast(protocol.PlayerLeft{
				PlayerID: id,
				Reason:   reasonDisconnected,
				NewHost:  next,
			}))
		}
	}

	// A permanent disconnect can satisfy race-mode room completion
	if s.room.Mode == model.ModeRace && s.room.State == model.RoomStateActive {
		events = append(events, s.checkRaceCompletion()...)
	}

	return events
}

// SetReady toggles the sender's pre-start ready flag
func (s *State) SetReady(id model.PlayerID, ready bool) ([]Event, error) {
	player, err := s.member(id)
	if err != nil {
		return nil, err
	}
	if s.room.State != model.RoomStateLobby {
		return nil, model.ErrGameInProgress
	}
	if player.Spectator {
		return nil, model.ErrSpectator
	}

	player.Ready = ready
	return []Event{broadcast(protocol.PlayerReady{PlayerID: id, Ready: ready})}, nil
}

// Start moves the room from lobby to active. Host only; requires at least
// two ready, connected, non-spectator players.
func (s *State) Start(id model.PlayerID) ([]Event, error) {
	if _, err := s.member(id); err != nil {
		return nil, err
	}
	if s.room.HostID != id {
		return nil, model.ErrNotHost
	}
	if s.room.State != model.RoomStateLobby {
		return nil, model.ErrGameInProgress
	}

	players := s.activePlayers()
	if len(players) < 2 {
		return nil, model.ErrInsufficientPlayers
	}
	for _, pid := range players {
		if !s.players[pid].Ready {
			return nil, model.ErrNotReady
		}
	}

	now := s.clock.Now()
	s.room.State = model.RoomStateActive
	s.room.StartedAt = now
	s.participants = players

	started := protocol.GameStarted{Mode: s.room.Mode, StartedAt: now}
	s.engine.start(s, players, now)
	if s.turn != nil {
		started.Turn = s.turnInfo()
	}

	return []Event{broadcast(started)}, nil
}

// CellUpdate applies a cell write through the room's mode engine
func (s *State) CellUpdate(id model.PlayerID, msg *protocol.CellUpdate) ([]Event, error) {
	player, c, err := s.validateWrite(id, msg.X, msg.Y)
	if err != nil {
		return nil, err
	}

	value := strings.ToUpper(strings.TrimSpace(msg.Value))
	if len(value) > 1 || (value != "" && (value[0] < 'A' || value[0] > 'Z')) {
		return nil, model.ErrInvalidValue
	}

	return s.engine.applyCell(s, player, c, value, false)
}

// RequestHint reveals one cell's solution letter, applied through the same
// authorization and write path as a normal update.
func (s *State) RequestHint(id model.PlayerID, msg *protocol.RequestHint) ([]Event, error) {
	player, c, err := s.validateWrite(id, msg.X, msg.Y)
	if err != nil {
		return nil, err
	}

	return s.engine.applyCell(s, player, c, s.puzzle.SolutionAt(c.X, c.Y), true)
}

// CursorMove records and broadcasts the sender's cursor position
func (s *State) CursorMove(id model.PlayerID, msg *protocol.CursorMove) ([]Event, error) {
	if _, err := s.member(id); err != nil {
		return nil, err
	}

	s.cursors[id] = model.Coord{X: msg.X, Y: msg.Y}
	return []Event{broadcast(protocol.CursorMoved{PlayerID: id, X: msg.X, Y: msg.Y})}, nil
}

// Chat appends a message to the bounded history and broadcasts it verbatim
func (s *State) Chat(id model.PlayerID, text string) ([]Event, error) {
	player, err := s.member(id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, model.ErrEmptyMessage
	}

	msg := model.ChatMessage{
		PlayerID:    id,
		DisplayName: player.DisplayName,
		Text:        text,
		SentAt:      s.clock.Now(),
	}
	s.chat.Append(msg)

	return []Event{broadcast(protocol.NewMessage{Message: msg})}, nil
}

// React toggles the sender's reaction on a clue and broadcasts the new tally
func (s *State) React(id model.PlayerID, msg *protocol.Reaction) ([]Event, error) {
	if _, err := s.member(id); err != nil {
		return nil, err
	}

	emoji := model.Emoji(msg.Emoji)
	if !model.ValidEmoji(emoji) {
		return nil, model.ErrInvalidEmoji
	}

	clue := model.ClueID(msg.ClueID)
	removed := s.reactions.Toggle(clue, id, emoji)

	return []Event{broadcast(protocol.ReactionAdded{
		ClueID:   clue,
		PlayerID: id,
		Emoji:    emoji,
		Removed:  removed,
		Counts:   s.reactions.Counts(clue),
	})}, nil
}

// PassTurn ends the active relay turn early
func (s *State) PassTurn(id model.PlayerID) ([]Event, error) {
	if _, err := s.member(id); err != nil {
		return nil, err
	}
	if s.room.Mode != model.ModeRelay || s.room.State != model.RoomStateActive {
		return nil, model.ErrGameNotStarted
	}
	if s.turn.ActivePlayer() != id {
		return nil, model.ErrNotYourTurn
	}

	return s.advanceTurn("pass"), nil
}

// DeadlineExpired advances the relay turn after its deadline elapsed
func (s *State) DeadlineExpired() []Event {
	if s.room.Mode != model.ModeRelay || s.room.State != model.RoomStateActive {
		return nil
	}
	return s.advanceTurn("timeout")
}

func (s *State) advanceTurn(reason string) []Event {
	s.turn.Advance(s.clock.Now().Add(s.room.Config.TurnDuration))
	return []Event{broadcast(protocol.TurnChanged{
		ActivePlayer: s.turn.ActivePlayer(),
		Deadline:     s.turn.Deadline,
		Reason:       reason,
	})}
}

// Close tears the room down, from any state
func (s *State) Close(reason string) []Event {
	if s.room.State == model.RoomStateClosed {
		return nil
	}
	s.room.State = model.RoomStateClosed
	return []Event{broadcast(protocol.RoomDeleted{Reason: reason})}
}

// CloseByHost tears the room down on explicit host action. The host does
// not need a live connection; room closure is also reachable over REST.
func (s *State) CloseByHost(id model.PlayerID) ([]Event, error) {
	if _, ok := s.players[id]; !ok && id != s.room.HostID {
		return nil, model.ErrNotInRoom
	}
	if s.room.HostID != id {
		return nil, model.ErrNotHost
	}
	return s.Close("closed by host"), nil
}

// Validation helpers

func (s *State) member(id model.PlayerID) (*model.Player, error) {
	player, ok := s.players[id]
	if !ok || !player.Connected() {
		return nil, model.ErrNotInRoom
	}
	return player, nil
}

func (s *State) validateWrite(id model.PlayerID, x, y int) (*model.Player, model.Coord, error) {
	player, err := s.member(id)
	if err != nil {
		return nil, model.Coord{}, err
	}
	if s.room.State != model.RoomStateActive {
		return nil, model.Coord{}, model.ErrGameNotStarted
	}
	if player.Spectator {
		return nil, model.Coord{}, model.ErrSpectator
	}
	if !s.puzzle.InBounds(x, y) {
		return nil, model.Coord{}, model.ErrInvalidCell
	}
	if s.puzzle.Blocked(x, y) {
		return nil, model.Coord{}, model.ErrCellBlocked
	}
	return player, model.Coord{X: x, Y: y}, nil
}

func (s *State) playerCount() int {
	n := 0
	for _, p := range s.players {
		if !p.Spectator {
			n++
		}
	}
	return n
}

// activePlayers returns the connected non-spectator players in join order
func (s *State) activePlayers() []model.PlayerID {
	var players []model.PlayerID
	for _, id := range s.joinOrder {
		p := s.players[id]
		if !p.Spectator && p.Connected() {
			players = append(players, id)
		}
	}
	return players
}

// nextHost picks the earliest-joined connected player other than the
// current host, or "" if none remain.
func (s *State) nextHost() model.PlayerID {
	for _, id := range s.joinOrder {
		p := s.players[id]
		if id != s.room.HostID && !p.Spectator && p.Connected() {
			return id
		}
	}
	return ""
}

func (s *State) assignColor() string {
	used := make(map[string]bool)
	for _, p := range s.players {
		used[p.Color] = true
	}
	for _, c := range model.ColorPalette {
		if !used[c] {
			return c
		}
	}
	// Palette exhausted (spectators past the palette size share the last color)
	return model.ColorPalette[len(model.ColorPalette)-1]
}
