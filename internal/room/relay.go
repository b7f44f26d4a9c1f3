package room

import (
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// relayEngine: one shared grid, writes restricted to the player at the
// current turn index, with a per-turn deadline and word counter.
type relayEngine struct{}

func (relayEngine) start(s *State, players []model.PlayerID, now time.Time) {
	s.turn = &model.TurnState{
		Order:    players,
		Deadline: now.Add(s.room.Config.TurnDuration),
	}
	s.solvedWords = make(map[model.WordSpan]bool)
}

func (relayEngine) applyCell(s *State, p *model.Player, c model.Coord, value string, hint bool) ([]Event, error) {
	if s.turn.ActivePlayer() != p.ID {
		return nil, model.ErrNotYourTurn
	}

	s.shared.Set(c, value, p.ID)

	// Re-evaluate word spans covering this cell. Completing a word counts
	// toward the per-turn tally (hints excepted) but never ends the turn.
	for _, w := range s.puzzle.Words() {
		if !spanContains(w, c) {
			continue
		}
		solved := s.shared.WordSolved(s.puzzle, w)
		switch {
		case solved && !s.solvedWords[w]:
			s.solvedWords[w] = true
			if !hint {
				s.turn.WordsThisTurn++
			}
		case !solved && s.solvedWords[w]:
			delete(s.solvedWords, w)
		}
	}

	events := []Event{broadcast(protocol.CellUpdated{
		X:             c.X,
		Y:             c.Y,
		Value:         value,
		Writer:        p.ID,
		Hint:          hint,
		WordsThisTurn: s.turn.WordsThisTurn,
	})}

	if s.shared.Solved(s.puzzle) {
		events = append(events, s.completeShared(nil)...)
	}
	return events, nil
}

func spanContains(w model.WordSpan, c model.Coord) bool {
	if w.Across {
		return c.Y == w.Y && c.X >= w.X && c.X < w.X+w.Len
	}
	return c.X == w.X && c.Y >= w.Y && c.Y < w.Y+w.Len
}
