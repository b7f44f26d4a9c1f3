package room

import (
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// raceEngine: each player fills an independent copy of the puzzle; finishing
// assigns the next sequential rank, irreversibly.
type raceEngine struct{}

func (raceEngine) start(s *State, players []model.PlayerID, now time.Time) {
	for _, id := range players {
		s.grids[id] = model.NewGrid()
	}
	s.nextRank = 1
}

func (raceEngine) applyCell(s *State, p *model.Player, c model.Coord, value string, hint bool) ([]Event, error) {
	grid, ok := s.grids[p.ID]
	if !ok {
		// Joined as a player but was not a participant at start
		return nil, model.ErrSpectator
	}

	grid.Set(c, value, p.ID)

	total := s.puzzle.FillableCells()
	correct := grid.CorrectCells(s.puzzle)
	percent := float64(correct) / float64(total)

	events := []Event{
		// The write itself echoes to the sender only; other players never
		// see the contents of a rival grid, just the progress figure.
		to(p.ID, protocol.CellUpdated{X: c.X, Y: c.Y, Value: value, Writer: p.ID, Hint: hint}),
		broadcast(protocol.RaceProgress{PlayerID: p.ID, Percent: percent}),
	}

	// Rank assignment is one-way: reaching 100% a second time (after
	// clearing and refilling a cell) must not reassign.
	if correct == total && p.Rank == 0 {
		now := s.clock.Now()
		p.Rank = s.nextRank
		p.FinishedAt = now
		s.nextRank++
		s.ranks = append(s.ranks, model.RankEntry{PlayerID: p.ID, Rank: p.Rank, FinishedAt: now})

		events = append(events, broadcast(protocol.PlayerFinished{
			PlayerID:   p.ID,
			Rank:       p.Rank,
			FinishedAt: now,
		}))
		events = append(events, s.checkRaceCompletion()...)
	}

	return events, nil
}

// checkRaceCompletion transitions to completed once every participant has
// finished or is permanently disconnected (grace elapsed).
func (s *State) checkRaceCompletion() []Event {
	if s.room.State != model.RoomStateActive || s.room.Mode != model.ModeRace {
		return nil
	}

	now := s.clock.Now()
	for _, id := range s.participants {
		p := s.players[id]
		if p.Rank > 0 {
			continue
		}
		if !p.Connected() && now.Sub(p.DisconnectedAt) >= s.room.Config.DisconnectGrace {
			continue
		}
		return nil
	}

	s.room.State = model.RoomStateCompleted
	s.room.CompletedAt = now

	s.completion = &model.CompletionResult{
		RoomCode:    s.room.Code,
		Mode:        s.room.Mode,
		PuzzleID:    s.room.PuzzleID,
		StartedAt:   s.room.StartedAt,
		CompletedAt: now,
		Players:     s.participants,
		Ranks:       s.ranks,
	}

	return []Event{broadcast(protocol.PuzzleCompleted{
		Mode:        s.room.Mode,
		CompletedAt: now,
		Ranks:       s.ranks,
	})}
}
