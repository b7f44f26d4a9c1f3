package room

import (
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// collaborativeEngine: all players mutate one shared grid, last write wins,
// per-player contribution tracks who most recently wrote each cell.
type collaborativeEngine struct{}

func (collaborativeEngine) start(s *State, players []model.PlayerID, now time.Time) {
	// The shared grid exists from room creation; nothing mode-specific to set up
}

func (collaborativeEngine) applyCell(s *State, p *model.Player, c model.Coord, value string, hint bool) ([]Event, error) {
	s.shared.Set(c, value, p.ID)
	contributions := s.recomputeContributions()

	events := []Event{broadcast(protocol.CellUpdated{
		X:             c.X,
		Y:             c.Y,
		Value:         value,
		Writer:        p.ID,
		Hint:          hint,
		Contributions: contributions,
	})}

	if s.shared.Solved(s.puzzle) {
		events = append(events, s.completeShared(contributions)...)
	}
	return events, nil
}

// recomputeContributions returns each participant's share of the fillable
// cells they most recently wrote, and stores it on the player entries.
func (s *State) recomputeContributions() map[model.PlayerID]float64 {
	written := make(map[model.PlayerID]int)
	for _, cell := range s.shared {
		if cell.Value != "" {
			written[cell.Writer]++
		}
	}

	total := s.puzzle.FillableCells()
	contributions := make(map[model.PlayerID]float64, len(s.participants))
	for _, id := range s.participants {
		share := float64(written[id]) / float64(total)
		contributions[id] = share
		if p, ok := s.players[id]; ok {
			p.Contribution = share
		}
	}
	return contributions
}

// completeShared transitions a shared-grid room (collaborative or relay) to
// completed and records the result for the persistence collaborator.
func (s *State) completeShared(contributions map[model.PlayerID]float64) []Event {
	now := s.clock.Now()
	s.room.State = model.RoomStateCompleted
	s.room.CompletedAt = now

	s.completion = &model.CompletionResult{
		RoomCode:      s.room.Code,
		Mode:          s.room.Mode,
		PuzzleID:      s.room.PuzzleID,
		StartedAt:     s.room.StartedAt,
		CompletedAt:   now,
		Players:       s.participants,
		Contributions: contributions,
	}

	return []Event{broadcast(protocol.PuzzleCompleted{
		Mode:          s.room.Mode,
		CompletedAt:   now,
		Contributions: contributions,
	})}
}
