package room

import (
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
)

// engine is the mode-specific rule set layered on the shared room state.
// Callers have already validated membership, lifecycle state, spectator
// status, and cell bounds; the engine owns authorization beyond that
// (e.g. turn order), the write itself, and completion detection.
type engine interface {
	// start initializes mode-specific state at the lobby -> active transition
	start(s *State, players []model.PlayerID, now time.Time)

	// applyCell performs a validated cell write for player p
	applyCell(s *State, p *model.Player, c model.Coord, value string, hint bool) ([]Event, error)
}
