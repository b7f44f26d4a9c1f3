package model

import "time"

// PlayerID uniquely identifies a player across the system
type PlayerID string

// ConnStatus is a room member's connection status
type ConnStatus string

const (
	StatusConnected    ConnStatus = "connected"
	StatusDisconnected ConnStatus = "disconnected"
)

// ColorPalette is the fixed set of player colors, assigned in order of
// availability. Its length bounds the useful room capacity.
var ColorPalette = []string{
	"#e6194b", "#3cb44b", "#4363d8", "#f58231",
	"#911eb4", "#42d4f4", "#f032e6", "#9a6324",
}

// Player is a room-scoped participant entry. It is created on join and
// survives disconnects; it is only removed when the room itself is torn down.
type Player struct {
	ID          PlayerID
	DisplayName string
	Color       string
	Status      ConnStatus
	Ready       bool // Meaningful only in the lobby state
	Spectator   bool
	JoinedAt    time.Time

	// DisconnectedAt is set while Status is disconnected, zero otherwise
	DisconnectedAt time.Time

	// Collaborative mode: fraction of fillable cells this player most
	// recently wrote, in [0, 1]
	Contribution float64

	// Race mode: finish rank (1-based, 0 = unfinished) and completion time.
	// Once assigned, both are immutable.
	Rank       int
	FinishedAt time.Time
}

// Connected reports whether the player currently has a live connection
func (p *Player) Connected() bool {
	return p.Status == StatusConnected
}
