package model

import "time"

// RoomCode is a short public identifier for joining rooms.
// Codes are case-insensitive; they are normalized to upper case at the edges.
type RoomCode string

// Mode selects the rule set a room plays under
type Mode string

const (
	ModeCollaborative Mode = "collaborative" // One shared grid, everyone writes
	ModeRace          Mode = "race"          // Independent grids, ranked finish
	ModeRelay         Mode = "relay"         // Shared grid, turn-based writes
)

// ValidMode reports whether m is a known mode
func ValidMode(m Mode) bool {
	switch m {
	case ModeCollaborative, ModeRace, ModeRelay:
		return true
	}
	return false
}

// RoomState represents the lifecycle state of a room
type RoomState string

const (
	RoomStateLobby     RoomState = "lobby"     // Waiting for players and a start action
	RoomStateActive    RoomState = "active"    // Puzzle in progress
	RoomStateCompleted RoomState = "completed" // Completion condition met
	RoomStateClosed    RoomState = "closed"    // Torn down
)

// RoomConfig holds configurable settings for a room
type RoomConfig struct {
	// Capacity is the maximum number of non-spectator players
	Capacity int
	// PasscodeHash is a bcrypt hash of the room passcode; empty for public rooms
	PasscodeHash string
	// DisconnectGrace is how long a disconnected player's slot is held before
	// host reassignment (and before a disconnect counts as permanent in race mode)
	DisconnectGrace time.Duration
	// EmptyGrace is how long an empty room survives before teardown
	EmptyGrace time.Duration
	// TurnDuration is the relay turn deadline
	TurnDuration time.Duration
}

// DefaultRoomConfig returns the default room configuration
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		Capacity:        8,
		DisconnectGrace: 30 * time.Second,
		EmptyGrace:      30 * time.Second,
		TurnDuration:    60 * time.Second,
	}
}

// Room holds the identifying and lifecycle data for one session
type Room struct {
	Code        RoomCode
	Mode        Mode
	State       RoomState
	Config      RoomConfig
	PuzzleID    PuzzleID
	HostID      PlayerID
	CreatedAt   time.Time
	StartedAt   time.Time
	CompletedAt time.Time
}
