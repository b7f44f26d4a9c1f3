package model

import "time"

// RankEntry records one race-mode finish
type RankEntry struct {
	PlayerID   PlayerID  `json:"player_id"`
	Rank       int       `json:"rank"`
	FinishedAt time.Time `json:"finished_at"`
}

// CompletionResult is the record emitted once when a room reaches the
// completed state, consumed by the external persistence collaborator.
type CompletionResult struct {
	RoomCode    RoomCode             `json:"room_code"`
	Mode        Mode                 `json:"mode"`
	PuzzleID    PuzzleID             `json:"puzzle_id"`
	CompletedAt time.Time            `json:"completed_at"`
	StartedAt   time.Time            `json:"started_at"`
	Players     []PlayerID           `json:"players"`
	// Contributions is populated for collaborative mode
	Contributions map[PlayerID]float64 `json:"contributions,omitempty"`
	// Ranks is populated for race mode, in finish order
	Ranks []RankEntry `json:"ranks,omitempty"`
}
