package model

import "time"

// TurnState is the relay-mode rotation record. Invariant: exactly one
// player is active at any time; only that player's cell writes are accepted.
type TurnState struct {
	Order         []PlayerID // Join order at game start, fixed thereafter
	ActiveIdx     int
	Deadline      time.Time
	WordsThisTurn int
}

// ActivePlayer returns the player whose turn it is
func (t *TurnState) ActivePlayer() PlayerID {
	if len(t.Order) == 0 {
		return ""
	}
	return t.Order[t.ActiveIdx]
}

// Advance moves the turn to the next player in rotation, wrapping, and
// resets the per-turn word counter. The new deadline is deadline.
func (t *TurnState) Advance(deadline time.Time) {
	if len(t.Order) == 0 {
		return
	}
	t.ActiveIdx = (t.ActiveIdx + 1) % len(t.Order)
	t.Deadline = deadline
	t.WordsThisTurn = 0
}
