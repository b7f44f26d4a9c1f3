package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomFull        = errors.New("room is full")
	ErrRoomNotJoinable = errors.New("room is not joinable")
	ErrRoomClosed      = errors.New("room is closed")
	ErrInvalidPasscode = errors.New("invalid room passcode")
	ErrInvalidMode     = errors.New("invalid game mode")

	// Membership errors
	ErrNotInRoom = errors.New("player is not in room")
	ErrNotHost   = errors.New("player is not the host")
	ErrSpectator = errors.New("spectators cannot perform this action")

	// Game errors
	ErrGameNotStarted      = errors.New("game has not started")
	ErrGameInProgress      = errors.New("game is already in progress")
	ErrNotYourTurn         = errors.New("not this player's turn")
	ErrInsufficientPlayers = errors.New("at least two players are required")
	ErrNotReady            = errors.New("not all players are ready")

	// Cell errors
	ErrInvalidCell  = errors.New("invalid cell position")
	ErrCellBlocked  = errors.New("cell is not writable")
	ErrInvalidValue = errors.New("cell value must be a single letter or empty")

	// Chat and reaction errors
	ErrEmptyMessage = errors.New("message text is empty")
	ErrInvalidEmoji = errors.New("emoji is not in the allowed set")

	// Puzzle errors
	ErrPuzzleNotFound = errors.New("puzzle not found")
	ErrInvalidPuzzle  = errors.New("puzzle data is invalid")
)
