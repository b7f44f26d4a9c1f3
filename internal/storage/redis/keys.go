package redis

import (
	"fmt"

	"github.com/crosswirehq/crosswire/internal/model"
)

// Key prefix for all engine data
const keyPrefix = "crosswire"

// sessionKey returns the Redis key for a Session
func sessionKey(token string) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, token)
}

// puzzleKey returns the Redis key for a Puzzle
func puzzleKey(id model.PuzzleID) string {
	return fmt.Sprintf("%s:puzzle:%s", keyPrefix, id)
}

// puzzleIndexKey returns the Redis key for the SET of known puzzle IDs
func puzzleIndexKey() string {
	return fmt.Sprintf("%s:idx:puzzles", keyPrefix)
}

// completionsKey returns the Redis key for a room's completion LIST
func completionsKey(code model.RoomCode) string {
	return fmt.Sprintf("%s:completions:%s", keyPrefix, code)
}
