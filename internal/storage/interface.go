package storage

import (
	"context"
	"errors"
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
)

// Session is an issued identity token record
type Session struct {
	Token       string         `json:"token"`
	PlayerID    model.PlayerID `json:"player_id"`
	DisplayName string         `json:"display_name"`
	CreatedAt   time.Time      `json:"created_at"`
	ExpiresAt   time.Time      `json:"expires_at"`
}

// Storage defines the interface for data persistence.
//
// Room state is deliberately absent: live rooms are owned by their actors
// and exist only in memory. Storage backs the external-collaborator
// contracts (identity, puzzle lookup, completion persistence).
type Storage interface {
	// Session operations
	SaveSession(ctx context.Context, session *Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error

	// Puzzle operations
	SavePuzzle(ctx context.Context, puzzle *model.Puzzle) error
	GetPuzzle(ctx context.Context, id model.PuzzleID) (*model.Puzzle, error)
	ListPuzzleIDs(ctx context.Context) ([]model.PuzzleID, error)

	// Completion operations
	SaveCompletion(ctx context.Context, result *model.CompletionResult) error
	ListCompletions(ctx context.Context, code model.RoomCode) ([]*model.CompletionResult, error)
}

// ErrSessionNotFound is returned when a token has no session record
var ErrSessionNotFound = errors.New("session not found")
