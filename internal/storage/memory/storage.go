package memory

import (
	"context"
	"sync"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	sessions    map[string]*storage.Session
	puzzles     map[model.PuzzleID]*model.Puzzle
	completions map[model.RoomCode][]*model.CompletionResult
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		sessions:    make(map[string]*storage.Session),
		puzzles:     make(map[model.PuzzleID]*model.Puzzle),
		completions: make(map[model.RoomCode][]*model.CompletionResult),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Session operations

func (s *Storage) SaveSession(ctx context.Context, session *storage.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = session
	return nil
}

func (s *Storage) GetSession(ctx context.Context, token string) (*storage.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil, storage.ErrSessionNotFound
	}
	return session, nil
}

func (s *Storage) DeleteSession(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Puzzle operations

func (s *Storage) SavePuzzle(ctx context.Context, puzzle *model.Puzzle) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.puzzles[puzzle.ID] = puzzle
	return nil
}

func (s *Storage) GetPuzzle(ctx context.Context, id model.PuzzleID) (*model.Puzzle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	puzzle, ok := s.puzzles[id]
	if !ok {
		return nil, model.ErrPuzzleNotFound
	}
	return puzzle, nil
}

func (s *Storage) ListPuzzleIDs(ctx context.Context) ([]model.PuzzleID, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.PuzzleID, 0, len(s.puzzles))
	for id := range s.puzzles {
		ids = append(ids, id)
	}
	return ids, nil
}

// Completion operations

func (s *Storage) SaveCompletion(ctx context.Context, result *model.CompletionResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.completions[result.RoomCode] = append(s.completions[result.RoomCode], result)
	return nil
}

func (s *Storage) ListCompletions(ctx context.Context, code model.RoomCode) ([]*model.CompletionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	results := make([]*model.CompletionResult, len(s.completions[code]))
	copy(results, s.completions[code])
	return results, nil
}
