// Package puzzle implements the puzzle lookup contract the room engine
// consumes: puzzle id in, grid plus solution out.
package puzzle

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage"
)

// Provider resolves a puzzle id to its solution data
type Provider interface {
	Get(ctx context.Context, id model.PuzzleID) (*model.Puzzle, error)
}

// Service is a storage-backed puzzle provider
type Service struct {
	storage storage.Storage
	logger  *slog.Logger
}

// Ensure Service implements Provider
var _ Provider = (*Service)(nil)

// New creates a new puzzle service
func New(store storage.Storage, logger *slog.Logger) *Service {
	return &Service{
		storage: store,
		logger:  logger.With(slog.String("component", "puzzle")),
	}
}

// Get retrieves a puzzle by id
func (s *Service) Get(ctx context.Context, id model.PuzzleID) (*model.Puzzle, error) {
	return s.storage.GetPuzzle(ctx, id)
}

// Save validates and stores a puzzle
func (s *Service) Save(ctx context.Context, puzzle *model.Puzzle) error {
	if err := puzzle.Validate(); err != nil {
		return fmt.Errorf("puzzle %q: %w", puzzle.ID, err)
	}
	return s.storage.SavePuzzle(ctx, puzzle)
}

// List returns the ids of all stored puzzles
func (s *Service) List(ctx context.Context) ([]model.PuzzleID, error) {
	return s.storage.ListPuzzleIDs(ctx)
}

// LoadFromFile seeds puzzles from a JSON file containing an array of puzzles
func (s *Service) LoadFromFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var puzzles []*model.Puzzle
	if err := json.Unmarshal(data, &puzzles); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}

	for _, p := range puzzles {
		if err := s.Save(ctx, p); err != nil {
			return err
		}
	}

	s.logger.Info("puzzles loaded", slog.String("path", path), slog.Int("count", len(puzzles)))
	return nil
}
