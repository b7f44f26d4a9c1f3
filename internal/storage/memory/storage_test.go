package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

// Session tests

func (s *StorageSuite) TestSaveAndGetSession() {
	now := time.Now()
	session := &storage.Session{
		Token:       "tok-1",
		PlayerID:    "player-1",
		DisplayName: "Alice",
		CreatedAt:   now,
		ExpiresAt:   now.Add(time.Hour),
	}

	err := s.storage.SaveSession(s.ctx, session)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetSession(s.ctx, "tok-1")
	s.Require().NoError(err)
	s.Equal(session.PlayerID, retrieved.PlayerID)
	s.Equal(session.DisplayName, retrieved.DisplayName)
}

func (s *StorageSuite) TestGetMissingSession() {
	_, err := s.storage.GetSession(s.ctx, "nope")
	s.ErrorIs(err, storage.ErrSessionNotFound)
}

func (s *StorageSuite) TestDeleteSession() {
	session := &storage.Session{Token: "tok-1", PlayerID: "player-1"}
	s.Require().NoError(s.storage.SaveSession(s.ctx, session))

	s.Require().NoError(s.storage.DeleteSession(s.ctx, "tok-1"))

	_, err := s.storage.GetSession(s.ctx, "tok-1")
	s.ErrorIs(err, storage.ErrSessionNotFound)

	// Deleting an absent token is not an error
	s.NoError(s.storage.DeleteSession(s.ctx, "tok-1"))
}

// Puzzle tests

func (s *StorageSuite) TestSaveAndGetPuzzle() {
	puzzle := &model.Puzzle{
		ID:       "mini-1",
		Title:    "Mini",
		Width:    3,
		Height:   3,
		Solution: []string{"CAT", "A#O", "BEE"},
	}

	s.Require().NoError(s.storage.SavePuzzle(s.ctx, puzzle))

	retrieved, err := s.storage.GetPuzzle(s.ctx, "mini-1")
	s.Require().NoError(err)
	s.Equal(puzzle.Title, retrieved.Title)
	s.Equal(puzzle.Solution, retrieved.Solution)
}

func (s *StorageSuite) TestGetMissingPuzzle() {
	_, err := s.storage.GetPuzzle(s.ctx, "nope")
	s.ErrorIs(err, model.ErrPuzzleNotFound)
}

func (s *StorageSuite) TestListPuzzleIDs() {
	s.Require().NoError(s.storage.SavePuzzle(s.ctx, &model.Puzzle{ID: "a"}))
	s.Require().NoError(s.storage.SavePuzzle(s.ctx, &model.Puzzle{ID: "b"}))

	ids, err := s.storage.ListPuzzleIDs(s.ctx)
	s.Require().NoError(err)
	s.ElementsMatch([]model.PuzzleID{"a", "b"}, ids)
}

// Completion tests

func (s *StorageSuite) TestSaveAndListCompletions() {
	first := &model.CompletionResult{
		RoomCode: "ROOM01",
		Mode:     model.ModeCollaborative,
		PuzzleID: "mini-1",
		Players:  []model.PlayerID{"p1", "p2"},
	}
	second := &model.CompletionResult{
		RoomCode: "ROOM01",
		Mode:     model.ModeRace,
		PuzzleID: "mini-1",
		Players:  []model.PlayerID{"p1", "p2"},
	}

	s.Require().NoError(s.storage.SaveCompletion(s.ctx, first))
	s.Require().NoError(s.storage.SaveCompletion(s.ctx, second))

	results, err := s.storage.ListCompletions(s.ctx, "ROOM01")
	s.Require().NoError(err)
	s.Require().Len(results, 2)
	s.Equal(model.ModeCollaborative, results[0].Mode)
	s.Equal(model.ModeRace, results[1].Mode)
}

func (s *StorageSuite) TestListCompletionsForUnknownRoom() {
	results, err := s.storage.ListCompletions(s.ctx, "ZZZZZZ")
	s.Require().NoError(err)
	s.Empty(results)
}
