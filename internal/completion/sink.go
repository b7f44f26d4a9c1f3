// Package completion implements the completion persistence contract: the
// engine calls it once per room on the completed transition, fire-and-forget.
package completion

import (
	"context"
	"log/slog"
	"time"

	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage"
)

// Sink receives the final results of a completed room
type Sink interface {
	PersistCompletion(result *model.CompletionResult)
}

const persistTimeout = 5 * time.Second

// StorageSink persists completion results to storage. Writes happen on a
// background goroutine; failures are logged, never propagated, so a slow
// or broken store cannot stall a room actor.
type StorageSink struct {
	storage storage.Storage
	logger  *slog.Logger
}

// Ensure StorageSink implements Sink
var _ Sink = (*StorageSink)(nil)

// New creates a storage-backed completion sink
func New(store storage.Storage, logger *slog.Logger) *StorageSink {
	return &StorageSink{
		storage: store,
		logger:  logger.With(slog.String("component", "completion")),
	}
}

// PersistCompletion records the result without blocking the caller
func (s *StorageSink) PersistCompletion(result *model.CompletionResult) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()

		if err := s.storage.SaveCompletion(ctx, result); err != nil {
			s.logger.Error("failed to persist completion",
				slog.String("room", string(result.RoomCode)),
				slog.String("error", err.Error()))
			return
		}

		s.logger.Info("completion persisted",
			slog.String("room", string(result.RoomCode)),
			slog.String("mode", string(result.Mode)))
	}()
}
