package registry

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/crosswirehq/crosswire/internal/completion"
	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
	"github.com/crosswirehq/crosswire/internal/dependencies/random"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/puzzle"
	"github.com/crosswirehq/crosswire/internal/room"
)

// Alphabet excludes easily-confused characters (0/O, 1/I)
const (
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6

	maxCodeAttempts = 10
)

// CreateParams carries the room settings chosen by the creating player
type CreateParams struct {
	HostID   model.PlayerID
	Mode     model.Mode
	PuzzleID model.PuzzleID
	Capacity int
	Passcode string
}

// Registry is the process-wide directory of live rooms, keyed by code.
// Creation and lookup are concurrent-safe; each room's mutable state stays
// behind its own actor.
type Registry struct {
	mu    sync.RWMutex
	rooms map[model.RoomCode]*room.Actor

	puzzles puzzle.Provider
	clock   clock.Clock
	random  random.Random
	sink    completion.Sink
	logger  *slog.Logger
}

// New creates an empty registry
func New(puzzles puzzle.Provider, clk clock.Clock, rnd random.Random, sink completion.Sink, logger *slog.Logger) *Registry {
	return &Registry{
		rooms:   make(map[model.RoomCode]*room.Actor),
		puzzles: puzzles,
		clock:   clk,
		random:  rnd,
		sink:    sink,
		logger:  logger,
	}
}

// Create allocates a code, builds the room, and starts its actor
func (r *Registry) Create(ctx context.Context, params CreateParams) (*room.Actor, error) {
	if params.Mode == "" {
		params.Mode = model.ModeCollaborative
	}
	if !model.ValidMode(params.Mode) {
		return nil, model.ErrInvalidMode
	}

	puz, err := r.puzzles.Get(ctx, params.PuzzleID)
	if err != nil {
		return nil, err
	}

	cfg := model.DefaultRoomConfig()
	if params.Capacity > 0 {
		cfg.Capacity = params.Capacity
	}
	if params.Passcode != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(params.Passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash passcode: %w", err)
		}
		cfg.PasscodeHash = string(hash)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	code, err := r.allocateCode()
	if err != nil {
		return nil, err
	}

	rm := model.Room{
		Code:      code,
		Mode:      params.Mode,
		State:     model.RoomStateLobby,
		Config:    cfg,
		PuzzleID:  puz.ID,
		HostID:    params.HostID,
		CreatedAt: r.clock.Now(),
	}

	actor := room.NewActor(room.NewState(rm, puz, r.clock), r.clock, r.sink, r.logger, r.remove)
	r.rooms[code] = actor
	go actor.Run()

	r.logger.Info("room created",
		slog.String("room", string(code)),
		slog.String("mode", string(params.Mode)),
		slog.String("puzzle_id", string(puz.ID)))
	return actor, nil
}

// Resolve looks up a live room by code. Codes are case-insensitive.
func (r *Registry) Resolve(code model.RoomCode) (*room.Actor, error) {
	normalized := model.RoomCode(strings.ToUpper(string(code)))

	r.mu.RLock()
	defer r.mu.RUnlock()

	actor, ok := r.rooms[normalized]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return actor, nil
}

// Count returns the number of live rooms
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rooms)
}

// Shutdown force-closes every live room
func (r *Registry) Shutdown() {
	r.mu.RLock()
	actors := make([]*room.Actor, 0, len(r.rooms))
	for _, actor := range r.rooms {
		actors = append(actors, actor)
	}
	r.mu.RUnlock()

	for _, actor := range actors {
		actor.Stop()
	}
}

// remove is handed to each actor as its terminate hook
func (r *Registry) remove(code model.RoomCode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.rooms, code)
	r.logger.Info("room removed", slog.String("room", string(code)))
}

// allocateCode must be called with mu held
func (r *Registry) allocateCode() (model.RoomCode, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := model.RoomCode(r.random.String(codeLength, codeAlphabet))
		if _, taken := r.rooms[code]; !taken {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to allocate a unique room code after %d attempts", maxCodeAttempts)
}
