// Package identity implements the token verification contract the room
// engine consumes. The engine itself only ever sees the Verifier interface;
// the bundled Service issues opaque guest tokens backed by storage.
package identity

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/crosswirehq/crosswire/internal/dependencies/clock"
	"github.com/crosswirehq/crosswire/internal/dependencies/random"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/storage"
)

// Errors
var (
	ErrInvalidToken = errors.New("invalid or expired token")
)

// Identity is a verified claim about who is on the other end of a connection
type Identity struct {
	PlayerID    model.PlayerID
	DisplayName string
}

// Verifier resolves an opaque token to an identity
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}

const (
	tokenLength   = 32
	tokenAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

	playerIDLength = 12
)

// Config holds configuration for the identity service
type Config struct {
	TokenDuration time.Duration
}

// DefaultConfig returns default identity configuration
func DefaultConfig() Config {
	return Config{
		TokenDuration: 24 * time.Hour,
	}
}

// Service issues and verifies session tokens
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	random  random.Random
	cfg     Config
	logger  *slog.Logger
}

// Ensure Service implements Verifier
var _ Verifier = (*Service)(nil)

// New creates a new identity service
func New(store storage.Storage, clk clock.Clock, rnd random.Random, cfg Config, logger *slog.Logger) *Service {
	if cfg.TokenDuration == 0 {
		cfg.TokenDuration = DefaultConfig().TokenDuration
	}
	return &Service{
		storage: store,
		clock:   clk,
		random:  rnd,
		cfg:     cfg,
		logger:  logger.With(slog.String("component", "identity")),
	}
}

// IssueGuest creates a guest identity and an opaque token for it
func (s *Service) IssueGuest(ctx context.Context, displayName string) (string, *Identity, error) {
	now := s.clock.Now()

	session := &storage.Session{
		Token:       s.random.String(tokenLength, tokenAlphabet),
		PlayerID:    model.PlayerID("p_" + s.random.String(playerIDLength, tokenAlphabet)),
		DisplayName: displayName,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.cfg.TokenDuration),
	}

	if err := s.storage.SaveSession(ctx, session); err != nil {
		return "", nil, err
	}

	s.logger.Info("guest identity issued", slog.String("player_id", string(session.PlayerID)))

	return session.Token, &Identity{
		PlayerID:    session.PlayerID,
		DisplayName: session.DisplayName,
	}, nil
}

// Verify resolves a token to its identity, rejecting unknown or expired tokens
func (s *Service) Verify(ctx context.Context, token string) (*Identity, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	session, err := s.storage.GetSession(ctx, token)
	if err != nil {
		if errors.Is(err, storage.ErrSessionNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if !s.clock.Now().Before(session.ExpiresAt) {
		_ = s.storage.DeleteSession(ctx, token)
		return nil, ErrInvalidToken
	}

	return &Identity{
		PlayerID:    session.PlayerID,
		DisplayName: session.DisplayName,
	}, nil
}

// Revoke invalidates a token
func (s *Service) Revoke(ctx context.Context, token string) error {
	return s.storage.DeleteSession(ctx, token)
}
