package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crosswirehq/crosswire/internal/api/handler"
	"github.com/crosswirehq/crosswire/internal/api/middleware"
	"github.com/crosswirehq/crosswire/internal/api/response"
	"github.com/crosswirehq/crosswire/internal/gateway"
	"github.com/crosswirehq/crosswire/internal/identity"
	"github.com/crosswirehq/crosswire/internal/puzzle"
	"github.com/crosswirehq/crosswire/internal/registry"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger          *slog.Logger
	IdentityService *identity.Service
	PuzzleService   *puzzle.Service
	Registry        *registry.Registry
	Gateway         *gateway.Gateway
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	sessionHandler := handler.NewSessionHandler(cfg.IdentityService)
	roomHandler := handler.NewRoomHandler(cfg.Registry)
	puzzleHandler := handler.NewPuzzleHandler(cfg.PuzzleService)

	authMiddleware := middleware.Auth(cfg.IdentityService)
	loggingMiddleware := middleware.Logging(cfg.Logger)
	recoveryMiddleware := middleware.Recovery(cfg.Logger)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(recoveryMiddleware)
	api.Use(loggingMiddleware)

	// Session issuance requires no prior auth
	api.HandleFunc("/sessions/guest", sessionHandler.CreateGuest).Methods(http.MethodPost)

	// Room lifecycle (all require auth)
	rooms := api.PathPrefix("/rooms").Subrouter()
	rooms.Use(authMiddleware)
	rooms.HandleFunc("", roomHandler.Create).Methods(http.MethodPost)
	rooms.HandleFunc("/{code}", roomHandler.Get).Methods(http.MethodGet)
	rooms.HandleFunc("/{code}", roomHandler.Close).Methods(http.MethodDelete)

	// Puzzle listing (auth required)
	puzzles := api.PathPrefix("/puzzles").Subrouter()
	puzzles.Use(authMiddleware)
	puzzles.HandleFunc("", puzzleHandler.List).Methods(http.MethodGet)

	// Health check endpoint (no auth)
	api.HandleFunc("/health", healthHandler(cfg.Registry)).Methods(http.MethodGet)

	// Websocket attach point; the gateway does its own token auth since
	// the connection outlives any single request
	r.HandleFunc("/ws/{code}", cfg.Gateway.ServeWS).Methods(http.MethodGet)

	return r
}

func healthHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(response.HealthResponse{Status: "ok", Rooms: reg.Count()})
	}
}
