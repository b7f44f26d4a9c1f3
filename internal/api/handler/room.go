package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/crosswirehq/crosswire/internal/api/apierr"
	"github.com/crosswirehq/crosswire/internal/api/middleware"
	"github.com/crosswirehq/crosswire/internal/api/request"
	"github.com/crosswirehq/crosswire/internal/api/response"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/registry"
)

// RoomHandler handles room lifecycle endpoints. Gameplay itself happens
// over the websocket; this surface only creates, inspects, and closes rooms.
type RoomHandler struct {
	registry *registry.Registry
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(reg *registry.Registry) *RoomHandler {
	return &RoomHandler{
		registry: reg,
	}
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	var req request.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.PuzzleID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("puzzle_id is required"))
		return
	}

	actor, err := h.registry.Create(r.Context(), registry.CreateParams{
		HostID:   ident.PlayerID,
		Mode:     model.Mode(req.Mode),
		PuzzleID: model.PuzzleID(req.PuzzleID),
		Capacity: req.Capacity,
		Passcode: req.Passcode,
	})
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	info, err := actor.Info(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.RoomResponse{Room: info})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, err := h.registry.Resolve(model.RoomCode(mux.Vars(r)["code"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	info, err := actor.Info(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.RoomResponse{Room: info})
}

// Close handles DELETE /api/v1/rooms/{code}
func (h *RoomHandler) Close(w http.ResponseWriter, r *http.Request) {
	ident := middleware.MustGetIdentity(r.Context())

	actor, err := h.registry.Resolve(model.RoomCode(mux.Vars(r)["code"]))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	if err := actor.Close(r.Context(), ident.PlayerID); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.NoContent(w)
}
