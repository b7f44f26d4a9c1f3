package handler

import (
	"encoding/json"
	"net/http"

	"github.com/crosswirehq/crosswire/internal/api/apierr"
	"github.com/crosswirehq/crosswire/internal/api/request"
	"github.com/crosswirehq/crosswire/internal/api/response"
	"github.com/crosswirehq/crosswire/internal/identity"
)

// SessionHandler handles guest session endpoints
type SessionHandler struct {
	identity *identity.Service
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(identitySvc *identity.Service) *SessionHandler {
	return &SessionHandler{
		identity: identitySvc,
	}
}

// CreateGuest handles POST /api/v1/sessions/guest
func (h *SessionHandler) CreateGuest(w http.ResponseWriter, r *http.Request) {
	var req request.CreateGuestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	if req.DisplayName == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("display_name is required"))
		return
	}

	token, ident, err := h.identity.IssueGuest(r.Context(), req.DisplayName)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.AuthResponseFromIdentity(token, ident))
}
