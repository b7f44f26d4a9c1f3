package handler

import (
	"net/http"

	"github.com/crosswirehq/crosswire/internal/api/apierr"
	"github.com/crosswirehq/crosswire/internal/api/response"
	"github.com/crosswirehq/crosswire/internal/puzzle"
)

// PuzzleHandler handles puzzle listing endpoints
type PuzzleHandler struct {
	puzzles *puzzle.Service
}

// NewPuzzleHandler creates a new puzzle handler
func NewPuzzleHandler(puzzles *puzzle.Service) *PuzzleHandler {
	return &PuzzleHandler{
		puzzles: puzzles,
	}
}

// List handles GET /api/v1/puzzles
func (h *PuzzleHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.puzzles.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	resp := response.PuzzleListResponse{Puzzles: []response.PuzzleSummary{}}
	for _, id := range ids {
		p, err := h.puzzles.Get(r.Context(), id)
		if err != nil {
			continue
		}
		resp.Puzzles = append(resp.Puzzles, response.PuzzleSummary{
			ID:     p.ID,
			Title:  p.Title,
			Width:  p.Width,
			Height: p.Height,
		})
	}

	response.JSON(w, http.StatusOK, resp)
}
