package response

import (
	"github.com/crosswirehq/crosswire/internal/identity"
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/room"
)

// AuthResponse is returned when a guest session is issued
type AuthResponse struct {
	Token       string         `json:"token"`
	PlayerID    model.PlayerID `json:"player_id"`
	DisplayName string         `json:"display_name"`
}

// AuthResponseFromIdentity builds an AuthResponse
func AuthResponseFromIdentity(token string, ident *identity.Identity) AuthResponse {
	return AuthResponse{
		Token:       token,
		PlayerID:    ident.PlayerID,
		DisplayName: ident.DisplayName,
	}
}

// RoomResponse describes a live room
type RoomResponse struct {
	Room room.Info `json:"room"`
}

// PuzzleSummary is one entry in the puzzle listing
type PuzzleSummary struct {
	ID     model.PuzzleID `json:"id"`
	Title  string         `json:"title"`
	Width  int            `json:"width"`
	Height int            `json:"height"`
}

// PuzzleListResponse lists available puzzles
type PuzzleListResponse struct {
	Puzzles []PuzzleSummary `json:"puzzles"`
}

// HealthResponse reports server health
type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}
