package request

// CreateGuestRequest is the request body for issuing a guest session
type CreateGuestRequest struct {
	DisplayName string `json:"display_name"`
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Mode     string `json:"mode"`
	PuzzleID string `json:"puzzle_id"`
	Capacity int    `json:"capacity,omitempty"`
	Passcode string `json:"passcode,omitempty"`
}
