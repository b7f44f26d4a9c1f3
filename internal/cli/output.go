package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
}

// NewOutput creates a new Output formatter
func NewOutput(format string) *Output {
	return &Output{format: format}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		errData := map[string]any{
			"error": map[string]string{
				"message": err.Error(),
			},
		}
		data, _ := json.Marshal(errData)
		fmt.Fprintln(os.Stderr, string(data))
	} else {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		fmt.Println(string(data))
	} else {
		fmt.Println(msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case AuthResult:
		o.printAuthResult(v)
	case RoomResult:
		o.printRoom(v.Room)
	case PuzzleList:
		o.printPuzzleList(v)
	case HealthResult:
		o.printHealthResult(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

// AuthResult response type (matches API)
type AuthResult struct {
	Token       string `json:"token"`
	PlayerID    string `json:"player_id"`
	DisplayName string `json:"display_name"`
}

// RoomResult wraps a room description
type RoomResult struct {
	Room RoomInfo `json:"room"`
}

// RoomInfo response type
type RoomInfo struct {
	Code      string    `json:"code"`
	Mode      string    `json:"mode"`
	State     string    `json:"state"`
	PuzzleID  string    `json:"puzzle_id"`
	HostID    string    `json:"host_id"`
	Capacity  int       `json:"capacity"`
	Players   int       `json:"players"`
	Connected int       `json:"connected"`
	CreatedAt time.Time `json:"created_at"`
	Private   bool      `json:"private"`
}

// PuzzleList response type
type PuzzleList struct {
	Puzzles []PuzzleSummary `json:"puzzles"`
}

// PuzzleSummary response type
type PuzzleSummary struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// HealthResult response type
type HealthResult struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

func (o *Output) printAuthResult(a AuthResult) {
	fmt.Printf("Player: %s (%s)\n", a.DisplayName, a.PlayerID)
	fmt.Printf("Token: %s\n", a.Token)
}

func (o *Output) printRoom(r RoomInfo) {
	fmt.Printf("Room: %s\n", r.Code)
	fmt.Printf("Mode: %s\n", r.Mode)
	fmt.Printf("State: %s\n", r.State)
	fmt.Printf("Puzzle: %s\n", r.PuzzleID)
	fmt.Printf("Host: %s\n", r.HostID)
	fmt.Printf("Players: %d/%d (%d connected)\n", r.Players, r.Capacity, r.Connected)
	if r.Private {
		fmt.Println("Passcode: required")
	}
}

func (o *Output) printPuzzleList(l PuzzleList) {
	fmt.Printf("Puzzles (%d):\n", len(l.Puzzles))
	for _, p := range l.Puzzles {
		fmt.Printf("  - %s: %s (%dx%d)\n", p.ID, p.Title, p.Width, p.Height)
	}
}

func (o *Output) printHealthResult(h HealthResult) {
	fmt.Printf("Status: %s\n", h.Status)
	fmt.Printf("Rooms: %d\n", h.Rooms)
}
