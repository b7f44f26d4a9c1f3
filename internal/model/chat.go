package model

import "time"

// ChatHistorySize is the number of recent messages retained per room
const ChatHistorySize = 50

// ChatMessage is one chat entry in a room's bounded history
type ChatMessage struct {
	PlayerID    PlayerID  `json:"player_id"`
	DisplayName string    `json:"display_name"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sent_at"`
}

// ChatHistory is an insertion-ordered buffer of the most recent messages.
// Appending past the cap evicts the oldest entry.
type ChatHistory struct {
	messages []ChatMessage
	cap      int
}

// NewChatHistory creates a history bounded at ChatHistorySize entries
func NewChatHistory() *ChatHistory {
	return &ChatHistory{cap: ChatHistorySize}
}

// Append adds a message, evicting the oldest if the buffer is full
func (h *ChatHistory) Append(msg ChatMessage) {
	if len(h.messages) == h.cap {
		copy(h.messages, h.messages[1:])
		h.messages[len(h.messages)-1] = msg
		return
	}
	h.messages = append(h.messages, msg)
}

// Messages returns the retained messages in arrival order
func (h *ChatHistory) Messages() []ChatMessage {
	out := make([]ChatMessage, len(h.messages))
	copy(out, h.messages)
	return out
}

// Len returns the number of retained messages
func (h *ChatHistory) Len() int {
	return len(h.messages)
}
