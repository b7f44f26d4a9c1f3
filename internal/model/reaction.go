package model

// ClueID identifies a clue for reaction purposes. The engine treats it as
// opaque; clients derive it from puzzle numbering.
type ClueID string

// Emoji is one of the fixed reaction emoji
type Emoji string

// The allowed reaction set
const (
	EmojiThumbsUp Emoji = "👍"
	EmojiHeart    Emoji = "❤️"
	EmojiLaugh    Emoji = "😂"
	EmojiWow      Emoji = "😮"
	EmojiSad      Emoji = "😢"
	EmojiParty    Emoji = "🎉"
)

// ValidEmoji reports whether e is in the allowed reaction set
func ValidEmoji(e Emoji) bool {
	switch e {
	case EmojiThumbsUp, EmojiHeart, EmojiLaugh, EmojiWow, EmojiSad, EmojiParty:
		return true
	}
	return false
}

// Reactions tracks per-user-per-clue reactions. A user holds at most one
// emoji per clue.
type Reactions map[ClueID]map[PlayerID]Emoji

// NewReactions creates an empty reaction store
func NewReactions() Reactions {
	return make(Reactions)
}

// Toggle applies a reaction selection: selecting the emoji the user already
// holds removes it; selecting a different one replaces it. It reports
// whether the reaction was removed.
func (r Reactions) Toggle(clue ClueID, player PlayerID, emoji Emoji) (removed bool) {
	byPlayer, ok := r[clue]
	if !ok {
		byPlayer = make(map[PlayerID]Emoji)
		r[clue] = byPlayer
	}
	if byPlayer[player] == emoji {
		delete(byPlayer, player)
		if len(byPlayer) == 0 {
			delete(r, clue)
		}
		return true
	}
	byPlayer[player] = emoji
	return false
}

// Counts returns the aggregate count per emoji for one clue
func (r Reactions) Counts(clue ClueID) map[Emoji]int {
	counts := make(map[Emoji]int)
	for _, emoji := range r[clue] {
		counts[emoji]++
	}
	return counts
}
