package room

import (
	"github.com/crosswirehq/crosswire/internal/model"
	"github.com/crosswirehq/crosswire/internal/protocol"
)

// snapshotFor builds the full room_state view for one recipient. In race
// mode the cell list is the recipient's own grid; shared-grid modes see the
// one shared grid.
func (s *State) snapshotFor(p *model.Player) protocol.RoomState {
	snap := protocol.RoomState{
		Code:     s.room.Code,
		Mode:     s.room.Mode,
		State:    s.room.State,
		Capacity: s.room.Config.Capacity,
		PuzzleID: s.room.PuzzleID,
		Width:    s.puzzle.Width,
		Height:   s.puzzle.Height,
		Blocks:   s.blockList(),
		You:      p.ID,
		Chat:     s.chat.Messages(),
	}

	for _, id := range s.joinOrder {
		snap.Players = append(snap.Players, s.playerInfo(s.players[id]))
	}

	switch s.room.Mode {
	case model.ModeRace:
		snap.Cells = cellList(s.grids[p.ID])
		if s.room.State != model.RoomStateLobby {
			snap.Progress = make(map[model.PlayerID]float64, len(s.participants))
			total := s.puzzle.FillableCells()
			for _, id := range s.participants {
				grid := s.grids[id]
				snap.Progress[id] = float64(grid.CorrectCells(s.puzzle)) / float64(total)
			}
		}
	default:
		snap.Cells = cellList(s.shared)
		if s.turn != nil {
			snap.Turn = s.turnInfo()
		}
	}

	if len(s.reactions) > 0 {
		snap.Reactions = make(map[model.ClueID]protocol.ReactionTally, len(s.reactions))
		for clue := range s.reactions {
			snap.Reactions[clue] = s.reactions.Counts(clue)
		}
	}

	for id, c := range s.cursors {
		if id == p.ID {
			continue
		}
		snap.Cursors = append(snap.Cursors, protocol.CursorInfo{PlayerID: id, X: c.X, Y: c.Y})
	}

	return snap
}

func (s *State) playerInfo(p *model.Player) protocol.PlayerInfo {
	info := protocol.PlayerInfo{
		ID:           p.ID,
		DisplayName:  p.DisplayName,
		Color:        p.Color,
		Status:       string(p.Status),
		Ready:        p.Ready,
		Spectator:    p.Spectator,
		IsHost:       s.room.HostID == p.ID,
		Contribution: p.Contribution,
		Rank:         p.Rank,
	}
	if !p.FinishedAt.IsZero() {
		t := p.FinishedAt
		info.FinishedAt = &t
	}
	return info
}

func (s *State) turnInfo() *protocol.TurnInfo {
	return &protocol.TurnInfo{
		Order:         s.turn.Order,
		ActivePlayer:  s.turn.ActivePlayer(),
		Deadline:      s.turn.Deadline,
		WordsThisTurn: s.turn.WordsThisTurn,
	}
}

func (s *State) blockList() []model.Coord {
	var blocks []model.Coord
	for y := 0; y < s.puzzle.Height; y++ {
		for x := 0; x < s.puzzle.Width; x++ {
			if s.puzzle.Blocked(x, y) {
				blocks = append(blocks, model.Coord{X: x, Y: y})
			}
		}
	}
	return blocks
}

func cellList(g model.Grid) []protocol.CellInfo {
	cells := make([]protocol.CellInfo, 0, len(g))
	for c, cell := range g {
		if cell.Value == "" {
			continue
		}
		cells = append(cells, protocol.CellInfo{X: c.X, Y: c.Y, Value: cell.Value, Writer: cell.Writer})
	}
	return cells
}
