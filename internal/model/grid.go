package model

// Coord identifies a cell by zero-based (x, y) position
type Coord struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Cell is one writable grid cell: a single character (empty string when
// blank) plus the identity of its most recent writer. Writes fully replace
// the previous value; there is no merging.
type Cell struct {
	Value  string   `json:"value"`
	Writer PlayerID `json:"writer"`
}

// Grid is a sparse mapping of filled cells. Black cells never appear in it.
type Grid map[Coord]Cell

// NewGrid creates an empty grid
func NewGrid() Grid {
	return make(Grid)
}

// Set applies a last-write-wins update to one cell. An empty value clears
// the cell but still records the writer for attribution.
func (g Grid) Set(c Coord, value string, writer PlayerID) {
	g[c] = Cell{Value: value, Writer: writer}
}

// ValueAt returns the value at c, or the empty string if unset
func (g Grid) ValueAt(c Coord) string {
	return g[c].Value
}

// Solved reports whether every fillable cell of the puzzle holds its
// solution letter.
func (g Grid) Solved(p *Puzzle) bool {
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if p.Blocked(x, y) {
				continue
			}
			if g.ValueAt(Coord{X: x, Y: y}) != p.SolutionAt(x, y) {
				return false
			}
		}
	}
	return true
}

// CorrectCells returns the number of fillable cells holding their solution letter
func (g Grid) CorrectCells(p *Puzzle) int {
	n := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if p.Blocked(x, y) {
				continue
			}
			if g.ValueAt(Coord{X: x, Y: y}) == p.SolutionAt(x, y) {
				n++
			}
		}
	}
	return n
}

// WordSolved reports whether every cell of the span matches the solution
func (g Grid) WordSolved(p *Puzzle, w WordSpan) bool {
	for _, c := range w.Cells() {
		if g.ValueAt(c) != p.SolutionAt(c.X, c.Y) {
			return false
		}
	}
	return true
}
