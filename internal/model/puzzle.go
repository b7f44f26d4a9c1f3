package model

// PuzzleID uniquely identifies a puzzle
type PuzzleID string

// BlockRune marks an unfillable cell in a puzzle solution row
const BlockRune = '#'

// Puzzle is the solution data for one crossword, as supplied by the puzzle
// collaborator. Solution rows use BlockRune for black cells and upper-case
// letters elsewhere.
type Puzzle struct {
	ID       PuzzleID `json:"id"`
	Title    string   `json:"title"`
	Width    int      `json:"width"`
	Height   int      `json:"height"`
	Solution []string `json:"solution"`
}

// InBounds reports whether (x, y) is a valid coordinate
func (p *Puzzle) InBounds(x, y int) bool {
	return x >= 0 && x < p.Width && y >= 0 && y < p.Height
}

// Blocked reports whether (x, y) is a black cell
func (p *Puzzle) Blocked(x, y int) bool {
	return rune(p.Solution[y][x]) == BlockRune
}

// SolutionAt returns the solution letter at (x, y) as a one-character string
func (p *Puzzle) SolutionAt(x, y int) string {
	return string(p.Solution[y][x])
}

// FillableCells returns the number of writable cells in the puzzle
func (p *Puzzle) FillableCells() int {
	n := 0
	for y := 0; y < p.Height; y++ {
		for x := 0; x < p.Width; x++ {
			if !p.Blocked(x, y) {
				n++
			}
		}
	}
	return n
}

// WordSpan is a maximal horizontal or vertical run of fillable cells
type WordSpan struct {
	X, Y   int  // Starting coordinate
	Len    int  // Number of cells
	Across bool // true for horizontal, false for vertical
}

// Cells returns the coordinates covered by the span, in order
func (w WordSpan) Cells() []Coord {
	cells := make([]Coord, w.Len)
	for i := 0; i < w.Len; i++ {
		if w.Across {
			cells[i] = Coord{X: w.X + i, Y: w.Y}
		} else {
			cells[i] = Coord{X: w.X, Y: w.Y + i}
		}
	}
	return cells
}

// Words returns every word span of length >= 2 in the puzzle. Spans are
// derived from the grid geometry; clue text is not part of the engine.
func (p *Puzzle) Words() []WordSpan {
	var words []WordSpan

	// Across runs
	for y := 0; y < p.Height; y++ {
		x := 0
		for x < p.Width {
			if p.Blocked(x, y) {
				x++
				continue
			}
			start := x
			for x < p.Width && !p.Blocked(x, y) {
				x++
			}
			if x-start >= 2 {
				words = append(words, WordSpan{X: start, Y: y, Len: x - start, Across: true})
			}
		}
	}

	// Down runs
	for x := 0; x < p.Width; x++ {
		y := 0
		for y < p.Height {
			if p.Blocked(x, y) {
				y++
				continue
			}
			start := y
			for y < p.Height && !p.Blocked(x, y) {
				y++
			}
			if y-start >= 2 {
				words = append(words, WordSpan{X: x, Y: start, Len: y - start, Across: false})
			}
		}
	}

	return words
}

// Validate checks the puzzle's structural invariants
func (p *Puzzle) Validate() error {
	if p.Width <= 0 || p.Height <= 0 {
		return ErrInvalidPuzzle
	}
	if len(p.Solution) != p.Height {
		return ErrInvalidPuzzle
	}
	for _, row := range p.Solution {
		if len(row) != p.Width {
			return ErrInvalidPuzzle
		}
	}
	if p.FillableCells() == 0 {
		return ErrInvalidPuzzle
	}
	return nil
}
