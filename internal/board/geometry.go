package board

import "github.com/notnil/chess"

// Geometry places a board on screen. Rank 8 is at the top unless Flipped.
type Geometry struct {
	OriginX    int
	OriginY    int
	SquareSize int
	Flipped    bool
}

// NewGeometry returns the geometry of a square board of the given pixel
// size drawn at (x, y).
func NewGeometry(x, y, size int) Geometry {
	return Geometry{OriginX: x, OriginY: y, SquareSize: size / 8}
}

// SquareAt returns the square under the point (x, y).
// It reports false for points outside the board.
func (g Geometry) SquareAt(x, y int) (chess.Square, bool) {
	if g.SquareSize <= 0 {
		return chess.NoSquare, false
	}
	dx, dy := x-g.OriginX, y-g.OriginY
	if dx < 0 || dy < 0 {
		return chess.NoSquare, false
	}
	col, row := dx/g.SquareSize, dy/g.SquareSize
	if col > 7 || row > 7 {
		return chess.NoSquare, false
	}

	file, rank := col, 7-row
	if g.Flipped {
		file, rank = 7-col, row
	}
	return chess.NewSquare(chess.File(file), chess.Rank(rank)), true
}

// Origin returns the top-left pixel of sq.
func (g Geometry) Origin(sq chess.Square) (x, y int) {
	col, row := int(sq.File()), 7-int(sq.Rank())
	if g.Flipped {
		col, row = 7-int(sq.File()), int(sq.Rank())
	}
	return g.OriginX + col*g.SquareSize, g.OriginY + row*g.SquareSize
}
