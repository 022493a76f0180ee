package evalbar

import (
	"fmt"

	"github.com/notnil/chess"

	"github.com/discochess/evalbar/internal/uci"
)

// startFEN is the standard starting position as notnil/chess prints it.
var startFEN = chess.NewGame().Position().String()

// Position is a request to analyze the position reached by a move history.
type Position struct {
	// StartFEN is the position the history starts from. Empty means the standard start.
	StartFEN string

	// Moves is the move history in UCI notation.
	Moves []string

	// FEN is the resulting position. Two requests are the same position
	// when their FENs are equal.
	FEN string

	// Turn is the side to move in the resulting position. Engine scores
	// are relative to it.
	Turn chess.Color
}

// NewPosition builds a request from a game's move history.
func NewPosition(g *chess.Game) Position {
	positions := g.Positions()
	moves := g.Moves()

	p := Position{
		Moves: make([]string, 0, len(moves)),
		FEN:   g.Position().String(),
		Turn:  g.Position().Turn(),
	}
	if start := positions[0].String(); start != startFEN {
		p.StartFEN = start
	}
	for i, m := range moves {
		p.Moves = append(p.Moves, chess.UCINotation{}.Encode(positions[i], m))
	}
	return p
}

// Line returns the position before the first move and after every move
// of g, in order. The entries share one backing move slice.
func Line(g *chess.Game) []Position {
	last := NewPosition(g)
	positions := g.Positions()
	out := make([]Position, len(positions))
	for i, pos := range positions {
		out[i] = Position{
			StartFEN: last.StartFEN,
			Moves:    last.Moves[:i:i],
			FEN:      pos.String(),
			Turn:     pos.Turn(),
		}
	}
	return out
}

// PositionFromFEN builds a request for a bare position with no history.
func PositionFromFEN(fen string) (Position, error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return Position{}, fmt.Errorf("parsing FEN: %w", err)
	}
	return NewPosition(chess.NewGame(opt)), nil
}

// Equal reports whether p and other describe the same position.
func (p Position) Equal(other Position) bool {
	return p.FEN == other.FEN
}

// UCI returns the position in the form the engine session expects.
func (p Position) UCI() uci.Position {
	return uci.Position{FEN: p.StartFEN, Moves: p.Moves}
}
