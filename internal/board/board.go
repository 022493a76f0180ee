// Package board turns square clicks into moves on a chess game.
//
// Legality is delegated to github.com/notnil/chess; the controller only
// tracks which square is selected and whether a promotion piece is needed.
package board

import (
	"errors"
	"fmt"

	"github.com/notnil/chess"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrIllegalMove indicates the clicked target is not a legal destination.
	ErrIllegalMove = errors.New("board: illegal move")

	// ErrNoPromotion indicates Promote was called with no promotion pending.
	ErrNoPromotion = errors.New("board: no promotion pending")

	// ErrInvalidSquare indicates a square name could not be parsed.
	ErrInvalidSquare = errors.New("board: invalid square")
)

// State is the click state of a Board.
type State int

const (
	// Idle means no square is selected.
	Idle State = iota
	// Selected means a piece of the side to move is selected.
	Selected
	// AwaitingPromotion means a pawn move to the last rank needs a piece.
	AwaitingPromotion
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Selected:
		return "selected"
	case AwaitingPromotion:
		return "awaiting promotion"
	default:
		return "unknown"
	}
}

// Event reports what a click did.
type Event int

const (
	// EventNone means the click changed nothing.
	EventNone Event = iota
	// EventSelected means a piece was selected.
	EventSelected
	// EventDeselected means the selection was cleared.
	EventDeselected
	// EventMoved means a move was played.
	EventMoved
	// EventPromotionPending means Promote must be called to finish the move.
	EventPromotionPending
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventSelected:
		return "selected"
	case EventDeselected:
		return "deselected"
	case EventMoved:
		return "moved"
	case EventPromotionPending:
		return "promotion pending"
	default:
		return "unknown"
	}
}

// Board is a click-driven controller over a chess game.
// It is not safe for concurrent use.
type Board struct {
	game     *chess.Game
	state    State
	from     chess.Square
	to       chess.Square
	moves    int
	lastMove *chess.Move
}

// New returns a Board over g. A nil g starts a new game.
func New(g *chess.Game) *Board {
	if g == nil {
		g = chess.NewGame()
	}
	return &Board{game: g, moves: len(g.Moves())}
}

// Game returns the underlying game.
func (b *Board) Game() *chess.Game {
	return b.game
}

// State returns the current click state.
func (b *Board) State() State {
	return b.state
}

// Selection returns the selected square, if any.
func (b *Board) Selection() (chess.Square, bool) {
	if b.state == Idle {
		return chess.NoSquare, false
	}
	return b.from, true
}

// MoveCount returns the number of moves played in the game. It changes
// exactly when the position does.
func (b *Board) MoveCount() int {
	return b.moves
}

// LastMove returns the most recent move played through the board, or nil.
func (b *Board) LastMove() *chess.Move {
	return b.lastMove
}

// Click handles a click on sq.
//
// Clicking a piece of the side to move selects it. With a piece selected,
// clicking the same square deselects it and clicking a legal destination
// plays the move. An illegal destination clears the selection and returns
// ErrIllegalMove. While a promotion is pending any click cancels it.
func (b *Board) Click(sq chess.Square) (Event, error) {
	switch b.state {
	case AwaitingPromotion:
		b.reset()
		return EventDeselected, nil

	case Selected:
		if sq == b.from {
			b.reset()
			return EventDeselected, nil
		}
		if b.ownPiece(sq) {
			b.from = sq
			return EventSelected, nil
		}
		return b.playTo(sq)

	default:
		if !b.ownPiece(sq) {
			return EventNone, nil
		}
		b.state = Selected
		b.from = sq
		return EventSelected, nil
	}
}

// Promote finishes a pending promotion with pt.
func (b *Board) Promote(pt chess.PieceType) error {
	if b.state != AwaitingPromotion {
		return ErrNoPromotion
	}
	for _, m := range b.candidates(b.to) {
		if m.Promo() == pt {
			return b.play(m)
		}
	}
	return fmt.Errorf("%w: cannot promote to %s", ErrIllegalMove, pt)
}

// Cancel clears any selection or pending promotion.
func (b *Board) Cancel() {
	b.reset()
}

func (b *Board) playTo(sq chess.Square) (Event, error) {
	moves := b.candidates(sq)
	if len(moves) == 0 {
		from := b.from
		b.reset()
		return EventDeselected, fmt.Errorf("%w: %s%s", ErrIllegalMove, from, sq)
	}
	if moves[0].Promo() != chess.NoPieceType {
		b.state = AwaitingPromotion
		b.to = sq
		return EventPromotionPending, nil
	}
	if err := b.play(moves[0]); err != nil {
		return EventNone, err
	}
	return EventMoved, nil
}

func (b *Board) play(m *chess.Move) error {
	if err := b.game.Move(m); err != nil {
		b.reset()
		return fmt.Errorf("%w: %v", ErrIllegalMove, err)
	}
	b.moves++
	b.lastMove = m
	b.reset()
	return nil
}

// candidates returns the legal moves from the selected square to sq.
func (b *Board) candidates(sq chess.Square) []*chess.Move {
	var out []*chess.Move
	for _, m := range b.game.ValidMoves() {
		if m.S1() == b.from && m.S2() == sq {
			out = append(out, m)
		}
	}
	return out
}

func (b *Board) ownPiece(sq chess.Square) bool {
	pos := b.game.Position()
	p := pos.Board().Piece(sq)
	return p != chess.NoPiece && p.Color() == pos.Turn()
}

func (b *Board) reset() {
	b.state = Idle
	b.from = chess.NoSquare
	b.to = chess.NoSquare
}

// ParseSquare parses an algebraic square name such as "e4".
func ParseSquare(s string) (chess.Square, error) {
	if len(s) != 2 || s[0] < 'a' || s[0] > 'h' || s[1] < '1' || s[1] > '8' {
		return chess.NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, s)
	}
	return chess.NewSquare(chess.File(s[0]-'a'), chess.Rank(s[1]-'1')), nil
}
