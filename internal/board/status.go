package board

import "github.com/notnil/chess"

// Status describes the game state after the last move.
type Status struct {
	Turn    chess.Color
	Check   bool
	Outcome chess.Outcome
	Method  chess.Method
	// Draws lists the draws the side to move may claim.
	Draws []chess.Method
}

// Over reports whether the game has ended.
func (s Status) Over() bool {
	return s.Outcome != chess.NoOutcome
}

// String returns a short human readable description, or "" while play continues normally.
func (s Status) String() string {
	switch s.Method {
	case chess.Checkmate:
		return "checkmate, " + winner(s.Outcome) + " wins"
	case chess.Stalemate:
		return "stalemate"
	case chess.InsufficientMaterial:
		return "draw by insufficient material"
	case chess.FivefoldRepetition:
		return "draw by fivefold repetition"
	case chess.SeventyFiveMoveRule:
		return "draw by seventy-five move rule"
	}
	for _, m := range s.Draws {
		switch m {
		case chess.ThreefoldRepetition:
			return "threefold repetition can be claimed"
		case chess.FiftyMoveRule:
			return "fifty move rule can be claimed"
		}
	}
	if s.Check {
		return "check"
	}
	return ""
}

func winner(o chess.Outcome) string {
	if o == chess.BlackWon {
		return "black"
	}
	return "white"
}

// Status returns the current game status.
func (b *Board) Status() Status {
	s := Status{
		Turn:    b.game.Position().Turn(),
		Outcome: b.game.Outcome(),
		Method:  b.game.Method(),
	}
	if moves := b.game.Moves(); len(moves) > 0 {
		s.Check = moves[len(moves)-1].HasTag(chess.Check)
	}
	for _, m := range b.game.EligibleDraws() {
		if m != chess.DrawOffer {
			s.Draws = append(s.Draws, m)
		}
	}
	return s
}
