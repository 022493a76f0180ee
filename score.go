package evalbar

import (
	"fmt"
	"strconv"

	"github.com/notnil/chess"

	"github.com/discochess/evalbar/internal/uci"
)

// Sign tells which side a mate score favors.
type Sign int

const (
	// Positive means White delivers mate.
	Positive Sign = 1
	// Negative means Black delivers mate.
	Negative Sign = -1
)

// Score is an engine evaluation from White's perspective: either a
// centipawn value or a forced mate. The zero value is Centipawns(0).
type Score struct {
	mate  bool
	cp    int
	sign  Sign
	moves int
}

// Centipawns returns a material score. Positive values favor White.
func Centipawns(cp int) Score {
	return Score{cp: cp}
}

// MateIn returns a forced mate in moves, delivered by the side given by sign.
func MateIn(sign Sign, moves int) Score {
	if sign != Negative {
		sign = Positive
	}
	if moves < 0 {
		moves = -moves
	}
	return Score{mate: true, sign: sign, moves: moves}
}

// FromUCI converts a wire score, which is relative to the side to move,
// into a White-relative Score.
func FromUCI(s uci.Score, turn chess.Color) Score {
	flip := turn == chess.Black
	if !s.IsMate {
		cp := s.CP
		if flip {
			cp = -cp
		}
		return Centipawns(cp)
	}

	// Mate 0 means the side to move has been mated.
	sign := Positive
	if s.Mate <= 0 {
		sign = Negative
	}
	if flip {
		sign = -sign
	}
	return MateIn(sign, s.Mate)
}

// IsMate reports whether the score is a forced mate.
func (s Score) IsMate() bool {
	return s.mate
}

// Centipawns returns the centipawn value and true, or false for mate scores.
func (s Score) Centipawns() (int, bool) {
	if s.mate {
		return 0, false
	}
	return s.cp, true
}

// Mate returns the mating side and distance, or false for centipawn scores.
func (s Score) Mate() (Sign, int, bool) {
	if !s.mate {
		return 0, 0, false
	}
	return s.sign, s.moves, true
}

// Pawns returns the score in pawns for Fill. Mate scores map to
// ±MaxPawns regardless of distance so that any forced mate pins the bar.
func (s Score) Pawns() float64 {
	if s.mate {
		return float64(s.sign) * MaxPawns
	}
	return float64(s.cp) / 100
}

// Fill returns the evaluation bar fill for this score.
func (s Score) Fill() float64 {
	return MustFill(s.Pawns())
}

// String formats the score for display.
// Examples: "0.0", "0.3", "-1.2", "+M3", "-M2".
func (s Score) String() string {
	if s.mate {
		if s.sign == Negative {
			return "-M" + strconv.Itoa(s.moves)
		}
		return "+M" + strconv.Itoa(s.moves)
	}
	out := fmt.Sprintf("%.1f", float64(s.cp)/100)
	if out == "-0.0" {
		return "0.0"
	}
	return out
}
