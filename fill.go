package evalbar

import (
	"errors"
	"math"
)

// MaxPawns is the magnitude at which Fill saturates.
// Beyond it the halving recurrence would round to exactly 0 or 1 in float64.
const MaxPawns = 48

// ErrNonFinite indicates Fill was given NaN or an infinity.
var ErrNonFinite = errors.New("evalbar: non-finite score")

// Fill maps a signed score in pawns to the filled fraction of an evaluation
// bar. Zero maps to exactly 0.5. Each whole pawn halves the remaining
// distance to the edge (1 pawn is 0.75, 2 pawns 0.875, 3 pawns 0.9375) and
// the fractional part interpolates linearly within the next half step.
// Negative scores mirror positive ones about 0.5.
//
// Magnitudes above MaxPawns are clamped. NaN and infinities return
// ErrNonFinite with a neutral 0.5.
func Fill(pawns float64) (float64, error) {
	if math.IsNaN(pawns) || math.IsInf(pawns, 0) {
		return 0.5, ErrNonFinite
	}

	negative := pawns < 0
	magnitude := math.Min(math.Abs(pawns), MaxPawns)
	whole := math.Floor(magnitude)
	frac := magnitude - whole

	current, step := 0.5, 0.5
	for i := 0; i < int(whole); i++ {
		step /= 2
		current += step
	}

	if negative {
		current = 1 - current
		current -= step / 2 * frac
	} else {
		current += step / 2 * frac
	}
	return current, nil
}

// MustFill is Fill for presentation code: invalid input renders as an even bar.
func MustFill(pawns float64) float64 {
	f, _ := Fill(pawns)
	return f
}
