package evalbar

import (
	"errors"
	"math"
	"testing"
)

func TestFill_WholePawns(t *testing.T) {
	for n := 0; n <= MaxPawns; n++ {
		got, err := Fill(float64(n))
		if err != nil {
			t.Fatalf("Fill(%d) error = %v", n, err)
		}
		want := 1 - math.Ldexp(1, -(n+1))
		if got != want {
			t.Errorf("Fill(%d) = %v, want %v", n, got, want)
		}
	}
}

func TestFill_KnownValues(t *testing.T) {
	tests := []struct {
		pawns float64
		want  float64
	}{
		{0, 0.5},
		{1, 0.75},
		{2, 0.875},
		{3, 0.9375},
		{-1, 0.25},
		{-2, 0.125},
		{1.5, 0.8125},
		{0.5, 0.625},
		{-0.5, 0.375},
	}

	for _, tt := range tests {
		got, err := Fill(tt.pawns)
		if err != nil {
			t.Fatalf("Fill(%v) error = %v", tt.pawns, err)
		}
		if got != tt.want {
			t.Errorf("Fill(%v) = %v, want %v", tt.pawns, got, tt.want)
		}
	}
}

func TestFill_ZeroIsExactlyHalf(t *testing.T) {
	for _, z := range []float64{0, math.Copysign(0, -1)} {
		if got := MustFill(z); got != 0.5 {
			t.Errorf("Fill(%v) = %v, want exactly 0.5", z, got)
		}
	}
}

func TestFill_BetweenWholePawns(t *testing.T) {
	got := MustFill(1.5)
	if got <= MustFill(1) || got >= MustFill(2) {
		t.Errorf("Fill(1.5) = %v, want strictly between %v and %v", got, MustFill(1), MustFill(2))
	}
}

func TestFill_Antisymmetric(t *testing.T) {
	for _, s := range []float64{0.01, 0.3, 1, 1.25, 2.75, 7.5, 13.2, 40.9} {
		pos, neg := MustFill(s), MustFill(-s)
		if d := math.Abs(neg - (1 - pos)); d > 1e-12 {
			t.Errorf("Fill(-%v) = %v, 1-Fill(%v) = %v", s, neg, s, 1-pos)
		}
	}
}

func TestFill_Monotonic(t *testing.T) {
	prev := MustFill(-20)
	for s := -20.0 + 0.01; s <= 20; s += 0.01 {
		got := MustFill(s)
		if got <= prev {
			t.Fatalf("Fill not increasing at %v: %v <= %v", s, got, prev)
		}
		prev = got
	}
}

func TestFill_StaysInsideOpenInterval(t *testing.T) {
	for _, s := range []float64{-1e300, -1000, -MaxPawns, -47.9, 47.9, MaxPawns, 1000, 1e300} {
		got := MustFill(s)
		if got <= 0 || got >= 1 {
			t.Errorf("Fill(%v) = %v, want inside (0, 1)", s, got)
		}
	}
}

func TestFill_Saturates(t *testing.T) {
	if MustFill(MaxPawns) != MustFill(500) {
		t.Errorf("Fill(500) = %v, want saturated %v", MustFill(500), MustFill(MaxPawns))
	}
}

func TestFill_NonFinite(t *testing.T) {
	for _, s := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		got, err := Fill(s)
		if !errors.Is(err, ErrNonFinite) {
			t.Errorf("Fill(%v) error = %v, want ErrNonFinite", s, err)
		}
		if got != 0.5 {
			t.Errorf("Fill(%v) = %v, want 0.5", s, got)
		}
	}
}
