package evalbar

import (
	"reflect"
	"testing"

	"github.com/notnil/chess"
)

func TestNewPosition_Startpos(t *testing.T) {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for _, mv := range []string{"e2e4", "e7e5", "g1f3"} {
		if err := g.MoveStr(mv); err != nil {
			t.Fatalf("MoveStr(%s) error = %v", mv, err)
		}
	}

	p := NewPosition(g)
	if p.StartFEN != "" {
		t.Errorf("StartFEN = %q, want empty for the standard start", p.StartFEN)
	}
	if want := []string{"e2e4", "e7e5", "g1f3"}; !reflect.DeepEqual(p.Moves, want) {
		t.Errorf("Moves = %v, want %v", p.Moves, want)
	}
	if p.Turn != chess.Black {
		t.Errorf("Turn = %v, want Black", p.Turn)
	}
	if p.FEN != g.Position().String() {
		t.Errorf("FEN = %q, want %q", p.FEN, g.Position().String())
	}

	u := p.UCI()
	if u.FEN != "" || !reflect.DeepEqual(u.Moves, p.Moves) {
		t.Errorf("UCI() = %+v", u)
	}
}

func TestPositionFromFEN(t *testing.T) {
	const fen = "4k3/8/8/8/8/8/4P3/4K3 b - - 0 1"
	p, err := PositionFromFEN(fen)
	if err != nil {
		t.Fatalf("PositionFromFEN() error = %v", err)
	}
	if p.StartFEN != fen || p.FEN != fen {
		t.Errorf("PositionFromFEN() = %+v", p)
	}
	if len(p.Moves) != 0 {
		t.Errorf("Moves = %v, want none", p.Moves)
	}
	if p.Turn != chess.Black {
		t.Errorf("Turn = %v, want Black", p.Turn)
	}
}

func TestPositionFromFEN_Invalid(t *testing.T) {
	if _, err := PositionFromFEN("not a fen"); err == nil {
		t.Error("PositionFromFEN() should reject garbage")
	}
}

func TestPosition_Equal(t *testing.T) {
	a := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	b := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	_ = a.MoveStr("g1f3")
	_ = b.MoveStr("g1f3")

	if !NewPosition(a).Equal(NewPosition(b)) {
		t.Error("same history should be equal")
	}

	_ = b.MoveStr("g8f6")
	if NewPosition(a).Equal(NewPosition(b)) {
		t.Error("different positions should not be equal")
	}
}

func TestLine(t *testing.T) {
	g := chess.NewGame(chess.UseNotation(chess.UCINotation{}))
	for _, mv := range []string{"e2e4", "c7c5", "g1f3"} {
		if err := g.MoveStr(mv); err != nil {
			t.Fatalf("MoveStr(%s) error = %v", mv, err)
		}
	}

	line := Line(g)
	if len(line) != 4 {
		t.Fatalf("len(Line()) = %d, want 4", len(line))
	}
	if len(line[0].Moves) != 0 || line[0].FEN != startFEN || line[0].Turn != chess.White {
		t.Errorf("Line()[0] = %+v, want the start position", line[0])
	}
	if want := []string{"e2e4", "c7c5"}; !reflect.DeepEqual(line[2].Moves, want) {
		t.Errorf("Line()[2].Moves = %v, want %v", line[2].Moves, want)
	}
	if !line[3].Equal(NewPosition(g)) {
		t.Errorf("last entry %q should be the game's current position", line[3].FEN)
	}
	if line[1].Turn != chess.Black {
		t.Errorf("Line()[1].Turn = %v, want Black", line[1].Turn)
	}
}
