package uci

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestParseInfo(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Info
	}{
		{
			name: "centipawn score",
			line: "info depth 18 seldepth 24 multipv 1 score cp 23 nodes 123456 nps 800000 time 154 pv e2e4 e7e5 g1f3",
			want: Info{
				Depth: 18, HasDepth: true,
				SelDepth: 24,
				MultiPV:  1,
				Score:    Score{CP: 23}, HasScore: true,
				Nodes: 123456,
				NPS:   800000,
				Time:  154 * time.Millisecond,
				PV:    []string{"e2e4", "e7e5", "g1f3"},
			},
		},
		{
			name: "mate score",
			line: "info depth 20 score mate -3",
			want: Info{Depth: 20, HasDepth: true, Score: Score{Mate: -3, IsMate: true}, HasScore: true},
		},
		{
			name: "lower bound",
			line: "info depth 7 score cp 41 lowerbound nodes 10",
			want: Info{Depth: 7, HasDepth: true, Score: Score{CP: 41, LowerBound: true}, HasScore: true, Nodes: 10},
		},
		{
			name: "upper bound",
			line: "info score cp -12 upperbound",
			want: Info{Score: Score{CP: -12, UpperBound: true}, HasScore: true},
		},
		{
			name: "currmove only",
			line: "info depth 5 currmove e2e4 currmovenumber 1",
			want: Info{Depth: 5, HasDepth: true},
		},
		{
			name: "string is free text",
			line: "info string NNUE evaluation using nn-1111.nnue depth 3",
			want: Info{},
		},
		{
			name: "unknown keys skipped",
			line: "info depth 3 hashfull 12 tbhits 0 score cp 5",
			want: Info{Depth: 3, HasDepth: true, Score: Score{CP: 5}, HasScore: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInfo(tt.line)
			if err != nil {
				t.Fatalf("ParseInfo() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseInfo() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseInfo_Malformed(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not info", "bestmove e2e4"},
		{"empty", ""},
		{"bad depth", "info depth x"},
		{"missing depth", "info depth"},
		{"bad score kind", "info score wdl 500"},
		{"missing score value", "info score cp"},
		{"bad nodes", "info nodes 1e9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseInfo(tt.line)
			if !errors.Is(err, ErrMalformedInfo) {
				t.Errorf("ParseInfo(%q) error = %v, want ErrMalformedInfo", tt.line, err)
			}
		})
	}
}

func TestPosition_Command(t *testing.T) {
	tests := []struct {
		name string
		pos  Position
		want string
	}{
		{"startpos", Position{}, "position startpos"},
		{"startpos with moves", Position{Moves: []string{"e2e4", "e7e5"}}, "position startpos moves e2e4 e7e5"},
		{
			"fen",
			Position{FEN: "8/8/8/8/8/8/8/K1k5 w - - 0 1"},
			"position fen 8/8/8/8/8/8/8/K1k5 w - - 0 1",
		},
		{
			"fen with moves",
			Position{FEN: "8/8/8/8/8/8/8/K1k5 w - - 0 1", Moves: []string{"a1a2"}},
			"position fen 8/8/8/8/8/8/8/K1k5 w - - 0 1 moves a1a2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pos.command(); got != tt.want {
				t.Errorf("command() = %q, want %q", got, tt.want)
			}
		})
	}
}
