// Package report writes per-position analysis records and summarizes them.
package report

import (
	"time"

	"github.com/discochess/evalbar"
)

// Record is the analysis of one position of a game.
type Record struct {
	Game int `json:"game"`
	Ply  int `json:"ply"`
	// Move is the move that led to the position, in UCI notation. Empty for
	// the starting position.
	Move  string `json:"move,omitempty"`
	FEN   string `json:"fen"`
	Score string `json:"score"`
	// Pawns is the score from White's point of view. Mates are reported as
	// plus or minus evalbar.MaxPawns.
	Pawns float64 `json:"pawns"`
	// Mate is the signed mate distance, positive when White mates.
	Mate   int           `json:"mate,omitempty"`
	IsMate bool          `json:"is_mate,omitempty"`
	Fill   float64       `json:"fill"`
	Depth  int           `json:"depth"`
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Took   time.Duration `json:"took_ns"`
}

// NewRecord builds the record of ply of game from an analysis result.
func NewRecord(game, ply int, move string, r evalbar.Result, took time.Duration) Record {
	rec := Record{
		Game:   game,
		Ply:    ply,
		Move:   move,
		FEN:    r.FEN,
		Score:  r.Score.String(),
		Pawns:  r.Score.Pawns(),
		Fill:   r.Fill(),
		Depth:  r.Depth,
		Status: r.Status.String(),
		Took:   took,
	}
	if sign, moves, ok := r.Score.Mate(); ok {
		rec.IsMate = true
		rec.Mate = int(sign) * moves
	}
	if r.LastError != nil {
		rec.Error = r.LastError.Error()
	}
	return rec
}

// Evaluated reports whether the engine produced a score for the record.
func (r Record) Evaluated() bool {
	return r.Depth > 0
}
