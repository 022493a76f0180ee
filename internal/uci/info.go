// Package uci speaks the Universal Chess Interface to an engine subprocess.
//
// Only the subset needed to stream an analysis is implemented: the
// uci/isready handshake, position setup, go/stop, and parsing of the
// incremental "info" records an engine emits while it searches.
package uci

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrMalformedInfo indicates an info line carried a value that could not be parsed.
var ErrMalformedInfo = errors.New("uci: malformed info line")

// Score is an engine score as reported on the wire, relative to the side to move.
type Score struct {
	// CP is the evaluation in centipawns. Meaningful only when IsMate is false.
	CP int

	// Mate is the number of moves to mate. Positive means the side to move
	// mates, negative means it gets mated. Zero means the side to move is
	// already mated.
	Mate int

	// IsMate reports whether the score is a mate score.
	IsMate bool

	LowerBound bool
	UpperBound bool
}

// Info is one parsed "info" record.
type Info struct {
	Depth    int
	HasDepth bool

	SelDepth int
	MultiPV  int

	Score    Score
	HasScore bool

	Nodes int64
	NPS   int64
	Time  time.Duration

	// PV is the principal variation in UCI move notation.
	PV []string
}

// Position is a position to analyze: a starting point plus the moves played from it.
type Position struct {
	// FEN is the starting position. Empty means the standard start position.
	FEN string

	// Moves is the move history in UCI notation (e2e4, e7e8q).
	Moves []string
}

// command renders the "position" command for p.
func (p Position) command() string {
	var b strings.Builder
	b.WriteString("position ")
	if p.FEN == "" {
		b.WriteString("startpos")
	} else {
		b.WriteString("fen ")
		b.WriteString(p.FEN)
	}
	if len(p.Moves) > 0 {
		b.WriteString(" moves ")
		b.WriteString(strings.Join(p.Moves, " "))
	}
	return b.String()
}

// ParseInfo parses a single "info ..." line.
// Unknown keys are skipped. A trailing "string" key ends parsing.
func ParseInfo(line string) (Info, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || fields[0] != "info" {
		return Info{}, fmt.Errorf("%w: %q", ErrMalformedInfo, line)
	}

	var info Info
	for i := 1; i < len(fields); i++ {
		key := fields[i]
		switch key {
		case "depth", "seldepth", "multipv":
			n, err := intField(fields, i+1, key)
			if err != nil {
				return Info{}, err
			}
			i++
			switch key {
			case "depth":
				info.Depth = n
				info.HasDepth = true
			case "seldepth":
				info.SelDepth = n
			case "multipv":
				info.MultiPV = n
			}
		case "nodes", "nps", "time":
			n, err := int64Field(fields, i+1, key)
			if err != nil {
				return Info{}, err
			}
			i++
			switch key {
			case "nodes":
				info.Nodes = n
			case "nps":
				info.NPS = n
			case "time":
				info.Time = time.Duration(n) * time.Millisecond
			}
		case "score":
			if i+1 >= len(fields) {
				return Info{}, fmt.Errorf("%w: score without kind", ErrMalformedInfo)
			}
			kind := fields[i+1]
			n, err := intField(fields, i+2, "score "+kind)
			if err != nil {
				return Info{}, err
			}
			switch kind {
			case "cp":
				info.Score = Score{CP: n}
			case "mate":
				info.Score = Score{Mate: n, IsMate: true}
			default:
				return Info{}, fmt.Errorf("%w: unknown score kind %q", ErrMalformedInfo, kind)
			}
			info.HasScore = true
			i += 2
			if i+1 < len(fields) {
				switch fields[i+1] {
				case "lowerbound":
					info.Score.LowerBound = true
					i++
				case "upperbound":
					info.Score.UpperBound = true
					i++
				}
			}
		case "pv":
			info.PV = append([]string(nil), fields[i+1:]...)
			i = len(fields)
		case "string":
			i = len(fields)
		case "currmove", "refutation", "currline":
			// Single-token values we do not track.
			i++
		}
	}
	return info, nil
}

func intField(fields []string, i int, key string) (int, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("%w: %s without value", ErrMalformedInfo, key)
	}
	n, err := strconv.Atoi(fields[i])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedInfo, key, fields[i])
	}
	return n, nil
}

func int64Field(fields []string, i int, key string) (int64, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("%w: %s without value", ErrMalformedInfo, key)
	}
	n, err := strconv.ParseInt(fields[i], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedInfo, key, fields[i])
	}
	return n, nil
}
