package evalbar

import "time"

// Status is the observable state of the analysis worker.
type Status int

const (
	// StatusIdle means nothing has been submitted yet.
	StatusIdle Status = iota
	// StatusAnalyzing means the engine is searching the latest position.
	StatusAnalyzing
	// StatusDone means the latest position reached the depth ceiling or
	// the engine ended its search. The worker waits for a new submission.
	StatusDone
	// StatusFaulted means the engine failed and a respawn is pending.
	StatusFaulted
	// StatusStopped means the analyzer has been closed.
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusAnalyzing:
		return "analyzing"
	case StatusDone:
		return "done"
	case StatusFaulted:
		return "faulted"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Result is the published analysis state. Score and Depth always come
// from the same analysis of the position FEN.
//
// A zero Depth means the position has not been meaningfully evaluated
// yet, even though Score prints as "0.0".
type Result struct {
	Score  Score
	Depth  int
	Status Status

	// FEN is the position Score and Depth belong to. Empty until the first
	// score arrives.
	FEN string

	// LastError is the most recent engine fault. It is cleared when
	// analysis resumes.
	LastError error

	UpdatedAt time.Time
}

// Fill returns the evaluation bar fill for the published score.
func (r Result) Fill() float64 {
	return r.Score.Fill()
}
