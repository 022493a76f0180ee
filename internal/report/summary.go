package report

import (
	"fmt"
	"io"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultSwings is how many of the largest evaluation swings Summarize keeps.
const DefaultSwings = 3

// Swing is the change in bar fill caused by one move.
type Swing struct {
	Game int
	Ply  int
	Move string
	// Delta is the fill after the move minus the fill before it.
	// Negative values favor Black.
	Delta float64
}

// Summary describes a set of records.
type Summary struct {
	Positions int
	Evaluated int
	Mates     int
	Faulted   int

	// Pawn statistics cover evaluated positions without a forced mate.
	MeanPawns   float64
	StdDevPawns float64
	MedianPawns float64
	MinPawns    float64
	MaxPawns    float64

	MeanDepth float64
	MaxDepth  int

	Swings []Swing
}

// Summarize computes statistics over records. Records of the same game
// are expected in ply order.
func Summarize(records []Record) Summary {
	s := Summary{Positions: len(records)}

	var pawns, depths []float64
	for _, r := range records {
		if r.Error != "" {
			s.Faulted++
		}
		if !r.Evaluated() {
			continue
		}
		s.Evaluated++
		depths = append(depths, float64(r.Depth))
		if r.Depth > s.MaxDepth {
			s.MaxDepth = r.Depth
		}
		if r.IsMate {
			s.Mates++
			continue
		}
		pawns = append(pawns, r.Pawns)
	}

	if len(depths) > 0 {
		s.MeanDepth = stat.Mean(depths, nil)
	}
	if len(pawns) > 0 {
		s.MeanPawns = stat.Mean(pawns, nil)
		if len(pawns) > 1 {
			s.StdDevPawns = stat.StdDev(pawns, nil)
		}
		sort.Float64s(pawns)
		s.MedianPawns = stat.Quantile(0.5, stat.Empirical, pawns, nil)
		s.MinPawns = pawns[0]
		s.MaxPawns = pawns[len(pawns)-1]
	}

	s.Swings = swings(records, DefaultSwings)
	return s
}

// swings returns the n largest fill changes between consecutive evaluated
// plies of the same game.
func swings(records []Record, n int) []Swing {
	var out []Swing
	for i := 1; i < len(records); i++ {
		prev, cur := records[i-1], records[i]
		if prev.Game != cur.Game || cur.Ply != prev.Ply+1 {
			continue
		}
		if !prev.Evaluated() || !cur.Evaluated() {
			continue
		}
		out = append(out, Swing{
			Game:  cur.Game,
			Ply:   cur.Ply,
			Move:  cur.Move,
			Delta: cur.Fill - prev.Fill,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return math.Abs(out[i].Delta) > math.Abs(out[j].Delta)
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// WriteMarkdown writes s as a Markdown section.
func (s Summary) WriteMarkdown(w io.Writer) error {
	ew := &errWriter{w: w}

	ew.printf("## Evaluation summary\n\n")
	ew.printf("- **Positions:** %d (%d evaluated, %d faulted)\n", s.Positions, s.Evaluated, s.Faulted)
	ew.printf("- **Forced mates seen:** %d\n", s.Mates)
	ew.printf("- **Depth:** mean %.1f, max %d\n\n", s.MeanDepth, s.MaxDepth)

	ew.printf("| Metric | Pawns |\n")
	ew.printf("|--------|-------|\n")
	ew.printf("| Mean | %.2f |\n", s.MeanPawns)
	ew.printf("| Median | %.2f |\n", s.MedianPawns)
	ew.printf("| Std Dev | %.2f |\n", s.StdDevPawns)
	ew.printf("| Min | %.2f |\n", s.MinPawns)
	ew.printf("| Max | %.2f |\n\n", s.MaxPawns)

	if len(s.Swings) > 0 {
		ew.printf("### Largest swings\n\n")
		ew.printf("| Game | Ply | Move | Fill change |\n")
		ew.printf("|------|-----|------|-------------|\n")
		for _, sw := range s.Swings {
			ew.printf("| %d | %d | %s | %+.3f |\n", sw.Game, sw.Ply, sw.Move, sw.Delta)
		}
		ew.printf("\n")
	}
	return ew.err
}

// errWriter keeps the first write error.
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
