package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/discochess/evalbar"
)

// renderBar draws r as a horizontal bar of width cells. White's share of
// the bar is drawn with '#'.
func renderBar(r evalbar.Result, width int) string {
	if width < 2 {
		width = 2
	}
	white := int(math.Round(r.Fill() * float64(width)))
	white = min(max(white, 0), width)

	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(strings.Repeat("#", white))
	b.WriteString(strings.Repeat(".", width-white))
	b.WriteByte(']')

	fmt.Fprintf(&b, " %6s", r.Score)
	if r.Depth > 0 {
		fmt.Fprintf(&b, "  depth %d", r.Depth)
	}
	fmt.Fprintf(&b, "  %s", r.Status)
	if r.LastError != nil {
		fmt.Fprintf(&b, " (%v)", r.LastError)
	}
	return b.String()
}
