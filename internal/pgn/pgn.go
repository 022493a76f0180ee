// Package pgn reads games to analyze from PGN files.
package pgn

import (
	"errors"
	"fmt"
	"io"

	"github.com/notnil/chess"
)

// ErrNoGames indicates the input held no games.
var ErrNoGames = errors.New("pgn: no games found")

// Game is one game from a PGN file.
type Game struct {
	// Index is the 1-based position of the game in the file.
	Index int
	Event string
	White string
	Black string
	Game  *chess.Game
}

// Title returns a short "White - Black" label.
func (g Game) Title() string {
	w, b := g.White, g.Black
	if w == "" {
		w = "?"
	}
	if b == "" {
		b = "?"
	}
	return w + " - " + b
}

// Read parses every game in r.
func Read(r io.Reader) ([]Game, error) {
	var games []Game
	scanner := chess.NewScanner(r)
	for scanner.Scan() {
		g := scanner.Next()
		// The scanner yields an empty game for blank or unparsable input.
		if len(g.Moves()) == 0 && len(g.TagPairs()) == 0 {
			continue
		}
		games = append(games, Game{
			Index: len(games) + 1,
			Event: tag(g, "Event"),
			White: tag(g, "White"),
			Black: tag(g, "Black"),
			Game:  g,
		})
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return games, fmt.Errorf("reading PGN game %d: %w", len(games)+1, err)
	}
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	return games, nil
}

func tag(g *chess.Game, key string) string {
	if tp := g.GetTagPair(key); tp != nil {
		return tp.Value
	}
	return ""
}
