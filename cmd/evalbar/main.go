// Package main provides the evalbar CLI, which shows a live engine
// evaluation bar for a game played from the terminal and analyzes PGN files.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
