package main

import (
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/evalbar"
	"github.com/discochess/evalbar/internal/stats"
	"github.com/discochess/evalbar/internal/uci"
)

// engineEnv names the environment variable holding the default engine path.
const engineEnv = "EVALBAR_ENGINE"

var (
	// Global flags.
	enginePath string
	threads    int
	hashMB     int
	cacheSize  int
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "evalbar",
	Short: "Live UCI engine evaluation bar for chess positions",
	Long: `Evalbar keeps a UCI engine (such as Stockfish) analyzing the current
position in the background and maps its score onto an evaluation bar.

The engine executable is taken from --engine, or from the EVALBAR_ENGINE
environment variable when the flag is not given.

Examples:
  # Play moves from the terminal and watch the bar
  evalbar watch --engine /usr/bin/stockfish

  # Analyze every position of a PGN file to depth 20
  evalbar analyze games.pgn --depth 20 --out report.jsonl.zst

  # Summarize a saved report
  evalbar report report.jsonl.zst`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&enginePath, "engine", "e", os.Getenv(engineEnv), "path to the UCI engine executable (default $"+engineEnv+")")
	rootCmd.PersistentFlags().IntVar(&threads, "threads", 0, "engine Threads option (0 keeps the engine default)")
	rootCmd.PersistentFlags().IntVar(&hashMB, "hash", 0, "engine Hash option in MB (0 keeps the engine default)")
	rootCmd.PersistentFlags().IntVar(&cacheSize, "cache", 4096, "positions to remember evaluations for (0 disables)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
}

// newLogger returns a development logger with --verbose and a quiet
// production logger otherwise.
func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}

// analyzerOptions maps the global flags onto analyzer options.
func analyzerOptions(log *zap.Logger, collector stats.Collector, extra ...evalbar.Option) []evalbar.Option {
	var engineOpts []uci.Option
	if threads > 0 {
		engineOpts = append(engineOpts, uci.WithSetOption("Threads", strconv.Itoa(threads)))
	}
	if hashMB > 0 {
		engineOpts = append(engineOpts, uci.WithSetOption("Hash", strconv.Itoa(hashMB)))
	}

	opts := []evalbar.Option{
		evalbar.WithEnginePath(enginePath),
		evalbar.WithEngineOptions(engineOpts...),
		evalbar.WithCacheSize(cacheSize),
		evalbar.WithStats(collector),
		evalbar.WithLogger(log.Named("evalbar")),
	}
	return append(opts, extra...)
}
