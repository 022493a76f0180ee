package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/evalbar"
	"github.com/discochess/evalbar/internal/pgn"
	"github.com/discochess/evalbar/internal/report"
	"github.com/discochess/evalbar/internal/stats"
	"github.com/discochess/evalbar/internal/stats/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [PGN]",
	Short: "Evaluate every position of the games in a PGN file",
	Long: `Analyze each position of each game in a PGN file and print a summary.

Every position is searched until the engine reaches --depth or --movetime
runs out, whichever comes first. With --out, one JSON record per position
is written to the report file, compressed according to its extension
(.zst or .gz). With --upload, the finished report is copied into an
archive under its file name.

Examples:
  evalbar analyze games.pgn --depth 18
  evalbar analyze games.pgn --games 5 --out report.jsonl.zst
  evalbar analyze games.pgn --out opera.jsonl.zst --upload gs://my-bucket/reports`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeDepth int
	moveTime     time.Duration
	maxGames     int
	reportPath   string
	uploadDest   string
)

func init() {
	analyzeCmd.Flags().IntVar(&analyzeDepth, "depth", 18, "depth at which a position counts as analyzed")
	analyzeCmd.Flags().DurationVar(&moveTime, "movetime", 10*time.Second, "maximum time spent on one position")
	analyzeCmd.Flags().IntVar(&maxGames, "games", 0, "maximum number of games to analyze (0 for all)")
	analyzeCmd.Flags().StringVarP(&reportPath, "out", "o", "", "write per-position records to this file")
	analyzeCmd.Flags().StringVar(&uploadDest, "upload", "", "archive the report to gs://bucket/prefix, s3://bucket/prefix or a directory")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if enginePath == "" {
		return fmt.Errorf("no engine: pass --engine or set %s", engineEnv)
	}
	if uploadDest != "" && reportPath == "" {
		return fmt.Errorf("--upload needs --out")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening PGN: %w", err)
	}
	games, err := pgn.Read(f)
	f.Close()
	if err != nil {
		return err
	}
	if maxGames > 0 && len(games) > maxGames {
		games = games[:maxGames]
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	var collector stats.Collector = stats.NewNoop()
	if verbose {
		collector = logger.New(log.Named("evalbar.stats"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := evalbar.New(analyzerOptions(log, collector, evalbar.WithDepthCeiling(analyzeDepth))...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		return fmt.Errorf("starting analyzer: %w", err)
	}

	var w *report.Writer
	if reportPath != "" {
		w, err = report.Create(reportPath)
		if err != nil {
			return err
		}
		defer w.Close()
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analyzing %d game(s)\n", len(games))
	fmt.Fprintf(out, "  Engine:   %s\n", enginePath)
	fmt.Fprintf(out, "  Depth:    %d\n", analyzeDepth)
	fmt.Fprintf(out, "  Movetime: %s\n\n", moveTime)

	var records []report.Record
	for _, g := range games {
		line := evalbar.Line(g.Game)
		fmt.Fprintf(out, "=== Game %d: %s (%d positions) ===\n", g.Index, g.Title(), len(line))

		for ply, pos := range line {
			start := time.Now()
			r, err := awaitResult(ctx, a, pos, moveTime)
			if err != nil {
				return err
			}
			var move string
			if ply > 0 {
				move = pos.Moves[ply-1]
			}
			rec := report.NewRecord(g.Index, ply, move, r, time.Since(start))
			records = append(records, rec)
			if w != nil {
				if err := w.Write(rec); err != nil {
					return err
				}
			}
			if ply%10 == 0 || ply == len(line)-1 {
				fmt.Fprintf(out, "  Ply %3d: %6s depth %d\n", ply, rec.Score, rec.Depth)
			}
		}
	}
	fmt.Fprintln(out)

	if w != nil {
		if err := w.Close(); err != nil {
			return err
		}
		log.Info("report written", zap.String("path", reportPath), zap.Int("records", w.Count()))
		fmt.Fprintf(out, "Report: %s (%d records)\n", reportPath, w.Count())

		if uploadDest != "" {
			dest, err := uploadReport(ctx, uploadDest, reportPath)
			if err != nil {
				return err
			}
			log.Info("report archived", zap.String("dest", dest))
			fmt.Fprintf(out, "Archived: %s\n", dest)
		}
		fmt.Fprintln(out)
	}

	cs := a.CacheStats()
	fmt.Fprintf(out, "Cache: %d hits, %d misses (%.1f%%)\n\n", cs.Hits, cs.Misses, cs.HitRate())
	return report.Summarize(records).WriteMarkdown(out)
}

// awaitResult submits pos and waits until its analysis is done or limit runs out.
// A position the engine never scored comes back with zero depth.
func awaitResult(ctx context.Context, a *evalbar.Analyzer, pos evalbar.Position, limit time.Duration) (evalbar.Result, error) {
	if err := a.Submit(pos); err != nil {
		return evalbar.Result{}, err
	}

	deadline := time.NewTimer(limit)
	defer deadline.Stop()
	poll := time.NewTicker(10 * time.Millisecond)
	defer poll.Stop()

	for {
		r := a.Snapshot()
		if r.FEN == pos.FEN && r.Status == evalbar.StatusDone {
			return r, nil
		}
		select {
		case <-ctx.Done():
			return r, ctx.Err()
		case <-deadline.C:
			if r.FEN != pos.FEN {
				return evalbar.Result{FEN: pos.FEN, Status: r.Status, LastError: r.LastError}, nil
			}
			return r, nil
		case <-poll.C:
		}
	}
}
