package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/notnil/chess"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/discochess/evalbar"
	"github.com/discochess/evalbar/internal/board"
	"github.com/discochess/evalbar/internal/notice"
	"github.com/discochess/evalbar/internal/stats"
	promstats "github.com/discochess/evalbar/internal/stats/prometheus"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Play moves from the terminal and show a live evaluation bar",
	Long: `Read moves from standard input and keep the engine analyzing the
current position. The evaluation bar is redrawn whenever it changes.

Input lines:
  e2e4            play a move in UCI notation (e7e8q promotes)
  click X Y       click the pixel X,Y of a 720px board (rank 8 at the top)
  promote q|r|b|n finish a pending promotion
  fen FEN         start over from a position
  new             start over from the initial position
  quit            exit

Examples:
  evalbar watch --engine /usr/bin/stockfish
  echo "e2e4" | evalbar watch --metrics-addr :9090`,
	RunE: runWatch,
}

var (
	metricsAddr string
	refresh     time.Duration
	barWidth    int
	noticeTTL   time.Duration
)

func init() {
	watchCmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().DurationVar(&refresh, "refresh", 200*time.Millisecond, "how often to check for a new evaluation")
	watchCmd.Flags().IntVar(&barWidth, "width", 40, "bar width in characters")
	watchCmd.Flags().DurationVar(&noticeTTL, "notice-ttl", 3*time.Second, "how long notices stay on screen")
	rootCmd.AddCommand(watchCmd)
}

// boardPixels is the on-screen size the click command maps onto.
const boardPixels = 720

func runWatch(cmd *cobra.Command, args []string) error {
	if enginePath == "" {
		return fmt.Errorf("no engine: pass --engine or set %s", engineEnv)
	}

	log, err := newLogger()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var collector stats.Collector = stats.NewNoop()
	if metricsAddr != "" {
		registry := prometheus.NewRegistry()
		collector = promstats.New(registry, promstats.WithLogger(log.Named("evalbar.metrics")))
		srv := &http.Server{
			Addr:              metricsAddr,
			Handler:           promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server failed", zap.Error(err))
			}
		}()
		defer srv.Close()
		log.Info("serving metrics", zap.String("addr", metricsAddr))
	}

	a, err := evalbar.New(analyzerOptions(log, collector)...)
	if err != nil {
		return fmt.Errorf("creating analyzer: %w", err)
	}
	defer a.Close()
	if err := a.Start(); err != nil {
		return fmt.Errorf("starting analyzer: %w", err)
	}

	w := &watcher{
		out:      cmd.OutOrStdout(),
		analyzer: a,
		board:    board.New(nil),
		geometry: board.NewGeometry(0, 0, boardPixels),
		notices:  notice.New(),
	}
	w.submit()
	return w.loop(ctx, cmd.InOrStdin())
}

// watcher owns the board and notices; only loop touches them.
type watcher struct {
	out      io.Writer
	analyzer *evalbar.Analyzer
	board    *board.Board
	geometry board.Geometry
	notices  *notice.Tray

	moveCount int
	lastLine  string
}

func (w *watcher) loop(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	ticker := time.NewTicker(refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			quit := w.handle(strings.TrimSpace(line))
			if w.board.MoveCount() != w.moveCount {
				w.submit()
			}
			w.draw()
			if quit {
				return nil
			}
		case <-ticker.C:
			if w.notices.Tick() > 0 {
				w.lastLine = ""
			}
			w.draw()
		}
	}
}

// handle applies one input line and reports whether to quit.
func (w *watcher) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch fields[0] {
	case "quit", "exit":
		return true
	case "new":
		w.reset(board.New(nil))
	case "fen":
		err = w.loadFEN(strings.Join(fields[1:], " "))
	case "click":
		err = w.click(fields[1:])
	case "promote":
		err = w.promote(fields[1:])
	default:
		err = w.move(fields[0])
	}
	if err != nil {
		w.notify(err.Error())
	}
	return false
}

func (w *watcher) move(mv string) error {
	if len(mv) < 4 || len(mv) > 5 {
		return fmt.Errorf("not a move: %q", mv)
	}
	from, err := board.ParseSquare(mv[:2])
	if err != nil {
		return err
	}
	to, err := board.ParseSquare(mv[2:4])
	if err != nil {
		return err
	}

	w.board.Cancel()
	if _, err := w.board.Click(from); err != nil {
		return err
	}
	ev, err := w.board.Click(to)
	if err != nil {
		return err
	}
	switch ev {
	case board.EventMoved:
		return nil
	case board.EventPromotionPending:
		if len(mv) == 5 {
			return w.promote([]string{mv[4:]})
		}
		w.board.Cancel()
		return fmt.Errorf("promotion needs a piece, e.g. %sq", mv)
	default:
		w.board.Cancel()
		return fmt.Errorf("%w: %s", board.ErrIllegalMove, mv)
	}
}

func (w *watcher) click(args []string) error {
	if len(args) != 2 {
		return errors.New("usage: click X Y")
	}
	x, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("bad x: %w", err)
	}
	y, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("bad y: %w", err)
	}
	sq, ok := w.geometry.SquareAt(x, y)
	if !ok {
		return nil
	}
	ev, err := w.board.Click(sq)
	if err == nil && ev == board.EventPromotionPending {
		w.notify("choose a piece: promote q|r|b|n")
	}
	return err
}

func (w *watcher) promote(args []string) error {
	if len(args) != 1 {
		return errors.New("usage: promote q|r|b|n")
	}
	pt, err := pieceType(args[0])
	if err != nil {
		return err
	}
	return w.board.Promote(pt)
}

func (w *watcher) loadFEN(fen string) error {
	opt, err := chess.FEN(fen)
	if err != nil {
		return fmt.Errorf("bad FEN: %w", err)
	}
	w.reset(board.New(chess.NewGame(opt)))
	return nil
}

func (w *watcher) reset(b *board.Board) {
	w.board = b
	w.submit()
}

func (w *watcher) submit() {
	w.moveCount = w.board.MoveCount()
	if err := w.analyzer.Submit(evalbar.NewPosition(w.board.Game())); err != nil {
		w.notify(err.Error())
	}
	if s := w.board.Status().String(); s != "" {
		w.notify(s)
	}
}

func (w *watcher) notify(msg string) {
	w.notices.Add(msg, noticeTTL)
	w.lastLine = ""
}

// draw prints the bar and any live notices when they changed since the last draw.
func (w *watcher) draw() {
	line := renderBar(w.analyzer.Snapshot(), barWidth)
	for _, n := range w.notices.Active() {
		line += "  | " + n.Message
	}
	if line == w.lastLine {
		return
	}
	w.lastLine = line
	fmt.Fprintln(w.out, line)
}

func pieceType(s string) (chess.PieceType, error) {
	switch strings.ToLower(s) {
	case "q":
		return chess.Queen, nil
	case "r":
		return chess.Rook, nil
	case "b":
		return chess.Bishop, nil
	case "n":
		return chess.Knight, nil
	default:
		return chess.NoPieceType, fmt.Errorf("unknown promotion piece %q", s)
	}
}
