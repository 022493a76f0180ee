package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrSearchDone is returned by Next when the engine reports bestmove.
	ErrSearchDone = errors.New("uci: search done")

	// ErrClosed indicates the engine has been closed.
	ErrClosed = errors.New("uci: engine closed")
)

const (
	defaultHandshakeTimeout = 10 * time.Second
	quitGracePeriod         = 500 * time.Millisecond
)

// Option configures an Engine.
type Option func(*config)

type config struct {
	options          map[string]string
	handshakeTimeout time.Duration
	searchDepth      int
	logger           *zap.Logger
}

func defaultConfig() config {
	return config{
		handshakeTimeout: defaultHandshakeTimeout,
		logger:           zap.NewNop(),
	}
}

// WithSetOption sends "setoption name <name> value <value>" during the handshake.
func WithSetOption(name, value string) Option {
	return func(c *config) {
		if c.options == nil {
			c.options = make(map[string]string)
		}
		c.options[name] = value
	}
}

// WithHandshakeTimeout bounds the uci/isready handshake.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(c *config) { c.handshakeTimeout = d }
}

// WithSearchDepth makes Go search to a fixed depth instead of "go infinite".
func WithSearchDepth(depth int) Option {
	return func(c *config) { c.searchDepth = depth }
}

// WithLogger logs engine traffic at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// Engine is a running UCI engine process.
// Writes are serialized; Next must be called from a single goroutine.
type Engine struct {
	cmd *exec.Cmd
	cfg config

	mu    sync.Mutex
	in    *bufio.Writer
	stdin io.Closer

	lines   chan string
	readErr error
	done    chan struct{}

	closeOnce sync.Once
}

// Start spawns the engine at path and completes the UCI handshake.
// The process is killed if ctx is cancelled.
func Start(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	cmd := exec.CommandContext(ctx, path)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdin: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("opening stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting %s: %w", path, err)
	}

	e := newEngine(stdin, stdout, cfg)
	e.cmd = cmd

	if err := e.handshake(ctx); err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// newEngine wires an Engine to the given pipes without spawning anything.
func newEngine(stdin io.WriteCloser, stdout io.Reader, cfg config) *Engine {
	e := &Engine{
		cfg:   cfg,
		in:    bufio.NewWriter(stdin),
		stdin: stdin,
		lines: make(chan string, 64),
		done:  make(chan struct{}),
	}
	go e.readLoop(stdout)
	return e
}

func (e *Engine) readLoop(r io.Reader) {
	defer close(e.lines)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		select {
		case e.lines <- sc.Text():
		case <-e.done:
			return
		}
	}
	e.readErr = sc.Err()
}

func (e *Engine) handshake(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, e.cfg.handshakeTimeout)
	defer cancel()

	if err := e.send("uci"); err != nil {
		return err
	}
	if err := e.waitFor(ctx, "uciok"); err != nil {
		return fmt.Errorf("waiting for uciok: %w", err)
	}
	for name, value := range e.cfg.options {
		if err := e.send(fmt.Sprintf("setoption name %s value %s", name, value)); err != nil {
			return err
		}
	}
	if err := e.send("isready"); err != nil {
		return err
	}
	if err := e.waitFor(ctx, "readyok"); err != nil {
		return fmt.Errorf("waiting for readyok: %w", err)
	}
	return nil
}

// Go loads pos and starts a search.
func (e *Engine) Go(ctx context.Context, pos Position) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.send(pos.command()); err != nil {
		return err
	}
	if e.cfg.searchDepth > 0 {
		return e.send(fmt.Sprintf("go depth %d", e.cfg.searchDepth))
	}
	return e.send("go infinite")
}

// Stop asks the engine to end the current search. The engine answers with
// bestmove, which Next reports as ErrSearchDone.
func (e *Engine) Stop() error {
	return e.send("stop")
}

// Next returns the next info record that carries a depth or a score.
// It returns ErrSearchDone once the engine prints bestmove and
// io.ErrUnexpectedEOF if the engine output ends.
func (e *Engine) Next(ctx context.Context) (Info, error) {
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			return Info{}, err
		}
		switch {
		case strings.HasPrefix(line, "bestmove"):
			return Info{}, ErrSearchDone
		case strings.HasPrefix(line, "info "):
			info, err := ParseInfo(line)
			if err != nil {
				return Info{}, err
			}
			if info.HasDepth || info.HasScore {
				return info, nil
			}
		}
	}
}

// Close sends quit and releases the process, killing it if it does not exit promptly.
func (e *Engine) Close() error {
	var err error
	e.closeOnce.Do(func() {
		_ = e.send("quit")
		_ = e.stdin.Close()
		close(e.done)
		if e.cmd == nil {
			return
		}
		exited := make(chan error, 1)
		go func() { exited <- e.cmd.Wait() }()
		select {
		case err = <-exited:
		case <-time.After(quitGracePeriod):
			if e.cmd.Process != nil {
				_ = e.cmd.Process.Kill()
			}
			err = <-exited
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// Killed or non-zero exit after quit is expected.
			err = nil
		}
	})
	return err
}

func (e *Engine) waitFor(ctx context.Context, token string) error {
	for {
		line, err := e.readLine(ctx)
		if err != nil {
			return err
		}
		if strings.TrimSpace(line) == token {
			return nil
		}
	}
}

func (e *Engine) readLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-e.done:
		return "", ErrClosed
	case line, ok := <-e.lines:
		if !ok {
			if e.readErr != nil {
				return "", fmt.Errorf("reading engine output: %w", e.readErr)
			}
			return "", io.ErrUnexpectedEOF
		}
		e.cfg.logger.Debug("engine >", zap.String("line", line))
		return line, nil
	}
}

func (e *Engine) send(cmd string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cfg.logger.Debug("engine <", zap.String("line", cmd))
	if _, err := fmt.Fprintln(e.in, cmd); err != nil {
		return fmt.Errorf("writing %q: %w", cmd, err)
	}
	if err := e.in.Flush(); err != nil {
		return fmt.Errorf("writing %q: %w", cmd, err)
	}
	return nil
}
