// Package evalbar keeps a live engine evaluation of the position on a chess
// board and turns it into the fill of an evaluation bar.
//
// Example usage:
//
//	a, err := evalbar.New(
//	    evalbar.WithEnginePath("/usr/bin/stockfish"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer a.Close()
//	a.Start()
//
//	a.Submit(evalbar.NewPosition(game))
//	// every frame:
//	r := a.Snapshot()
//	fmt.Printf("%s depth %d fill %.3f\n", r.Score, r.Depth, r.Fill())
package evalbar

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/evalbar/internal/evalcache"
	"github.com/discochess/evalbar/internal/stats"
	"github.com/discochess/evalbar/internal/uci"
)

// Sentinel errors for well-defined error conditions.
var (
	// ErrClosed indicates the analyzer has been closed.
	ErrClosed = errors.New("evalbar: analyzer closed")

	// ErrNoEngine indicates neither an engine path nor a launcher was provided.
	ErrNoEngine = errors.New("evalbar: no engine provided")
)

// drainTimeout bounds how long a stopped search may take to report bestmove.
const drainTimeout = 5 * time.Second

// errInterrupted reports that a read was cut short by a newer submission.
var errInterrupted = errors.New("evalbar: search interrupted")

// request is one submitted position. gen increases with every submission.
type request struct {
	gen uint64
	pos Position
}

// Analyzer drives a UCI engine in a background goroutine and publishes the
// evaluation of the most recently submitted position.
// Submit and Snapshot never block on the engine and are safe for
// concurrent use.
type Analyzer struct {
	launcher     Launcher
	backoff      time.Duration
	idleInterval time.Duration
	depthCeiling int
	cache        *evalcache.Cache[Result]
	stats        stats.Collector
	logger       *zap.Logger
	sleep        func(context.Context, time.Duration) error

	submitMu  sync.Mutex
	pending   atomic.Pointer[request]
	interrupt atomic.Pointer[context.CancelFunc]
	wake      chan struct{}
	published atomic.Pointer[Result]

	startOnce sync.Once
	closed    atomic.Bool
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}

	// Owned by the worker goroutine.
	session  Session
	finished uint64
}

// New creates an Analyzer. The worker does not run until Start is called.
func New(opts ...Option) (*Analyzer, error) {
	cfg := defaultOptions()
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	launcher := cfg.launcher
	if launcher == nil {
		if cfg.enginePath == "" {
			return nil, ErrNoEngine
		}
		launcher = cfg.processLauncher()
	}

	a := &Analyzer{
		launcher:     launcher,
		backoff:      cfg.backoff,
		idleInterval: cfg.idleInterval,
		depthCeiling: cfg.depthCeiling,
		stats:        cfg.stats,
		logger:       cfg.logger,
		sleep:        cfg.sleep,
		wake:         make(chan struct{}, 1),
		done:         make(chan struct{}),
	}
	if cfg.cacheSize > 0 {
		cache, err := evalcache.New[Result](cfg.cacheSize, cfg.stats)
		if err != nil {
			return nil, fmt.Errorf("creating evaluation cache: %w", err)
		}
		a.cache = cache
	}
	a.ctx, a.cancel = context.WithCancel(context.Background())
	a.published.Store(&Result{Status: StatusIdle})

	a.logger.Debug("analyzer initialized",
		zap.Duration("backoff", a.backoff),
		zap.Duration("idleInterval", a.idleInterval),
		zap.Int("depthCeiling", a.depthCeiling),
		zap.Int("cacheSize", cfg.cacheSize),
	)
	return a, nil
}

// Start launches the background worker. Calling it more than once has no effect.
func (a *Analyzer) Start() error {
	if a.closed.Load() {
		return ErrClosed
	}
	a.startOnce.Do(func() {
		go a.run(a.ctx)
	})
	return nil
}

// Submit makes pos the position to analyze and returns immediately.
// Submissions the worker has not picked up yet are replaced, not queued.
// Submitting the position already pending is a no-op.
func (a *Analyzer) Submit(pos Position) error {
	if a.closed.Load() {
		return ErrClosed
	}

	a.submitMu.Lock()
	cur := a.pending.Load()
	if cur != nil && cur.pos.Equal(pos) {
		a.submitMu.Unlock()
		return nil
	}
	next := &request{pos: pos, gen: 1}
	if cur != nil {
		next.gen = cur.gen + 1
	}
	a.pending.Store(next)
	a.submitMu.Unlock()

	a.stats.IncCounter(stats.MetricSubmissions, 1)
	if interrupt := a.interrupt.Load(); interrupt != nil {
		(*interrupt)()
	}
	select {
	case a.wake <- struct{}{}:
	default:
	}
	return nil
}

// Snapshot returns the latest published result.
func (a *Analyzer) Snapshot() Result {
	return *a.published.Load()
}

// CacheStats returns evaluation cache statistics. It is zero when the cache is disabled.
func (a *Analyzer) CacheStats() evalcache.Stats {
	if a.cache == nil {
		return evalcache.Stats{}
	}
	return a.cache.Stats()
}

// Close stops the worker and releases the engine process.
// After Close, the analyzer should not be used.
func (a *Analyzer) Close() error {
	if !a.closed.CompareAndSwap(false, true) {
		return ErrClosed
	}

	started := true
	a.startOnce.Do(func() { started = false })
	a.cancel()
	if started {
		<-a.done
	} else {
		a.publish(func(r *Result) { r.Status = StatusStopped })
	}
	return nil
}

// run is the worker loop.
func (a *Analyzer) run(ctx context.Context) {
	defer close(a.done)
	defer a.shutdown()

	for ctx.Err() == nil {
		req := a.pending.Load()
		if req == nil || req.gen == a.finished {
			a.waitForWork(ctx)
			continue
		}

		err := a.analyze(ctx, req)
		if err == nil {
			continue
		}
		if ctx.Err() != nil {
			return
		}
		a.fault(err)
		if err := a.sleep(ctx, a.backoff); err != nil {
			return
		}
	}
}

func (a *Analyzer) waitForWork(ctx context.Context) {
	t := time.NewTimer(a.idleInterval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-a.wake:
	case <-t.C:
	}
}

// analyze searches req until it is superseded, reaches the depth ceiling
// or the engine ends the search.
func (a *Analyzer) analyze(ctx context.Context, req *request) error {
	if a.session == nil {
		s, err := a.launcher.Launch(ctx)
		if err != nil {
			return fmt.Errorf("launching engine: %w", err)
		}
		a.session = s
		a.stats.IncCounter(stats.MetricEngineSpawns, 1)
		a.logger.Debug("engine launched")
	}

	if err := a.session.Go(ctx, req.pos.UCI()); err != nil {
		return fmt.Errorf("starting search: %w", err)
	}
	started := time.Now()
	defer func() {
		a.stats.ObserveHistogram(stats.MetricSearchTime, time.Since(started).Seconds())
	}()

	floor := a.begin(req)
	reached := 0
	stopping, complete := false, false
	var drainCtx context.Context
	for {
		if !stopping {
			if latest := a.pending.Load(); latest.gen != req.gen {
				a.stats.IncCounter(stats.MetricSuperseded, 1)
				a.logger.Debug("position superseded",
					zap.String("fen", req.pos.FEN),
					zap.String("next", latest.pos.FEN),
				)
				if err := a.session.Stop(); err != nil {
					return fmt.Errorf("stopping search: %w", err)
				}
				stopping = true
			}
		}

		var info uci.Info
		var err error
		if stopping {
			if drainCtx == nil {
				var cancel context.CancelFunc
				drainCtx, cancel = context.WithTimeout(ctx, drainTimeout)
				defer cancel()
			}
			info, err = a.session.Next(drainCtx)
		} else {
			info, err = a.next(ctx, req)
			if errors.Is(err, errInterrupted) {
				continue
			}
		}

		if errors.Is(err, uci.ErrSearchDone) {
			if (!stopping || complete) && a.pending.Load().gen == req.gen {
				a.finished = req.gen
				a.publish(func(r *Result) { r.Status = StatusDone })
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading analysis: %w", err)
		}
		if stopping {
			// Drain the rest of the stopped search.
			continue
		}

		a.stats.IncCounter(stats.MetricInfoRecords, 1)
		if info.HasDepth {
			reached = max(reached, info.Depth)
		}
		a.record(req, info, floor, reached)

		if info.HasDepth && info.Depth >= a.depthCeiling {
			a.logger.Debug("depth ceiling reached",
				zap.String("fen", req.pos.FEN),
				zap.Int("depth", info.Depth),
			)
			if err := a.session.Stop(); err != nil {
				return fmt.Errorf("stopping search: %w", err)
			}
			stopping, complete = true, true
		}
	}
}

// next reads the next info record of req's search. A Submit that
// supersedes req interrupts the read with errInterrupted.
func (a *Analyzer) next(ctx context.Context, req *request) (uci.Info, error) {
	nctx, cancel := context.WithCancel(ctx)
	defer cancel()
	a.interrupt.Store(&cancel)
	defer a.interrupt.Store(nil)

	// Submit stores the request before loading interrupt, so one of the two
	// sides always sees the other.
	if a.pending.Load().gen != req.gen {
		return uci.Info{}, errInterrupted
	}
	info, err := a.session.Next(nctx)
	if err != nil && nctx.Err() != nil && ctx.Err() == nil {
		return uci.Info{}, errInterrupted
	}
	return info, err
}

// begin marks req as being analyzed and republishes its cached result.
// It returns the cached depth; shallower results are not published.
func (a *Analyzer) begin(req *request) int {
	var cached *evalcache.Entry[Result]
	if a.cache != nil {
		if e, ok := a.cache.Get(req.pos.FEN); ok {
			cached = &e
		}
	}

	a.publish(func(r *Result) {
		r.Status = StatusAnalyzing
		r.LastError = nil
		if cached != nil {
			r.Score = cached.Value.Score
			r.Depth = cached.Value.Depth
			r.FEN = req.pos.FEN
		}
	})
	if cached == nil {
		return 0
	}
	return cached.Depth
}

// record publishes one info record of req's analysis. Records are dropped
// until the search has reached floor, the depth of the cached result.
func (a *Analyzer) record(req *request, info uci.Info, floor, reached int) {
	if reached < floor {
		return
	}
	prev := a.published.Load()
	if prev.FEN != req.pos.FEN && !info.HasScore {
		// A depth without a score would pair with the previous position's score.
		return
	}

	next := *prev
	next.FEN = req.pos.FEN
	if info.HasScore {
		next.Score = FromUCI(info.Score, req.pos.Turn)
	}
	if info.HasDepth {
		next.Depth = info.Depth
		a.stats.SetGauge(stats.MetricDepth, int64(info.Depth))
	}
	next.Status = StatusAnalyzing
	next.UpdatedAt = time.Now()
	a.published.Store(&next)

	if a.cache != nil {
		a.cache.Put(req.pos.FEN, next.Depth, next)
	}
}

// fault tears down the session and publishes the error. Score and depth
// are left as they were.
func (a *Analyzer) fault(err error) {
	a.closeSession()
	a.stats.IncCounter(stats.MetricEngineFaults, 1)
	a.logger.Warn("engine fault, respawning after backoff",
		zap.Error(err),
		zap.Duration("backoff", a.backoff),
	)
	a.publish(func(r *Result) {
		r.Status = StatusFaulted
		r.LastError = err
	})
}

func (a *Analyzer) shutdown() {
	a.closeSession()
	a.publish(func(r *Result) { r.Status = StatusStopped })
	a.logger.Debug("analyzer stopped")
}

func (a *Analyzer) closeSession() {
	if a.session == nil {
		return
	}
	if err := a.session.Close(); err != nil {
		a.logger.Debug("closing engine", zap.Error(err))
	}
	a.session = nil
}

// publish applies fn to a copy of the current result and stores it.
// Only the worker, or Close before the worker started, publishes.
func (a *Analyzer) publish(fn func(*Result)) {
	next := *a.published.Load()
	fn(&next)
	next.UpdatedAt = time.Now()
	a.published.Store(&next)
}
