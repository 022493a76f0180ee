package evalbar

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/discochess/evalbar/internal/evalcache"
	"github.com/discochess/evalbar/internal/stats"
	"github.com/discochess/evalbar/internal/uci"
)

const (
	// DefaultBackoff is the wait between an engine fault and the respawn.
	DefaultBackoff = time.Second

	// DefaultIdleInterval is how often an idle worker checks for work.
	DefaultIdleInterval = 100 * time.Millisecond

	// DefaultDepthCeiling is the depth at which analysis of a position stops.
	DefaultDepthCeiling = 244
)

// Option configures an Analyzer.
type Option interface {
	apply(*options)
}

// options holds the analyzer configuration.
type options struct {
	enginePath   string
	engineOpts   []uci.Option
	launcher     Launcher
	backoff      time.Duration
	idleInterval time.Duration
	depthCeiling int
	cacheSize    int
	stats        stats.Collector
	logger       *zap.Logger

	// sleep waits out the fault backoff. Replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

func defaultOptions() options {
	return options{
		backoff:      DefaultBackoff,
		idleInterval: DefaultIdleInterval,
		depthCeiling: DefaultDepthCeiling,
		cacheSize:    evalcache.DefaultSize,
		stats:        stats.NewNoop(),
		logger:       zap.NewNop(),
		sleep:        sleepContext,
	}
}

type optionFunc func(*options)

var _ Option = optionFunc(nil)

func (f optionFunc) apply(o *options) { f(o) }

// WithEnginePath runs the UCI engine executable at path.
func WithEnginePath(path string) Option {
	return optionFunc(func(o *options) {
		o.enginePath = path
	})
}

// WithEngineOptions passes options to every engine process started from
// the path given to WithEnginePath.
func WithEngineOptions(opts ...uci.Option) Option {
	return optionFunc(func(o *options) {
		o.engineOpts = append(o.engineOpts, opts...)
	})
}

// WithLauncher sets how engine sessions are started. It takes precedence
// over WithEnginePath.
func WithLauncher(l Launcher) Option {
	return optionFunc(func(o *options) {
		o.launcher = l
	})
}

// WithBackoff sets the wait after an engine fault before respawning.
// Default is one second.
func WithBackoff(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.backoff = d
	})
}

// WithIdleInterval sets how often the worker polls while nothing is submitted.
// Default is 100ms.
func WithIdleInterval(d time.Duration) Option {
	return optionFunc(func(o *options) {
		o.idleInterval = d
	})
}

// WithDepthCeiling sets the depth after which analysis of a position stops.
// Default is 244.
func WithDepthCeiling(depth int) Option {
	return optionFunc(func(o *options) {
		o.depthCeiling = depth
	})
}

// WithCacheSize sets how many positions keep their last evaluation.
// Zero or a negative size disables the cache.
func WithCacheSize(n int) Option {
	return optionFunc(func(o *options) {
		o.cacheSize = n
	})
}

// WithStats sets the stats collector.
// If not set, a no-op collector is used.
func WithStats(c stats.Collector) Option {
	return optionFunc(func(o *options) {
		o.stats = c
	})
}

// WithLogger sets the logger.
// If not set, a no-op logger is used.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(o *options) {
		o.logger = l
	})
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
