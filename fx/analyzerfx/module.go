// Package analyzerfx provides an fx module for an engine-backed analyzer.
package analyzerfx

import (
	"context"
	"strconv"

	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/discochess/evalbar"
	"github.com/discochess/evalbar/internal/stats"
	"github.com/discochess/evalbar/internal/stats/logger"
	"github.com/discochess/evalbar/internal/uci"
)

// Config holds configuration for the analyzer.
type Config struct {
	// EnginePath is the UCI engine executable. Ignored when an
	// evalbar.Launcher is provided.
	EnginePath string

	// Threads and HashMB are passed to the engine when positive.
	Threads int
	HashMB  int

	// DepthCeiling is the depth at which analysis of a position stops.
	// Default is evalbar.DefaultDepthCeiling.
	DepthCeiling int

	// CacheSize is the number of positions whose evaluation is remembered.
	// Zero keeps the default; negative disables the cache.
	CacheSize int
}

// Module provides a started *evalbar.Analyzer, closed on stop.
// Requires a *zap.Logger and a Config. An evalbar.Launcher may be provided
// to replace the engine process, which is useful for testing.
var Module = fx.Module("analyzer",
	fx.Provide(
		newStatsCollector,
		newAnalyzer,
	),
)

func newStatsCollector(log *zap.Logger) stats.Collector {
	return logger.New(log.Named("evalbar.stats"))
}

// Params holds dependencies for creating the analyzer.
type Params struct {
	fx.In

	Config    Config
	Logger    *zap.Logger
	Collector stats.Collector
	Launcher  evalbar.Launcher `optional:"true"`
	Lifecycle fx.Lifecycle
}

// Result holds the provided analyzer.
type Result struct {
	fx.Out

	Analyzer *evalbar.Analyzer
}

func newAnalyzer(p Params) (Result, error) {
	opts := []evalbar.Option{
		evalbar.WithStats(p.Collector),
		evalbar.WithLogger(p.Logger.Named("evalbar")),
	}
	if p.Launcher != nil {
		opts = append(opts, evalbar.WithLauncher(p.Launcher))
	} else {
		opts = append(opts,
			evalbar.WithEnginePath(p.Config.EnginePath),
			evalbar.WithEngineOptions(engineOptions(p.Config)...),
		)
	}
	if p.Config.DepthCeiling > 0 {
		opts = append(opts, evalbar.WithDepthCeiling(p.Config.DepthCeiling))
	}
	if p.Config.CacheSize != 0 {
		opts = append(opts, evalbar.WithCacheSize(p.Config.CacheSize))
	}

	a, err := evalbar.New(opts...)
	if err != nil {
		return Result{}, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return a.Start()
		},
		OnStop: func(ctx context.Context) error {
			return a.Close()
		},
	})

	return Result{Analyzer: a}, nil
}

func engineOptions(c Config) []uci.Option {
	var opts []uci.Option
	if c.Threads > 0 {
		opts = append(opts, uci.WithSetOption("Threads", strconv.Itoa(c.Threads)))
	}
	if c.HashMB > 0 {
		opts = append(opts, uci.WithSetOption("Hash", strconv.Itoa(c.HashMB)))
	}
	return opts
}
