package evalbar

import (
	"context"

	"go.uber.org/zap"

	"github.com/discochess/evalbar/internal/uci"
)

// Session is one running engine process.
// *uci.Engine is the production implementation.
type Session interface {
	// Go starts searching pos.
	Go(ctx context.Context, pos uci.Position) error

	// Next blocks for the next info record of the current search.
	// It returns uci.ErrSearchDone when the search has ended.
	Next(ctx context.Context) (uci.Info, error)

	// Stop asks the engine to end the current search.
	Stop() error

	// Close releases the process.
	Close() error
}

var _ Session = (*uci.Engine)(nil)

// Launcher starts engine sessions.
type Launcher interface {
	Launch(ctx context.Context) (Session, error)
}

// LauncherFunc adapts a function to Launcher.
type LauncherFunc func(ctx context.Context) (Session, error)

// Launch calls f.
func (f LauncherFunc) Launch(ctx context.Context) (Session, error) { return f(ctx) }

// ProcessLauncher starts the executable at path for every session.
func ProcessLauncher(path string, opts ...uci.Option) Launcher {
	return LauncherFunc(func(ctx context.Context) (Session, error) {
		return uci.Start(ctx, path, opts...)
	})
}

// processLauncher builds the launcher implied by o.
func (o *options) processLauncher() Launcher {
	opts := append([]uci.Option{uci.WithLogger(o.logger.Named("uci"))}, o.engineOpts...)
	o.logger.Debug("using engine executable", zap.String("path", o.enginePath))
	return ProcessLauncher(o.enginePath, opts...)
}
