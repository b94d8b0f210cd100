// Package shutdown runs a long-lived component until a signal or stop
// request arrives, then gives it a bounded window to wind down.
package shutdown

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// Hooks are the optional callbacks RunWithGracefulShutdown drives.
type Hooks struct {
	// Shutdown runs after the runner's context is cancelled.
	Shutdown func(ctx context.Context) error
	// Reload runs on SIGHUP. The runner keeps going either way.
	Reload func() error
	// Stop, when closed, shuts down as if a signal had arrived.
	Stop <-chan struct{}
}

// RunWithGracefulShutdown starts runner and blocks until it returns on its
// own, SIGINT or SIGTERM arrives, or hooks.Stop closes. In the latter two
// cases the runner's context is cancelled and it gets up to timeout to
// return.
func RunWithGracefulShutdown(
	ctx context.Context,
	logger *slog.Logger,
	timeout time.Duration,
	runner func(ctx context.Context) error,
	hooks Hooks,
) error {
	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()

	runDone := make(chan error, 1)
	go func() {
		runDone <- runner(runCtx)
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigChan)

	for {
		select {
		case sig := <-sigChan:
			if sig == syscall.SIGHUP {
				if hooks.Reload == nil {
					continue
				}
				logger.Info("received SIGHUP, reloading")
				if err := hooks.Reload(); err != nil {
					logger.Error("reload failed", "error", err)
				}
				continue
			}
			logger.Info("received signal, initiating shutdown", "signal", sig)
			return drain(runCancel, runDone, logger, timeout, hooks.Shutdown)

		case <-hooks.Stop:
			logger.Info("stop requested, initiating shutdown")
			return drain(runCancel, runDone, logger, timeout, hooks.Shutdown)

		case err := <-runDone:
			return err
		}
	}
}

func drain(
	cancel context.CancelFunc,
	runDone <-chan error,
	logger *slog.Logger,
	timeout time.Duration,
	shutdown func(ctx context.Context) error,
) error {
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if shutdown != nil {
		if err := shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}

	select {
	case err := <-runDone:
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
	case <-shutdownCtx.Done():
		logger.Warn("shutdown timeout exceeded")
	}

	logger.Info("shutdown complete")
	return nil
}
