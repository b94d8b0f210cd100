package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/daemon"
	"github.com/npratt/tabsuspend/internal/events"
	"github.com/npratt/tabsuspend/internal/power"
	"github.com/npratt/tabsuspend/internal/shutdown"
	"github.com/npratt/tabsuspend/internal/tabs"
)

// shutdownTimeout bounds how long the daemon gets to wind down.
const shutdownTimeout = 10 * time.Second

func newStartCmd(logger *slog.Logger) *cobra.Command {
	startCmd := &cobra.Command{
		Use:   "start",
		Short: "Start the tab authority daemon",
		Long: `Start the daemon that owns the tab table.

Tabs are seeded from the snapshot file and reloaded when it changes or on
SIGHUP. Use --daemon to run in the background.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if viper.GetBool(FlagNoWatch) {
				cfg.Tracker.WatchTabs = false
			}
			if viper.GetBool(FlagNoPowerBus) {
				cfg.Tracker.ProbePower = false
			}

			if viper.GetBool(FlagDaemon) {
				client := daemon.NewClient(cfg.Paths.Socket)
				if client.IsRunning() {
					return fmt.Errorf("daemon already running (socket: %s)", cfg.Paths.Socket)
				}
				shouldExit, _, err := daemon.Daemonize(cfg.Paths.Socket, cmd.OutOrStdout())
				if err != nil {
					return fmt.Errorf("daemonize: %w", err)
				}
				if shouldExit {
					return nil
				}
			}

			return runDaemon(cmd.Context(), cfg, logger)
		},
	}

	startCmd.Flags().Bool(FlagDaemon, false, "Run as a background daemon")
	startCmd.Flags().Bool(FlagNoWatch, false, "Do not reload the tab snapshot when it changes")
	startCmd.Flags().Bool(FlagNoPowerBus, false, "Do not read power and connectivity from D-Bus")
	bindFlags(startCmd)
	return startCmd
}

// loadTabs seeds registry from path. A missing snapshot leaves the table
// empty.
func loadTabs(registry *tabs.Registry, path string) (int, error) {
	snap, err := tabs.LoadSnapshot(path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	registry.Load(snap)
	return len(snap.Tabs), nil
}

// newProbe picks the power probe: D-Bus when enabled and reachable,
// otherwise a static online, not-charging state.
func newProbe(enabled bool, logger *slog.Logger) (power.Probe, func()) {
	fallback := power.Static{Online: true}
	if !enabled {
		return fallback, func() {}
	}
	p, err := power.NewDBusProbe(logger)
	if err != nil {
		logger.Warn("power probe unavailable, assuming online and on battery", "error", err)
		return fallback, func() {}
	}
	return p, func() { _ = p.Close() }
}

// runDaemon serves the tab table until a signal or stop request.
func runDaemon(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	projectRoot := daemon.FindProjectRoot("")
	infoPath := daemon.DaemonInfoPath(projectRoot)
	if err := os.MkdirAll(filepath.Dir(infoPath), 0o755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	pidFile := daemon.NewPIDFile(cfg.Paths.PID)
	pidFile.CleanupStale(cfg.Paths.Socket)
	if err := pidFile.Write(); err != nil {
		return err
	}
	defer func() { _ = pidFile.Remove() }()

	registry := tabs.NewRegistry(cfg.Options, tabs.WithRegistryLogger(logger))
	n, err := loadTabs(registry, cfg.Paths.Tabs)
	if err != nil {
		return fmt.Errorf("load tabs: %w", err)
	}

	logger.Info("tabsuspend starting",
		"version", version,
		"socket", cfg.Paths.Socket,
		"log_file", cfg.Paths.Log,
		"tabs_file", cfg.Paths.Tabs,
		"tabs", n,
		"daemon_mode", daemon.IsDaemonized(),
	)

	router := events.NewRouter(events.DefaultBufferSize)
	router.SetLogger(logger)
	logSink := events.NewLogSink(cfg.Paths.Log)
	statsSink := events.NewStatsSink()

	sinkCtx, sinkCancel := context.WithCancel(ctx)
	defer sinkCancel()

	if err := logSink.Start(sinkCtx, router.Subscribe()); err != nil {
		return fmt.Errorf("start log sink: %w", err)
	}
	if err := statsSink.Start(sinkCtx, router.SubscribeBuffered(events.StatsBufferSize)); err != nil {
		_ = logSink.Stop()
		return fmt.Errorf("start stats sink: %w", err)
	}
	defer func() {
		router.Close()
		_ = logSink.Stop()
		_ = statsSink.Stop()
	}()

	router.Emit(&events.TabsLoadedEvent{
		BaseEvent: events.NewDaemonEvent(events.EventTabsLoaded),
		Path:      cfg.Paths.Tabs,
		Count:     n,
	})

	watcher, err := tabs.NewWatcher(registry, cfg.Paths.Tabs, logger, func(count int) {
		router.Emit(&events.TabsLoadedEvent{
			BaseEvent: events.NewEvent(events.EventTabsLoaded, events.SourceWatcher),
			Path:      cfg.Paths.Tabs,
			Count:     count,
		})
	})
	if err != nil {
		return fmt.Errorf("create tabs watcher: %w", err)
	}
	defer func() { _ = watcher.Stop() }()
	if cfg.Tracker.WatchTabs && cfg.Paths.Tabs != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.Paths.Tabs), 0o755); err != nil {
			return fmt.Errorf("create tabs directory: %w", err)
		}
		if err := watcher.Start(); err != nil {
			logger.Warn("tabs watcher not started", "error", err)
		}
	}

	probe, closeProbe := newProbe(cfg.Tracker.ProbePower, logger)
	defer closeProbe()
	tracker := tabs.NewTracker(registry,
		tabs.WithProbe(probe),
		tabs.WithCheckInterval(cfg.Tracker.CheckInterval),
		tabs.WithCheckDelay(cfg.Tracker.CheckDelay),
		tabs.WithTrackerLogger(logger),
	)

	dmn := daemon.New(cfg, registry, router, logger, daemon.WithStats(statsSink))

	info := &daemon.DaemonInfo{
		InstanceID: dmn.InstanceID(),
		SocketPath: cfg.Paths.Socket,
		PIDPath:    cfg.Paths.PID,
		LogPath:    cfg.Paths.Log,
		TabsPath:   cfg.Paths.Tabs,
		StartTime:  time.Now(),
		PID:        os.Getpid(),
	}
	if err := daemon.WriteDaemonInfo(infoPath, info); err != nil {
		logger.Warn("failed to write daemon info", "error", err)
	}
	defer func() { _ = daemon.RemoveDaemonInfo(infoPath) }()

	daemonCtx, daemonCancel := context.WithCancel(ctx)
	defer daemonCancel()
	daemonDone := make(chan struct{})
	go func() {
		defer close(daemonDone)
		if err := dmn.Start(daemonCtx); err != nil {
			logger.Error("daemon server error", "error", err)
		}
	}()

	return shutdown.RunWithGracefulShutdown(
		ctx,
		logger,
		shutdownTimeout,
		func(runCtx context.Context) error {
			tracker.Run(runCtx)
			return runCtx.Err()
		},
		shutdown.Hooks{
			Shutdown: func(shutdownCtx context.Context) error {
				daemonCancel()
				select {
				case <-daemonDone:
				case <-shutdownCtx.Done():
					return shutdownCtx.Err()
				}
				_ = watcher.Stop()
				if cfg.Paths.Tabs == "" {
					return nil
				}
				if err := tabs.SaveSnapshot(cfg.Paths.Tabs, registry.Snapshot()); err != nil {
					return fmt.Errorf("save tabs: %w", err)
				}
				return nil
			},
			Reload: watcher.Reload,
			Stop: dmn.StopRequested(),
		},
	)
}
