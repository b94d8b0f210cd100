package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/daemon"
)

var version = "dev"

// getDaemonClient creates a daemon client by finding daemon.json in the
// project, falling back to the configured socket path.
func getDaemonClient() (*daemon.Client, error) {
	if info, err := daemon.FindDaemonInfo(""); err == nil {
		return daemon.NewClient(info.SocketPath), nil
	}

	cfg, err := loadConfig(nil)
	if err != nil {
		return nil, err
	}
	client := daemon.NewClient(cfg.Paths.Socket)
	if !client.IsRunning() {
		return nil, fmt.Errorf("%w (no daemon.json found)", daemon.ErrNotRunning)
	}
	return client, nil
}

// loadConfig loads layered config, applies explicitly set path flags, and
// resolves paths against the project root.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if changed(cmd, FlagLogFile) {
		cfg.Paths.Log = viper.GetString(FlagLogFile)
	}
	if changed(cmd, FlagTabsFile) {
		cfg.Paths.Tabs = viper.GetString(FlagTabsFile)
	}
	if changed(cmd, FlagSocketPath) {
		cfg.Paths.Socket = viper.GetString(FlagSocketPath)
	}

	cfg.Paths, err = daemon.ResolvePaths(cfg.Paths, daemon.FindProjectRoot(""))
	if err != nil {
		return nil, fmt.Errorf("resolve paths: %w", err)
	}
	return cfg, nil
}

func changed(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func bindFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})
}

func newRootCmd(logger *slog.Logger, logLevel *slog.LevelVar) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "tabsuspend",
		Short: "Tab suspension authority and status popup",
		Long: `tabsuspend keeps a table of browser tabs, decides which of them may be
suspended, and serves that decision over a Unix socket.

The popup command shows the active tab's suspension status and the actions
available for it: suspend, whitelist, pause, and window-wide operations.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if viper.GetBool(FlagVerbose) {
				logLevel.Set(slog.LevelDebug)
				logger.Debug("verbose logging enabled")
			}
		},
	}

	rootCmd.PersistentFlags().Bool(FlagVerbose, false, "Enable verbose (debug) logging")
	rootCmd.PersistentFlags().String(FlagConfig, "", "Config file path (default: .tabsuspend/config.yaml)")
	rootCmd.PersistentFlags().String(FlagLogFile, "", "Event journal path")
	rootCmd.PersistentFlags().String(FlagTabsFile, "", "Tab snapshot path (.yaml or .toml)")
	rootCmd.PersistentFlags().String(FlagSocketPath, "", "Unix socket path for daemon control")

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		_ = viper.BindPFlag(f.Name, f)
	})

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "tabsuspend %s\n", version)
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newStartCmd(logger))
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newCommandCmd())
	rootCmd.AddCommand(newPopupCmd(logLevel))
	rootCmd.AddCommand(newAboutCmd())
	rootCmd.AddCommand(newEventsCmd())
	return rootCmd
}

func main() {
	logLevel := &slog.LevelVar{}
	logger := NewLogger(os.Stderr, logLevel)
	slog.SetDefault(logger)

	viper.SetEnvPrefix("TABSUSPEND")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := newRootCmd(logger, logLevel).ExecuteContext(context.Background()); err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1)
	}
}
