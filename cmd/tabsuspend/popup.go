package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/daemon"
	"github.com/npratt/tabsuspend/internal/tui"
)

func newPopupCmd(logLevel *slog.LevelVar) *cobra.Command {
	popupCmd := &cobra.Command{
		Use:   "popup",
		Short: "Show the active tab's status and actions",
		Long: `Open the status popup for the active tab.

When stdout is not a terminal, or with --plain, the status is resolved once
and printed without running any action.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			client := popupClient(cfg)
			if cfg.Resolver.QueryTimeout > 0 {
				client.SetTimeout(cfg.Resolver.QueryTimeout)
			}

			logResult := SetupPopupLogger(cfg.Paths.PopupLog, logLevel, cfg.LogRotation)
			defer func() { _ = logResult.Close() }()

			p := tui.New(popupConfig(cfg, client, logResult.Logger))

			if viper.GetBool(FlagPlain) || !tui.IsTerminal() {
				return p.RenderPlain(cmd.Context(), cmd.OutOrStdout())
			}
			if err := p.Run(cmd.Context()); err != nil {
				return fmt.Errorf("popup: %w", err)
			}
			return nil
		},
	}
	popupCmd.Flags().Bool(FlagPlain, false, "Print the status once instead of opening the popup")
	bindFlags(popupCmd)
	return popupCmd
}

// popupClient finds the daemon like getDaemonClient but never fails: an
// unreachable daemon surfaces through the resolver as an error status.
func popupClient(cfg *config.Config) *daemon.Client {
	if info, err := daemon.FindDaemonInfo(""); err == nil {
		return daemon.NewClient(info.SocketPath)
	}
	return daemon.NewClient(cfg.Paths.Socket)
}

// popupConfig wires the popup to the daemon client.
func popupConfig(cfg *config.Config, client *daemon.Client, logger *slog.Logger) tui.Config {
	return tui.Config{
		Querier:   client,
		Commander: client,
		Selection: client,
		Options:   client,
		StartTime: func(ctx context.Context) (time.Time, error) {
			st, err := client.Status(ctx)
			if err != nil {
				return time.Time{}, err
			}
			return st.StartTime, nil
		},
		Version:          version,
		ImmediateRetries: cfg.Resolver.ImmediateRetries,
		PatientRetries:   cfg.Resolver.PatientRetries,
		RetryDelay:       cfg.Resolver.RetryDelay,
		FadeIn:           cfg.Popup.FadeIn,
		Logger:           logger,
	}
}
