package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/npratt/tabsuspend/internal/daemon"
	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

var (
	okColor    = color.New(color.FgHiGreen)
	warnColor  = color.New(color.FgYellow)
	labelColor = color.New(color.FgCyan)
)

func newStopCmd() *cobra.Command {
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}

			force := viper.GetBool(FlagForce)
			if err := client.Stop(cmd.Context(), force); err != nil {
				return err
			}

			if force {
				fmt.Fprintln(cmd.OutOrStdout(), "Stop requested - daemon stopping immediately")
			} else {
				fmt.Fprintln(cmd.OutOrStdout(), "Stop requested - daemon will save tabs and exit")
			}
			return nil
		},
	}

	stopCmd.Flags().Bool(FlagForce, false, "Stop without the grace delay")
	bindFlags(stopCmd)
	return stopCmd
}

func newStatusCmd() *cobra.Command {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := getDaemonClient()
			if err != nil {
				return err
			}

			status, err := client.Status(cmd.Context())
			if err != nil {
				return err
			}

			if viper.GetBool(FlagJSON) {
				data, err := json.MarshalIndent(status, "", "  ")
				if err != nil {
					return fmt.Errorf("marshal status: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return nil
			}

			renderStatus(cmd.OutOrStdout(), status)
			return nil
		},
	}
	statusCmd.Flags().Bool(FlagJSON, false, "Output status as JSON")
	bindFlags(statusCmd)
	return statusCmd
}

// renderStatus prints the human-readable daemon status.
func renderStatus(w io.Writer, status *daemon.StatusResponse) {
	fmt.Fprintf(w, "Status: %s\n", okColor.Sprint(status.Status))
	fmt.Fprintf(w, "Instance: %s (pid %d)\n", status.InstanceID, status.PID)
	fmt.Fprintf(w, "Uptime: %s\n", status.Uptime)
	fmt.Fprintf(w, "Started: %s\n", status.StartTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(w, "Icon: %s\n", status.Icon)
	fmt.Fprintf(w, "Tabs: %d\n", status.Tabs)

	names := make([]string, 0, len(status.Counts))
	for name := range status.Counts {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(w, "  %s %d\n", labelColor.Sprintf("%-15s", name+":"), status.Counts[name])
	}

	st := status.Stats
	fmt.Fprintf(w, "Stats:\n")
	fmt.Fprintf(w, "  Queries: %d\n", st.Queries)
	fmt.Fprintf(w, "  Reloads: %d\n", st.Reloads)
	if st.Failures > 0 {
		fmt.Fprintf(w, "  Failures: %s\n", warnColor.Sprint(st.Failures))
	}
	if len(st.Commands) > 0 {
		cmds := make([]string, 0, len(st.Commands))
		for name, n := range st.Commands {
			cmds = append(cmds, fmt.Sprintf("%s=%d", name, n))
		}
		sort.Strings(cmds)
		fmt.Fprintf(w, "  Commands: %s\n", strings.Join(cmds, " "))
	}
	if st.LastCommand != "" {
		fmt.Fprintf(w, "  Last command: %s\n", st.LastCommand)
	}
	if !st.LastEventAt.IsZero() {
		fmt.Fprintf(w, "  Last event: %s\n", humanize.Time(st.LastEventAt))
	}
}

// parseCommandArgs validates `cmd <name> [status]`.
func parseCommandArgs(args []string) (tabstatus.Command, tabstatus.Status, error) {
	name := tabstatus.Command(args[0])
	if !name.Valid() {
		known := make([]string, len(tabstatus.Commands))
		for i, c := range tabstatus.Commands {
			known[i] = string(c)
		}
		return "", "", fmt.Errorf("unknown command %q (known: %s)", args[0], strings.Join(known, ", "))
	}

	var status tabstatus.Status
	if len(args) > 1 {
		if name != tabstatus.CmdUpdateIcon {
			return "", "", fmt.Errorf("%s does not take a status", name)
		}
		st, err := tabstatus.Parse(args[1])
		if err != nil {
			return "", "", err
		}
		status = st
	}
	return name, status, nil
}

// renderResult prints what a command changed.
func renderResult(w io.Writer, res *tabs.Result) {
	line := fmt.Sprintf("%s: %s affected", okColor.Sprint(res.Command), english.Plural(len(res.Affected), "tab", ""))
	if res.Icon != "" {
		line += fmt.Sprintf(", icon %s", res.Icon)
	}
	fmt.Fprintln(w, line)
}

func newCommandCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cmd <name> [status]",
		Short: "Send a command to the daemon",
		Long: `Send one command to the daemon, as the popup would.

Commands: suspend-one, suspend-all, unsuspend-all, suspend-selected,
unsuspend-selected, whitelist-current, temporarily-whitelist-current,
unsuspend-highlighted, unwhitelist-highlighted,
undo-temporary-whitelist-highlighted, update-icon [status].`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, status, err := parseCommandArgs(args)
			if err != nil {
				return err
			}

			client, err := getDaemonClient()
			if err != nil {
				return err
			}

			res, err := client.Command(cmd.Context(), name, status)
			if err != nil {
				return err
			}
			renderResult(cmd.OutOrStdout(), res)
			return nil
		},
	}
}

func newAboutCmd() *cobra.Command {
	aboutCmd := &cobra.Command{
		Use:   "about",
		Short: "Show version, daemon uptime, and donation settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Tab Suspender v%s\n", version)

			client, err := getDaemonClient()
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			donated, donateAgain := viper.GetBool(FlagDonated), viper.GetBool(FlagDonateAgain)
			if donated && donateAgain {
				return fmt.Errorf("--%s and --%s are mutually exclusive", FlagDonated, FlagDonateAgain)
			}
			if donated || donateAgain {
				if _, err := client.SetOption(ctx, "no_nag", donated); err != nil {
					return err
				}
			}

			return renderAbout(ctx, out, client)
		},
	}
	aboutCmd.Flags().Bool(FlagDonated, false, "Hide the donation notice")
	aboutCmd.Flags().Bool(FlagDonateAgain, false, "Show the donation notice again")
	bindFlags(aboutCmd)
	return aboutCmd
}

// aboutSource is the part of the daemon client the about output reads.
type aboutSource interface {
	Status(ctx context.Context) (*daemon.StatusResponse, error)
	GetOption(ctx context.Context, name string) (any, error)
}

func renderAbout(ctx context.Context, w io.Writer, src aboutSource) error {
	status, err := src.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Daemon started %s\n", humanize.Time(status.StartTime))

	noNag, err := src.GetOption(ctx, "no_nag")
	if err != nil {
		return err
	}
	if v, _ := noNag.(bool); v {
		fmt.Fprintln(w, "Thanks for supporting Tab Suspender.")
	} else {
		fmt.Fprintln(w, warnColor.Sprint("Tab Suspender is free. If it keeps your memory in check, consider a donation."))
	}
	return nil
}

