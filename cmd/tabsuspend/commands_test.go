package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/daemon"
	"github.com/npratt/tabsuspend/internal/events"
	"github.com/npratt/tabsuspend/internal/power"
	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
	"github.com/npratt/tabsuspend/internal/testutil"
)

func TestParseCommandArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCmd    tabstatus.Command
		wantStatus tabstatus.Status
		wantErr    string
	}{
		{"plain command", []string{"suspend-all"}, tabstatus.CmdSuspendAll, "", ""},
		{"update icon", []string{"update-icon"}, tabstatus.CmdUpdateIcon, "", ""},
		{"update icon with status", []string{"update-icon", "normal"}, tabstatus.CmdUpdateIcon, tabstatus.Normal, ""},
		{"unknown command", []string{"explode"}, "", "", "unknown command"},
		{"bad status", []string{"update-icon", "sleepy"}, "", "", "unrecognized tab status"},
		{"status on other command", []string{"suspend-one", "normal"}, "", "", "does not take a status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, status, err := parseCommandArgs(tt.args)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if cmd != tt.wantCmd || status != tt.wantStatus {
				t.Errorf("got (%q, %q), want (%q, %q)", cmd, status, tt.wantCmd, tt.wantStatus)
			}
		})
	}
}

func TestRenderStatus(t *testing.T) {
	st := &daemon.StatusResponse{
		Status:     "running",
		InstanceID: "01HZX",
		PID:        42,
		Uptime:     "5 minutes",
		StartTime:  time.Now().Add(-5 * time.Minute),
		Tabs:       3,
		Counts:     map[string]int{"pinned": 1, "normal": 2},
		Icon:       "normal",
		Stats: events.Stats{
			Queries:     7,
			Commands:    map[string]int{"suspend-one": 2, "suspend-all": 1},
			Failures:    1,
			LastCommand: "suspend-one",
			LastEventAt: time.Now().Add(-time.Minute),
		},
	}

	var buf bytes.Buffer
	renderStatus(&buf, st)
	out := buf.String()

	for _, want := range []string{
		"Status: running",
		"Instance: 01HZX (pid 42)",
		"Uptime: 5 minutes",
		"Tabs: 3",
		"Queries: 7",
		"Failures: 1",
		"Commands: suspend-all=1 suspend-one=2",
		"Last command: suspend-one",
		"Last event: 1 minute ago",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "normal:") > strings.Index(out, "pinned:") {
		t.Errorf("counts should be sorted by status:\n%s", out)
	}
}

func TestRenderResult(t *testing.T) {
	var buf bytes.Buffer
	renderResult(&buf, &tabs.Result{Command: tabstatus.CmdSuspendAll, Affected: []int{1, 2, 3}})
	if got := buf.String(); !strings.Contains(got, "suspend-all: 3 tabs affected") {
		t.Errorf("output = %q", got)
	}

	buf.Reset()
	renderResult(&buf, &tabs.Result{Command: tabstatus.CmdUpdateIcon, Icon: tabstatus.Pinned})
	if got := buf.String(); !strings.Contains(got, "0 tabs affected, icon pinned") {
		t.Errorf("output = %q", got)
	}
}

type fakeAbout struct {
	started time.Time
	noNag   any
	err     error
}

func (f fakeAbout) Status(ctx context.Context) (*daemon.StatusResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &daemon.StatusResponse{StartTime: f.started}, nil
}

func (f fakeAbout) GetOption(ctx context.Context, name string) (any, error) {
	return f.noNag, nil
}

func TestRenderAbout(t *testing.T) {
	started := time.Now().Add(-2 * time.Hour)

	var buf bytes.Buffer
	if err := renderAbout(context.Background(), &buf, fakeAbout{started: started, noNag: false}); err != nil {
		t.Fatalf("renderAbout() error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Daemon started 2 hours ago") || !strings.Contains(out, "consider a donation") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	if err := renderAbout(context.Background(), &buf, fakeAbout{started: started, noNag: true}); err != nil {
		t.Fatalf("renderAbout() error: %v", err)
	}
	if out := buf.String(); !strings.Contains(out, "Thanks for supporting") || strings.Contains(out, "donation") {
		t.Errorf("output = %q", out)
	}

	if err := renderAbout(context.Background(), &buf, fakeAbout{err: daemon.ErrNotRunning}); !errors.Is(err, daemon.ErrNotRunning) {
		t.Errorf("error = %v, want ErrNotRunning", err)
	}
}

func TestLoadTabs(t *testing.T) {
	_, path, cleanup := testutil.SetupProjectDirWithTabs(t, testutil.WindowSnapshotYAML)
	defer cleanup()

	registry := tabs.NewRegistry(tabs.DefaultOptions())
	n, err := loadTabs(registry, path)
	if err != nil {
		t.Fatalf("loadTabs() error: %v", err)
	}
	if n != 5 || registry.Len() != 5 {
		t.Errorf("loaded %d tabs (registry has %d), want 5", n, registry.Len())
	}
}

func TestLoadTabs_MissingSnapshot(t *testing.T) {
	dir, cleanup := testutil.SetupProjectDir(t)
	defer cleanup()

	registry := tabs.NewRegistry(tabs.DefaultOptions())
	n, err := loadTabs(registry, filepath.Join(dir, testutil.ProjectDir, "tabs.yaml"))
	if err != nil {
		t.Fatalf("missing snapshot should not fail: %v", err)
	}
	if n != 0 {
		t.Errorf("loaded %d tabs, want 0", n)
	}
}

func TestLoadTabs_InvalidSnapshot(t *testing.T) {
	_, path, cleanup := testutil.SetupProjectDirWithTabs(t, "tabs: [\n")
	defer cleanup()

	if _, err := loadTabs(tabs.NewRegistry(tabs.DefaultOptions()), path); err == nil {
		t.Error("expected an error for a malformed snapshot")
	}
}

func TestNewProbe_Disabled(t *testing.T) {
	probe, closeProbe := newProbe(false, slog.Default())
	defer closeProbe()

	state, err := probe.Probe(context.Background())
	if err != nil {
		t.Fatalf("Probe() error: %v", err)
	}
	if state != (power.State{Online: true}) {
		t.Errorf("state = %+v, want online and not charging", state)
	}
}

func TestPopupConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Resolver.PatientRetries = 7
	client := daemon.NewClient(filepath.Join(t.TempDir(), "none.sock"))

	pc := popupConfig(cfg, client, slog.Default())
	if pc.PatientRetries != 7 || pc.ImmediateRetries != 0 {
		t.Errorf("retries = %d/%d", pc.ImmediateRetries, pc.PatientRetries)
	}
	if pc.RetryDelay != cfg.Resolver.RetryDelay || pc.FadeIn != cfg.Popup.FadeIn {
		t.Error("timings should come from config")
	}
	if pc.Version != version {
		t.Errorf("Version = %q, want %q", pc.Version, version)
	}
	if _, err := pc.StartTime(context.Background()); !errors.Is(err, daemon.ErrNotRunning) {
		t.Errorf("StartTime error = %v, want ErrNotRunning", err)
	}
}

func TestVersionCommand(t *testing.T) {
	root := newRootCmd(slog.Default(), &slog.LevelVar{})
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetArgs([]string{"version"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	if got := buf.String(); got != "tabsuspend dev\n" {
		t.Errorf("output = %q", got)
	}
}

func TestCommandCmd_RejectsUnknownName(t *testing.T) {
	root := newRootCmd(slog.Default(), &slog.LevelVar{})
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"cmd", "explode"})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Errorf("error = %v, want unknown command", err)
	}
}

func TestPopupCommand_NoDaemonRendersError(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "xdg"))

	cfgPath := testutil.WriteFile(t, dir, "popup.yaml",
		"resolver:\n  patient_retries: 2\n  retry_delay: 1ms\n  query_timeout: 100ms\n")

	root := newRootCmd(slog.Default(), &slog.LevelVar{})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"popup", "--plain",
		"--config", cfgPath,
		"--socket-path", filepath.Join(dir, "missing.sock")})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error: %v", err)
	}
	got := out.String()
	if !strings.Contains(got, "status: error") {
		t.Errorf("output = %q, want status: error", got)
	}
	if !strings.Contains(got, "Failed to load tab information.") {
		t.Errorf("output = %q, want error detail", got)
	}
}
