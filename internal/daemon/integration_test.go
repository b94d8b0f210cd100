package daemon

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/events"
	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// testDaemonEnv wires a real registry, router, sinks, daemon, and client.
type testDaemonEnv struct {
	t        *testing.T
	cfg      *config.Config
	registry *tabs.Registry
	router   *events.Router
	journal  *events.LogSink
	stats    *events.StatsSink
	daemon   *Daemon
	client   *Client
	cancel   context.CancelFunc
	errCh    chan error
}

func newTestDaemonEnv(t *testing.T) *testDaemonEnv {
	t.Helper()
	tmpDir := t.TempDir()

	cfg := config.Default()
	cfg.Paths.Socket = shortSocketPath(t)
	cfg.Paths.Log = filepath.Join(tmpDir, "events.jsonl")

	reg := tabs.NewRegistry(tabs.DefaultOptions())
	reg.Load(tabs.Snapshot{
		FocusedWindow: 1,
		Tabs: []tabs.Tab{
			{ID: 1, WindowID: 1, URL: "https://news.example.com/today", Active: true, Highlighted: true, Checked: true},
			{ID: 2, WindowID: 1, URL: "https://mail.example.com", Pinned: true, Highlighted: true, Checked: true},
			{ID: 3, WindowID: 2, URL: "https://other.example.com", Active: true, Checked: true},
		},
	})

	router := events.NewRouter(events.StatsBufferSize)
	env := &testDaemonEnv{
		t:        t,
		cfg:      cfg,
		registry: reg,
		router:   router,
		journal:  events.NewLogSink(cfg.Paths.Log),
		stats:    events.NewStatsSink(),
		client:   NewClient(cfg.Paths.Socket),
		errCh:    make(chan error, 1),
	}
	env.daemon = New(cfg, reg, router, nil, WithStats(env.stats))
	return env
}

func (e *testDaemonEnv) start() {
	e.t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel

	if err := e.journal.Start(ctx, e.router.SubscribeBuffered(events.StatsBufferSize)); err != nil {
		e.t.Fatalf("start journal: %v", err)
	}
	if err := e.stats.Start(ctx, e.router.SubscribeBuffered(events.StatsBufferSize)); err != nil {
		e.t.Fatalf("start stats: %v", err)
	}

	go func() { e.errCh <- e.daemon.Start(ctx) }()
	waitForSocket(e.t, e.cfg.Paths.Socket, 2*time.Second)

	e.t.Cleanup(func() {
		cancel()
		e.router.Close()
		_ = e.journal.Stop()
		_ = e.stats.Stop()
	})
}

func TestDaemon_TabStatusRoundTrip(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()
	ctx := context.Background()

	info, err := env.client.TabInfo(ctx, false)
	if err != nil {
		t.Fatalf("TabInfo() error: %v", err)
	}
	if info.TabID != 1 || info.Status != tabstatus.Normal {
		t.Fatalf("unexpected info: %+v", info)
	}

	selected, err := env.client.HighlightedTabs(ctx)
	if err != nil {
		t.Fatalf("HighlightedTabs() error: %v", err)
	}
	if len(selected) != 2 {
		t.Fatalf("expected 2 highlighted tabs in the focused window, got %d", len(selected))
	}
	if selected[1].Status != string(tabstatus.Pinned) {
		t.Errorf("tab 2 status = %q, want pinned", selected[1].Status)
	}

	res, err := env.client.Command(ctx, tabstatus.CmdSuspendOne, "")
	if err != nil {
		t.Fatalf("suspend-one error: %v", err)
	}
	if len(res.Affected) != 1 || res.Affected[0] != 1 {
		t.Errorf("suspend-one affected %v, want [1]", res.Affected)
	}

	info, err = env.client.TabInfo(ctx, false)
	if err != nil {
		t.Fatalf("TabInfo() error: %v", err)
	}
	if info.Status != tabstatus.Suspended {
		t.Errorf("status after suspend-one = %q, want suspended", info.Status)
	}

	info, err = env.client.TabInfo(ctx, true)
	if err != nil {
		t.Fatalf("forced TabInfo() error: %v", err)
	}
	if info.Status != tabstatus.Unknown {
		t.Errorf("forced status = %q, want unknown", info.Status)
	}
}

func TestDaemon_UpdateIcon(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()
	ctx := context.Background()

	if err := env.client.UpdateIcon(ctx, tabstatus.Whitelisted); err != nil {
		t.Fatalf("UpdateIcon() error: %v", err)
	}
	if got := env.registry.IconStatus(); got != tabstatus.Whitelisted {
		t.Errorf("icon = %q, want whitelisted", got)
	}

	if err := env.client.UpdateIcon(ctx, ""); err != nil {
		t.Fatalf("UpdateIcon(recompute) error: %v", err)
	}
	if got := env.registry.IconStatus(); got != tabstatus.Normal {
		t.Errorf("recomputed icon = %q, want normal", got)
	}

	if _, err := env.client.Command(ctx, tabstatus.CmdUpdateIcon, "sparkly"); err == nil {
		t.Error("expected error for an unrecognized icon status")
	}
	if _, err := env.client.Command(ctx, "reticulate-splines", ""); err == nil {
		t.Error("expected error for an unknown command")
	}
}

func TestDaemon_Options(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()
	ctx := context.Background()

	v, err := env.client.GetOption(ctx, "ignore_pinned")
	if err != nil {
		t.Fatalf("GetOption() error: %v", err)
	}
	if v != true {
		t.Errorf("ignore_pinned = %v, want true", v)
	}

	if _, err := env.client.SetOption(ctx, "ignore_pinned", "false"); err != nil {
		t.Fatalf("SetOption() error: %v", err)
	}
	if st, _ := env.registry.Status(2); st != tabstatus.Normal {
		t.Errorf("pinned tab status with ignore_pinned off = %q, want normal", st)
	}

	if _, err := env.client.GetOption(ctx, "colour"); err == nil {
		t.Error("expected error for an unknown option")
	}
}

func TestDaemon_StatusAndStats(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()
	ctx := context.Background()

	_, _ = env.client.TabInfo(ctx, false)
	_ = env.client.Run(ctx, tabstatus.CmdSuspendAll)
	_ = env.client.Run(ctx, "bogus")

	var status *StatusResponse
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var err error
		status, err = env.client.Status(ctx)
		if err != nil {
			t.Fatalf("Status() error: %v", err)
		}
		if status.Stats.Queries >= 1 && status.Stats.Commands["suspend-all"] == 1 && status.Stats.Failures == 1 {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}

	if status.Status != "running" || status.PID != os.Getpid() {
		t.Errorf("unexpected status: %+v", status)
	}
	if status.InstanceID != env.daemon.InstanceID() {
		t.Errorf("InstanceID = %q, want %q", status.InstanceID, env.daemon.InstanceID())
	}
	if status.Tabs != 3 {
		t.Errorf("Tabs = %d, want 3", status.Tabs)
	}
	if status.Counts["suspended"] != 1 {
		t.Errorf("suspended count = %d, want 1 (only the normal tab suspends)", status.Counts["suspended"])
	}
	if status.Stats.Commands["suspend-all"] != 1 || status.Stats.Failures != 1 {
		t.Errorf("unexpected stats: %+v", status.Stats)
	}
}

func TestDaemon_StopRequest(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()

	if err := env.client.Stop(context.Background(), true); err != nil {
		t.Fatalf("Stop() error: %v", err)
	}

	select {
	case <-env.daemon.StopRequested():
	case <-time.After(2 * time.Second):
		t.Fatal("stop request was not signalled")
	}

	env.cancel()
	select {
	case err := <-env.errCh:
		if err != nil {
			t.Errorf("Start() returned error: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("daemon did not stop")
	}
	if env.client.IsRunning() {
		t.Error("socket should be closed after stop")
	}
}

func TestDaemon_Journal(t *testing.T) {
	env := newTestDaemonEnv(t)
	env.start()
	ctx := context.Background()

	_, _ = env.client.TabInfo(ctx, false)
	_ = env.client.Run(ctx, tabstatus.CmdTempWhitelistCurrent)
	_, _ = env.client.SetOption(ctx, "no_nag", true)

	want := map[events.EventType]bool{
		events.EventDaemonStart:   false,
		events.EventTabInfo:       false,
		events.EventCommand:       false,
		events.EventOptionChanged: false,
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		for k := range want {
			want[k] = false
		}
		f, err := os.Open(env.cfg.Paths.Log)
		if err == nil {
			scanner := bufio.NewScanner(f)
			for scanner.Scan() {
				ev, err := events.ParseEvent(scanner.Bytes())
				if err != nil || ev == nil {
					continue
				}
				if _, ok := want[ev.Type()]; ok {
					want[ev.Type()] = true
				}
			}
			_ = f.Close()
		}

		all := true
		for _, seen := range want {
			all = all && seen
		}
		if all {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Errorf("journal missing events: %v", want)
}
