package tui

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/x/exp/teatest"

	"github.com/npratt/tabsuspend/internal/popup"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// activeModel activates a popup against f and returns a model showing the
// settled result.
func activeModel(t *testing.T, f *fakeAuthority) (model, *Popup) {
	t.Helper()
	p := newTestPopup(f)
	p.Activate(context.Background())
	p.ctrl.Wait()

	next, _ := newModel(context.Background(), p).Update(activatedMsg{})
	return next.(model), p
}

func press(t *testing.T, m model, k tea.KeyMsg) (model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(k)
	return next.(model), cmd
}

func TestPopup_ImmediateStatus(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	p := newTestPopup(f)
	p.Activate(context.Background())
	p.ctrl.Wait()

	st := p.surface.snapshot()
	if st.status != tabstatus.Normal {
		t.Fatalf("status = %q, want normal", st.status)
	}
	for _, r := range []popup.Region{popup.RegionSuspendOne, popup.RegionWhitelist, popup.RegionTempWhitelist, popup.RegionOptsCurrent} {
		if !st.visible(r) {
			t.Errorf("region %s should be visible for a normal tab", r)
		}
	}
	if st.visible(popup.RegionOptsSelected) {
		t.Error("selected region should be hidden with no selection")
	}
}

func TestPopup_SelectedRegion(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	f.selected = 3
	p := newTestPopup(f)
	p.Activate(context.Background())

	if !p.surface.snapshot().visible(popup.RegionOptsSelected) {
		t.Error("selected region should be visible with 3 highlighted tabs")
	}
}

func TestPopup_PatientResultReplacesUnknown(t *testing.T) {
	f := newFakeAuthority(tabstatus.Unknown, tabstatus.Unknown, tabstatus.Pinned)
	p := newTestPopup(f)
	p.Activate(context.Background())
	p.ctrl.Wait()

	if got := p.ctrl.Current(); got != tabstatus.Pinned {
		t.Errorf("status after patient resolution = %q, want pinned", got)
	}
}

func TestPopup_PatientExhaustionShowsError(t *testing.T) {
	f := newFakeAuthority(tabstatus.Unknown)
	p := newTestPopup(f)
	p.Activate(context.Background())
	p.ctrl.Wait()

	if got := p.ctrl.Current(); got != tabstatus.Error {
		t.Errorf("status after exhausted retries = %q, want error", got)
	}
}

func TestPopup_RenderPlain(t *testing.T) {
	f := newFakeAuthority(tabstatus.Unknown, tabstatus.Suspended)
	f.selected = 2
	p := newTestPopup(f)

	var buf bytes.Buffer
	if err := p.RenderPlain(context.Background(), &buf); err != nil {
		t.Fatalf("RenderPlain() error: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"status: suspended",
		"Tab suspended.",
		"action: Unsuspend (unsuspend-highlighted)",
		"offered: whitelist, suspend-all, unsuspend-all, suspend-selected, unsuspend-selected",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if !p.ctrl.Closed() {
		t.Error("plain render should close the controller")
	}
	if len(f.commands()) != 0 {
		t.Errorf("plain render sent commands: %v", f.commands())
	}
}

func TestModel_RegionAction(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	m, p := activeModel(t, f)

	m, cmd := press(t, m, runes("w"))
	if cmd == nil {
		t.Fatal("expected a command for w")
	}
	msg, ok := cmd().(actionDoneMsg)
	if !ok || !msg.ran {
		t.Fatalf("whitelist should run, got %+v", msg)
	}

	got := f.commands()
	if len(got) != 2 || got[0] != "whitelist-current" || got[1] != "update-icon:" {
		t.Errorf("commands = %v, want [whitelist-current update-icon:]", got)
	}
	if !p.ctrl.Closed() {
		t.Error("controller should close after an action")
	}
}

func TestModel_HiddenActionFlashes(t *testing.T) {
	f := newFakeAuthority(tabstatus.Suspended)
	m, _ := activeModel(t, f)

	m, cmd := press(t, m, runes("p"))
	msg := cmd()
	next, _ := m.Update(msg)
	m = next.(model)

	if !strings.Contains(m.flash, "pause is not available") {
		t.Errorf("flash = %q", m.flash)
	}
	if len(f.commands()) != 0 {
		t.Errorf("hidden action sent commands: %v", f.commands())
	}
}

func TestModel_PrimaryAction(t *testing.T) {
	f := newFakeAuthority(tabstatus.Suspended)
	m, p := activeModel(t, f)

	if !m.keys.Primary.Enabled() {
		t.Fatal("primary key should be enabled for a suspended tab")
	}
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	cmd()

	got := f.commands()
	if len(got) != 2 || got[0] != "unsuspend-highlighted" || got[1] != "update-icon:normal" {
		t.Errorf("commands = %v", got)
	}
	if !p.ctrl.Closed() {
		t.Error("controller should close after the primary action")
	}
}

func TestModel_PrimaryDisabledWhenUnbound(t *testing.T) {
	f := newFakeAuthority(tabstatus.Pinned)
	m, _ := activeModel(t, f)

	if m.keys.Primary.Enabled() {
		t.Error("primary key should be disabled for a pinned tab")
	}
	_, cmd := press(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if msg := cmd(); msg != nil {
		t.Errorf("unexpected message %T", msg)
	}
	if len(f.commands()) != 0 {
		t.Errorf("commands = %v, want none", f.commands())
	}
}

func TestModel_View(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	f.selected = 2
	m, _ := activeModel(t, f)

	out := m.View()
	for _, want := range []string{
		"Tab will be suspended automatically.",
		"This tab",
		"suspend tab",
		"All tabs in window",
		"Selected tabs",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("view missing %q:\n%s", want, out)
		}
	}
}

func TestModel_FadeIn(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	p := newTestPopup(f)
	p.cfg.FadeIn = 50 * time.Millisecond

	m := newModel(context.Background(), p)
	if m.View() != "" {
		t.Error("content should be hidden before the fade completes")
	}
	next, _ := m.Update(fadeDoneMsg{})
	if next.(model).View() == "" {
		t.Error("content should show after the fade")
	}
}

func TestModel_About(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	m, _ := activeModel(t, f)

	m, cmd := press(t, m, runes("?"))
	if !m.aboutOpen {
		t.Fatal("? should open the about panel")
	}
	next, _ := m.Update(cmd())
	m = next.(model)

	out := m.View()
	for _, want := range []string{"Tab Suspender v1.2.3", "Daemon started 3 hours ago", "Tab Suspender is free."} {
		if !strings.Contains(out, want) {
			t.Errorf("about view missing %q:\n%s", want, out)
		}
	}

	m, cmd = press(t, m, runes("d"))
	next, _ = m.Update(cmd())
	m = next.(model)
	if !m.about.noNag {
		t.Error("d should set no_nag")
	}
	if v, _ := f.GetOption(context.Background(), "no_nag"); v != true {
		t.Errorf("daemon no_nag = %v, want true", v)
	}
	if !strings.Contains(m.View(), "Thanks for supporting") {
		t.Error("nag should be hidden once no_nag is set")
	}

	m, cmd = press(t, m, runes("D"))
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.about.noNag {
		t.Error("D should clear no_nag")
	}

	m, _ = press(t, m, runes("?"))
	if m.aboutOpen {
		t.Error("? should close the about panel")
	}
}

func TestModel_AboutError(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	f.failOpts = true
	m, _ := activeModel(t, f)

	m, cmd := press(t, m, runes("?"))
	next, _ := m.Update(cmd())
	m = next.(model)
	if !strings.Contains(m.View(), "daemon not running") {
		t.Errorf("about view should show the error:\n%s", m.View())
	}

	m, cmd = press(t, m, runes("d"))
	next, _ = m.Update(cmd())
	if next.(model).about.err == nil {
		t.Error("failed toggle should surface an error")
	}
}

func TestModel_SurfaceClosedQuits(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	m, _ := activeModel(t, f)

	next, cmd := m.Update(surfaceClosedMsg{})
	if !next.(model).quitting {
		t.Error("model should be quitting")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.Quit")
	}
}

// TestPopupLifecycle runs the whole program headlessly: render, act, quit.
func TestPopupLifecycle(t *testing.T) {
	f := newFakeAuthority(tabstatus.Normal)
	p := newTestPopup(f)

	tm := teatest.NewTestModel(t, newModel(context.Background(), p), teatest.WithInitialTermSize(80, 24))
	p.surface.setNotify(tm.Send)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Tab will be suspended automatically."))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(runes("s"))
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

	got := f.commands()
	if len(got) != 1 || got[0] != "suspend-one" {
		t.Errorf("commands = %v, want [suspend-one]", got)
	}
	if !p.ctrl.Closed() {
		t.Error("controller should be closed")
	}
}

func TestPopupLifecycle_Quit(t *testing.T) {
	f := newFakeAuthority(tabstatus.Unknown)
	p := newTestPopup(f)
	p.cfg.PatientRetries = 1000
	p.cfg.RetryDelay = 10 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tm := teatest.NewTestModel(t, newModel(ctx, p), teatest.WithInitialTermSize(80, 24))
	p.surface.setNotify(tm.Send)

	teatest.WaitFor(t, tm.Output(), func(out []byte) bool {
		return bytes.Contains(out, []byte("Loading tab information"))
	}, teatest.WithDuration(3*time.Second))

	tm.Send(tea.KeyMsg{Type: tea.KeyEsc})
	tm.WaitFinished(t, teatest.WithFinalTimeout(5*time.Second))

	if !p.ctrl.Closed() {
		t.Error("closing the popup should dismiss the controller")
	}
	if len(f.commands()) != 0 {
		t.Errorf("dismissal sent commands: %v", f.commands())
	}
	cancel()
	p.ctrl.Wait()
}
