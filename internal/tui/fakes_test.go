package tui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// fakeAuthority stands in for the daemon client. Statuses are served in
// order; the last one repeats.
type fakeAuthority struct {
	mu       sync.Mutex
	statuses []tabstatus.Status
	calls    int
	selected int
	sent     []string
	options  map[string]any
	started  time.Time
	failOpts bool
}

func newFakeAuthority(statuses ...tabstatus.Status) *fakeAuthority {
	return &fakeAuthority{
		statuses: statuses,
		options:  map[string]any{"no_nag": false},
		started:  time.Now().Add(-3 * time.Hour),
	}
}

func (f *fakeAuthority) TabInfo(ctx context.Context, forceFresh bool) (*tabstatus.Info, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := min(f.calls, len(f.statuses)-1)
	f.calls++
	return &tabstatus.Info{TabID: 1, WindowID: 1, Status: f.statuses[i]}, nil
}

func (f *fakeAuthority) HighlightedTabs(ctx context.Context) ([]tabs.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return make([]tabs.Summary, f.selected), nil
}

func (f *fakeAuthority) Run(ctx context.Context, cmd tabstatus.Command) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, string(cmd))
	return nil
}

func (f *fakeAuthority) UpdateIcon(ctx context.Context, status tabstatus.Status) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, "update-icon:"+string(status))
	return nil
}

func (f *fakeAuthority) GetOption(ctx context.Context, name string) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOpts {
		return nil, errors.New("daemon not running")
	}
	return f.options[name], nil
}

func (f *fakeAuthority) SetOption(ctx context.Context, name string, value any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failOpts {
		return nil, errors.New("daemon not running")
	}
	f.options[name] = value
	return value, nil
}

func (f *fakeAuthority) StartTime(ctx context.Context) (time.Time, error) {
	return f.started, nil
}

func (f *fakeAuthority) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.sent...)
}

// newTestPopup wires a Popup to f with fast retries and no fade.
func newTestPopup(f *fakeAuthority) *Popup {
	return New(Config{
		Querier:        f,
		Commander:      f,
		Selection:      f,
		Options:        f,
		StartTime:      f.StartTime,
		Version:        "1.2.3",
		PatientRetries: 5,
		RetryDelay:     time.Millisecond,
	})
}
