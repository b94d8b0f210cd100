package tabs

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/npratt/tabsuspend/internal/power"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// ErrNoActiveTab is returned when the focused window has no active tab.
var ErrNoActiveTab = errors.New("no active tab in focused window")

// specialSchemes are URL schemes whose pages can never be suspended.
var specialSchemes = []string{"chrome", "chrome-extension", "about", "file", "view-source", "edge", "brave"}

// Registry holds the tab table and the settings used to classify tabs.
// It is safe for concurrent use.
type Registry struct {
	mu            sync.RWMutex
	tabs          map[int]*Tab
	focusedWindow int
	opts          Options
	whitelist     whitelist
	env           power.State
	iconStatus    tabstatus.Status
	now           func() time.Time
	logger        *slog.Logger
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRegistryLogger sets the logger used to report invalid settings.
func WithRegistryLogger(l *slog.Logger) RegistryOption {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// NewRegistry creates an empty registry with the given options.
func NewRegistry(opts Options, ropts ...RegistryOption) *Registry {
	r := &Registry{
		tabs:       make(map[int]*Tab),
		env:        power.State{Online: true},
		iconStatus: tabstatus.Unknown,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range ropts {
		opt(r)
	}
	r.setOptionsLocked(opts)
	return r
}

// Load replaces the tab table with the snapshot's tabs. Tabs that were
// already known keep their computed state unless the snapshot says
// otherwise.
func (r *Registry) Load(snap Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	tabs := make(map[int]*Tab, len(snap.Tabs))
	for i := range snap.Tabs {
		t := snap.Tabs[i]
		if prev, ok := r.tabs[t.ID]; ok && prev.URL == t.URL {
			t.Checked = t.Checked || prev.Checked
			t.LoadedAt = prev.LoadedAt
		}
		if t.LoadedAt.IsZero() {
			t.LoadedAt = now
		}
		tabs[t.ID] = &t
	}
	r.tabs = tabs
	r.focusedWindow = snap.FocusedWindow
}

// Options returns a copy of the current settings.
func (r *Registry) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	opts := r.opts
	opts.Whitelist = slices.Clone(r.opts.Whitelist)
	return opts
}

// SetOptions replaces the settings.
func (r *Registry) SetOptions(opts Options) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.setOptionsLocked(opts)
}

// setOptionsLocked stores opts and recompiles the whitelist.
func (r *Registry) setOptionsLocked(opts Options) {
	r.opts = opts
	r.whitelist = compileWhitelist(opts.Whitelist, r.logger)
}

// SetEnvironment records the latest power and network state.
func (r *Registry) SetEnvironment(env power.State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.env = env
}

// Len returns the number of tracked tabs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tabs)
}

// IconStatus returns the status last pushed to the toolbar icon.
func (r *Registry) IconStatus() tabstatus.Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.iconStatus
}

// Tab returns a copy of the tab with the given id.
func (r *Registry) Tab(id int) (Tab, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tabs[id]
	if !ok {
		return Tab{}, false
	}
	return *t, true
}

// TabInfo reports the active tab's status. With forceFresh the tab is
// marked unchecked first, so the answer is Unknown until the tracker has
// inspected it again.
func (r *Registry) TabInfo(forceFresh bool) (*tabstatus.Info, error) {
	if forceFresh {
		r.mu.Lock()
	} else {
		r.mu.RLock()
	}
	t := r.activeLocked()
	if t != nil && forceFresh {
		t.Checked = false
		t.LoadedAt = r.now()
	}
	var info *tabstatus.Info
	if t != nil {
		info = &tabstatus.Info{
			TabID:    t.ID,
			WindowID: t.WindowID,
			URL:      t.URL,
			Title:    t.Title,
			Status:   r.statusLocked(t),
		}
	}
	if forceFresh {
		r.mu.Unlock()
	} else {
		r.mu.RUnlock()
	}

	if info == nil {
		return nil, ErrNoActiveTab
	}
	return info, nil
}

// Highlighted returns the highlighted tabs of the focused window, ordered by
// id.
func (r *Registry) Highlighted() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Summary
	for _, t := range r.sortedLocked() {
		if t.WindowID != r.focusedWindow || !t.Highlighted {
			continue
		}
		out = append(out, r.summaryLocked(t))
	}
	return out
}

// Summaries returns every tab with its computed status, ordered by id.
func (r *Registry) Summaries() []Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Summary, 0, len(r.tabs))
	for _, t := range r.sortedLocked() {
		out = append(out, r.summaryLocked(t))
	}
	return out
}

// Counts tallies tabs by computed status.
func (r *Registry) Counts() map[tabstatus.Status]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[tabstatus.Status]int)
	for _, t := range r.tabs {
		counts[r.statusLocked(t)]++
	}
	return counts
}

// MarkChecked marks every unchecked tab loaded at or before cutoff as
// inspected and returns how many changed.
func (r *Registry) MarkChecked(cutoff time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := 0
	for _, t := range r.tabs {
		if t.Checked || t.LoadedAt.After(cutoff) {
			continue
		}
		t.Checked = true
		n++
	}
	return n
}

// Status computes the status of the tab with the given id.
func (r *Registry) Status(id int) (tabstatus.Status, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tabs[id]
	if !ok {
		return "", fmt.Errorf("tab %d not found", id)
	}
	return r.statusLocked(t), nil
}

// statusLocked classifies t. Checks are ordered so the most specific reason
// a tab will not be suspended wins.
func (r *Registry) statusLocked(t *Tab) tabstatus.Status {
	switch {
	case !t.Checked:
		return tabstatus.Unknown
	case isSpecialURL(t.URL):
		return tabstatus.Special
	case t.Suspended:
		return tabstatus.Suspended
	case r.opts.NeverSuspend:
		return tabstatus.Never
	case r.whitelist.match(t.URL):
		return tabstatus.Whitelisted
	case t.TempWhitelisted:
		return tabstatus.TempWhitelist
	case t.FormInput && r.opts.IgnoreForms:
		return tabstatus.FormInput
	case t.Pinned && r.opts.IgnorePinned:
		return tabstatus.Pinned
	case t.Audible && r.opts.IgnoreAudio:
		return tabstatus.Audible
	case r.opts.OnlineCheck && !r.env.Online:
		return tabstatus.NoConnectivity
	case r.opts.BatteryCheck && r.env.Charging:
		return tabstatus.Charging
	default:
		return tabstatus.Normal
	}
}

func (r *Registry) activeLocked() *Tab {
	for _, t := range r.sortedLocked() {
		if t.WindowID == r.focusedWindow && t.Active {
			return t
		}
	}
	return nil
}

func (r *Registry) sortedLocked() []*Tab {
	out := make([]*Tab, 0, len(r.tabs))
	for _, t := range r.tabs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) summaryLocked(t *Tab) Summary {
	return Summary{
		ID:       t.ID,
		WindowID: t.WindowID,
		URL:      t.URL,
		Title:    t.Title,
		Status:   string(r.statusLocked(t)),
	}
}

func isSpecialURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	return slices.Contains(specialSchemes, strings.ToLower(u.Scheme))
}
