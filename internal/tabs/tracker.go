package tabs

import (
	"context"
	"log/slog"
	"time"

	"github.com/npratt/tabsuspend/internal/power"
)

// Default tracker timings.
const (
	DefaultCheckInterval = time.Second
	DefaultCheckDelay    = 500 * time.Millisecond
)

// Tracker periodically inspects freshly loaded tabs and refreshes the
// power/connectivity state used for the charging and offline holds.
type Tracker struct {
	registry *Registry
	probe    power.Probe
	interval time.Duration
	delay    time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithProbe sets the power probe. Without one the environment is left as
// the registry's default (online, not charging).
func WithProbe(p power.Probe) TrackerOption {
	return func(t *Tracker) { t.probe = p }
}

// WithCheckInterval sets how often the tracker runs.
func WithCheckInterval(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithCheckDelay sets how long a tab must have been loaded before it is
// considered inspected.
func WithCheckDelay(d time.Duration) TrackerOption {
	return func(t *Tracker) {
		if d >= 0 {
			t.delay = d
		}
	}
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(l *slog.Logger) TrackerOption {
	return func(t *Tracker) { t.logger = l }
}

// NewTracker creates a tracker for registry.
func NewTracker(registry *Registry, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		registry: registry,
		interval: DefaultCheckInterval,
		delay:    DefaultCheckDelay,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Run ticks until ctx is cancelled.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	t.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Tick(ctx)
		}
	}
}

// Tick performs one inspection pass.
func (t *Tracker) Tick(ctx context.Context) {
	if n := t.registry.MarkChecked(t.now().Add(-t.delay)); n > 0 {
		t.logger.Debug("tabs checked", "count", n)
	}

	if t.probe == nil {
		return
	}
	state, err := t.probe.Probe(ctx)
	if err != nil {
		t.logger.Warn("power probe failed", "error", err)
		return
	}
	t.registry.SetEnvironment(state)
}
