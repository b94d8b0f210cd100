// Package resolver implements the bounded-retry tab status query used by the
// popup. The background authority may answer "unknown" until it has checked
// the tab; a resolution keeps asking, with a fixed delay, until it gets a
// definitive answer or runs out of retries.
package resolver

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

const (
	// DefaultRetryDelay is the pause between undetermined attempts.
	DefaultRetryDelay = 200 * time.Millisecond
	// ImmediateRetries is the budget for the single-shot optimistic query.
	ImmediateRetries = 0
	// PatientRetries is the budget for the background query (~10s at the
	// default delay).
	PatientRetries = 50
)

// Querier asks the background authority for the active tab's status.
// A nil info or empty status is treated as unknown.
type Querier interface {
	TabInfo(ctx context.Context, forceFresh bool) (*tabstatus.Info, error)
}

// Resolver issues status resolutions against a Querier.
type Resolver struct {
	querier Querier
	clock   Clock
	delay   time.Duration
	logger  *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock sets the clock used for retry delays.
func WithClock(c Clock) Option {
	return func(r *Resolver) {
		r.clock = c
	}
}

// WithRetryDelay overrides DefaultRetryDelay.
func WithRetryDelay(d time.Duration) Option {
	return func(r *Resolver) {
		r.delay = d
	}
}

// WithLogger sets the logger for transport failures.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// New creates a Resolver for the given querier.
func New(q Querier, opts ...Option) *Resolver {
	r := &Resolver{
		querier: q,
		clock:   RealClock(),
		delay:   DefaultRetryDelay,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolution is a single in-flight status query. It settles exactly once.
type Resolution struct {
	done     chan struct{}
	mu       sync.Mutex
	status   tabstatus.Status
	attempts int
	budget   int
}

func newResolution(maxRetries int) *Resolution {
	return &Resolution{
		done:   make(chan struct{}),
		status: tabstatus.Unknown,
		budget: maxRetries,
	}
}

// Done is closed when the resolution has settled.
func (res *Resolution) Done() <-chan struct{} {
	return res.done
}

// Status returns the settled status, or Unknown while still in flight.
func (res *Resolution) Status() tabstatus.Status {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.status
}

// Attempts returns how many queries have been issued so far.
func (res *Resolution) Attempts() int {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.attempts
}

// RetriesRemaining returns the unspent retry budget.
func (res *Resolution) RetriesRemaining() int {
	res.mu.Lock()
	defer res.mu.Unlock()
	return res.budget
}

// Wait blocks until the resolution settles or ctx is done.
func (res *Resolution) Wait(ctx context.Context) (tabstatus.Status, error) {
	select {
	case <-res.done:
		return res.Status(), nil
	case <-ctx.Done():
		return tabstatus.Unknown, ctx.Err()
	}
}

// Start begins a resolution in the background and returns immediately.
func (r *Resolver) Start(ctx context.Context, maxRetries int) *Resolution {
	res := newResolution(max(0, maxRetries))
	go r.run(ctx, res)
	return res
}

// ResolveAsync starts a resolution and calls onSettled exactly once, from the
// resolving goroutine, with the final status.
func (r *Resolver) ResolveAsync(ctx context.Context, maxRetries int, onSettled func(tabstatus.Status)) *Resolution {
	res := newResolution(max(0, maxRetries))
	go func() {
		r.run(ctx, res)
		if onSettled != nil {
			onSettled(res.Status())
		}
	}()
	return res
}

// Resolve runs a resolution to completion on the calling goroutine.
func (r *Resolver) Resolve(ctx context.Context, maxRetries int) tabstatus.Status {
	res := newResolution(max(0, maxRetries))
	r.run(ctx, res)
	return res.Status()
}

// run is the retry loop. It always closes res.done.
func (r *Resolver) run(ctx context.Context, res *Resolution) {
	defer close(res.done)

	for {
		answer := r.attempt(ctx)

		res.mu.Lock()
		res.attempts++
		res.status = answer
		remaining := res.budget
		res.mu.Unlock()

		if answer.Definitive() || remaining == 0 {
			return
		}

		res.mu.Lock()
		res.budget--
		res.mu.Unlock()

		select {
		case <-r.clock.After(r.delay):
		case <-ctx.Done():
			r.logger.Debug("status resolution cancelled", "attempts", res.Attempts())
			return
		}
	}
}

// attempt issues one query and folds transport failures into Unknown.
func (r *Resolver) attempt(ctx context.Context) tabstatus.Status {
	info, err := r.querier.TabInfo(ctx, false)
	if err != nil {
		r.logger.Warn("tab status query failed", "error", err)
		return tabstatus.Unknown
	}
	if info == nil || info.Status == "" {
		return tabstatus.Unknown
	}
	return info.Status
}
