// Package tui is the popup's terminal surface: a bubbletea program that
// shows the active tab's suspension status and the actions offered for it.
package tui

import (
	"context"
	"log/slog"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/tabsuspend/internal/popup"
	"github.com/npratt/tabsuspend/internal/resolver"
	"github.com/npratt/tabsuspend/internal/tabs"
)

// DefaultFadeIn is how long content stays hidden after the popup opens.
const DefaultFadeIn = 100 * time.Millisecond

// SelectionQuerier lists the highlighted tabs of the focused window.
type SelectionQuerier interface {
	HighlightedTabs(ctx context.Context) ([]tabs.Summary, error)
}

// OptionAccessor reads and writes daemon settings for the about panel.
type OptionAccessor interface {
	GetOption(ctx context.Context, name string) (any, error)
	SetOption(ctx context.Context, name string, value any) (any, error)
}

// Config wires the popup to the background authority.
type Config struct {
	Querier   resolver.Querier
	Commander popup.Commander
	Selection SelectionQuerier
	Options   OptionAccessor

	// StartTime reports when the daemon started, for the about panel.
	StartTime func(ctx context.Context) (time.Time, error)
	Version   string

	ImmediateRetries int
	PatientRetries   int
	RetryDelay       time.Duration
	FadeIn           time.Duration

	Clock  resolver.Clock
	Logger *slog.Logger
}

// Popup owns one activation: the surface, the controller driving it, and
// the two resolvers feeding the controller.
type Popup struct {
	cfg       Config
	surface   *surface
	ctrl      *popup.Controller
	immediate *resolver.Resolver
	patient   *resolver.Resolver
	logger    *slog.Logger
}

// New creates a Popup.
func New(cfg Config) *Popup {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	ropts := []resolver.Option{resolver.WithLogger(logger)}
	if cfg.RetryDelay > 0 {
		ropts = append(ropts, resolver.WithRetryDelay(cfg.RetryDelay))
	}
	if cfg.Clock != nil {
		ropts = append(ropts, resolver.WithClock(cfg.Clock))
	}

	s := newSurface()
	return &Popup{
		cfg:       cfg,
		surface:   s,
		ctrl:      popup.New(s, cfg.Commander, popup.WithLogger(logger)),
		immediate: resolver.New(cfg.Querier, ropts...),
		patient:   resolver.New(cfg.Querier, ropts...),
		logger:    logger,
	}
}

// Controller exposes the status controller behind the surface.
func (p *Popup) Controller() *popup.Controller {
	return p.ctrl
}

// Activate resolves the active tab's status and hands it to the
// controller. The patient resolution starts first so it runs alongside the
// immediate one; the controller only waits on it when the immediate answer
// is unknown.
func (p *Popup) Activate(ctx context.Context) {
	patient := p.patient.Start(ctx, p.cfg.PatientRetries)
	immediate := p.immediate.Resolve(ctx, p.cfg.ImmediateRetries)
	p.ctrl.Activate(ctx, immediate, patient, p.selectedCount(ctx))
}

func (p *Popup) selectedCount(ctx context.Context) int {
	if p.cfg.Selection == nil {
		return 0
	}
	selected, err := p.cfg.Selection.HighlightedTabs(ctx)
	if err != nil {
		p.logger.Warn("could not list highlighted tabs", "error", err)
		return 0
	}
	return len(selected)
}

// Run shows the popup and blocks until it closes. Closing cancels any
// resolution still in flight.
func (p *Popup) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	prog := tea.NewProgram(newModel(ctx, p), tea.WithAltScreen())
	p.surface.setNotify(prog.Send)

	_, err := prog.Run()

	p.surface.setNotify(nil)
	cancel()
	p.ctrl.Dismiss()
	p.ctrl.Wait()
	return err
}
