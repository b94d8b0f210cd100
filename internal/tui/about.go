package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

const noNagOption = "no_nag"

// aboutMsg carries what the about panel shows.
type aboutMsg struct {
	noNag   bool
	started time.Time
	err     error
}

// noNagMsg carries the re-read no_nag setting after a toggle.
type noNagMsg struct {
	noNag bool
	err   error
}

type aboutPanel struct {
	loaded  bool
	noNag   bool
	started time.Time
	err     error
}

func (a *aboutPanel) apply(msg aboutMsg) {
	a.loaded = true
	a.noNag = msg.noNag
	a.started = msg.started
	a.err = msg.err
}

func (a *aboutPanel) applyNoNag(msg noNagMsg) {
	a.err = msg.err
	if msg.err == nil {
		a.noNag = msg.noNag
	}
}

// loadAbout fetches the no_nag setting and daemon start time.
func (p *Popup) loadAbout(ctx context.Context) tea.Cmd {
	opts, startTime := p.cfg.Options, p.cfg.StartTime
	return func() tea.Msg {
		var msg aboutMsg
		if opts != nil {
			v, err := opts.GetOption(ctx, noNagOption)
			msg.noNag, msg.err = truthy(v), err
		}
		if startTime != nil {
			t, err := startTime(ctx)
			msg.started = t
			if msg.err == nil {
				msg.err = err
			}
		}
		return msg
	}
}

// setNoNag writes no_nag and reads it back so the panel shows what the
// daemon actually stored.
func (p *Popup) setNoNag(ctx context.Context, v bool) tea.Cmd {
	opts := p.cfg.Options
	logger := p.logger
	return func() tea.Msg {
		if opts == nil {
			return noNagMsg{err: fmt.Errorf("settings unavailable")}
		}
		if _, err := opts.SetOption(ctx, noNagOption, v); err != nil {
			logger.Warn("could not update setting", "name", noNagOption, "error", err)
			return noNagMsg{err: err}
		}
		got, err := opts.GetOption(ctx, noNagOption)
		return noNagMsg{noNag: truthy(got), err: err}
	}
}

// truthy reads a loosely typed option value as a bool.
func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		b, _ := strconv.ParseBool(t)
		return b
	case float64:
		return t != 0
	default:
		return false
	}
}
