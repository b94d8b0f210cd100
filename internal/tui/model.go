package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// maxPopupWidth caps the panel so it reads like a popup, not a full screen.
const maxPopupWidth = 64

// activatedMsg signals that the first status render has happened.
type activatedMsg struct{}

// fadeDoneMsg reveals the panel content.
type fadeDoneMsg struct{}

// actionDoneMsg reports a region action; ran is false when the controller
// declined it.
type actionDoneMsg struct {
	label string
	ran   bool
}

// model is the bubbletea model for the popup.
type model struct {
	ctx   context.Context
	popup *Popup

	state surfaceState
	keys  keyMap
	help  help.Model
	spin  spinner.Model

	fadeIn time.Duration
	shown  bool

	about     aboutPanel
	aboutOpen bool

	flash    string
	width    int
	height   int
	quitting bool
}

func newModel(ctx context.Context, p *Popup) model {
	fade := p.cfg.FadeIn
	if fade < 0 {
		fade = 0
	}
	s := spinner.New(spinner.WithSpinner(spinner.MiniDot), spinner.WithStyle(styles.Icon))
	m := model{
		ctx:    ctx,
		popup:  p,
		state:  p.surface.snapshot(),
		keys:   defaultKeyMap(),
		help:   help.New(),
		spin:   s,
		fadeIn: fade,
		shown:  fade == 0,
	}
	m.keys.sync(m.state)
	return m
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.activate(), m.spin.Tick}
	if !m.shown {
		cmds = append(cmds, tea.Tick(m.fadeIn, func(time.Time) tea.Msg { return fadeDoneMsg{} }))
	}
	return tea.Batch(cmds...)
}

// activate runs the status resolution off the event loop.
func (m model) activate() tea.Cmd {
	p, ctx := m.popup, m.ctx
	return func() tea.Msg {
		p.Activate(ctx)
		return activatedMsg{}
	}
}

func (m *model) refresh() {
	m.state = m.popup.surface.snapshot()
	m.keys.sync(m.state)
}

func (m model) panelWidth() int {
	if m.width <= 0 {
		return maxPopupWidth
	}
	return max(20, min(maxPopupWidth, m.width-2))
}
