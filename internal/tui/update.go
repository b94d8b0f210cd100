package tui

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/tabsuspend/internal/popup"
)

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = m.panelWidth()
		return m, nil

	case fadeDoneMsg:
		m.shown = true
		return m, nil

	case activatedMsg, surfaceChangedMsg:
		m.refresh()
		return m, nil

	case surfaceClosedMsg:
		m.refresh()
		m.quitting = true
		return m, tea.Quit

	case actionDoneMsg:
		if !msg.ran {
			m.flash = msg.label + " is not available for this tab"
		}
		return m, nil

	case aboutMsg:
		m.about.apply(msg)
		return m, nil

	case noNagMsg:
		m.about.applyNoNag(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd
	}
	return m, nil
}

// pressed matches msg against b regardless of whether b is enabled, so
// hidden actions still reach the controller and are refused there.
func pressed(msg tea.KeyMsg, b key.Binding) bool {
	return slices.Contains(b.Keys(), msg.String())
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""

	if pressed(msg, m.keys.Close) {
		m.quitting = true
		return m, tea.Sequence(m.dismiss(), tea.Quit)
	}

	if pressed(msg, m.keys.About) {
		m.aboutOpen = !m.aboutOpen
		if m.aboutOpen {
			return m, m.popup.loadAbout(m.ctx)
		}
		return m, nil
	}

	if m.aboutOpen {
		switch {
		case pressed(msg, m.keys.Donated):
			return m, m.popup.setNoNag(m.ctx, true)
		case pressed(msg, m.keys.DonateAgain):
			return m, m.popup.setNoNag(m.ctx, false)
		}
		return m, nil
	}

	if pressed(msg, m.keys.Primary) {
		return m, m.runPrimary()
	}

	for _, ak := range m.keys.actionKeys() {
		if pressed(msg, *ak.binding) {
			return m, m.invoke(ak.action, ak.binding.Help().Desc)
		}
	}
	return m, nil
}

// runPrimary fires every handler bound to the primary action. The
// controller closes the surface afterwards, which quits the program.
func (m model) runPrimary() tea.Cmd {
	s := m.popup.surface
	return func() tea.Msg {
		for _, fn := range s.primary() {
			fn()
		}
		return nil
	}
}

func (m model) invoke(a popup.Action, label string) tea.Cmd {
	ctrl := m.popup.ctrl
	return func() tea.Msg {
		return actionDoneMsg{label: label, ran: ctrl.Invoke(a)}
	}
}

func (m model) dismiss() tea.Cmd {
	ctrl := m.popup.ctrl
	return func() tea.Msg {
		ctrl.Dismiss()
		return nil
	}
}
