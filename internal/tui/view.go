package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/dustin/go-humanize"

	"github.com/npratt/tabsuspend/internal/popup"
)

// View implements tea.Model.
func (m model) View() string {
	if m.quitting || !m.shown {
		return ""
	}

	var body string
	if m.aboutOpen {
		body = m.renderAbout()
	} else {
		body = m.renderMain()
	}
	return styles.Container.Width(m.panelWidth()).Render(body)
}

func (m model) renderMain() string {
	var b strings.Builder

	b.WriteString(m.renderHeader())

	if m.state.bound > 0 && m.state.rule.ActionLabel != "" {
		b.WriteString("\n")
		b.WriteString(styles.Key.Render("enter") + "  " + styles.Action.Render(m.state.rule.ActionLabel))
	}

	b.WriteString("\n")
	b.WriteString(styles.Divider.Render(strings.Repeat("─", max(1, m.panelWidth()-4))))

	if m.state.visible(popup.RegionOptsCurrent) {
		b.WriteString("\n")
		b.WriteString(renderSection("This tab",
			m.entry(m.keys.SuspendOne, m.state.visible(popup.RegionSuspendOne)),
			m.entry(m.keys.Whitelist, m.state.visible(popup.RegionWhitelist)),
			m.entry(m.keys.Pause, m.state.visible(popup.RegionTempWhitelist)),
		))
	}

	b.WriteString("\n")
	b.WriteString(renderSection("All tabs in window",
		m.entry(m.keys.SuspendAll, true),
		m.entry(m.keys.UnsuspendAll, true),
	))

	if m.state.visible(popup.RegionOptsSelected) {
		b.WriteString("\n")
		b.WriteString(renderSection("Selected tabs",
			m.entry(m.keys.SuspendSelected, true),
			m.entry(m.keys.UnsuspendSelected, true),
		))
	}

	if m.flash != "" {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render(m.flash))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

// renderHeader draws the status icon and detail line.
func (m model) renderHeader() string {
	rule := m.state.rule
	icon := styles.Icon.Render(glyph(rule.Icon))
	if !m.state.rendered || rule.Spin {
		icon = m.spin.View()
	}

	detail := rule.Detail
	if !m.state.rendered {
		detail = "Checking tab status..."
	}
	style := styles.Detail
	if rule.WillSuspend {
		style = styles.WillSuspend
	}
	return icon + " " + style.Render(detail)
}

// entry renders one key/label pair, or "" when hidden.
func (m model) entry(b key.Binding, visible bool) string {
	if !visible {
		return ""
	}
	h := b.Help()
	return styles.Key.Render(h.Key) + " " + styles.Label.Render(h.Desc)
}

func renderSection(title string, entries ...string) string {
	var shown []string
	for _, e := range entries {
		if e != "" {
			shown = append(shown, e)
		}
	}
	return styles.Section.Render(title) + "\n  " + strings.Join(shown, "   ")
}

func (m model) renderAbout() string {
	var b strings.Builder

	b.WriteString(styles.Title.Render("Tab Suspender v" + m.popup.cfg.Version))
	b.WriteString("\n")

	switch {
	case !m.about.loaded:
		b.WriteString(m.spin.View() + " " + styles.Muted.Render("loading..."))
	case !m.about.started.IsZero():
		b.WriteString(styles.Muted.Render("Daemon started " + humanize.Time(m.about.started)))
	}

	if m.about.loaded {
		b.WriteString("\n\n")
		if m.about.noNag {
			b.WriteString(styles.Muted.Render("Thanks for supporting Tab Suspender."))
		} else {
			b.WriteString(styles.Notice.Render("Tab Suspender is free. If it keeps your memory in check, consider a donation."))
		}
	}

	if m.about.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.Error.Render(m.about.err.Error()))
	}

	b.WriteString("\n\n")
	b.WriteString(m.help.View(aboutKeys{m.keys}))
	return b.String()
}
