package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// styles contains all lipgloss styles used by the popup.
var styles = struct {
	Container lipgloss.Style
	Divider   lipgloss.Style

	// Status header
	Icon        lipgloss.Style
	Detail      lipgloss.Style
	WillSuspend lipgloss.Style
	Action      lipgloss.Style
	Error       lipgloss.Style

	// Region sections
	Section  lipgloss.Style
	Key      lipgloss.Style
	Label    lipgloss.Style
	Disabled lipgloss.Style

	// About panel
	Title  lipgloss.Style
	Muted  lipgloss.Style
	Notice lipgloss.Style

	Footer lipgloss.Style
}{
	Container: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("240")).
		Padding(0, 1),

	Divider: lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")),

	Icon: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("39")),

	Detail: lipgloss.NewStyle().
		Foreground(lipgloss.Color("252")),

	WillSuspend: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("214")),

	Action: lipgloss.NewStyle().
		Underline(true).
		Foreground(lipgloss.Color("63")),

	Error: lipgloss.NewStyle().
		Foreground(lipgloss.Color("196")),

	Section: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("245")),

	Key: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("212")),

	Label: lipgloss.NewStyle().
		Foreground(lipgloss.Color("250")),

	Disabled: lipgloss.NewStyle().
		Foreground(lipgloss.Color("238")),

	Title: lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("82")),

	Muted: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),

	Notice: lipgloss.NewStyle().
		Foreground(lipgloss.Color("220")),

	Footer: lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")),
}

// glyphs maps status icons to terminal glyphs. The loading icon is drawn by
// the spinner instead.
var glyphs = map[tabstatus.Icon]string{
	tabstatus.IconClock:    "◷",
	tabstatus.IconPause:    "‖",
	tabstatus.IconBan:      "⊘",
	tabstatus.IconRemove:   "✕",
	tabstatus.IconCheck:    "✓",
	tabstatus.IconVolume:   "♪",
	tabstatus.IconEdit:     "✎",
	tabstatus.IconThumbTac: "⚲",
	tabstatus.IconPlane:    "✈",
	tabstatus.IconPlug:     "⚡",
	tabstatus.IconLoading:  "○",
	tabstatus.IconWarning:  "⚠",
}

func glyph(i tabstatus.Icon) string {
	if g, ok := glyphs[i]; ok {
		return g
	}
	return "•"
}
