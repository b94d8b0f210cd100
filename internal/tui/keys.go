package tui

import (
	"github.com/charmbracelet/bubbles/key"

	"github.com/npratt/tabsuspend/internal/popup"
)

// keyMap holds the popup's bindings. Enabled state tracks which regions the
// controller currently shows, so help only lists what will work.
type keyMap struct {
	Primary           key.Binding
	SuspendOne        key.Binding
	Whitelist         key.Binding
	Pause             key.Binding
	SuspendAll        key.Binding
	UnsuspendAll      key.Binding
	SuspendSelected   key.Binding
	UnsuspendSelected key.Binding
	About             key.Binding
	Close             key.Binding

	// About panel only.
	Donated     key.Binding
	DonateAgain key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Primary:           key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "primary action")),
		SuspendOne:        key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "suspend tab")),
		Whitelist:         key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "never suspend site")),
		Pause:             key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		SuspendAll:        key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "suspend all")),
		UnsuspendAll:      key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "unsuspend all")),
		SuspendSelected:   key.NewBinding(key.WithKeys("S"), key.WithHelp("S", "suspend selected")),
		UnsuspendSelected: key.NewBinding(key.WithKeys("U"), key.WithHelp("U", "unsuspend selected")),
		About:             key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "about")),
		Close:             key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "close")),
		Donated:           key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "already donated")),
		DonateAgain:       key.NewBinding(key.WithKeys("D"), key.WithHelp("D", "donate again")),
	}
}

// actionKeys pairs region actions with their bindings.
func (k *keyMap) actionKeys() []struct {
	binding *key.Binding
	action  popup.Action
} {
	return []struct {
		binding *key.Binding
		action  popup.Action
	}{
		{&k.SuspendOne, popup.ActionSuspendOne},
		{&k.Whitelist, popup.ActionWhitelist},
		{&k.Pause, popup.ActionPause},
		{&k.SuspendAll, popup.ActionSuspendAll},
		{&k.UnsuspendAll, popup.ActionUnsuspendAll},
		{&k.SuspendSelected, popup.ActionSuspendSelected},
		{&k.UnsuspendSelected, popup.ActionUnsuspendSelected},
	}
}

// sync enables bindings to match the surface.
func (k *keyMap) sync(st surfaceState) {
	k.Primary.SetEnabled(st.bound > 0)
	k.SuspendOne.SetEnabled(st.visible(popup.RegionSuspendOne))
	k.Whitelist.SetEnabled(st.visible(popup.RegionWhitelist))
	k.Pause.SetEnabled(st.visible(popup.RegionTempWhitelist))
	k.SuspendSelected.SetEnabled(st.visible(popup.RegionOptsSelected))
	k.UnsuspendSelected.SetEnabled(st.visible(popup.RegionOptsSelected))
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Primary, k.About, k.Close}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Primary, k.SuspendOne, k.Whitelist, k.Pause},
		{k.SuspendAll, k.UnsuspendAll, k.SuspendSelected, k.UnsuspendSelected},
		{k.About, k.Close},
	}
}

// aboutKeys is the help.KeyMap shown on the about panel.
type aboutKeys struct{ k keyMap }

func (a aboutKeys) ShortHelp() []key.Binding {
	return []key.Binding{a.k.Donated, a.k.DonateAgain, a.k.About, a.k.Close}
}

func (a aboutKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{a.ShortHelp()}
}
