package tabs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

func windowTabs() []Tab {
	return []Tab{
		active(Tab{ID: 1, URL: "https://news.test/story", Highlighted: true}),
		{ID: 2, WindowID: 1, URL: "https://mail.test", Checked: true, Highlighted: true, Pinned: true},
		{ID: 3, WindowID: 1, URL: "https://docs.test", Checked: true, Suspended: true},
		{ID: 4, WindowID: 1, URL: "chrome://extensions", Checked: true},
		{ID: 5, WindowID: 2, URL: "https://other.test", Checked: true},
	}
}

func TestApply_SuspendOne(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	res, err := r.Apply(tabstatus.CmdSuspendOne, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Affected)

	s, _ := r.Status(1)
	assert.Equal(t, tabstatus.Suspended, s)
}

func TestApply_SuspendAllSkipsHeldTabs(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	res, err := r.Apply(tabstatus.CmdSuspendAll, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Affected, "pinned, special, suspended and other-window tabs stay")

	tab, _ := r.Tab(5)
	assert.False(t, tab.Suspended)
}

func TestApply_UnsuspendAll(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	res, err := r.Apply(tabstatus.CmdUnsuspendAll, "")
	require.NoError(t, err)
	assert.Equal(t, []int{3}, res.Affected)

	s, _ := r.Status(3)
	assert.Equal(t, tabstatus.Unknown, s, "reloaded tab needs a fresh check")
}

func TestApply_SelectedCommands(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	res, err := r.Apply(tabstatus.CmdSuspendSelected, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Affected, "explicit selection overrides the pinned hold")

	res, err = r.Apply(tabstatus.CmdUnsuspendSelected, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2}, res.Affected)
}

func TestApply_UnsuspendHighlighted(t *testing.T) {
	tabs := windowTabs()
	tabs[0].Suspended = true
	r := newTestRegistry(DefaultOptions(), tabs...)

	res, err := r.Apply(tabstatus.CmdUnsuspendHighlighted, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Affected)
}

func TestApply_WhitelistRoundTrip(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	_, err := r.Apply(tabstatus.CmdWhitelistCurrent, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"news.test"}, r.Options().Whitelist)
	s, _ := r.Status(1)
	assert.Equal(t, tabstatus.Whitelisted, s)

	// Adding twice does not duplicate.
	_, err = r.Apply(tabstatus.CmdWhitelistCurrent, "")
	require.NoError(t, err)
	assert.Len(t, r.Options().Whitelist, 1)

	res, err := r.Apply(tabstatus.CmdUnwhitelistHighlighted, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Affected)
	assert.Empty(t, r.Options().Whitelist)
	s, _ = r.Status(1)
	assert.Equal(t, tabstatus.Normal, s)
}

func TestApply_TempWhitelistRoundTrip(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)

	_, err := r.Apply(tabstatus.CmdTempWhitelistCurrent, "")
	require.NoError(t, err)
	s, _ := r.Status(1)
	assert.Equal(t, tabstatus.TempWhitelist, s)

	_, err = r.Apply(tabstatus.CmdUndoTempWhitelistHighlight, "")
	require.NoError(t, err)
	s, _ = r.Status(1)
	assert.Equal(t, tabstatus.Normal, s)
}

func TestApply_UndoClearsFormInput(t *testing.T) {
	tabs := windowTabs()
	tabs[0].FormInput = true
	r := newTestRegistry(DefaultOptions(), tabs...)

	res, err := r.Apply(tabstatus.CmdUndoTempWhitelistHighlight, "")
	require.NoError(t, err)
	assert.Equal(t, []int{1}, res.Affected)
	s, _ := r.Status(1)
	assert.Equal(t, tabstatus.Normal, s)
}

func TestApply_UpdateIcon(t *testing.T) {
	r := newTestRegistry(DefaultOptions(), windowTabs()...)
	assert.Equal(t, tabstatus.Unknown, r.IconStatus())

	res, err := r.Apply(tabstatus.CmdUpdateIcon, tabstatus.Suspended)
	require.NoError(t, err)
	assert.Equal(t, tabstatus.Suspended, res.Icon)
	assert.Equal(t, tabstatus.Suspended, r.IconStatus())

	res, err = r.Apply(tabstatus.CmdUpdateIcon, "")
	require.NoError(t, err)
	assert.Equal(t, tabstatus.Normal, res.Icon, "empty status recomputes from the active tab")

	_, err = r.Apply(tabstatus.CmdUpdateIcon, "bogus")
	assert.Error(t, err)
}

func TestApply_Errors(t *testing.T) {
	r := newTestRegistry(DefaultOptions())

	_, err := r.Apply("launch-rockets", "")
	assert.Error(t, err)

	for _, cmd := range []tabstatus.Command{
		tabstatus.CmdSuspendOne,
		tabstatus.CmdWhitelistCurrent,
		tabstatus.CmdTempWhitelistCurrent,
		tabstatus.CmdUnsuspendHighlighted,
	} {
		_, err := r.Apply(cmd, "")
		assert.ErrorIs(t, err, ErrNoActiveTab, cmd.String())
	}
}
