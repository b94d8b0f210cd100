package tabstatus

import "slices"

// VisibilitySet says which current-tab affordances may be offered for a
// status.
type VisibilitySet struct {
	SuspendOne bool
	Whitelist  bool
	Pause      bool
}

// Any reports whether at least one current-tab affordance is offered.
func (v VisibilitySet) Any() bool {
	return v.SuspendOne || v.Whitelist || v.Pause
}

var (
	noSuspendOne = []Status{Suspended, Special, Unknown, Error}
	noWhitelist  = []Status{Whitelisted, Special, Unknown, Error}
)

// Visibility derives the affordances offered for s.
func Visibility(s Status) VisibilitySet {
	return VisibilitySet{
		SuspendOne: !slices.Contains(noSuspendOne, s),
		Whitelist:  !slices.Contains(noWhitelist, s),
		Pause:      s == Normal,
	}
}

// SelectedVisible reports whether the selected-tabs group is shown for the
// given number of highlighted tabs.
func SelectedVisible(selectedCount int) bool {
	return selectedCount > 1
}
