package tabs

import (
	"fmt"
	"net/url"
	"slices"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// Result describes what a command changed.
type Result struct {
	Command  tabstatus.Command `json:"command"`
	Affected []int             `json:"affected,omitempty"`
	Icon     tabstatus.Status  `json:"icon,omitempty"`
}

// Apply executes a popup command against the tab table. status is only
// consulted by update-icon; an empty status recomputes the icon from the
// active tab.
func (r *Registry) Apply(cmd tabstatus.Command, status tabstatus.Status) (Result, error) {
	if !cmd.Valid() {
		return Result{}, fmt.Errorf("unknown command %q", cmd)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	res := Result{Command: cmd}
	switch cmd {
	case tabstatus.CmdSuspendOne:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		if r.suspendLocked(t, true) {
			res.Affected = append(res.Affected, t.ID)
		}

	case tabstatus.CmdSuspendAll:
		for _, t := range r.sortedLocked() {
			if t.WindowID != r.focusedWindow {
				continue
			}
			if r.suspendLocked(t, false) {
				res.Affected = append(res.Affected, t.ID)
			}
		}

	case tabstatus.CmdUnsuspendAll:
		for _, t := range r.sortedLocked() {
			if t.WindowID == r.focusedWindow && r.unsuspendLocked(t) {
				res.Affected = append(res.Affected, t.ID)
			}
		}

	case tabstatus.CmdSuspendSelected:
		for _, t := range r.highlightedLocked() {
			if r.suspendLocked(t, true) {
				res.Affected = append(res.Affected, t.ID)
			}
		}

	case tabstatus.CmdUnsuspendSelected:
		for _, t := range r.highlightedLocked() {
			if r.unsuspendLocked(t) {
				res.Affected = append(res.Affected, t.ID)
			}
		}

	case tabstatus.CmdUnsuspendHighlighted:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		if r.unsuspendLocked(t) {
			res.Affected = append(res.Affected, t.ID)
		}

	case tabstatus.CmdWhitelistCurrent:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		entry := whitelistEntry(t.URL)
		if !slices.Contains(r.opts.Whitelist, entry) {
			opts := r.opts
			opts.Whitelist = append(slices.Clone(r.opts.Whitelist), entry)
			r.setOptionsLocked(opts)
		}
		res.Affected = append(res.Affected, t.ID)

	case tabstatus.CmdUnwhitelistHighlighted:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		matched := r.whitelist.matching(t.URL)
		if len(matched) > 0 {
			opts := r.opts
			opts.Whitelist = slices.DeleteFunc(slices.Clone(r.opts.Whitelist), func(entry string) bool {
				return slices.Contains(matched, entry)
			})
			r.setOptionsLocked(opts)
			res.Affected = append(res.Affected, t.ID)
		}

	case tabstatus.CmdTempWhitelistCurrent:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		if !t.TempWhitelisted {
			t.TempWhitelisted = true
			res.Affected = append(res.Affected, t.ID)
		}

	case tabstatus.CmdUndoTempWhitelistHighlight:
		t := r.activeLocked()
		if t == nil {
			return res, ErrNoActiveTab
		}
		// Undoing a pause also clears a form-input hold; both are lifted by
		// the same control.
		if t.TempWhitelisted || t.FormInput {
			t.TempWhitelisted = false
			t.FormInput = false
			res.Affected = append(res.Affected, t.ID)
		}

	case tabstatus.CmdUpdateIcon:
		if status == "" {
			status = tabstatus.Unknown
			if t := r.activeLocked(); t != nil {
				status = r.statusLocked(t)
			}
		} else if !status.Known() {
			return res, fmt.Errorf("unknown status %q", status)
		}
		r.iconStatus = status
		res.Icon = status
	}

	return res, nil
}

// suspendLocked suspends t when its status allows it. With force, holds
// that only protect against automatic suspension (pinned, audible, and the
// power checks) are ignored.
func (r *Registry) suspendLocked(t *Tab, force bool) bool {
	switch s := r.statusLocked(t); s {
	case tabstatus.Normal:
	case tabstatus.Pinned, tabstatus.Audible, tabstatus.NoConnectivity, tabstatus.Charging,
		tabstatus.TempWhitelist, tabstatus.FormInput, tabstatus.Whitelisted, tabstatus.Never:
		if !force {
			return false
		}
	default:
		return false
	}
	t.Suspended = true
	return true
}

// unsuspendLocked reloads t. The reloaded page has not been inspected yet so
// its status reads Unknown until the tracker checks it.
func (r *Registry) unsuspendLocked(t *Tab) bool {
	if !t.Suspended {
		return false
	}
	t.Suspended = false
	t.Checked = false
	t.LoadedAt = r.now()
	return true
}

func (r *Registry) highlightedLocked() []*Tab {
	var out []*Tab
	for _, t := range r.sortedLocked() {
		if t.WindowID == r.focusedWindow && t.Highlighted {
			out = append(out, t)
		}
	}
	return out
}

// whitelistEntry returns the host of raw, or raw itself when it has none.
func whitelistEntry(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Host
}
