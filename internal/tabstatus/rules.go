package tabstatus

// Icon identifies the glyph shown next to the status detail.
type Icon string

// Status icons.
const (
	IconClock    Icon = "clock"
	IconPause    Icon = "pause"
	IconBan      Icon = "ban"
	IconRemove   Icon = "remove"
	IconCheck    Icon = "check"
	IconVolume   Icon = "volume-up"
	IconEdit     Icon = "edit"
	IconThumbTac Icon = "thumb-tack"
	IconPlane    Icon = "plane"
	IconPlug     Icon = "plug"
	IconLoading  Icon = "circle-notch"
	IconWarning  Icon = "exclamation-triangle"
)

// Rule describes how a status is presented and which command, if any, the
// primary action runs.
type Rule struct {
	Detail      string
	ActionLabel string // link text for the primary action; empty when unbound
	Icon        Icon
	Spin        bool // icon animates while the status is still loading
	WillSuspend bool // header carries the "will suspend" accent

	// Action is the command bound to the primary action. Only meaningful
	// when Bound is true.
	Action Command
	Bound  bool
}

// rules is the presentation table. Every value in All must have an entry.
var rules = map[Status]Rule{
	Normal: {
		Detail:      "Tab will be suspended automatically.",
		Icon:        IconClock,
		WillSuspend: true,
	},
	Suspended: {
		Detail:      "Tab suspended.",
		ActionLabel: "Unsuspend",
		Icon:        IconPause,
		Action:      CmdUnsuspendHighlighted,
		Bound:       true,
	},
	Never: {
		Detail: "Automatic tab suspension disabled.",
		Icon:   IconBan,
	},
	Special: {
		Detail: "Tab cannot be suspended.",
		Icon:   IconRemove,
	},
	Whitelisted: {
		Detail:      "Site whitelisted.",
		ActionLabel: "Remove from whitelist",
		Icon:        IconCheck,
		Action:      CmdUnwhitelistHighlighted,
		Bound:       true,
	},
	Audible: {
		Detail: "Tab is playing audio.",
		Icon:   IconVolume,
	},
	FormInput: {
		Detail:      "Tab is receiving form input.",
		ActionLabel: "Unpause",
		Icon:        IconEdit,
		Action:      CmdUndoTempWhitelistHighlight,
		Bound:       true,
	},
	Pinned: {
		Detail: "Tab has been pinned.",
		Icon:   IconThumbTac,
	},
	TempWhitelist: {
		Detail:      "Tab suspension paused.",
		ActionLabel: "Unpause",
		Icon:        IconPause,
		Action:      CmdUndoTempWhitelistHighlight,
		Bound:       true,
	},
	NoConnectivity: {
		Detail: "No network connection.",
		Icon:   IconPlane,
	},
	Charging: {
		Detail: "Connected to power source.",
		Icon:   IconPlug,
	},
	Unknown: {
		Detail: "Loading tab information..",
		Icon:   IconLoading,
		Spin:   true,
	},
	Error: {
		Detail: "Failed to load tab information.",
		Icon:   IconWarning,
	},
}

// RuleFor returns the presentation rule for s. The second result is false
// for unrecognized statuses.
func RuleFor(s Status) (Rule, bool) {
	r, ok := rules[s]
	return r, ok
}
