// Package tabs is the background authority's tab table: it tracks tabs,
// computes each tab's suspension status, and applies popup commands.
package tabs

import "time"

// Tab is one browser tab as seen by the authority.
type Tab struct {
	ID          int    `yaml:"id" toml:"id" json:"id"`
	WindowID    int    `yaml:"window_id" toml:"window_id" json:"window_id"`
	URL         string `yaml:"url" toml:"url" json:"url"`
	Title       string `yaml:"title" toml:"title" json:"title"`
	Active      bool   `yaml:"active" toml:"active" json:"active"`
	Highlighted bool   `yaml:"highlighted" toml:"highlighted" json:"highlighted"`
	Pinned      bool   `yaml:"pinned" toml:"pinned" json:"pinned"`
	Audible     bool   `yaml:"audible" toml:"audible" json:"audible"`
	Suspended   bool   `yaml:"suspended" toml:"suspended" json:"suspended"`
	FormInput   bool   `yaml:"form_input" toml:"form_input" json:"form_input"`

	TempWhitelisted bool `yaml:"temp_whitelisted" toml:"temp_whitelisted" json:"temp_whitelisted"`

	// Checked is false until the authority has inspected the tab's page.
	Checked bool `yaml:"checked" toml:"checked" json:"checked"`

	LastActive time.Time `yaml:"last_active,omitempty" toml:"last_active,omitempty" json:"last_active,omitzero"`
	LoadedAt   time.Time `yaml:"-" toml:"-" json:"-"`
}

// Summary is the short form of a tab returned to clients.
type Summary struct {
	ID       int    `json:"id"`
	WindowID int    `json:"window_id"`
	URL      string `json:"url"`
	Title    string `json:"title"`
	Status   string `json:"status"`
}

// Options are the user settings that influence status computation.
type Options struct {
	NeverSuspend bool     `yaml:"never_suspend" mapstructure:"never_suspend"`
	IgnorePinned bool     `yaml:"ignore_pinned" mapstructure:"ignore_pinned"`
	IgnoreAudio  bool     `yaml:"ignore_audio" mapstructure:"ignore_audio"`
	IgnoreForms  bool     `yaml:"ignore_forms" mapstructure:"ignore_forms"`
	OnlineCheck  bool     `yaml:"online_check" mapstructure:"online_check"`
	BatteryCheck bool     `yaml:"battery_check" mapstructure:"battery_check"`
	Whitelist    []string `yaml:"whitelist" mapstructure:"whitelist"`
	NoNag        bool     `yaml:"no_nag" mapstructure:"no_nag"`
}

// DefaultOptions mirrors the settings a fresh install starts with.
func DefaultOptions() Options {
	return Options{
		IgnorePinned: true,
		IgnoreAudio:  true,
		IgnoreForms:  true,
		OnlineCheck:  false,
		BatteryCheck: false,
		Whitelist:    []string{},
	}
}

// Snapshot is the on-disk seed for the tab table.
type Snapshot struct {
	FocusedWindow int   `yaml:"focused_window" toml:"focused_window"`
	Tabs          []Tab `yaml:"tabs" toml:"tabs"`
}
