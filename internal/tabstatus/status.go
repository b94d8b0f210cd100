// Package tabstatus defines the tab suspension statuses reported by the
// background authority, the commands it accepts, and the presentation and
// visibility rules the popup derives from a status.
package tabstatus

import "fmt"

// Status is the suspension status of a single tab. The string value is the
// wire form used by the daemon protocol.
type Status string

// Tab statuses.
const (
	Normal         Status = "normal"
	Suspended      Status = "suspended"
	Never          Status = "never"
	Special        Status = "special"
	Whitelisted    Status = "whitelisted"
	Audible        Status = "audible"
	FormInput      Status = "formInput"
	Pinned         Status = "pinned"
	TempWhitelist  Status = "tempWhitelist"
	NoConnectivity Status = "noConnectivity"
	Charging       Status = "charging"

	// Unknown means the authority has not computed a status for the tab yet.
	Unknown Status = "unknown"
	// Error means a patient resolution ran out of retries while the
	// authority still answered Unknown.
	Error Status = "error"
)

// All lists every recognized status in display order.
var All = []Status{
	Normal,
	Suspended,
	Never,
	Special,
	Whitelisted,
	Audible,
	FormInput,
	Pinned,
	TempWhitelist,
	NoConnectivity,
	Charging,
	Unknown,
	Error,
}

// Known reports whether s is one of the recognized statuses.
func (s Status) Known() bool {
	_, ok := rules[s]
	return ok
}

// Definitive reports whether s is an answer the resolver can settle on.
// Everything except Unknown (including unrecognized values) is definitive.
func (s Status) Definitive() bool {
	return s != Unknown && s != ""
}

// String implements fmt.Stringer.
func (s Status) String() string {
	return string(s)
}

// Parse converts a wire string into a Status. Unrecognized values are
// returned as-is alongside an error so callers can decide whether to keep
// them.
func Parse(s string) (Status, error) {
	st := Status(s)
	if !st.Known() {
		return st, fmt.Errorf("unrecognized tab status %q", s)
	}
	return st, nil
}

// Info is the authority's answer to a tab status query.
type Info struct {
	TabID    int    `json:"tab_id"`
	WindowID int    `json:"window_id"`
	URL      string `json:"url,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   Status `json:"status"`
}
