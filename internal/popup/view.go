package popup

import (
	"context"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// Region names a section of the popup whose visibility the controller
// decides.
type Region string

// Popup regions.
const (
	RegionSuspendOne    Region = "suspendOne"
	RegionWhitelist     Region = "whitelist"
	RegionTempWhitelist Region = "tempWhitelist"
	RegionOptsCurrent   Region = "optsCurrent"
	RegionOptsSelected  Region = "optsSelected"
)

// ActionHandle identifies a handler attached to the primary action.
type ActionHandle int

// View is the presentation surface the controller drives. Implementations
// must not call back into the controller from inside these methods.
type View interface {
	SetRegionVisible(r Region, visible bool)
	RenderStatus(s tabstatus.Status, rule tabstatus.Rule)

	// BindPrimaryAction attaches fn to the primary action control.
	// Attaching does not replace earlier handlers; callers unbind first.
	BindPrimaryAction(fn func()) ActionHandle
	UnbindPrimaryAction(h ActionHandle)

	// Close tears the surface down.
	Close()
}

// Commander sends fire-and-forget commands to the background authority.
type Commander interface {
	Run(ctx context.Context, cmd tabstatus.Command) error
	// UpdateIcon asks the authority to refresh the toolbar icon. An empty
	// status lets the authority recompute it.
	UpdateIcon(ctx context.Context, status tabstatus.Status) error
}

// Pending is a status resolution that may still be in flight.
type Pending interface {
	Done() <-chan struct{}
	Status() tabstatus.Status
}
