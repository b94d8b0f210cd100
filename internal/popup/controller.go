// Package popup holds the status controller behind the transient popup: it
// maps a resolved tab status to region visibility, status text and icon, and
// the single command bound to the primary action.
package popup

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// commandTimeout bounds each command sent on behalf of a user action.
const commandTimeout = 5 * time.Second

// Action is a user-invocable region control.
type Action string

// Region actions.
const (
	ActionSuspendOne        Action = "suspend-one"
	ActionSuspendAll        Action = "suspend-all"
	ActionUnsuspendAll      Action = "unsuspend-all"
	ActionSuspendSelected   Action = "suspend-selected"
	ActionUnsuspendSelected Action = "unsuspend-selected"
	ActionWhitelist         Action = "whitelist"
	ActionPause             Action = "pause"
)

type actionSpec struct {
	command     tabstatus.Command
	region      Region // region that must be visible; empty means always
	refreshIcon bool
}

var actions = map[Action]actionSpec{
	ActionSuspendOne:        {command: tabstatus.CmdSuspendOne, region: RegionSuspendOne},
	ActionSuspendAll:        {command: tabstatus.CmdSuspendAll},
	ActionUnsuspendAll:      {command: tabstatus.CmdUnsuspendAll},
	ActionSuspendSelected:   {command: tabstatus.CmdSuspendSelected, region: RegionOptsSelected},
	ActionUnsuspendSelected: {command: tabstatus.CmdUnsuspendSelected, region: RegionOptsSelected},
	ActionWhitelist:         {command: tabstatus.CmdWhitelistCurrent, region: RegionWhitelist, refreshIcon: true},
	ActionPause:             {command: tabstatus.CmdTempWhitelistCurrent, region: RegionTempWhitelist, refreshIcon: true},
}

// Controller is the popup's status state machine.
type Controller struct {
	view   View
	cmds   Commander
	logger *slog.Logger

	mu       sync.Mutex
	current  tabstatus.Status
	visible  map[Region]bool
	bound    ActionHandle
	hasBound bool
	closed   bool

	wg sync.WaitGroup
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller's logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = l
	}
}

// New creates a Controller that drives view and sends commands through cmds.
func New(view View, cmds Commander, opts ...Option) *Controller {
	c := &Controller{
		view:    view,
		cmds:    cmds,
		logger:  slog.Default(),
		current: tabstatus.Unknown,
		visible: make(map[Region]bool),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate renders the immediate status snapshot. When that snapshot is
// Unknown it waits for patient in the background and re-renders with its
// result, reporting a still-unknown result as Error.
func (c *Controller) Activate(ctx context.Context, immediate tabstatus.Status, patient Pending, selectedCount int) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.setRegionLocked(RegionOptsSelected, tabstatus.SelectedVisible(selectedCount))
	c.renderLocked(immediate)
	c.mu.Unlock()

	if immediate != tabstatus.Unknown {
		return
	}
	if patient == nil {
		c.logger.Warn("immediate status unknown and no patient resolution to wait for")
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		c.awaitPatient(ctx, patient)
	}()
}

func (c *Controller) awaitPatient(ctx context.Context, patient Pending) {
	select {
	case <-patient.Done():
	case <-ctx.Done():
		return
	}

	status := patient.Status()
	if status == tabstatus.Unknown {
		status = tabstatus.Error
	}
	c.logger.Debug("patient status resolved", "status", status)
	c.Render(status)
}

// Render applies status to the view. Region visibility always follows
// status; an unrecognized status is logged and leaves the text, icon and
// primary action untouched. Rendering after the surface was torn down is a
// no-op.
func (c *Controller) Render(status tabstatus.Status) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.renderLocked(status)
}

func (c *Controller) renderLocked(status tabstatus.Status) {
	if c.closed {
		c.logger.Debug("render after close ignored", "status", status)
		return
	}

	vis := tabstatus.Visibility(status)
	c.setRegionLocked(RegionSuspendOne, vis.SuspendOne)
	c.setRegionLocked(RegionWhitelist, vis.Whitelist)
	c.setRegionLocked(RegionTempWhitelist, vis.Pause)
	c.setRegionLocked(RegionOptsCurrent, vis.Any())

	rule, ok := tabstatus.RuleFor(status)
	if !ok {
		c.logger.Warn("could not process tab status", "status", status)
		return
	}

	c.view.RenderStatus(status, rule)
	c.current = status

	if c.hasBound {
		c.view.UnbindPrimaryAction(c.bound)
		c.hasBound = false
	}
	if rule.Bound {
		c.bound = c.view.BindPrimaryAction(c.primaryHandler(rule.Action))
		c.hasBound = true
	}
}

func (c *Controller) setRegionLocked(r Region, visible bool) {
	c.visible[r] = visible
	c.view.SetRegionVisible(r, visible)
}

// primaryHandler builds the handler bound to the primary action for cmd.
func (c *Controller) primaryHandler(cmd tabstatus.Command) func() {
	return func() {
		c.mu.Lock()
		if c.closed {
			c.mu.Unlock()
			return
		}
		c.detachLocked()
		c.mu.Unlock()

		c.send(cmd)
		c.updateIcon(tabstatus.Normal)
		c.view.Close()
	}
}

// Invoke runs a region action and closes the popup. Actions whose region is
// hidden are ignored and reported as not run.
func (c *Controller) Invoke(a Action) bool {
	spec, ok := actions[a]
	if !ok {
		c.logger.Warn("unknown popup action", "action", a)
		return false
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return false
	}
	if spec.region != "" && !c.visible[spec.region] {
		c.logger.Debug("action not offered for current status", "action", a, "status", c.current)
		c.mu.Unlock()
		return false
	}
	c.detachLocked()
	c.mu.Unlock()

	c.send(spec.command)
	if spec.refreshIcon {
		c.updateIcon("")
	}
	c.view.Close()
	return true
}

// Offered reports whether the action is currently available.
func (c *Controller) Offered(a Action) bool {
	spec, ok := actions[a]
	if !ok {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	return spec.region == "" || c.visible[spec.region]
}

// Dismiss closes the surface without running a command.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closeLocked()
}

func (c *Controller) closeLocked() {
	c.detachLocked()
	c.view.Close()
}

// detachLocked marks the controller torn down and unbinds the primary
// action. Commands sent on the way out run after c.mu is released.
func (c *Controller) detachLocked() {
	c.closed = true
	if c.hasBound {
		c.view.UnbindPrimaryAction(c.bound)
		c.hasBound = false
	}
}

// Current returns the status currently rendered.
func (c *Controller) Current() tabstatus.Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Closed reports whether the surface has been torn down.
func (c *Controller) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Wait blocks until any outstanding patient re-render has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) send(cmd tabstatus.Command) {
	if c.cmds == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := c.cmds.Run(ctx, cmd); err != nil {
		c.logger.Warn("command failed", "command", cmd, "error", err)
	}
}

func (c *Controller) updateIcon(status tabstatus.Status) {
	if c.cmds == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()
	if err := c.cmds.UpdateIcon(ctx, status); err != nil {
		c.logger.Warn("icon update failed", "status", status, "error", err)
	}
}
