// Package power reports whether the machine is on mains power and whether it
// has network connectivity, which the authority uses to hold suspension.
package power

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
)

const (
	upowerDest = "org.freedesktop.UPower"
	upowerPath = "/org/freedesktop/UPower"
	upowerProp = "org.freedesktop.UPower.OnBattery"

	nmDest = "org.freedesktop.NetworkManager"
	nmPath = "/org/freedesktop/NetworkManager"
	nmProp = "org.freedesktop.NetworkManager.Connectivity"

	// NetworkManager connectivity states.
	nmConnectivityUnknown = 0
	nmConnectivityFull    = 4
)

// State is a snapshot of the machine's power and network situation.
type State struct {
	Charging bool
	Online   bool
}

// Probe reads the current State.
type Probe interface {
	Probe(ctx context.Context) (State, error)
}

// Static is a Probe that always reports the same State.
type Static State

// Probe implements Probe.
func (s Static) Probe(ctx context.Context) (State, error) {
	return State(s), nil
}

// busObject is the part of dbus.BusObject the probe needs.
type busObject interface {
	GetProperty(p string) (dbus.Variant, error)
}

// DBusProbe reads UPower and NetworkManager over the system bus.
type DBusProbe struct {
	conn   *dbus.Conn
	upower busObject
	nm     busObject
	logger *slog.Logger
}

// NewDBusProbe connects to the system bus.
func NewDBusProbe(logger *slog.Logger) (*DBusProbe, error) {
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return nil, fmt.Errorf("connect to system bus: %w", err)
	}
	return &DBusProbe{
		conn:   conn,
		upower: conn.Object(upowerDest, dbus.ObjectPath(upowerPath)),
		nm:     conn.Object(nmDest, dbus.ObjectPath(nmPath)),
		logger: logger,
	}, nil
}

// Probe implements Probe. A missing service is logged and treated as the
// permissive value (not charging, online) rather than failing the probe.
func (p *DBusProbe) Probe(ctx context.Context) (State, error) {
	if err := ctx.Err(); err != nil {
		return State{}, err
	}

	state := State{Online: true}

	if v, err := p.upower.GetProperty(upowerProp); err != nil {
		p.logger.Debug("upower unavailable", "error", err)
	} else if onBattery, ok := v.Value().(bool); ok {
		state.Charging = !onBattery
	}

	if v, err := p.nm.GetProperty(nmProp); err != nil {
		p.logger.Debug("networkmanager unavailable", "error", err)
	} else if c, ok := v.Value().(uint32); ok {
		state.Online = c == nmConnectivityFull || c == nmConnectivityUnknown
	}

	return state, nil
}

// Close releases the bus connection.
func (p *DBusProbe) Close() error {
	if p.conn == nil {
		return nil
	}
	return p.conn.Close()
}
