package daemon

import (
	"time"

	"github.com/npratt/tabsuspend/internal/events"
)

// Methods understood by the daemon.
const (
	MethodTabInfo     = "tab_info"
	MethodHighlighted = "highlighted_tabs"
	MethodCommand     = "command"
	MethodGetOption   = "get_option"
	MethodSetOption   = "set_option"
	MethodStatus      = "status"
	MethodStop        = "stop"
)

// Request is one JSON request from a client. Each connection carries
// exactly one request and one response.
type Request struct {
	Method string `json:"method"`
	Params any    `json:"params,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// Response is the daemon's reply to a Request.
type Response struct {
	Result any    `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
	ID     int    `json:"id,omitempty"`
}

// TabInfoParams are the parameters for tab_info.
type TabInfoParams struct {
	ForceFresh bool `json:"force_fresh,omitempty"`
}

// CommandParams are the parameters for command. Status is only used by
// update-icon.
type CommandParams struct {
	Name   string `json:"name"`
	Status string `json:"status,omitempty"`
}

// OptionParams are the parameters for get_option and set_option.
type OptionParams struct {
	Name  string `json:"name"`
	Value any    `json:"value,omitempty"`
}

// StopParams contains parameters for the stop method.
type StopParams struct {
	Force bool `json:"force,omitempty"`
}

// StatusResponse contains daemon status information.
type StatusResponse struct {
	Status     string         `json:"status"`
	InstanceID string         `json:"instance_id"`
	PID        int            `json:"pid"`
	Uptime     string         `json:"uptime"`
	StartTime  time.Time      `json:"start_time"`
	Tabs       int            `json:"tabs"`
	Counts     map[string]int `json:"counts"`
	Icon       string         `json:"icon"`
	Stats      events.Stats   `json:"stats"`
}
