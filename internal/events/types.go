// Package events defines the journal of what the background authority did:
// status queries, applied commands, option changes, and lifecycle. Events
// flow through a Router to sinks such as the JSONL LogSink.
package events

import (
	"time"

	"github.com/oklog/ulid/v2"
)

// EventType identifies the category and nature of an event.
type EventType string

const (
	// Lifecycle
	EventDaemonStart EventType = "daemon.start"
	EventDaemonStop  EventType = "daemon.stop"
	EventTabsLoaded  EventType = "tabs.loaded"

	// Queries
	EventTabInfo     EventType = "query.tab_info"
	EventHighlighted EventType = "query.highlighted"

	// Mutations
	EventCommand       EventType = "command.applied"
	EventOptionChanged EventType = "option.changed"

	EventError EventType = "error"
)

// Source constants identify the origin of events.
const (
	SourceDaemon  = "daemon"
	SourceTracker = "tracker"
	SourceWatcher = "watcher"
)

// Event is the base interface for all events in the system.
type Event interface {
	Type() EventType
	Timestamp() time.Time
	Source() string
}

// BaseEvent provides the common fields for all events. ID is a ULID so
// journal lines sort by creation time.
type BaseEvent struct {
	ID        string    `json:"id"`
	EventType EventType `json:"type"`
	Time      time.Time `json:"timestamp"`
	Src       string    `json:"source"`
}

// Type returns the event type.
func (e BaseEvent) Type() EventType {
	return e.EventType
}

// Timestamp returns when the event occurred.
func (e BaseEvent) Timestamp() time.Time {
	return e.Time
}

// Source returns the origin of the event.
func (e BaseEvent) Source() string {
	return e.Src
}

// DaemonStartEvent is emitted once the socket is listening.
type DaemonStartEvent struct {
	BaseEvent
	InstanceID string `json:"instance_id"`
	Socket     string `json:"socket"`
	Tabs       int    `json:"tabs"`
}

// DaemonStopEvent is emitted on shutdown.
type DaemonStopEvent struct {
	BaseEvent
	Reason string `json:"reason,omitempty"`
}

// TabsLoadedEvent is emitted whenever the tab snapshot is (re)loaded.
type TabsLoadedEvent struct {
	BaseEvent
	Path  string `json:"path"`
	Count int    `json:"count"`
}

// TabInfoEvent is emitted for every status query.
type TabInfoEvent struct {
	BaseEvent
	TabID      int    `json:"tab_id,omitempty"`
	Status     string `json:"status"`
	ForceFresh bool   `json:"force_fresh,omitempty"`
}

// HighlightedEvent is emitted for every selection query.
type HighlightedEvent struct {
	BaseEvent
	Count int `json:"count"`
}

// CommandEvent is emitted for every command received, applied or not.
type CommandEvent struct {
	BaseEvent
	Name     string `json:"name"`
	Status   string `json:"status,omitempty"`
	Affected []int  `json:"affected,omitempty"`
	Error    string `json:"error,omitempty"`
}

// OptionChangedEvent is emitted when a setting is written.
type OptionChangedEvent struct {
	BaseEvent
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Severity constants for error events.
const (
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// ErrorEvent is emitted for any error condition.
type ErrorEvent struct {
	BaseEvent
	Message  string            `json:"message"`
	Severity string            `json:"severity"`
	Context  map[string]string `json:"context,omitempty"`
}

// NewEvent creates a BaseEvent with the given type and source.
func NewEvent(eventType EventType, source string) BaseEvent {
	now := time.Now()
	return BaseEvent{
		ID:        ulid.MustNew(ulid.Timestamp(now), ulid.DefaultEntropy()).String(),
		EventType: eventType,
		Time:      now,
		Src:       source,
	}
}

// NewDaemonEvent creates a BaseEvent with the daemon as the source.
func NewDaemonEvent(eventType EventType) BaseEvent {
	return NewEvent(eventType, SourceDaemon)
}
