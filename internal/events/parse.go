package events

import (
	"encoding/json"
	"log/slog"
)

type eventEnvelope struct {
	Type EventType `json:"type"`
}

// ParseEvent decodes one journal line into a typed Event. Unknown types
// return (nil, nil) so newer journals stay readable.
func ParseEvent(line []byte) (Event, error) {
	var envelope eventEnvelope
	if err := json.Unmarshal(line, &envelope); err != nil {
		return nil, err
	}

	var ev Event
	switch envelope.Type {
	case EventDaemonStart:
		ev = &DaemonStartEvent{}
	case EventDaemonStop:
		ev = &DaemonStopEvent{}
	case EventTabsLoaded:
		ev = &TabsLoadedEvent{}
	case EventTabInfo:
		ev = &TabInfoEvent{}
	case EventHighlighted:
		ev = &HighlightedEvent{}
	case EventCommand:
		ev = &CommandEvent{}
	case EventOptionChanged:
		ev = &OptionChangedEvent{}
	case EventError:
		ev = &ErrorEvent{}
	default:
		slog.Debug("unknown event type", "type", envelope.Type)
		return nil, nil
	}

	if err := json.Unmarshal(line, ev); err != nil {
		return nil, err
	}
	return ev, nil
}
