package daemon

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mitchellh/mapstructure"

	"github.com/npratt/tabsuspend/internal/events"
	"github.com/npratt/tabsuspend/internal/tabs"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// handleRequest dispatches the request to the appropriate handler.
func (d *Daemon) handleRequest(_ context.Context, req *Request) Response {
	switch req.Method {
	case MethodTabInfo:
		return d.handleTabInfo(req)
	case MethodHighlighted:
		return d.handleHighlighted()
	case MethodCommand:
		return d.handleCommand(req)
	case MethodGetOption:
		return d.handleGetOption(req)
	case MethodSetOption:
		return d.handleSetOption(req)
	case MethodStatus:
		return d.handleStatus()
	case MethodStop:
		return d.handleStop(req)
	default:
		return Response{Error: fmt.Sprintf("unknown method: %s", req.Method)}
	}
}

// decodeParams converts the loosely typed JSON params into out.
func decodeParams(params any, out any) error {
	if params == nil {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(params); err != nil {
		return fmt.Errorf("invalid params: %w", err)
	}
	return nil
}

func (d *Daemon) handleTabInfo(req *Request) Response {
	var p TabInfoParams
	if err := decodeParams(req.Params, &p); err != nil {
		return Response{Error: err.Error()}
	}

	info, err := d.registry.TabInfo(p.ForceFresh)
	if err != nil {
		if !errors.Is(err, tabs.ErrNoActiveTab) {
			d.logger.Warn("tab info failed", "error", err)
		}
		return Response{Error: err.Error()}
	}

	d.emit(&events.TabInfoEvent{
		BaseEvent:  events.NewDaemonEvent(events.EventTabInfo),
		TabID:      info.TabID,
		Status:     string(info.Status),
		ForceFresh: p.ForceFresh,
	})
	return Response{Result: info}
}

func (d *Daemon) handleHighlighted() Response {
	selected := d.registry.Highlighted()
	d.emit(&events.HighlightedEvent{
		BaseEvent: events.NewDaemonEvent(events.EventHighlighted),
		Count:     len(selected),
	})
	return Response{Result: selected}
}

func (d *Daemon) handleCommand(req *Request) Response {
	var p CommandParams
	if err := decodeParams(req.Params, &p); err != nil {
		return Response{Error: err.Error()}
	}

	ev := &events.CommandEvent{
		BaseEvent: events.NewDaemonEvent(events.EventCommand),
		Name:      p.Name,
		Status:    p.Status,
	}
	defer d.emit(ev)

	var status tabstatus.Status
	if p.Status != "" {
		s, err := tabstatus.Parse(p.Status)
		if err != nil {
			ev.Error = err.Error()
			return Response{Error: err.Error()}
		}
		status = s
	}

	res, err := d.registry.Apply(tabstatus.Command(p.Name), status)
	if err != nil {
		ev.Error = err.Error()
		d.logger.Warn("command rejected", "command", p.Name, "error", err)
		return Response{Error: err.Error()}
	}

	ev.Affected = res.Affected
	d.logger.Debug("command applied", "command", p.Name, "affected", len(res.Affected))
	return Response{Result: res}
}

func (d *Daemon) handleGetOption(req *Request) Response {
	var p OptionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return Response{Error: err.Error()}
	}
	v, err := d.registry.Option(p.Name)
	if err != nil {
		return Response{Error: err.Error()}
	}
	return Response{Result: v}
}

func (d *Daemon) handleSetOption(req *Request) Response {
	var p OptionParams
	if err := decodeParams(req.Params, &p); err != nil {
		return Response{Error: err.Error()}
	}
	if err := d.registry.SetOption(p.Name, p.Value); err != nil {
		return Response{Error: err.Error()}
	}

	v, _ := d.registry.Option(p.Name)
	d.emit(&events.OptionChangedEvent{
		BaseEvent: events.NewDaemonEvent(events.EventOptionChanged),
		Name:      p.Name,
		Value:     v,
	})
	d.logger.Info("option changed", "name", p.Name, "value", v)
	return Response{Result: v}
}

// handleStatus returns the current daemon status.
func (d *Daemon) handleStatus() Response {
	startTime := d.StartTime()

	counts := make(map[string]int)
	for s, n := range d.registry.Counts() {
		counts[string(s)] = n
	}

	resp := StatusResponse{
		Status:     "running",
		InstanceID: d.instanceID,
		PID:        os.Getpid(),
		Uptime:     humanize.RelTime(startTime, time.Now(), "", ""),
		StartTime:  startTime,
		Tabs:       d.registry.Len(),
		Counts:     counts,
		Icon:       string(d.registry.IconStatus()),
	}
	if d.stats != nil {
		resp.Stats = d.stats.Snapshot()
	}
	return Response{Result: resp}
}

// handleStop schedules daemon shutdown after the response is written.
func (d *Daemon) handleStop(req *Request) Response {
	var p StopParams
	if err := decodeParams(req.Params, &p); err != nil {
		return Response{Error: err.Error()}
	}

	delay := 100 * time.Millisecond
	if p.Force {
		delay = 0
	}
	go func() {
		time.Sleep(delay)
		d.requestStop()
	}()

	return Response{Result: "stopping"}
}
