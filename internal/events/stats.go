package events

import (
	"context"
	"sync"
	"time"
)

// StatsBufferSize is the recommended buffer size for a StatsSink
// subscription.
const StatsBufferSize = 1000

// Stats summarises the journal since the daemon started.
type Stats struct {
	Queries     int            `json:"queries"`
	Commands    map[string]int `json:"commands"`
	Failures    int            `json:"failures"`
	Reloads     int            `json:"reloads"`
	LastCommand string         `json:"last_command,omitempty"`
	LastEventAt time.Time      `json:"last_event_at,omitzero"`
}

// StatsSink keeps running counters for the daemon's status report.
type StatsSink struct {
	mu    sync.Mutex
	stats Stats
	done  chan struct{}
}

// NewStatsSink creates an empty StatsSink.
func NewStatsSink() *StatsSink {
	return &StatsSink{
		stats: Stats{Commands: make(map[string]int)},
		done:  make(chan struct{}),
	}
}

// Start consumes events in the background.
func (s *StatsSink) Start(ctx context.Context, events <-chan Event) error {
	go func() {
		defer close(s.done)
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				s.Record(ev)
			}
		}
	}()
	return nil
}

// Stop waits for the consumer goroutine to exit.
func (s *StatsSink) Stop() error {
	<-s.done
	return nil
}

// Record folds one event into the counters.
func (s *StatsSink) Record(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stats.LastEventAt = ev.Timestamp()
	switch e := ev.(type) {
	case *TabInfoEvent, *HighlightedEvent:
		s.stats.Queries++
	case *CommandEvent:
		if e.Error != "" {
			s.stats.Failures++
			return
		}
		s.stats.Commands[e.Name]++
		s.stats.LastCommand = e.Name
	case *TabsLoadedEvent:
		s.stats.Reloads++
	case *ErrorEvent:
		s.stats.Failures++
	}
}

// Snapshot returns a copy of the counters.
func (s *StatsSink) Snapshot() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.stats
	out.Commands = make(map[string]int, len(s.stats.Commands))
	for k, v := range s.stats.Commands {
		out.Commands[k] = v
	}
	return out
}
