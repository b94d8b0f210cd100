package tui

import (
	"maps"
	"sort"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/npratt/tabsuspend/internal/popup"
	"github.com/npratt/tabsuspend/internal/tabstatus"
)

// surfaceChangedMsg tells the program the surface needs a redraw.
type surfaceChangedMsg struct{}

// surfaceClosedMsg tells the program the controller tore the surface down.
type surfaceClosedMsg struct{}

// surfaceState is a copy of what the controller last drew.
type surfaceState struct {
	status   tabstatus.Status
	rule     tabstatus.Rule
	rendered bool
	regions  map[popup.Region]bool
	bound    int
	closed   bool
}

func (s surfaceState) visible(r popup.Region) bool {
	return s.regions[r]
}

// surface is the popup.View the controller drives. The controller calls in
// from its own goroutines, so state is mutex-guarded and the bubbletea
// program only ever reads snapshots.
type surface struct {
	mu       sync.Mutex
	state    surfaceState
	handlers map[popup.ActionHandle]func()
	next     popup.ActionHandle
	notify   func(tea.Msg)
}

func newSurface() *surface {
	return &surface{
		state: surfaceState{
			status:  tabstatus.Unknown,
			regions: make(map[popup.Region]bool),
		},
		handlers: make(map[popup.ActionHandle]func()),
	}
}

// setNotify installs the program's Send. Messages are posted from a fresh
// goroutine: Send blocks until the event loop receives, and the event loop
// itself may be the caller (Dismiss from Update).
func (s *surface) setNotify(fn func(tea.Msg)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notify = fn
}

func (s *surface) post(msg tea.Msg) {
	if s.notify == nil {
		return
	}
	fn := s.notify
	go fn(msg)
}

func (s *surface) SetRegionVisible(r popup.Region, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.regions[r] == visible {
		return
	}
	s.state.regions[r] = visible
	s.post(surfaceChangedMsg{})
}

func (s *surface) RenderStatus(status tabstatus.Status, rule tabstatus.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.status = status
	s.state.rule = rule
	s.state.rendered = true
	s.post(surfaceChangedMsg{})
}

func (s *surface) BindPrimaryAction(fn func()) popup.ActionHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.handlers[s.next] = fn
	s.state.bound = len(s.handlers)
	return s.next
}

func (s *surface) UnbindPrimaryAction(h popup.ActionHandle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.handlers, h)
	s.state.bound = len(s.handlers)
}

func (s *surface) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.closed {
		return
	}
	s.state.closed = true
	s.post(surfaceClosedMsg{})
}

// snapshot returns a copy safe to read without the lock.
func (s *surface) snapshot() surfaceState {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state
	out.regions = maps.Clone(s.state.regions)
	return out
}

// primary returns the handlers bound to the primary action in the order
// they were attached. Callers run them without holding the surface lock;
// each handler calls back into Unbind and Close.
func (s *surface) primary() []func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]popup.ActionHandle, 0, len(s.handlers))
	for h := range s.handlers {
		keys = append(keys, h)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	out := make([]func(), 0, len(keys))
	for _, h := range keys {
		out = append(out, s.handlers[h])
	}
	return out
}
