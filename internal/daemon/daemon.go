// Package daemon is the background authority's control surface: a Unix
// socket server answering tab status queries and applying popup commands,
// plus the client the popup and CLI use to reach it.
package daemon

import (
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/npratt/tabsuspend/internal/config"
	"github.com/npratt/tabsuspend/internal/events"
	"github.com/npratt/tabsuspend/internal/tabs"
)

// Daemon serves the tab registry over a Unix socket.
type Daemon struct {
	config     *config.Config
	registry   *tabs.Registry
	router     *events.Router
	stats      *events.StatsSink
	sockPath   string
	instanceID string
	startTime  time.Time
	logger     *slog.Logger

	listener net.Listener
	running  bool
	stopReq  chan struct{}
	stopOnce sync.Once
	mu       sync.RWMutex
}

// Option configures a Daemon.
type Option func(*Daemon)

// WithStats attaches a stats sink whose counters appear in status
// responses.
func WithStats(s *events.StatsSink) Option {
	return func(d *Daemon) { d.stats = s }
}

// New creates a Daemon. router may be nil, in which case nothing is
// journalled.
func New(cfg *config.Config, registry *tabs.Registry, router *events.Router, logger *slog.Logger, opts ...Option) *Daemon {
	if logger == nil {
		logger = slog.Default()
	}
	d := &Daemon{
		config:     cfg,
		registry:   registry,
		router:     router,
		sockPath:   cfg.Paths.Socket,
		instanceID: ulid.Make().String(),
		logger:     logger,
		stopReq:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Running returns whether the daemon is currently running.
func (d *Daemon) Running() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.running
}

// Registry returns the tab registry the daemon serves.
func (d *Daemon) Registry() *tabs.Registry {
	return d.registry
}

// InstanceID identifies this daemon run.
func (d *Daemon) InstanceID() string {
	return d.instanceID
}

// StartTime returns when the daemon was started.
func (d *Daemon) StartTime() time.Time {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.startTime
}

// SocketPath returns the Unix socket path.
func (d *Daemon) SocketPath() string {
	return d.sockPath
}

// StopRequested is closed when a client asks the daemon to stop.
func (d *Daemon) StopRequested() <-chan struct{} {
	return d.stopReq
}

func (d *Daemon) requestStop() {
	d.stopOnce.Do(func() { close(d.stopReq) })
}

func (d *Daemon) emit(ev events.Event) {
	if d.router != nil {
		d.router.Emit(ev)
	}
}
