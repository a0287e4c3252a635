package connectivity

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Probe answers whether the remote backend is currently reachable.
type Probe interface {
	Online(ctx context.Context) bool
}

// Monitor is the single source of truth for "are we connected". Transitions
// are edge-triggered: callbacks fire once per offline→online (or reverse)
// edge, never on repeated observations of the same state.
type Monitor struct {
	probe    Probe
	interval time.Duration
	logger   *slog.Logger

	mu        sync.Mutex
	online    bool
	primed    bool
	onOnline  []func(context.Context)
	onOffline []func(context.Context)
}

// NewMonitor constructs the monitor; Start must be called to begin probing.
func NewMonitor(probe Probe, interval time.Duration, logger *slog.Logger) *Monitor {
	return &Monitor{
		probe:    probe,
		interval: interval,
		logger:   logger.With("component", "connectivity.monitor"),
	}
}

// OnOnline registers a callback for the offline→online edge.
func (m *Monitor) OnOnline(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOnline = append(m.onOnline, fn)
}

// OnOffline registers a callback for the online→offline edge.
func (m *Monitor) OnOffline(fn func(context.Context)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onOffline = append(m.onOffline, fn)
}

// IsOnline reports the last observed state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// Start reads the initial state and then polls the probe until ctx is done.
// The initial observation sets state without firing callbacks.
func (m *Monitor) Start(ctx context.Context) {
	m.prime(m.probe.Online(ctx))
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.observe(ctx, m.probe.Online(ctx))
		}
	}
}

func (m *Monitor) prime(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.online = online
	m.primed = true
	m.logger.Info("initial connectivity state", "online", online)
}

// observe applies one probe result, invoking edge callbacks on change.
func (m *Monitor) observe(ctx context.Context, online bool) {
	m.mu.Lock()
	if m.primed && m.online == online {
		m.mu.Unlock()
		return
	}
	m.online = online
	m.primed = true
	var callbacks []func(context.Context)
	if online {
		callbacks = append(callbacks, m.onOnline...)
	} else {
		callbacks = append(callbacks, m.onOffline...)
	}
	m.mu.Unlock()

	m.logger.Info("connectivity changed", "online", online)
	for _, fn := range callbacks {
		fn(ctx)
	}
}
