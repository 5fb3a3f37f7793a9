package database

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// State is the connection state of the backing store.
type State int

const (
	Disconnected State = iota
	Connecting
	Connected
	Disconnecting
)

func (s State) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Connecting:
		return "connecting"
	case Connected:
		return "connected"
	case Disconnecting:
		return "disconnecting"
	default:
		return "unknown"
	}
}

// Pinger is satisfied by *pgxpool.Pool and by the repositories.
type Pinger interface {
	Ping(ctx context.Context) error
}

// MonitorOptions tune a Monitor. Zero values take the defaults.
type MonitorOptions struct {
	Interval time.Duration // between pings, default 5s
	Timeout  time.Duration // per ping, default 2s
	Logger   *slog.Logger

	// OnTransition, if set, is called after every state change while the
	// monitor's lock is not held.
	OnTransition func(from, to State)
}

// Monitor tracks whether the store is reachable. Only Connected counts as
// ready; every other state makes the service refuse traffic.
type Monitor struct {
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger
	onChange func(from, to State)

	mu      sync.Mutex
	state   State
	changed chan struct{} // closed and replaced on every transition
}

// NewMonitor constructs a Monitor in the Disconnected state. Call Run to
// start probing.
func NewMonitor(p Pinger, opts MonitorOptions) *Monitor {
	if opts.Interval <= 0 {
		opts.Interval = 5 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		pinger:   p,
		interval: opts.Interval,
		timeout:  opts.Timeout,
		logger:   opts.Logger.With("component", "monitor"),
		onChange: opts.OnTransition,
		state:    Disconnected,
		changed:  make(chan struct{}),
	}
}

// State returns the current connection state.
func (m *Monitor) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Ready reports whether the store is connected.
func (m *Monitor) Ready() bool {
	return m.State() == Connected
}

// WaitReady blocks until the store is connected or ctx is done.
func (m *Monitor) WaitReady(ctx context.Context) error {
	for {
		m.mu.Lock()
		if m.state == Connected {
			m.mu.Unlock()
			return nil
		}
		ch := m.changed
		m.mu.Unlock()

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ch:
		}
	}
}

// Run checks the store immediately and then every interval until ctx is
// done, at which point the monitor passes through Disconnecting to
// Disconnected.
func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Check(ctx)
	for {
		select {
		case <-ctx.Done():
			m.set(Disconnecting)
			m.set(Disconnected)
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check pings the store once and updates the state. It returns the state
// after the ping.
func (m *Monitor) Check(ctx context.Context) State {
	if m.State() != Connected {
		m.set(Connecting)
	}

	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	err := m.pinger.Ping(pingCtx)
	cancel()

	if ctx.Err() != nil {
		// Shutting down; Run records the final transitions.
		return m.State()
	}
	if err != nil {
		if m.set(Disconnected) {
			m.logger.Warn("store unreachable", "error", err)
		}
		return Disconnected
	}
	m.set(Connected)
	return Connected
}

// set moves to s and reports whether the state changed.
func (m *Monitor) set(s State) bool {
	m.mu.Lock()
	from := m.state
	if from == s {
		m.mu.Unlock()
		return false
	}
	m.state = s
	close(m.changed)
	m.changed = make(chan struct{})
	m.mu.Unlock()

	m.logger.Info("store state changed", "from", from.String(), "to", s.String())
	if m.onChange != nil {
		m.onChange(from, s)
	}
	return true
}
