// Package transport shares one media transport between any number of encode and decode sessions.
//
// The first successful Acquire builds the transport from its caller's
// parameters; later callers get the same instance regardless of what they
// pass. Release only counts: the transport stays up at zero sessions until the
// process shutdown path calls Teardown. Skipping Teardown leaks the NIC port
// for the life of the process.
package transport

import (
	"errors"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/samber/oops"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/mtl"
	"github.com/ugparu/kahawai/utils"
	"github.com/ugparu/kahawai/utils/logger"
)

// Manager owns the shared transport handle and the session counter.
type Manager struct {
	mu        sync.Mutex
	name      string
	construct kahawai.Constructor
	state     *fsm.FSM
	handle    kahawai.Transport
	params    *Parameters // nil when the handle was injected through SetHandle
	sessions  uint
	metrics   *metrics
}

type options struct {
	name      string
	construct kahawai.Constructor
	reg       prometheus.Registerer
}

// Option configures a Manager.
type Option func(*options)

// WithConstructor replaces the MTL constructor.
func WithConstructor(c kahawai.Constructor) Option {
	return func(o *options) { o.construct = c }
}

// WithRegisterer registers the manager metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.reg = reg }
}

// WithName sets the tag the manager logs under.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// NewManager returns a manager in the Uninitialized state.
func NewManager(opts ...Option) *Manager {
	o := options{
		name:      "transport",
		construct: mtl.New,
	}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Manager{
		name:      o.name,
		construct: o.construct,
		metrics:   newMetrics(o.reg),
	}
	m.state = m.newStateMachine()
	return m
}

func (m *Manager) String() string {
	return m.name
}

// Acquire returns the shared transport, building it from p if none exists yet,
// and counts the caller as an active session. On error nothing changes.
func (m *Manager) Acquire(p Parameters) (kahawai.Transport, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle != nil {
		if m.params != nil && *m.params != p {
			logger.Debugf(m, "Ignoring %v, %v was built with %v", p, m.handle, *m.params)
		}
		m.addSessions(1)
		return m.handle, nil
	}

	ip, err := p.InitParams()
	if err != nil {
		logger.Errorf(m, "Rejecting parameters: %v", err)
		m.metrics.failures.WithLabelValues(reasonInvalidArgument).Inc()
		return nil, err
	}
	if len(ip.DMADevices) > 0 {
		logger.Debugf(m, "DMA enabled on %s", p.DMADevice)
	}

	h, err := m.construct(ip)
	if err == nil && h == nil {
		err = errors.New("constructor returned no transport")
	}
	if err != nil {
		m.metrics.failures.WithLabelValues(reasonConstruct).Inc()
		return nil, oops.
			In("transport").
			With("port", p.Port, "local_addr", p.LocalAddr).
			Wrapf(err, "construct transport")
	}

	logger.Infof(m, "Built %v with %v", h, ip)
	m.metrics.constructions.Inc()
	m.fire(eventConstruct)
	m.handle, m.params = h, &p
	m.addSessions(1)
	return h, nil
}

// Release gives back a session acquired with Acquire. The transport is not closed.
func (m *Manager) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.sessions == 0 {
		m.metrics.failures.WithLabelValues(reasonUnderflow).Inc()
		return &utils.LogicError{Op: "release", Reason: "no active session, acquire/release mismatch"}
	}
	m.addSessions(-1)
	if m.sessions == 0 && m.handle != nil {
		logger.Infof(m, "No active sessions, %v stays up until teardown", m.handle)
	}
	return nil
}

// Teardown closes the shared transport and returns to Uninitialized.
// It fails while sessions are active and is a no-op without a transport.
// If closing fails the manager stays Live so the call can be retried.
func (m *Manager) Teardown() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.handle == nil {
		return nil
	}
	if m.sessions > 0 {
		m.metrics.failures.WithLabelValues(reasonTeardown).Inc()
		return &utils.LogicError{Op: "teardown", Reason: fmt.Sprintf("%d sessions still active", m.sessions)}
	}
	if err := m.handle.Close(); err != nil {
		m.metrics.failures.WithLabelValues(reasonTeardown).Inc()
		return oops.In("transport").With("transport", m.handle.String()).Wrapf(err, "close transport")
	}

	logger.Infof(m, "Closed %v", m.handle)
	m.metrics.teardowns.Inc()
	m.fire(eventTeardown)
	m.handle, m.params = nil, nil
	return nil
}

// CurrentHandle returns the shared transport if one exists.
func (m *Manager) CurrentHandle() (kahawai.Transport, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle, m.handle != nil
}

// SetHandle forces the shared transport to h, nil clearing it.
// It is meant for the process lifecycle owner between teardown and re-init;
// the session counter is left as is and the previous transport is not closed.
func (m *Manager) SetHandle(h kahawai.Transport) {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case h == nil && m.handle != nil:
		m.fire(eventDrop)
	case h != nil && m.handle == nil:
		m.fire(eventInstall)
	}
	if m.sessions > 0 {
		logger.Warningf(m, "Replacing %v with %v under %d active sessions", m.handle, h, m.sessions)
	} else {
		logger.Debugf(m, "Replacing %v with %v", m.handle, h)
	}
	m.handle, m.params = h, nil
}

// Sessions returns the number of active sessions.
func (m *Manager) Sessions() uint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions
}

// State returns the current manager state.
func (m *Manager) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return State(m.state.Current())
}

// Parameters returns the parameters the shared transport was built with.
// It reports false when there is no transport or it was injected through SetHandle.
func (m *Manager) Parameters() (Parameters, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.params == nil {
		return Parameters{}, false
	}
	return *m.params, true
}

// Snapshot is a consistent view of the manager.
type Snapshot struct {
	State      State       `json:"state"`
	Sessions   uint        `json:"sessions"`
	Transport  string      `json:"transport,omitempty"`
	Parameters *Parameters `json:"parameters,omitempty"`
}

// Snapshot returns state, sessions and parameters read under one lock.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Snapshot{
		State:    State(m.state.Current()),
		Sessions: m.sessions,
	}
	if m.handle != nil {
		s.Transport = m.handle.String()
	}
	if m.params != nil {
		p := *m.params
		s.Parameters = &p
	}
	return s
}

func (m *Manager) addSessions(delta int) {
	if delta < 0 {
		m.sessions--
	} else {
		m.sessions++
	}
	m.metrics.sessions.Set(float64(m.sessions))
	logger.Debugf(m, "%d active sessions", m.sessions)
}
