package transport

import (
	"context"

	"github.com/looplab/fsm"
	"github.com/ugparu/kahawai/utils/logger"
)

// State of the shared transport.
type State string

// Manager states. There is no transition back to Uninitialized when the session count drops to zero.
const (
	Uninitialized State = "uninitialized"
	Live          State = "live"
)

const (
	eventConstruct = "construct" // first acquire built the transport
	eventInstall   = "install"   // lifecycle owner injected a transport
	eventTeardown  = "teardown"  // explicit teardown closed the transport
	eventDrop      = "drop"      // lifecycle owner cleared the transport
)

func (m *Manager) newStateMachine() *fsm.FSM {
	return fsm.NewFSM(
		string(Uninitialized),
		fsm.Events{
			{Name: eventConstruct, Src: []string{string(Uninitialized)}, Dst: string(Live)},
			{Name: eventInstall, Src: []string{string(Uninitialized)}, Dst: string(Live)},
			{Name: eventTeardown, Src: []string{string(Live)}, Dst: string(Uninitialized)},
			{Name: eventDrop, Src: []string{string(Live)}, Dst: string(Uninitialized)},
		},
		fsm.Callbacks{
			"enter_state": func(_ context.Context, e *fsm.Event) {
				logger.Infof(m, "State %s -> %s on %s", e.Src, e.Dst, e.Event)
				m.metrics.transitions.WithLabelValues(e.Event).Inc()
			},
		},
	)
}

// fire moves the state machine. Callers hold m.mu and have already checked the source state.
func (m *Manager) fire(event string) {
	if err := m.state.Event(context.Background(), event); err != nil {
		logger.Errorf(m, "State machine rejected %s in %s: %v", event, m.state.Current(), err)
	}
}
