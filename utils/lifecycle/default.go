package lifecycle

import (
	"sync"

	"github.com/ugparu/kahawai/utils/logger"
)

type defaultLifecycleManager[T Instance] struct {
	instance T
	mu       sync.Mutex
	started  bool
	closed   bool
}

// NewDefaultManager returns a manager for instance.
// A failed start may be retried; Close only reaches the instance after a successful start.
func NewDefaultManager[T Instance](instance T) Manager[T] {
	return &defaultLifecycleManager[T]{
		instance: instance,
	}
}

func (m *defaultLifecycleManager[T]) Start(startFunc func(T) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch {
	case m.closed:
		return &StartedAfterCloseError{}
	case m.started:
		return &StartedAlreadyError{}
	}

	logger.Debugf(m.instance, "Starting")
	if err := startFunc(m.instance); err != nil {
		logger.Debugf(m.instance, "Start failed: %v", err)
		return err
	}
	m.started = true
	return nil
}

func (m *defaultLifecycleManager[T]) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}
	m.closed = true
	if !m.started {
		logger.Debug(m.instance, "Closed before start")
		return nil
	}
	logger.Debug(m.instance, "Closing")
	return m.instance.Close_()
}

func (m *defaultLifecycleManager[T]) Started() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.started
}

func (m *defaultLifecycleManager[T]) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
