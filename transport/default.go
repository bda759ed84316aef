package transport

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/ugparu/kahawai"
)

var (
	defaultManager *Manager
	defaultOnce    sync.Once
)

// Default returns the process-wide manager, built on first use with the MTL
// constructor and metrics on the default Prometheus registerer.
func Default() *Manager {
	defaultOnce.Do(func() {
		defaultManager = NewManager(WithRegisterer(prometheus.DefaultRegisterer))
	})
	return defaultManager
}

// Acquire calls Acquire on the default manager.
func Acquire(p Parameters) (kahawai.Transport, error) {
	return Default().Acquire(p)
}

// Release calls Release on the default manager.
func Release() error {
	return Default().Release()
}

// Teardown calls Teardown on the default manager.
func Teardown() error {
	return Default().Teardown()
}

// CurrentHandle calls CurrentHandle on the default manager.
func CurrentHandle() (kahawai.Transport, bool) {
	return Default().CurrentHandle()
}

// SetHandle calls SetHandle on the default manager.
func SetHandle(h kahawai.Transport) {
	Default().SetHandle(h)
}
