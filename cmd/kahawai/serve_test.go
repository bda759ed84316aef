package main

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/config"
	"github.com/ugparu/kahawai/transport"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.FatalLevel)
	m.Run()
}

type fakeTransport struct {
	closed atomic.Int32
}

func (*fakeTransport) String() string { return "fake" }

func (f *fakeTransport) Close() error {
	f.closed.Add(1)
	return nil
}

type fakeConstructor struct {
	mu   sync.Mutex
	made []*fakeTransport
}

func (c *fakeConstructor) New(kahawai.InitParams) (kahawai.Transport, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	tr := &fakeTransport{}
	c.made = append(c.made, tr)
	return tr, nil
}

// failingManager lets the first n acquires through.
type failingManager struct {
	*transport.Manager
	left atomic.Int32
}

func (f *failingManager) Acquire(p transport.Parameters) (kahawai.Transport, error) {
	if f.left.Add(-1) < 0 {
		return nil, errors.New("no more sessions")
	}
	return f.Manager.Acquire(p)
}

func serveConfig(encoders, decoders int) *config.Config {
	return &config.Config{
		Log: config.LogConfig{Level: "fatal"},
		Transport: transport.Parameters{
			Port:      "eth0",
			LocalAddr: "192.168.1.10",
		},
		Session: config.SessionConfig{FrameRate: "25", Encoders: encoders, Decoders: decoders},
	}
}

func newServeManager(c *fakeConstructor) *transport.Manager {
	return transport.NewManager(
		transport.WithConstructor(c.New),
		transport.WithRegisterer(prometheus.NewRegistry()),
	)
}

func TestServeShutdown(t *testing.T) {
	c := &fakeConstructor{}
	m := newServeManager(c)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		errCh <- serve(ctx, serveConfig(2, 3), m, prometheus.NewRegistry())
	}()

	require.Eventually(t, func() bool { return m.Sessions() == 5 }, 5*time.Second, 5*time.Millisecond)
	require.Equal(t, transport.Live, m.State())

	cancel()
	select {
	case err := <-errCh:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after cancel")
	}

	require.Zero(t, m.Sessions())
	require.Equal(t, transport.Uninitialized, m.State())
	require.Len(t, c.made, 1)
	require.EqualValues(t, 1, c.made[0].closed.Load())
}

func TestServeOpenFailure(t *testing.T) {
	c := &fakeConstructor{}
	m := &failingManager{Manager: newServeManager(c)}
	m.left.Store(3)

	err := serve(context.Background(), serveConfig(2, 3), m, prometheus.NewRegistry())
	require.EqualError(t, err, "no more sessions")

	require.Zero(t, m.Sessions())
	require.Equal(t, transport.Uninitialized, m.State())
	require.Len(t, c.made, 1)
	require.EqualValues(t, 1, c.made[0].closed.Load())
}

func TestServeUnsupportedRate(t *testing.T) {
	c := &fakeConstructor{}
	m := newServeManager(c)
	conf := serveConfig(1, 0)
	conf.Session.FrameRate = "15"

	err := serve(context.Background(), conf, m, prometheus.NewRegistry())
	require.Error(t, err)
	require.Empty(t, c.made)
	require.Equal(t, transport.Uninitialized, m.State())
}

func TestRootInvalidLogLevel(t *testing.T) {
	_, err := run(t, "--log-level", "loud", "classify", "25")
	require.Error(t, err)
}
