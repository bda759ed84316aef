package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "kahawai.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "127.0.0.1:9110", cfg.Status.Listen)
	require.Equal(t, 1, cfg.Session.Encoders)

	r, err := cfg.Session.Rate()
	require.NoError(t, err)
	require.Equal(t, kahawai.Rational{Num: 30000, Den: 1001}, r)
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
transport:
  port: "0000:af:01.0"
  local_addr: 192.168.1.10
  max_encode_sessions: 2
  dma_device: "0000:80:04.0"
session:
  frame_rate: "50"
  encoders: 2
  decoders: 1
status:
  listen: ":9000"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.Log.Level)
	require.Equal(t, transport.Parameters{
		Port:              "0000:af:01.0",
		LocalAddr:         "192.168.1.10",
		MaxEncodeSessions: 2,
		DMADevice:         "0000:80:04.0",
	}, cfg.Transport)
	require.Equal(t, SessionConfig{FrameRate: "50", Encoders: 2, Decoders: 1}, cfg.Session)
	require.Equal(t, ":9000", cfg.Status.Listen)
}

func TestLoadEnvOverride(t *testing.T) {
	t.Setenv("KAHAWAI_TRANSPORT_PORT", "eth1")
	t.Setenv("KAHAWAI_TRANSPORT_LOCAL_ADDR", "10.0.0.1")

	path := writeConfig(t, "transport:\n  port: eth0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "eth1", cfg.Transport.Port)
	require.Equal(t, "10.0.0.1", cfg.Transport.LocalAddr)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidRate(t *testing.T) {
	path := writeConfig(t, "session:\n  frame_rate: fast\n")
	_, err := Load(path)
	require.Error(t, err)
}

func TestValidateNegativeSessions(t *testing.T) {
	cfg := &Config{
		Log:     LogConfig{Level: "info"},
		Session: SessionConfig{FrameRate: "25", Encoders: -1},
	}
	require.Error(t, cfg.Validate())
}

func TestLoadInvalidLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")
	_, err := Load(path)
	require.ErrorContains(t, err, "loud")

	t.Setenv("KAHAWAI_LOG_LEVEL", "verbose")
	_, err = Load("")
	require.Error(t, err)
}
