// Package session performs the per-session transport setup shared by encoders and decoders.
package session

import (
	"fmt"
	"sync/atomic"

	"github.com/ugparu/kahawai"
	"github.com/ugparu/kahawai/rate"
	"github.com/ugparu/kahawai/transport"
	"github.com/ugparu/kahawai/utils/lifecycle"
	"github.com/ugparu/kahawai/utils/logger"
)

// Kind tells encode sessions from decode sessions.
type Kind uint8

// Session kinds
const (
	Encode Kind = iota // Transmits frames.
	Decode             // Receives frames.
)

func (k Kind) String() string {
	switch k {
	case Encode:
		return "ENC"
	case Decode:
		return "DEC"
	default:
		return "UNKNOWN"
	}
}

// Acquirer is the part of transport.Manager a session needs.
type Acquirer interface {
	Acquire(transport.Parameters) (kahawai.Transport, error)
	Release() error
}

var sessionIDs atomic.Uint64

// Session holds one reference on the shared transport for its lifetime.
type Session struct {
	lifecycle.Manager[*Session]
	id        uint64
	kind      Kind
	acquirer  Acquirer
	params    transport.Parameters
	frameRate kahawai.Rational
	fps       kahawai.FPS
	transport kahawai.Transport
}

// New prepares a session. Nothing is acquired until Open.
func New(kind Kind, acquirer Acquirer, params transport.Parameters, frameRate kahawai.Rational) *Session {
	s := &Session{
		id:        sessionIDs.Add(1),
		kind:      kind,
		acquirer:  acquirer,
		params:    params,
		frameRate: frameRate,
		fps:       kahawai.FPSUnsupported,
	}
	s.Manager = lifecycle.NewDefaultManager(s)
	return s
}

// Open classifies the frame rate and acquires the shared transport.
// An unsupported rate aborts before the transport is touched.
func (s *Session) Open() error {
	return s.Start(func(s *Session) error {
		fps, err := rate.Classify(s.frameRate)
		if err != nil {
			logger.Errorf(s, "Frame rate %v not supported: %v", s.frameRate, err)
			return err
		}

		tr, err := s.acquirer.Acquire(s.params)
		if err != nil {
			return err
		}
		s.fps, s.transport = fps, tr
		logger.Infof(s, "Opened on %v at %v", tr, fps)
		return nil
	})
}

// Close_ releases the transport reference. It runs only after a successful Open.
//
//nolint:revive,stylecheck // lifecycle.Instance method
func (s *Session) Close_() error {
	logger.Infof(s, "Releasing %v", s.transport)
	return s.acquirer.Release()
}

// FPS returns the classified frame rate, FPSUnsupported before Open.
func (s *Session) FPS() kahawai.FPS {
	if !s.Started() {
		return kahawai.FPSUnsupported
	}
	return s.fps
}

// Transport returns the shared transport, nil before Open.
func (s *Session) Transport() kahawai.Transport {
	if !s.Started() {
		return nil
	}
	return s.transport
}

// Kind returns whether the session encodes or decodes.
func (s *Session) Kind() Kind {
	return s.kind
}

func (s *Session) String() string {
	return fmt.Sprintf("%v#%d", s.kind, s.id)
}
