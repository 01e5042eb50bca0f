package avdtp

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrNilTransport is returned by NewSink when no transport is supplied.
var ErrNilTransport = errors.New("avdtp: nil transport")

// Sink is the AVDTP sink device. One Sink holds one signaling session to one
// remote device plus the locally registered stream endpoints; several sinks
// can coexist, each with its own transport.
type Sink struct {
	transport Transport
	log       zerolog.Logger

	serviceMode ServiceMode
	state       DeviceState
	remoteAddr  DeviceAddress
	session     string

	signalingCID   uint16
	initiatorLabel uint8
	disconnect     bool
	registered     bool

	endpoints   []*StreamEndpoint
	seidCounter uint8

	initiator ConfigurationSubMachine
	acceptor  ConfigurationSubMachine

	eventHandler    EventHandler
	mediaHandler    MediaHandler
	mediaDropLogged bool

	traceWriter io.Writer
}

// SinkOption customizes a Sink during construction.
type SinkOption func(s *Sink) error

// NewSink creates an AVDTP sink on top of the given transport. The sink
// starts idle; call Init to register the L2CAP service and the Register
// functions to declare stream endpoints before the first connection.
func NewSink(transport Transport, options ...SinkOption) (*Sink, error) {
	if transport == nil {
		return nil, ErrNilTransport
	}
	s := &Sink{
		transport:   transport,
		serviceMode: ServiceModeBasic,
		state:       DeviceStateIdle,
		initiator:   StaticConfiguration{},
		acceptor:    StaticConfiguration{},
		log:         log.Logger.With().Str("service", "avdtp-sink").Logger(),
	}

	for _, o := range options {
		if err := o(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// WithLogger replaces the sink logger.
func WithLogger(logger zerolog.Logger) SinkOption {
	return func(s *Sink) error {
		s.log = logger
		return nil
	}
}

// WithServiceMode selects the L2CAP channel usage mode. Only basic mode is
// implemented; in multiplexing mode the signaling channel still connects and
// every further incoming connection is dropped.
func WithServiceMode(mode ServiceMode) SinkOption {
	return func(s *Sink) error {
		s.serviceMode = mode
		return nil
	}
}

// WithSubMachines replaces the initiator and acceptor configuration
// sub-state-machines.
func WithSubMachines(initiator ConfigurationSubMachine, acceptor ConfigurationSubMachine) SinkOption {
	return func(s *Sink) error {
		if initiator == nil || acceptor == nil {
			return errors.New("avdtp: nil configuration sub-state-machine")
		}
		s.initiator = initiator
		s.acceptor = acceptor
		return nil
	}
}

// WithTraceWriter enables the signaling transaction trace on the given
// writer. See EncodeTraceRecord for the record format.
func WithTraceWriter(w io.Writer) SinkOption {
	return func(s *Sink) error {
		s.traceWriter = w
		return nil
	}
}

// State returns the device level connection state.
func (s *Sink) State() DeviceState { return s.state }

// SignalingCID returns the L2CAP channel identifier of the signaling channel,
// 0 when unbound.
func (s *Sink) SignalingCID() uint16 { return s.signalingCID }

// RemoteAddress returns the address of the remote device of the current or
// pending session.
func (s *Sink) RemoteAddress() DeviceAddress { return s.remoteAddr }

// Session returns the correlation cookie of the current signaling session,
// empty before the first connection.
func (s *Sink) Session() string { return s.session }

// Endpoint returns the stream endpoint with the given SEID, nil when unknown.
func (s *Sink) Endpoint(seid uint8) *StreamEndpoint { return s.endpointForSEID(seid) }

// Endpoints returns the registered stream endpoints in registration order.
func (s *Sink) Endpoints() []*StreamEndpoint { return s.endpoints }
