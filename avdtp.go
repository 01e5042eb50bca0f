// Package avdtp implements the sink role signaling and stream lifecycle core
// of an AVDTP (Audio/Video Distribution Transport Protocol) endpoint. It
// accepts an incoming AVDTP connection from a source device, negotiates the
// per stream configuration, and brings streams to the running state so media
// payloads reach a user supplied media handler.
//
// The package keeps the L2CAP transport, the SDP layer and the media decoding
// behind small interfaces. A Sink owns the device level connection state, the
// registered stream endpoints and the signaling transaction engine; transport
// events are fed in through the Handle methods and every event ends in one
// scheduler pass that performs at most one outbound action per endpoint,
// gated on the transport's send-ready discipline.
//
// Main types and functions:
//   - Sink: the device value holding connection state and stream endpoints.
//   - StreamEndpoint: one locally declared stream endpoint with its
//     registered service categories and capability parameters.
//   - Transport: the L2CAP primitives the sink consumes.
//   - ConfigurationSubMachine: the pluggable initiator/acceptor configuration
//     sub-state-machines.
//   - CreateSinkServiceRecord: the SDP record serializer for the audio sink
//     service.
//
// The package relies on external libraries for structured logging, UUID
// generation, bencode serialization of trace records, and mapstructure
// decoding.
package avdtp

import (
	"errors"
)

// ErrDeviceNotIdle is returned by Connect when a signaling session already
// exists or is being set up.
var ErrDeviceNotIdle = errors.New("avdtp: device not idle")

// Init registers the AVDTP L2CAP service so remote devices can connect.
// It is idempotent.
func (s *Sink) Init() error {
	if s.registered {
		return nil
	}
	if err := s.transport.RegisterService(PSMAVDTP, MaxMTU, SecurityLevel0); err != nil {
		return err
	}
	s.registered = true
	return nil
}

// RegisterEventHandler sets the event sink. A nil handler is rejected.
func (s *Sink) RegisterEventHandler(handler EventHandler) {
	if handler == nil {
		s.log.Error().Msg("RegisterEventHandler called with nil handler")
		return
	}
	s.eventHandler = handler
}

// RegisterMediaHandler sets the media sink. A nil handler is rejected.
func (s *Sink) RegisterMediaHandler(handler MediaHandler) {
	if handler == nil {
		s.log.Error().Msg("RegisterMediaHandler called with nil handler")
		return
	}
	s.mediaHandler = handler
}

// Connect starts the initiator path: it creates an L2CAP channel to the AVDTP
// PSM of the remote device. The device must be idle.
func (s *Sink) Connect(addr DeviceAddress) error {
	if s.state != DeviceStateIdle {
		return ErrDeviceNotIdle
	}
	s.remoteAddr = addr
	s.state = DeviceStateWaitSignalingConnected
	s.transport.CreateChannel(addr, PSMAVDTP, MaxMTU)
	return nil
}

// Disconnect requests the teardown of the signaling session. Every non idle
// endpoint is flagged for disconnect and one scheduler pass runs; the actual
// channel disconnects happen one per pass. Calling Disconnect while idle or
// while a disconnect is already in flight does nothing.
func (s *Sink) Disconnect() {
	if s.state == DeviceStateIdle {
		return
	}
	if s.state == DeviceStateWaitSignalingDisconnected {
		return
	}

	s.disconnect = true
	for _, endpoint := range s.endpoints {
		endpoint.disconnect = endpoint.state != StreamStateIdle
	}
	s.run()
}

func (s *Sink) emit(event Event) {
	if s.eventHandler == nil {
		return
	}
	s.eventHandler(event)
}

// run is the scheduler pass. It first applies the pending disconnect flags,
// issuing at most one channel disconnect and returning immediately after it,
// then walks the endpoints in registration order and lets each one emit at
// most one outbound signaling action. Outbound emission is gated on the
// transport being writable; when it is not, the pass aborts and the next
// send-ready notification retries.
func (s *Sink) run() {
	for _, endpoint := range s.endpoints {
		if !endpoint.disconnect {
			continue
		}
		switch endpoint.state {
		case StreamStateIdle, StreamStateConfiguration, StreamStateConfigured, StreamStateWaitMediaDisconnected:
			endpoint.disconnect = false
		case StreamStateAnswerOpenStream:
			endpoint.disconnect = false
			endpoint.state = StreamStateConfigured
		case StreamStateWaitMediaConnected:
			// No media channel yet; the request stays pending until the
			// channel exists.
		default:
			endpoint.disconnect = false
			endpoint.state = StreamStateWaitMediaDisconnected
			s.transport.Disconnect(endpoint.mediaCID)
			return
		}
	}

	if s.disconnect {
		// The signaling channel goes down last: wait for endpoints whose
		// media teardown is still in flight.
		for _, endpoint := range s.endpoints {
			if endpoint.disconnect || endpoint.state == StreamStateWaitMediaDisconnected {
				return
			}
		}
		s.disconnect = false
		s.state = DeviceStateWaitSignalingDisconnected
		s.transport.Disconnect(s.signalingCID)
		return
	}

	for _, endpoint := range s.endpoints {
		if !s.runStreamEndpoint(endpoint) {
			return
		}
	}
}

// runStreamEndpoint performs the work pass for one endpoint. The return value
// reports whether the pass may continue to the next endpoint; false means the
// signaling channel is not writable.
func (s *Sink) runStreamEndpoint(endpoint *StreamEndpoint) bool {
	if endpoint.state >= StreamStateOpen && endpoint.state != StreamStateAnswerStartStream {
		return true
	}

	if endpoint.state == StreamStateConfiguration {
		if s.initiator.Done(endpoint) || s.acceptor.Done(endpoint) {
			s.log.Debug().Uint8("seid", endpoint.SEID).Msg("configuration -> configured")
			endpoint.state = StreamStateConfigured
		}
	}

	if !s.transport.CanSendPacketNow(s.signalingCID) {
		return false
	}

	switch endpoint.state {
	case StreamStateConfiguration:
		if !s.acceptor.Run(s, endpoint) {
			s.initiator.Run(s, endpoint)
		}
	case StreamStateAnswerOpenStream:
		s.log.Debug().Uint8("seid", endpoint.SEID).Msg("w2-answer-open -> w4-media-connected")
		endpoint.state = StreamStateWaitMediaConnected
		s.sendAcceptResponse(SignalOpen, endpoint.acceptorLabel, endpoint.SEID)
	case StreamStateAnswerStartStream:
		s.log.Debug().Uint8("seid", endpoint.SEID).Msg("w2-answer-start -> w4-streaming-open")
		endpoint.state = StreamStateWaitStreamingOpen
		s.sendAcceptResponse(SignalStart, endpoint.acceptorLabel, endpoint.SEID)
		s.emit(Event{Type: EventStreamStarted, SEID: endpoint.SEID, LocalCID: endpoint.mediaCID})
	}
	return true
}
