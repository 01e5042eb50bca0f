package avdtp

import "errors"

// ErrPacketTooShort is returned when a signaling packet is below the two byte
// minimum of label/type octet plus signal identifier octet.
var ErrPacketTooShort = errors.New("avdtp: signaling packet too short")

// SignalingHeader is the decoded form of the common AVDTP signaling header.
// The first octet packs a 4 bit transaction label, a 2 bit packet type and a
// 2 bit message type; the second octet carries the signal identifier.
type SignalingHeader struct {
	TransactionLabel uint8
	PacketType       SignalingPacketType
	MessageType      MessageType
	SignalIdentifier SignalIdentifier
}

// ParseSignalingHeader decodes the signaling header from a raw packet.
//
// Parameters:
//
//	packet - the raw signaling channel payload, at least 2 bytes.
//
// Returns:
//
//	SignalingHeader - the decoded header.
//	error           - ErrPacketTooShort when the packet is below 2 bytes.
func ParseSignalingHeader(packet []byte) (SignalingHeader, error) {
	if len(packet) < 2 {
		return SignalingHeader{}, ErrPacketTooShort
	}
	return SignalingHeader{
		TransactionLabel: packet[0] >> 4,
		PacketType:       SignalingPacketType(packet[0] >> 2 & 0x03),
		MessageType:      MessageType(packet[0] & 0x03),
		SignalIdentifier: SignalIdentifier(packet[1] & 0x3f),
	}, nil
}

// Encode packs the header back into its two byte wire form.
func (h SignalingHeader) Encode() []byte {
	return []byte{
		h.TransactionLabel<<4 | uint8(h.PacketType)<<2 | uint8(h.MessageType),
		uint8(h.SignalIdentifier),
	}
}

// seidFromPacket extracts the addressed SEID from byte 2 of a signaling packet
// for the signals that carry one.
func seidFromPacket(packet []byte) (uint8, bool) {
	if len(packet) < 3 {
		return 0, false
	}
	return packet[2] >> 2, true
}

// handleSignalingData dispatches one signaling channel packet. The packet is
// offered to the endpoints in registration order; the first endpoint whose
// state accepts it consumes it. A single latch schedules at most one
// send-ready request per packet.
func (s *Sink) handleSignalingData(packet []byte) {
	header, err := ParseSignalingHeader(packet)
	if err != nil {
		s.log.Error().Int("size", len(packet)).Msg("signaling packet too small")
		return
	}

	requestToSend := false
	for _, endpoint := range s.endpoints {
		if endpoint.state == StreamStateConfiguration {
			if s.initiator.Done(endpoint) || s.acceptor.Done(endpoint) {
				s.log.Debug().Uint8("seid", endpoint.SEID).Msg("configuration -> configured")
				endpoint.state = StreamStateConfigured
			}
		}

		switch endpoint.state {
		case StreamStateConfiguration:
			if header.MessageType == MessageTypeCommand {
				requestToSend = s.acceptor.Handle(s, endpoint, packet)
				break
			}
			requestToSend = s.initiator.Handle(s, endpoint, packet)

		case StreamStateConfigured:
			if header.SignalIdentifier != SignalOpen {
				s.log.Debug().Uint8("seid", endpoint.SEID).Stringer("signal", header.SignalIdentifier).
					Stringer("state", endpoint.state).Msg("signal not implemented in this state")
				continue
			}
			seid, ok := seidFromPacket(packet)
			if !ok {
				s.log.Error().Stringer("signal", header.SignalIdentifier).Msg("signaling packet without seid octet")
				return
			}
			if endpoint.SEID != seid {
				return
			}
			endpoint.state = StreamStateAnswerOpenStream
			endpoint.acceptorLabel = header.TransactionLabel
			s.trace(TraceInbound, header, endpoint.SEID)
			s.log.Debug().Uint8("seid", endpoint.SEID).Uint8("label", header.TransactionLabel).
				Msg("configured -> w2-answer-open")
			requestToSend = true

		case StreamStateOpen:
			if header.SignalIdentifier != SignalStart {
				s.log.Debug().Uint8("seid", endpoint.SEID).Stringer("signal", header.SignalIdentifier).
					Stringer("state", endpoint.state).Msg("signal not implemented in this state")
				continue
			}
			seid, ok := seidFromPacket(packet)
			if !ok {
				s.log.Error().Stringer("signal", header.SignalIdentifier).Msg("signaling packet without seid octet")
				return
			}
			if endpoint.SEID != seid {
				return
			}
			endpoint.inUse = true
			endpoint.state = StreamStateAnswerStartStream
			endpoint.acceptorLabel = header.TransactionLabel
			s.trace(TraceInbound, header, endpoint.SEID)
			s.log.Debug().Uint8("seid", endpoint.SEID).Uint8("label", header.TransactionLabel).
				Msg("open -> w2-answer-start")
			requestToSend = true

		default:
			s.log.Debug().Uint8("seid", endpoint.SEID).Stringer("signal", header.SignalIdentifier).
				Stringer("state", endpoint.state).Msg("signal not implemented in this state")
			continue
		}

		if requestToSend {
			break
		}
	}

	if requestToSend {
		s.transport.RequestCanSendNow(s.signalingCID)
	}
}

// sendAcceptResponse emits a response accept for the given signal, echoing the
// transaction label captured from the command.
func (s *Sink) sendAcceptResponse(signal SignalIdentifier, transactionLabel uint8, seid uint8) {
	header := SignalingHeader{
		TransactionLabel: transactionLabel,
		PacketType:       PacketTypeSingle,
		MessageType:      MessageTypeResponseAccept,
		SignalIdentifier: signal,
	}
	if err := s.transport.SendPacket(s.signalingCID, header.Encode()); err != nil {
		s.log.Error().Err(err).Stringer("signal", signal).Msg("send accept response")
		return
	}
	s.trace(TraceOutbound, header, seid)
}
