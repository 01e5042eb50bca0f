package avdtp

import "github.com/google/uuid"

// HandleIncomingConnection processes an incoming L2CAP connection request. In
// basic service mode multiple channels are created in a fixed order to the
// same PSM:
//
//	1. signaling
//	2. media transport
//	3. reporting
//	4. recovery
func (s *Sink) HandleIncomingConnection(event IncomingConnection) {
	defer s.run()

	if s.state == DeviceStateIdle {
		s.remoteAddr = event.Address
		s.state = DeviceStateWaitSignalingConnected
		s.transport.AcceptConnection(event.LocalCID)
		return
	}

	if s.serviceMode == ServiceModeMultiplexing {
		s.log.Error().Msg("multiplexing service mode not implemented, dropping incoming connection")
		return
	}

	if s.signalingCID == 0 {
		s.state = DeviceStateWaitSignalingConnected
		s.transport.AcceptConnection(event.LocalCID)
		return
	}

	endpoint := s.endpointWaitingForMedia()
	if endpoint == nil {
		s.log.Error().Uint16("cid", event.LocalCID).Msg("incoming connection: no stream endpoint waits for a channel")
		return
	}

	if endpoint.mediaCID == 0 {
		// The media CID is bound on the channel-opened event.
		s.transport.AcceptConnection(event.LocalCID)
		return
	}

	if endpoint.reportingCID == 0 {
		endpoint.reportingCID = event.LocalCID
		s.transport.AcceptConnection(event.LocalCID)
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("reporting channel accepted")
		return
	}

	if endpoint.recoveryCID == 0 {
		endpoint.recoveryCID = event.LocalCID
		s.transport.AcceptConnection(event.LocalCID)
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("recovery channel accepted")
		return
	}

	s.log.Error().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("incoming connection: all channel slots bound")
}

// HandleChannelOpened processes an opened L2CAP channel, binding it according
// to the fixed channel order.
func (s *Sink) HandleChannelOpened(event ChannelOpened) {
	defer s.run()

	if event.Status != 0 {
		s.log.Error().Str("address", event.Address.String()).Uint8("status", event.Status).
			Msg("l2cap channel open failed")
		return
	}
	if event.PSM != PSMAVDTP {
		s.log.Error().Uint16("psm", event.PSM).Msg("channel opened on unexpected psm")
		return
	}

	if s.state == DeviceStateWaitSignalingConnected {
		s.state = DeviceStateConnected
		s.signalingCID = event.LocalCID
		s.session = uuid.NewString()
		s.log = s.log.With().Str("session", s.session).Logger()
		s.log.Debug().Uint16("cid", event.LocalCID).Str("address", event.Address.String()).
			Msg("signaling channel connected")

		for _, endpoint := range s.endpoints {
			endpoint.state = StreamStateConfiguration
			s.initiator.Init(endpoint)
			s.acceptor.Init(endpoint)
		}
		s.initiatorLabel = (s.initiatorLabel + 1) & 0x0f
		s.transport.RequestCanSendNow(s.signalingCID)
		s.emit(Event{Type: EventSignalingConnected, LocalCID: event.LocalCID, Address: event.Address})
		return
	}

	endpoint := s.endpointForCID(event.LocalCID)
	if endpoint == nil {
		endpoint = s.endpointWaitingForMedia()
	}
	if endpoint == nil {
		s.log.Error().Uint16("cid", event.LocalCID).Msg("channel opened: no stream endpoint is associated")
		return
	}

	if endpoint.mediaCID == 0 || endpoint.mediaCID == event.LocalCID {
		if endpoint.state != StreamStateWaitMediaConnected {
			s.log.Debug().Uint8("seid", endpoint.SEID).Stringer("state", endpoint.state).
				Msg("media channel opened in unexpected state")
			return
		}
		endpoint.mediaCID = event.LocalCID
		endpoint.state = StreamStateOpen
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("media channel connected")
		s.emit(Event{Type: EventStreamOpen, SEID: endpoint.SEID, LocalCID: event.LocalCID, Address: event.Address})
		return
	}

	if endpoint.reportingCID == 0 || endpoint.reportingCID == event.LocalCID {
		endpoint.reportingCID = event.LocalCID
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("reporting channel connected")
		return
	}

	if endpoint.recoveryCID == 0 || endpoint.recoveryCID == event.LocalCID {
		endpoint.recoveryCID = event.LocalCID
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("recovery channel connected")
		return
	}
}

// HandleChannelClosed processes a closed L2CAP channel. Closing the signaling
// channel ends the session: every endpoint returns to idle with all channel
// slots cleared, registrations survive. Closing an auxiliary channel only
// clears its slot.
func (s *Sink) HandleChannelClosed(event ChannelClosed) {
	defer s.run()

	if event.LocalCID != 0 && event.LocalCID == s.signalingCID {
		s.log.Debug().Uint16("cid", event.LocalCID).Msg("signaling channel closed")
		s.signalingCID = 0
		s.state = DeviceStateIdle
		s.disconnect = false
		for _, endpoint := range s.endpoints {
			endpoint.reset()
		}
		s.emit(Event{Type: EventSignalingDisconnected, LocalCID: event.LocalCID})
		return
	}

	endpoint := s.endpointForCID(event.LocalCID)
	if endpoint == nil {
		return
	}

	switch event.LocalCID {
	case endpoint.recoveryCID:
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("recovery channel closed")
		endpoint.recoveryCID = 0
	case endpoint.reportingCID:
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("reporting channel closed")
		endpoint.reportingCID = 0
	case endpoint.mediaCID:
		s.log.Debug().Uint8("seid", endpoint.SEID).Uint16("cid", event.LocalCID).Msg("media channel closed")
		endpoint.mediaCID = 0
		endpoint.inUse = false
		endpoint.state = StreamStateConfigured
		s.emit(Event{Type: EventStreamClosed, SEID: endpoint.SEID, LocalCID: event.LocalCID})
	}
}

// HandleCanSendNow processes a send-ready notification from the transport by
// running one scheduler pass.
func (s *Sink) HandleCanSendNow() {
	s.run()
}

// HandleDataPacket routes one L2CAP data packet: signaling channel payloads go
// to the signaling engine, media channel payloads to the media handler,
// reporting and recovery payloads are reserved.
func (s *Sink) HandleDataPacket(localCID uint16, packet []byte) {
	defer s.run()

	if localCID != 0 && localCID == s.signalingCID {
		s.handleSignalingData(packet)
		return
	}

	endpoint := s.endpointForCID(localCID)
	if endpoint == nil {
		s.log.Error().Uint16("cid", localCID).Msg("data packet on unbound channel")
		return
	}

	switch localCID {
	case endpoint.mediaCID:
		s.handleMediaData(endpoint, packet)
	case endpoint.reportingCID:
		s.log.Debug().Uint8("seid", endpoint.SEID).Msg("reporting data not implemented")
	case endpoint.recoveryCID:
		s.log.Debug().Uint8("seid", endpoint.SEID).Msg("recovery data not implemented")
	}
}
