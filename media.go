package avdtp

// handleMediaData forwards a media channel payload to the registered media
// handler, unmodified and unbuffered. The first payload seen after a START
// accept marks the stream as streaming.
func (s *Sink) handleMediaData(endpoint *StreamEndpoint, packet []byte) {
	if endpoint.state == StreamStateWaitStreamingOpen {
		s.log.Debug().Uint8("seid", endpoint.SEID).Msg("w4-streaming-open -> streaming")
		endpoint.state = StreamStateStreaming
	}
	if s.mediaHandler == nil {
		if !s.mediaDropLogged {
			s.mediaDropLogged = true
			s.log.Error().Uint8("seid", endpoint.SEID).Msg("media data dropped, no media handler registered")
		}
		return
	}
	s.mediaHandler(endpoint, packet)
}
