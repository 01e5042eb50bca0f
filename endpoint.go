package avdtp

// RecoveryCapability holds the parameters of the recovery service category.
type RecoveryCapability struct {
	RecoveryType          uint8
	MaxRecoveryWindowSize uint8
	MaxNumberMediaPackets uint8
}

// ContentProtectionCapability holds the parameters of the content protection
// service category. Value is opaque to the sink.
type ContentProtectionCapability struct {
	TypeLSB uint8
	TypeMSB uint8
	Value   []byte
}

// HeaderCompressionCapability holds the parameters of the header compression
// service category.
type HeaderCompressionCapability struct {
	BackChannel bool
	Media       bool
	Recovery    bool
}

// MediaCodecCapability holds the parameters of the media codec service
// category. Information is the codec specific capability block, opaque to the
// sink.
type MediaCodecCapability struct {
	MediaType   MediaType
	CodecType   MediaCodecType
	Information []byte
}

// MultiplexingCapability holds the parameters of the multiplexing service
// category.
type MultiplexingCapability struct {
	Fragmentation bool
}

// Capabilities collects the per category parameters registered on a stream
// endpoint. A category's parameters are meaningful only when its bit is set in
// the endpoint's registered category bitmap.
type Capabilities struct {
	Recovery          RecoveryCapability
	ContentProtection ContentProtectionCapability
	HeaderCompression HeaderCompressionCapability
	MediaCodec        MediaCodecCapability
	Multiplexing      MultiplexingCapability
}

// StreamEndpoint is one locally declared stream endpoint (SEP). Endpoints are
// created through Sink.RegisterStreamEndpoint and owned by the sink; the
// mutable protocol fields are only touched on the sink's task.
type StreamEndpoint struct {
	SEID         uint8
	Type         SEPType
	MediaType    MediaType
	Capabilities Capabilities

	registeredCategories uint16
	inUse                bool
	state                StreamState
	acceptorLabel        uint8
	disconnect           bool

	mediaCID     uint16
	reportingCID uint16
	recoveryCID  uint16

	// InitiatorConfig and AcceptorConfig carry the opaque state of the
	// configuration sub-state-machines.
	InitiatorConfig any
	AcceptorConfig  any
}

// State returns the current stream state.
func (e *StreamEndpoint) State() StreamState { return e.state }

// InUse reports whether the endpoint is part of a started stream.
func (e *StreamEndpoint) InUse() bool { return e.inUse }

// MediaCID returns the L2CAP channel identifier of the media transport
// channel, 0 when unbound.
func (e *StreamEndpoint) MediaCID() uint16 { return e.mediaCID }

// ReportingCID returns the L2CAP channel identifier of the reporting channel,
// 0 when unbound.
func (e *StreamEndpoint) ReportingCID() uint16 { return e.reportingCID }

// RecoveryCID returns the L2CAP channel identifier of the recovery channel,
// 0 when unbound.
func (e *StreamEndpoint) RecoveryCID() uint16 { return e.recoveryCID }

// RegisteredCategories returns the bitmap of registered service categories.
// Bit n corresponds to the ServiceCategory with value n.
func (e *StreamEndpoint) RegisteredCategories() uint16 { return e.registeredCategories }

// HasCategory reports whether a service category was registered.
func (e *StreamEndpoint) HasCategory(category ServiceCategory) bool {
	return e.registeredCategories&(1<<uint16(category)) != 0
}

func (e *StreamEndpoint) registerCategory(category ServiceCategory) {
	e.registeredCategories |= 1 << uint16(category)
}

// reset returns the endpoint to its idle, unbound shape. The registered
// categories and capability parameters survive, the session state does not.
func (e *StreamEndpoint) reset() {
	e.state = StreamStateIdle
	e.inUse = false
	e.disconnect = false
	e.acceptorLabel = 0
	e.mediaCID = 0
	e.reportingCID = 0
	e.recoveryCID = 0
}

// RegisterStreamEndpoint allocates a fresh stream endpoint of the given type
// and media type and returns its SEID. SEIDs grow monotonically and are never
// reused within a sink.
func (s *Sink) RegisterStreamEndpoint(sepType SEPType, mediaType MediaType) uint8 {
	s.seidCounter++
	endpoint := &StreamEndpoint{
		SEID:      s.seidCounter,
		Type:      sepType,
		MediaType: mediaType,
		state:     StreamStateIdle,
	}
	s.endpoints = append(s.endpoints, endpoint)
	s.log.Debug().Uint8("seid", endpoint.SEID).Msg("stream endpoint registered")
	return endpoint.SEID
}

// endpointForSEID returns the endpoint with the given SEID, nil when unknown.
func (s *Sink) endpointForSEID(seid uint8) *StreamEndpoint {
	for _, endpoint := range s.endpoints {
		if endpoint.SEID == seid {
			return endpoint
		}
	}
	return nil
}

// endpointForCID returns the endpoint owning the given L2CAP channel,
// checking the media, reporting and recovery slots in that order.
func (s *Sink) endpointForCID(localCID uint16) *StreamEndpoint {
	if localCID == 0 {
		return nil
	}
	for _, endpoint := range s.endpoints {
		if endpoint.mediaCID == localCID {
			return endpoint
		}
		if endpoint.reportingCID == localCID {
			return endpoint
		}
		if endpoint.recoveryCID == localCID {
			return endpoint
		}
	}
	return nil
}

// endpointWaitingForMedia returns the endpoint whose media transport channel
// is expected next in the fixed channel order, nil when no endpoint waits.
func (s *Sink) endpointWaitingForMedia() *StreamEndpoint {
	for _, endpoint := range s.endpoints {
		if endpoint.state == StreamStateWaitMediaConnected {
			return endpoint
		}
	}
	return nil
}

// RegisterMediaTransportCategory registers the media transport category on the
// endpoint with the given SEID.
func (s *Sink) RegisterMediaTransportCategory(seid uint8) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register media transport category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryMediaTransport)
}

// RegisterReportingCategory registers the reporting category on the endpoint
// with the given SEID.
func (s *Sink) RegisterReportingCategory(seid uint8) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register reporting category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryReporting)
}

// RegisterDelayReportingCategory registers the delay reporting category on the
// endpoint with the given SEID.
func (s *Sink) RegisterDelayReportingCategory(seid uint8) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register delay reporting category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryDelayReporting)
}

// RegisterRecoveryCategory registers the recovery category on the endpoint
// with the given SEID. The recovery type is always RFC 2733.
func (s *Sink) RegisterRecoveryCategory(seid uint8, maxRecoveryWindowSize uint8, maxNumberMediaPackets uint8) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register recovery category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryRecovery)
	endpoint.Capabilities.Recovery = RecoveryCapability{
		RecoveryType:          RecoveryTypeRFC2733,
		MaxRecoveryWindowSize: maxRecoveryWindowSize,
		MaxNumberMediaPackets: maxNumberMediaPackets,
	}
}

// RegisterContentProtectionCategory registers the content protection category
// on the endpoint with the given SEID. The value is kept as provided.
func (s *Sink) RegisterContentProtectionCategory(seid uint8, cpTypeLSB uint8, cpTypeMSB uint8, cpValue []byte) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register content protection category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryContentProtection)
	endpoint.Capabilities.ContentProtection = ContentProtectionCapability{
		TypeLSB: cpTypeLSB,
		TypeMSB: cpTypeMSB,
		Value:   cpValue,
	}
}

// RegisterHeaderCompressionCategory registers the header compression category
// on the endpoint with the given SEID.
func (s *Sink) RegisterHeaderCompressionCategory(seid uint8, backChannel bool, media bool, recovery bool) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register header compression category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryHeaderCompression)
	endpoint.Capabilities.HeaderCompression = HeaderCompressionCapability{
		BackChannel: backChannel,
		Media:       media,
		Recovery:    recovery,
	}
}

// RegisterMediaCodecCategory registers the media codec category on the
// endpoint with the given SEID. The codec information block is kept as
// provided.
func (s *Sink) RegisterMediaCodecCategory(seid uint8, mediaType MediaType, codecType MediaCodecType, codecInfo []byte) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register media codec category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryMediaCodec)
	endpoint.Capabilities.MediaCodec = MediaCodecCapability{
		MediaType:   mediaType,
		CodecType:   codecType,
		Information: codecInfo,
	}
}

// RegisterMultiplexingCategory registers the multiplexing category on the
// endpoint with the given SEID.
func (s *Sink) RegisterMultiplexingCategory(seid uint8, fragmentation bool) {
	endpoint := s.endpointForSEID(seid)
	if endpoint == nil {
		s.log.Error().Uint8("seid", seid).Msg("register multiplexing category: stream endpoint not registered")
		return
	}
	endpoint.registerCategory(CategoryMultiplexing)
	endpoint.Capabilities.Multiplexing = MultiplexingCapability{Fragmentation: fragmentation}
}
