package avdtp

// SDP data element type descriptors.
const (
	deTypeUint     uint8 = 1
	deTypeUUID     uint8 = 3
	deTypeString   uint8 = 4
	deTypeSequence uint8 = 6
)

// SDP data element size descriptors.
const (
	deSize16    uint8 = 1
	deSize32    uint8 = 2
	deSizeVar8  uint8 = 5
	deSizeVar16 uint8 = 6
)

// SDP attribute identifiers used by the sink service record.
const (
	// AttributeServiceRecordHandle is the record handle attribute (0x0000).
	AttributeServiceRecordHandle uint16 = 0x0000

	// AttributeServiceClassIDList is the service class id list (0x0001).
	AttributeServiceClassIDList uint16 = 0x0001

	// AttributeProtocolDescriptorList is the protocol descriptor list (0x0004).
	AttributeProtocolDescriptorList uint16 = 0x0004

	// AttributeBrowseGroupList is the browse group list (0x0005).
	AttributeBrowseGroupList uint16 = 0x0005

	// AttributeProfileDescriptorList is the profile descriptor list (0x0009).
	AttributeProfileDescriptorList uint16 = 0x0009

	// AttributeServiceName is the service name string (0x0100).
	AttributeServiceName uint16 = 0x0100

	// AttributeProviderName is the provider name string (0x0102).
	AttributeProviderName uint16 = 0x0102

	// AttributeSupportedFeatures is the A2DP supported features bitmap (0x0311).
	AttributeSupportedFeatures uint16 = 0x0311
)

// Bluetooth assigned 16 bit UUIDs used by the sink service record.
const (
	// UUIDL2CAP is the L2CAP protocol UUID.
	UUIDL2CAP uint16 = 0x0100

	// UUIDAVDTP is the AVDTP protocol UUID.
	UUIDAVDTP uint16 = 0x0019

	// UUIDAudioSink is the AudioSink service class UUID.
	UUIDAudioSink uint16 = 0x110B

	// UUIDAdvancedAudioDistribution is the A2DP profile UUID.
	UUIDAdvancedAudioDistribution uint16 = 0x110D

	// UUIDPublicBrowseGroup is the public browse group UUID.
	UUIDPublicBrowseGroup uint16 = 0x1002
)

// Protocol and profile versions advertised in the sink service record.
const (
	// AVDTPVersion is the advertised AVDTP version (1.3).
	AVDTPVersion uint16 = 0x0103

	// A2DPVersion is the advertised A2DP profile version (1.3).
	A2DPVersion uint16 = 0x0103
)

// Default strings for the sink service record.
const (
	defaultServiceName  = "AVDTP Sink Service"
	defaultProviderName = "AVDTP Sink Service Provider"
)
