package avdtp

import "encoding/binary"

// deHeader builds a data element header byte from type and size descriptors.
func deHeader(deType uint8, deSize uint8) byte {
	return deType<<3 | deSize
}

// deUint16 encodes a 16 bit unsigned integer data element.
func deUint16(v uint16) []byte {
	out := []byte{deHeader(deTypeUint, deSize16), 0, 0}
	binary.BigEndian.PutUint16(out[1:], v)
	return out
}

// deUint32 encodes a 32 bit unsigned integer data element.
func deUint32(v uint32) []byte {
	out := []byte{deHeader(deTypeUint, deSize32), 0, 0, 0, 0}
	binary.BigEndian.PutUint32(out[1:], v)
	return out
}

// deUUID16 encodes a 16 bit UUID data element.
func deUUID16(v uint16) []byte {
	out := []byte{deHeader(deTypeUUID, deSize16), 0, 0}
	binary.BigEndian.PutUint16(out[1:], v)
	return out
}

// deString encodes a text string data element.
func deString(s string) []byte {
	if len(s) < 256 {
		out := []byte{deHeader(deTypeString, deSizeVar8), byte(len(s))}
		return append(out, s...)
	}
	out := []byte{deHeader(deTypeString, deSizeVar16), 0, 0}
	binary.BigEndian.PutUint16(out[1:], uint16(len(s)))
	return append(out, s...)
}

// deSequence encodes a sequence data element from the given elements.
func deSequence(elements ...[]byte) []byte {
	var body []byte
	for _, element := range elements {
		body = append(body, element...)
	}
	if len(body) < 256 {
		out := []byte{deHeader(deTypeSequence, deSizeVar8), byte(len(body))}
		return append(out, body...)
	}
	out := []byte{deHeader(deTypeSequence, deSizeVar16), 0, 0}
	binary.BigEndian.PutUint16(out[1:], uint16(len(body)))
	return append(out, body...)
}

// CreateSinkServiceRecord builds the binary SDP record for the audio sink
// service: service class AudioSink, protocol descriptors L2CAP (AVDTP PSM)
// and AVDTP, the public browse group, the A2DP profile descriptor, service
// and provider names, and the caller supplied supported features bitmap.
// Empty name strings fall back to the library defaults.
func CreateSinkServiceRecord(serviceRecordHandle uint32, supportedFeatures uint16, serviceName string, serviceProviderName string) []byte {
	if serviceName == "" {
		serviceName = defaultServiceName
	}
	if serviceProviderName == "" {
		serviceProviderName = defaultProviderName
	}

	return deSequence(
		deUint16(AttributeServiceRecordHandle),
		deUint32(serviceRecordHandle),

		deUint16(AttributeServiceClassIDList),
		deSequence(
			deUUID16(UUIDAudioSink),
		),

		deUint16(AttributeProtocolDescriptorList),
		deSequence(
			deSequence(
				deUUID16(UUIDL2CAP),
				deUint16(PSMAVDTP),
			),
			deSequence(
				deUUID16(UUIDAVDTP),
				deUint16(AVDTPVersion),
			),
		),

		deUint16(AttributeBrowseGroupList),
		deSequence(
			deUUID16(UUIDPublicBrowseGroup),
		),

		deUint16(AttributeProfileDescriptorList),
		deSequence(
			deSequence(
				deUUID16(UUIDAdvancedAudioDistribution),
				deUint16(A2DPVersion),
			),
		),

		deUint16(AttributeServiceName),
		deString(serviceName),

		deUint16(AttributeProviderName),
		deString(serviceProviderName),

		deUint16(AttributeSupportedFeatures),
		deUint16(supportedFeatures),
	)
}
