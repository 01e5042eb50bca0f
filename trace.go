package avdtp

import (
	"bytes"

	bencode "github.com/anacrolix/torrent/bencode"
	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"
	ben "github.com/stefanovazzocell/bencode"
)

// Trace record directions.
const (
	// TraceInbound marks a command received and acted on by the sink.
	TraceInbound = "rcv"

	// TraceOutbound marks a response emitted by the sink.
	TraceOutbound = "snd"
)

// TraceRecord is one entry of the signaling transaction trace. Records are
// written as a random cookie, a space, and the bencoded dictionary; the cookie
// ties a log line to the record when traces from several sinks interleave.
type TraceRecord struct {
	Direction        string `json:"direction" bencode:"direction"`
	TransactionLabel int    `json:"label" bencode:"label"`
	MessageType      int    `json:"message-type" bencode:"message-type"`
	SEID             int    `json:"seid,omitempty" bencode:"seid,omitempty"`
	Signal           int    `json:"signal" bencode:"signal"`
}

// EncodeTraceRecord encodes a trace record into bencode format and prepends
// the cookie.
//
// Parameters:
//
//	cookie - a string used for identifying the record.
//	record - a pointer to the TraceRecord to serialize.
//
// Returns:
//
//	[]byte - the encoded record with the cookie.
//	error  - an error if encoding fails.
func EncodeTraceRecord(cookie string, record *TraceRecord) ([]byte, error) {
	data, err := bencode.Marshal(record)
	if err != nil {
		return nil, err
	}

	bind := []byte(cookie + " ")
	return append(bind, data...), nil
}

// DecodeTraceRecord decodes a trace record and validates the cookie. It
// parses the bencoded dictionary and maps it onto a TraceRecord.
//
// Parameters:
//
//	cookie - the expected cookie string.
//	raw    - the raw record bytes.
//
// Returns:
//
//	*TraceRecord - the decoded record; Direction is empty when the record
//	could not be parsed or the cookie did not match.
func DecodeTraceRecord(cookie string, raw []byte) *TraceRecord {
	record := &TraceRecord{}
	cookieIndex := bytes.IndexAny(raw, " ")
	if cookieIndex != len(cookie) {
		return record
	}

	cookieFound := string(raw[:cookieIndex])
	if cookieFound != cookie {
		return record
	}

	encodedData := string(raw[cookieIndex+1:])
	decodedDataRaw, err := ben.NewParserFromString(encodedData).AsDict()
	if err != nil {
		return record
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &record,
		TagName:  "json",
	}
	decoder, _ := mapstructure.NewDecoder(cfg)
	decoder.Decode(decodedDataRaw)
	return record
}

// trace appends one record to the transaction trace. Disabled when no trace
// writer is configured.
func (s *Sink) trace(direction string, header SignalingHeader, seid uint8) {
	if s.traceWriter == nil {
		return
	}
	record := &TraceRecord{
		Direction:        direction,
		TransactionLabel: int(header.TransactionLabel),
		MessageType:      int(header.MessageType),
		SEID:             int(seid),
		Signal:           int(header.SignalIdentifier),
	}
	data, err := EncodeTraceRecord(uuid.NewString(), record)
	if err != nil {
		s.log.Error().Err(err).Msg("encode trace record")
		return
	}
	if _, err := s.traceWriter.Write(append(data, '\n')); err != nil {
		s.log.Error().Err(err).Msg("write trace record")
	}
}
