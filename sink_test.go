package avdtp

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSink(t *testing.T) {
	t.Run("NilTransport", func(t *testing.T) {
		sink, err := NewSink(nil)
		require.ErrorIs(t, err, ErrNilTransport)
		require.Nil(t, sink)
	})

	t.Run("NilSubMachines", func(t *testing.T) {
		_, err := NewSink(&fakeTransport{}, WithSubMachines(nil, nil))
		require.NotNil(t, err)
	})

	t.Run("Defaults", func(t *testing.T) {
		sink, err := NewSink(&fakeTransport{})
		require.Nil(t, err)
		require.Equal(t, DeviceStateIdle, sink.State())
		require.Zero(t, sink.SignalingCID())
		require.Empty(t, sink.Endpoints())
	})
}

func TestInit(t *testing.T) {
	t.Run("RegistersService", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)

		require.Nil(t, sink.Init())
		require.True(t, transport.registered)
		require.Equal(t, PSMAVDTP, transport.psm)
		require.Equal(t, MaxMTU, transport.mtu)
		require.Equal(t, SecurityLevel0, transport.security)
	})

	t.Run("Idempotent", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)
		require.Nil(t, sink.Init())

		transport.registerErr = errors.New("already registered")
		require.Nil(t, sink.Init())
	})

	t.Run("TransportError", func(t *testing.T) {
		transport := &fakeTransport{registerErr: errors.New("no transport")}
		sink, err := NewSink(transport)
		require.Nil(t, err)
		require.NotNil(t, sink.Init())
	})
}

func TestConnect(t *testing.T) {
	t.Run("CreatesSignalingChannel", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)

		require.Nil(t, sink.Connect(testAddr))
		require.Equal(t, DeviceStateWaitSignalingConnected, sink.State())
		require.Equal(t, testAddr, sink.RemoteAddress())
		require.Equal(t, []DeviceAddress{testAddr}, transport.created)
	})

	t.Run("RefusedWhenNotIdle", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)

		require.Nil(t, sink.Connect(testAddr))
		require.ErrorIs(t, sink.Connect(testAddr), ErrDeviceNotIdle)
		require.Len(t, transport.created, 1)
	})
}

func TestStartFlow(t *testing.T) {
	transport := &fakeTransport{}
	sink := newConnectedSink(t, transport)
	endpoint := sink.Endpoint(1)
	endpoint.state = StreamStateOpen
	endpoint.mediaCID = 0x41

	var events []Event
	sink.RegisterEventHandler(func(event Event) { events = append(events, event) })

	t.Run("StartCommandCapturesLabel", func(t *testing.T) {
		sink.HandleDataPacket(0x40, []byte{0x20, byte(SignalStart), 1 << 2})
		require.Equal(t, StreamStateAnswerStartStream, endpoint.State())
		require.Equal(t, uint8(2), endpoint.acceptorLabel)
		require.True(t, endpoint.InUse())
	})

	t.Run("CanSendNowEmitsAccept", func(t *testing.T) {
		transport.canSend = true
		sink.HandleCanSendNow()
		require.Equal(t, [][]byte{{0x22, byte(SignalStart)}}, transport.sent)
		require.Equal(t, StreamStateWaitStreamingOpen, endpoint.State())
		require.Len(t, events, 1)
		require.Equal(t, EventStreamStarted, events[0].Type)
		require.Equal(t, uint8(1), events[0].SEID)
	})

	t.Run("MediaDataMarksStreaming", func(t *testing.T) {
		var media [][]byte
		sink.RegisterMediaHandler(func(endpoint *StreamEndpoint, packet []byte) {
			media = append(media, packet)
		})
		sink.HandleDataPacket(0x41, []byte{0x80, 0x60, 0x00, 0x01})
		require.Equal(t, StreamStateStreaming, endpoint.State())
		require.Len(t, media, 1)
	})
}

func TestResponseLabelEchoesCommand(t *testing.T) {
	for _, label := range []uint8{0, 3, 9, 15} {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)

		sink.HandleDataPacket(0x40, []byte{label<<4 | byte(MessageTypeCommand), byte(SignalOpen), 1 << 2})
		transport.canSend = true
		sink.HandleCanSendNow()

		require.Len(t, transport.sent, 1)
		header, err := ParseSignalingHeader(transport.sent[0])
		require.Nil(t, err)
		require.Equal(t, label, header.TransactionLabel)
		require.Equal(t, MessageTypeResponseAccept, header.MessageType)
	}
}

func TestBackPressure(t *testing.T) {
	t.Run("NoSendWithoutSendReady", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)

		sink.HandleDataPacket(0x40, []byte{0x10, byte(SignalOpen), 1 << 2})
		sink.HandleCanSendNow()
		sink.HandleCanSendNow()
		require.Empty(t, transport.sent)
		require.Equal(t, StreamStateAnswerOpenStream, sink.Endpoint(1).State())
	})

	t.Run("StateSurvivesUntilWritable", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)

		sink.HandleDataPacket(0x40, []byte{0x10, byte(SignalOpen), 1 << 2})
		transport.canSend = true
		sink.HandleCanSendNow()
		require.Len(t, transport.sent, 1)
		require.Equal(t, StreamStateWaitMediaConnected, sink.Endpoint(1).State())
	})
}

func TestDisconnect(t *testing.T) {
	t.Run("FromOpenDisconnectsMediaFirst", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)
		endpoint := sink.Endpoint(1)
		endpoint.state = StreamStateOpen
		endpoint.mediaCID = 0x41

		sink.Disconnect()
		require.Equal(t, StreamStateWaitMediaDisconnected, endpoint.State())
		require.Equal(t, []uint16{0x41}, transport.disconnected)

		// Nothing more happens until the close event arrives.
		sink.HandleCanSendNow()
		require.Equal(t, []uint16{0x41}, transport.disconnected)

		// The media close lets the pending device disconnect proceed.
		sink.HandleChannelClosed(ChannelClosed{LocalCID: 0x41})
		require.Equal(t, DeviceStateWaitSignalingDisconnected, sink.State())
		require.Equal(t, []uint16{0x41, 0x40}, transport.disconnected)

		sink.HandleChannelClosed(ChannelClosed{LocalCID: 0x40})
		require.Equal(t, DeviceStateIdle, sink.State())
		require.Equal(t, StreamStateIdle, endpoint.State())
	})

	t.Run("FlagsEveryNonIdleEndpoint", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)
		second := sink.RegisterStreamEndpoint(SEPTypeSink, MediaTypeVideo)
		require.Equal(t, StreamStateIdle, sink.Endpoint(second).State())

		sink.Disconnect()
		require.False(t, sink.Endpoint(second).disconnect)
		require.Equal(t, DeviceStateWaitSignalingDisconnected, sink.State())
	})

	t.Run("WhileAnswerOpenReturnsToConfigured", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)
		sink.HandleDataPacket(0x40, []byte{0x10, byte(SignalOpen), 1 << 2})
		require.Equal(t, StreamStateAnswerOpenStream, sink.Endpoint(1).State())

		sink.Disconnect()
		require.Equal(t, StreamStateConfigured, sink.Endpoint(1).State())
		require.Equal(t, DeviceStateWaitSignalingDisconnected, sink.State())
		require.Equal(t, []uint16{0x40}, transport.disconnected)
	})

	t.Run("IdleIsNoOp", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)
		sink.Disconnect()
		require.Empty(t, transport.disconnected)
	})
}

func TestHandlerRegistration(t *testing.T) {
	t.Run("NilHandlersAreRejected", func(t *testing.T) {
		transport := &fakeTransport{}
		sink, err := NewSink(transport)
		require.Nil(t, err)

		sink.RegisterEventHandler(nil)
		sink.RegisterMediaHandler(nil)
		require.Nil(t, sink.eventHandler)
		require.Nil(t, sink.mediaHandler)
	})

	t.Run("MediaWithoutHandlerIsDropped", func(t *testing.T) {
		transport := &fakeTransport{}
		sink := newConnectedSink(t, transport)
		endpoint := sink.Endpoint(1)
		endpoint.state = StreamStateOpen
		endpoint.mediaCID = 0x41

		// Must not panic without a registered media handler.
		sink.HandleDataPacket(0x41, []byte{0x80, 0x60})
		sink.HandleDataPacket(0x41, []byte{0x80, 0x60})
	})
}
