package avdtp

import "fmt"

// DeviceAddress is a Bluetooth device address.
type DeviceAddress [6]byte

func (a DeviceAddress) String() string {
	return fmt.Sprintf("%02X:%02X:%02X:%02X:%02X:%02X", a[0], a[1], a[2], a[3], a[4], a[5])
}

// Transport is the inward facing boundary to the L2CAP layer. The sink issues
// channel management and send requests through it; the surrounding stack feeds
// transport events back through the Handle methods on Sink.
//
// All calls happen on the single logical task the sink runs on.
type Transport interface {
	// RegisterService registers an L2CAP service on the given PSM so that
	// remote devices can connect to it.
	RegisterService(psm uint16, mtu uint16, securityLevel uint8) error

	// AcceptConnection accepts an incoming L2CAP connection.
	AcceptConnection(localCID uint16)

	// CreateChannel creates an outgoing L2CAP channel to the remote device.
	CreateChannel(addr DeviceAddress, psm uint16, mtu uint16)

	// Disconnect requests the disconnect of an L2CAP channel.
	Disconnect(localCID uint16)

	// RequestCanSendNow asks for a send-ready notification on the channel.
	// The transport answers by invoking Sink.HandleCanSendNow.
	RequestCanSendNow(localCID uint16)

	// CanSendPacketNow reports whether a packet may be sent on the channel
	// right now.
	CanSendPacketNow(localCID uint16) bool

	// SendPacket transmits one packet on the channel.
	SendPacket(localCID uint16, data []byte) error
}

// IncomingConnection is the transport event for an incoming L2CAP connection
// request.
type IncomingConnection struct {
	Address   DeviceAddress
	Handle    uint16
	PSM       uint16
	LocalCID  uint16
	RemoteCID uint16
}

// ChannelOpened is the transport event for an opened L2CAP channel. A non-zero
// Status means the open failed.
type ChannelOpened struct {
	Address   DeviceAddress
	Status    uint8
	Handle    uint16
	PSM       uint16
	LocalCID  uint16
	RemoteCID uint16
}

// ChannelClosed is the transport event for a closed L2CAP channel.
type ChannelClosed struct {
	LocalCID uint16
}

// Event is delivered to the handler registered with RegisterEventHandler.
type Event struct {
	Type     EventType
	SEID     uint8
	LocalCID uint16
	Address  DeviceAddress
}

// EventHandler consumes sink events.
type EventHandler func(event Event)

// MediaHandler consumes media payloads received on a media transport channel.
// The payload is forwarded unmodified; decoding is up to the handler.
type MediaHandler func(endpoint *StreamEndpoint, packet []byte)
