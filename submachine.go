package avdtp

// ConfigurationSubMachine is one side of the stream configuration
// sub-state-machine. The sink wires an initiator and an acceptor instance into
// every endpoint while the signaling channel opens and never looks inside
// them; per endpoint state lives in the endpoint's InitiatorConfig and
// AcceptorConfig fields.
//
// Incoming command messages are fed to the acceptor, everything else to the
// initiator. On send-ready the acceptor gets the first chance to emit.
type ConfigurationSubMachine interface {
	// Init resets the sub-state-machine state for a new signaling session.
	Init(endpoint *StreamEndpoint)

	// Handle feeds one incoming signaling packet. The return value reports
	// whether the sub-state-machine now has something to send.
	Handle(sink *Sink, endpoint *StreamEndpoint, packet []byte) bool

	// Done reports whether this side has completed its view of the
	// configuration.
	Done(endpoint *StreamEndpoint) bool

	// Run emits at most one pending outbound message and reports whether it
	// sent anything. It is only called when the signaling channel is
	// writable.
	Run(sink *Sink, endpoint *StreamEndpoint) bool
}

// StaticConfiguration is a ConfigurationSubMachine with nothing to negotiate:
// it is done immediately after Init and never emits. It serves endpoints whose
// configuration is fully declared at registration time and is the default for
// both roles.
type StaticConfiguration struct{}

func (StaticConfiguration) Init(endpoint *StreamEndpoint) {}

func (StaticConfiguration) Handle(sink *Sink, endpoint *StreamEndpoint, packet []byte) bool {
	return false
}

func (StaticConfiguration) Done(endpoint *StreamEndpoint) bool { return true }

func (StaticConfiguration) Run(sink *Sink, endpoint *StreamEndpoint) bool { return false }
