package avdtp

// fakeTransport is a scripted Transport for tests. It records every request
// the sink issues and answers CanSendPacketNow from the canSend field.
type fakeTransport struct {
	registerErr error
	registered  bool
	psm         uint16
	mtu         uint16
	security    uint8

	accepted        []uint16
	created         []DeviceAddress
	disconnected    []uint16
	canSendRequests int
	canSend         bool
	sent            [][]byte
	sendErr         error
}

func (t *fakeTransport) RegisterService(psm uint16, mtu uint16, securityLevel uint8) error {
	if t.registerErr != nil {
		return t.registerErr
	}
	t.registered = true
	t.psm = psm
	t.mtu = mtu
	t.security = securityLevel
	return nil
}

func (t *fakeTransport) AcceptConnection(localCID uint16) {
	t.accepted = append(t.accepted, localCID)
}

func (t *fakeTransport) CreateChannel(addr DeviceAddress, psm uint16, mtu uint16) {
	t.created = append(t.created, addr)
}

func (t *fakeTransport) Disconnect(localCID uint16) {
	t.disconnected = append(t.disconnected, localCID)
}

func (t *fakeTransport) RequestCanSendNow(localCID uint16) {
	t.canSendRequests++
}

func (t *fakeTransport) CanSendPacketNow(localCID uint16) bool {
	return t.canSend
}

func (t *fakeTransport) SendPacket(localCID uint16, data []byte) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	t.sent = append(t.sent, data)
	return nil
}

// recordingSubMachine is a scripted ConfigurationSubMachine that counts the
// harness calls and answers Done/Handle/Run from its fields.
type recordingSubMachine struct {
	inits   int
	handled [][]byte
	runs    int

	done      bool
	wantsSend bool
	sendOnRun bool
}

func (m *recordingSubMachine) Init(endpoint *StreamEndpoint) { m.inits++ }

func (m *recordingSubMachine) Handle(sink *Sink, endpoint *StreamEndpoint, packet []byte) bool {
	m.handled = append(m.handled, packet)
	return m.wantsSend
}

func (m *recordingSubMachine) Done(endpoint *StreamEndpoint) bool { return m.done }

func (m *recordingSubMachine) Run(sink *Sink, endpoint *StreamEndpoint) bool {
	m.runs++
	return m.sendOnRun
}

var testAddr = DeviceAddress{0x00, 0x1B, 0xDC, 0x08, 0x0F, 0x2A}
