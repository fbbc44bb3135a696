package pva

import (
	"encoding/binary"
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestContext(t *testing.T, opts ...Option) *Context {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	c, err := NewContext(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

// fakeTransport records enqueued senders and produces their
// messages on flush, the way a Muxer would.
type fakeTransport struct {
	mu       sync.Mutex
	senders  []TransportSender
	enqueues int
	err      error
}

func (ft *fakeTransport) EnqueueSendRequest(sender TransportSender) error {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.err != nil {
		return ft.err
	}
	ft.enqueues++
	ft.senders = append(ft.senders, sender)
	return nil
}

func (ft *fakeTransport) RemoteAddr() net.Addr { return nil }

func (ft *fakeTransport) Version() byte { return ProtocolVersion }

func (ft *fakeTransport) enqueueCount() int {
	ft.mu.Lock()
	defer ft.mu.Unlock()
	return ft.enqueues
}

func (ft *fakeTransport) flush(t *testing.T) FrameData {
	ft.mu.Lock()
	senders := ft.senders
	ft.senders = nil
	ft.mu.Unlock()
	var out FrameData
	for _, s := range senders {
		var fd FrameData
		ctl := newSendControl(&fd)
		s.Lock()
		err := s.Send(&fd, ctl)
		s.Unlock()
		require.NoError(t, err)
		ctl.EndMessage()
		out = append(out, fd...)
	}
	return out
}

// fakeChannel counts registrations.
type fakeChannel struct {
	ctx          RequestContext
	sid          int32
	mu           sync.Mutex
	transport    Transport
	registered   int
	unregistered int
	requests     map[RequestID]ResponseRequest
}

func newFakeChannel(ctx RequestContext, sid int32, transport Transport) *fakeChannel {
	return &fakeChannel{
		ctx:       ctx,
		sid:       sid,
		transport: transport,
		requests:  make(map[RequestID]ResponseRequest),
	}
}

func (fc *fakeChannel) Context() RequestContext { return fc.ctx }

func (fc *fakeChannel) ServerChannelID() int32 { return fc.sid }

func (fc *fakeChannel) RegisterResponseRequest(r ResponseRequest) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.registered++
	fc.requests[r.IOID()] = r
}

func (fc *fakeChannel) UnregisterResponseRequest(r ResponseRequest) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.unregistered++
	delete(fc.requests, r.IOID())
}

func (fc *fakeChannel) CheckAndGetTransport() (Transport, error) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	if fc.transport == nil {
		return nil, ErrChannelDisconnected
	}
	return fc.transport, nil
}

func (fc *fakeChannel) counts() (registered, unregistered int) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.registered, fc.unregistered
}

// recordingHandler counts hook invocations.
type recordingHandler struct {
	mu                    sync.Mutex
	inits, destroys, data int
	lastStatus            Status
	err                   error
	panicMsg              string
}

func (h *recordingHandler) record(counter *int, status Status) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	*counter++
	h.lastStatus = status
	if h.panicMsg != "" {
		panic(h.panicMsg)
	}
	return h.err
}

func (h *recordingHandler) InitResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error {
	return h.record(&h.inits, status)
}

func (h *recordingHandler) DestroyResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error {
	return h.record(&h.destroys, status)
}

func (h *recordingHandler) NormalResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error {
	return h.record(&h.data, status)
}

func (h *recordingHandler) counts() (inits, destroys, data int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.inits, h.destroys, h.data
}

type testRequester struct {
	mu       sync.Mutex
	messages []string
}

func (tr *testRequester) RequesterName() string { return "test" }

func (tr *testRequester) Message(message string, messageType MessageType) {
	tr.mu.Lock()
	tr.messages = append(tr.messages, message)
	tr.mu.Unlock()
}

// responsePayload builds the part of a response following the request ID.
func responsePayload(qos QoS, status Status, body ...byte) *FrameParser {
	var fd FrameData
	_ = fd.WriteByte(byte(qos))
	fd.WriteStatus(status)
	_, _ = fd.Write(body)
	return NewFrameParserBytes(fd, binary.BigEndian)
}
