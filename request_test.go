package pva

import (
	"encoding/binary"
	"sync"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRequest(t *testing.T, transport Transport) (*BaseRequest, *Context, *fakeChannel, *recordingHandler) {
	c := newTestContext(t)
	ch := newFakeChannel(c, 100, transport)
	h := &recordingHandler{}
	r := NewBaseRequest(ch, &testRequester{}, h)
	return r, c, ch, h
}

func Test_BaseRequest_New(t *testing.T) {
	r, c, ch, _ := newTestRequest(t, nil)
	assert.NotEqual(t, InvalidRequestID, r.IOID())
	assert.Equal(t, ResponseRequest(r), c.GetResponseRequest(r.IOID()))
	reg, unreg := ch.counts()
	assert.Equal(t, 1, reg)
	assert.Equal(t, 0, unreg)
	assert.Equal(t, PendingNone, r.PendingRequest())
	assert.False(t, r.IsDestroyed())
	assert.False(t, r.IsRemotelyDestroyed())
	assert.Equal(t, RequestChannel(ch), r.Channel())
	assert.Equal(t, "test", r.Requester().RequesterName())
	assert.Contains(t, r.String(), "NONE")
}

func Test_BaseRequest_PendingExclusion(t *testing.T) {
	r, _, _, _ := newTestRequest(t, nil)
	a := OperationQoS(QoSInit)
	b := OperationQoS(0)

	assert.True(t, r.StartRequest(a))
	assert.Equal(t, a, r.PendingRequest())
	assert.False(t, r.StartRequest(b))
	assert.Equal(t, a, r.PendingRequest())

	r.StopRequest()
	assert.Equal(t, PendingNone, r.PendingRequest())
	assert.True(t, r.StartRequest(b))

	assert.True(t, r.StartRequest(PendingPureDestroy))
	assert.Equal(t, PendingPureDestroy, r.PendingRequest())
	assert.False(t, r.StartRequest(a))
}

func Test_BaseRequest_DestroyIdempotent(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := NewMockTransport(ctrl)
	r, c, ch, _ := newTestRequest(t, transport)
	transport.EXPECT().EnqueueSendRequest(r).Times(1).Return(nil)

	id := r.IOID()
	for i := 0; i < 5; i++ {
		r.Destroy()
	}
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(id))
	_, unreg := ch.counts()
	assert.Equal(t, 1, unreg)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.unregistered))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.destroyEnqueues))
	assert.Equal(t, PendingPureDestroy, r.PendingRequest())
}

func Test_BaseRequest_CancelAndTimeout(t *testing.T) {
	for name, f := range map[string]func(*BaseRequest){
		"cancel":  (*BaseRequest).Cancel,
		"timeout": (*BaseRequest).Timeout,
	} {
		t.Run(name, func(t *testing.T) {
			ft := &fakeTransport{}
			r, c, _, _ := newTestRequest(t, ft)
			f(r)
			f(r)
			assert.True(t, r.IsDestroyed())
			assert.Nil(t, c.GetResponseRequest(r.IOID()))
			assert.Equal(t, 1, ft.enqueueCount())
		})
	}
}

func Test_BaseRequest_DestroyDisconnected(t *testing.T) {
	r, c, ch, _ := newTestRequest(t, nil)
	r.Destroy()
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(r.IOID()))
	_, unreg := ch.counts()
	assert.Equal(t, 1, unreg)
	assert.Equal(t, float64(0), testutil.ToFloat64(c.metrics.destroyEnqueues))
}

func Test_BaseRequest_DestroyEnqueueFails(t *testing.T) {
	ft := &fakeTransport{err: errors.WithStack(ErrTransportClosed)}
	r, c, _, _ := newTestRequest(t, ft)
	assert.NotPanics(t, r.Destroy)
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(r.IOID()))
}

func Test_BaseRequest_DestroyFailedCreate(t *testing.T) {
	ft := &fakeTransport{}
	r, c, _, _ := newTestRequest(t, ft)
	r.DestroyFailedCreate()
	r.Destroy()
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(r.IOID()))
	assert.Equal(t, 0, ft.enqueueCount())
}

func Test_BaseRequest_ReportStatus(t *testing.T) {
	ft := &fakeTransport{}
	r, c, _, _ := newTestRequest(t, ft)

	require.True(t, r.StartRequest(OperationQoS(0)))
	r.ReportStatus(ConnectionDisconnected)
	assert.Equal(t, PendingNone, r.PendingRequest())
	assert.False(t, r.IsDestroyed())
	assert.Equal(t, ResponseRequest(r), c.GetResponseRequest(r.IOID()))

	r.ReportStatus(ConnectionConnected)
	assert.False(t, r.IsDestroyed())

	r.ReportStatus(ConnectionDestroyed)
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(r.IOID()))
	assert.Equal(t, 1, ft.enqueueCount())
}

func Test_BaseRequest_ResponseHooks(t *testing.T) {
	ctrl := gomock.NewController(t)
	transport := NewMockTransport(ctrl)
	handler := NewMockResponseHandler(ctrl)
	c := newTestContext(t)
	ch := newFakeChannel(c, 1, transport)
	r := NewBaseRequest(ch, nil, handler)

	warn := Status{Type: StatusTypeWarning, Message: "careful"}
	gomock.InOrder(
		handler.EXPECT().InitResponse(transport, ProtocolVersion, gomock.Any(), QoSInit, StatusOK).Return(nil),
		handler.EXPECT().NormalResponse(transport, ProtocolVersion, gomock.Any(), QoS(0x10), warn).
			DoAndReturn(func(_ Transport, _ byte, fp *FrameParser, _ QoS, _ Status) error {
				x, err := fp.ReadInt32()
				assert.NoError(t, err)
				assert.Equal(t, int32(42), x)
				return nil
			}),
		handler.EXPECT().InitResponse(transport, ProtocolVersion, gomock.Any(), QoSInit|QoSDestroy, StatusOK).Return(nil),
	)

	r.Response(transport, ProtocolVersion, responsePayload(QoSInit, StatusOK))
	r.Response(transport, ProtocolVersion, responsePayload(QoS(0x10), warn, 0, 0, 0, 42))
	// INIT takes precedence and does not destroy
	r.Response(transport, ProtocolVersion, responsePayload(QoSInit|QoSDestroy, StatusOK))
	assert.False(t, r.IsDestroyed())
	assert.False(t, r.IsRemotelyDestroyed())
}

func Test_BaseRequest_ResponseMalformed(t *testing.T) {
	ft := &fakeTransport{}
	r, _, _, h := newTestRequest(t, ft)
	r.Response(ft, ProtocolVersion, NewFrameParserBytes(nil, binary.BigEndian))
	r.Response(ft, ProtocolVersion, NewFrameParserBytes([]byte{byte(QoSInit), 9}, binary.BigEndian))
	inits, destroys, data := h.counts()
	assert.Zero(t, inits+destroys+data)
	assert.False(t, r.IsDestroyed())
}

func Test_BaseRequest_DestroyResponse(t *testing.T) {
	ft := &fakeTransport{}
	r, c, ch, h := newTestRequest(t, ft)
	h.err = errors.New("hook failed")
	id := r.IOID()

	fatal := Status{Type: StatusTypeFatal, Message: "gone", CallTree: "here"}
	r.Response(ft, ProtocolVersion, responsePayload(QoSDestroy, fatal))

	_, destroys, _ := h.counts()
	assert.Equal(t, 1, destroys)
	assert.Equal(t, fatal, h.lastStatus)
	assert.True(t, r.IsRemotelyDestroyed())
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(id))
	_, unreg := ch.counts()
	assert.Equal(t, 1, unreg)
	assert.Equal(t, 0, ft.enqueueCount())
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.hookErrors.WithLabelValues("destroy")))
}

func Test_BaseRequest_DestroyResponsePanics(t *testing.T) {
	ft := &fakeTransport{}
	r, c, _, h := newTestRequest(t, ft)
	h.panicMsg = "boom"
	assert.NotPanics(t, func() {
		r.Response(ft, ProtocolVersion, responsePayload(QoSDestroy, StatusOK))
	})
	assert.True(t, r.IsDestroyed())
	assert.Nil(t, c.GetResponseRequest(r.IOID()))
	assert.Equal(t, float64(1), testutil.ToFloat64(c.metrics.hookErrors.WithLabelValues("destroy")))
}

func Test_BaseRequest_DestroyResponseBadStatus(t *testing.T) {
	ft := &fakeTransport{}
	r, _, _, h := newTestRequest(t, ft)
	r.Response(ft, ProtocolVersion, NewFrameParserBytes([]byte{byte(QoSDestroy), 0x33}, binary.BigEndian))
	_, destroys, _ := h.counts()
	assert.Equal(t, 0, destroys)
	assert.True(t, r.IsDestroyed())
	assert.Equal(t, 0, ft.enqueueCount())
}

func Test_BaseRequest_DestroyBeforeDestroyResponse(t *testing.T) {
	ft := &fakeTransport{}
	r, _, _, h := newTestRequest(t, ft)
	r.Destroy()
	r.Response(ft, ProtocolVersion, responsePayload(QoSDestroy, StatusOK))
	assert.True(t, r.IsRemotelyDestroyed())
	assert.Equal(t, 1, ft.enqueueCount())
	_, destroys, _ := h.counts()
	assert.Equal(t, 1, destroys)
	assert.Len(t, ft.flush(t), FrameHeaderSize+DestroyRequestPayloadSize)
}

func Test_BaseRequest_DestroyRace(t *testing.T) {
	for i := 0; i < 100; i++ {
		ft := &fakeTransport{}
		r, c, ch, _ := newTestRequest(t, ft)
		id := r.IOID()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			r.Destroy()
		}()
		go func() {
			defer wg.Done()
			r.Response(ft, ProtocolVersion, responsePayload(QoSDestroy, StatusOK))
		}()
		wg.Wait()

		assert.True(t, r.IsRemotelyDestroyed())
		assert.True(t, r.IsDestroyed())
		assert.Nil(t, c.GetResponseRequest(id))
		_, unreg := ch.counts()
		assert.Equal(t, 1, unreg)
		assert.LessOrEqual(t, ft.enqueueCount(), 1)
		assert.Len(t, ft.flush(t), ft.enqueueCount()*(FrameHeaderSize+DestroyRequestPayloadSize))
	}
}

func Test_BaseRequest_Submit(t *testing.T) {
	ft := &fakeTransport{}
	c := newTestContext(t)
	ch := newFakeChannel(c, 7, ft)
	w := &getWriter{}
	r := NewBaseRequest(ch, nil, w)
	w.r = r

	require.NoError(t, r.Submit(OperationQoS(QoSInit)))
	assert.Equal(t, OperationQoS(QoSInit), r.PendingRequest())
	assert.Equal(t, ErrRequestPending, errors.Cause(r.Submit(OperationQoS(0))))

	fd := ft.flush(t)
	assert.Equal(t, PendingNone, r.PendingRequest())
	require.Len(t, fd, FrameHeaderSize+4+4+1)
	assert.Equal(t, CommandGet, fd.Header().Command())
	assert.Equal(t, 9, fd.Header().PayloadSize())
	fp := NewFrameParser(fd)
	sid, _ := fp.ReadInt32()
	ioid, _ := fp.ReadInt32()
	qos, _ := fp.ReadByte()
	assert.Equal(t, int32(7), sid)
	assert.Equal(t, int32(r.IOID()), ioid)
	assert.Equal(t, byte(QoSInit), qos)

	ch.transport = nil
	assert.Equal(t, ErrChannelDisconnected, errors.Cause(r.Submit(OperationQoS(0))))
	assert.Equal(t, PendingNone, r.PendingRequest())

	r.Destroy()
	assert.Equal(t, ErrRequestDestroyed, errors.Cause(r.Submit(OperationQoS(0))))
}

// getWriter writes a minimal get request for the pending operation.
type getWriter struct {
	recordingHandler
	r *BaseRequest
}

func (w *getWriter) WriteOperation(fd *FrameData, ctl TransportSendControl, op PendingOp) error {
	ctl.StartMessage(CommandGet)
	fd.WriteInt32(w.r.Channel().ServerChannelID())
	fd.WriteInt32(int32(w.r.IOID()))
	return fd.WriteByte(byte(op))
}

func Test_BaseRequest_EndToEnd(t *testing.T) {
	c := newTestContext(t, WithMetrics("e2e", prometheus.NewRegistry()))
	ft := &fakeTransport{}
	ch, err := c.CreateChannel("pv:test")
	require.NoError(t, err)
	require.NoError(t, ch.ConnectionCompleted(100, ft))

	c.mu.Lock()
	c.lastRequestID = 4
	c.mu.Unlock()
	r := NewBaseRequest(ch, nil, &recordingHandler{})
	require.Equal(t, RequestID(5), r.IOID())
	assert.Equal(t, 1, ch.ResponseRequestCount())

	require.True(t, r.StartRequest(OperationQoS(0)))
	var fd FrameData
	require.NoError(t, r.Send(&fd, newSendControl(&fd)))
	assert.Empty(t, fd)
	assert.Equal(t, PendingNone, r.PendingRequest())

	r.Destroy()
	require.Equal(t, 1, ft.enqueueCount())
	out := ft.flush(t)
	require.Len(t, out, FrameHeaderSize+DestroyRequestPayloadSize)
	assert.Equal(t, CommandDestroyRequest, out.Header().Command())
	assert.True(t, out.Header().IsBigEndian())
	assert.Equal(t, DestroyRequestPayloadSize, out.Header().PayloadSize())
	assert.Equal(t, []byte{0, 0, 0, 100, 0, 0, 0, 5}, []byte(out.Payload()))
	assert.Equal(t, PendingNone, r.PendingRequest())

	r.Destroy()
	assert.Equal(t, 1, ft.enqueueCount())
	assert.Equal(t, 0, ch.ResponseRequestCount())
	assert.Equal(t, 0, c.ResponseRequestCount())
}
