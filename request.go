// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// RequestID identifies an in-progress request within its Context.
type RequestID int32

func (id RequestID) String() string {
	return fmt.Sprintf("[IOID %08x]", uint32(id))
}

// QoS holds the per-message quality of service flags.
type QoS byte

const (
	// QoSInit marks the response to a request initialization.
	QoSInit QoS = 0x01
	// QoSDestroy marks the response to a request destruction.
	QoSDestroy QoS = 0x02
)

// IsSet returns true if all bits in flag are set.
func (q QoS) IsSet(flag QoS) bool {
	return q&flag == flag
}

// PendingOp is the operation a request has queued for sending.
// Non-negative values are the QoS of a pending operation.
type PendingOp int32

const (
	// PendingNone means nothing is queued.
	PendingNone PendingOp = -1
	// PendingPureDestroy means a destroy request frame is queued.
	PendingPureDestroy PendingOp = -2
)

// OperationQoS returns the PendingOp for an operation using qos.
func OperationQoS(qos QoS) PendingOp {
	return PendingOp(qos)
}

func (op PendingOp) String() string {
	switch op {
	case PendingNone:
		return "NONE"
	case PendingPureDestroy:
		return "DESTROY"
	}
	return fmt.Sprintf("QOS(%02x)", int32(op))
}

// ConnectionState is the state of a Channel as reported to its requests.
type ConnectionState int32

const (
	// ConnectionNeverConnected is the initial state of a Channel
	ConnectionNeverConnected = ConnectionState(0)
	// ConnectionConnected means the Channel has a Transport
	ConnectionConnected = ConnectionState(1)
	// ConnectionDisconnected means the Transport was lost, the Channel may reconnect
	ConnectionDisconnected = ConnectionState(2)
	// ConnectionDestroyed means the Channel is gone for good
	ConnectionDestroyed = ConnectionState(3)
)

var connectionStateTexts = map[ConnectionState]string{
	ConnectionNeverConnected: "NEVER_CONNECTED",
	ConnectionConnected:      "CONNECTED",
	ConnectionDisconnected:   "DISCONNECTED",
	ConnectionDestroyed:      "DESTROYED",
}

func (cs ConnectionState) String() string {
	if s, ok := connectionStateTexts[cs]; ok {
		return s
	}
	return fmt.Sprintf("ConnectionState(%d)", int32(cs))
}

// MessageType is the severity of a text message sent to a Requester.
type MessageType byte

const (
	MessageInfo    = MessageType(0)
	MessageWarning = MessageType(1)
	MessageError   = MessageType(2)
	MessageFatal   = MessageType(3)
)

// ErrRequestPending is returned when a request already has an operation queued.
var ErrRequestPending = errors.New("pva: request already has a pending operation")

// ErrRequestDestroyed is returned when submitting on a destroyed request.
var ErrRequestDestroyed = errors.New("pva: request destroyed")

// Requester is the application object a request reports to.
// The core never looks inside it.
type Requester interface {
	RequesterName() string
	Message(message string, messageType MessageType)
}

// ResponseHandler is implemented by each kind of operation.
// The FrameParser is positioned after the QoS byte and status.
type ResponseHandler interface {
	InitResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error
	DestroyResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error
	NormalResponse(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error
}

// OperationWriter may be implemented by a ResponseHandler to write
// the frame for a pending operation when the Transport is ready.
type OperationWriter interface {
	WriteOperation(fd *FrameData, ctl TransportSendControl, op PendingOp) error
}

// ResponseRequest is what a Context keeps in its registry.
type ResponseRequest interface {
	IOID() RequestID
	Requester() Requester
	Response(t Transport, version byte, fp *FrameParser)
	ReportStatus(state ConnectionState)
	Cancel()
	Timeout()
	Destroy()
}

// RequestContext is the interface a request needs from its owning Context.
type RequestContext interface {
	RegisterResponseRequest(r ResponseRequest) RequestID
	UnregisterResponseRequest(r ResponseRequest)
	Logger() *zap.Logger
	Metrics() *Metrics
}

// RequestChannel is the interface a request needs from its Channel.
type RequestChannel interface {
	Context() RequestContext
	ServerChannelID() int32
	RegisterResponseRequest(r ResponseRequest)
	UnregisterResponseRequest(r ResponseRequest)
	CheckAndGetTransport() (Transport, error)
}

// BaseRequest implements the lifecycle shared by all operations.
// Concrete operations embed it and supply a ResponseHandler.
type BaseRequest struct {
	ioid      RequestID
	channel   RequestChannel
	context   RequestContext
	requester Requester
	handler   ResponseHandler
	logger    *zap.Logger

	mu                sync.Mutex // guards the below
	pending           PendingOp
	destroyed         bool
	remotelyDestroyed bool

	sendMu sync.Mutex // held by the Transport around Send
}

var _ ResponseRequest = (*BaseRequest)(nil)
var _ TransportSender = (*BaseRequest)(nil)

// NewBaseRequest creates a request and registers it with the
// Context of the channel and with the channel itself.
func NewBaseRequest(channel RequestChannel, requester Requester, handler ResponseHandler) *BaseRequest {
	r := &BaseRequest{
		channel:   channel,
		context:   channel.Context(),
		requester: requester,
		handler:   handler,
		pending:   PendingNone,
	}
	r.logger = r.context.Logger()
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	r.ioid = r.context.RegisterResponseRequest(r)
	r.logger = r.logger.With(zap.Int32("ioid", int32(r.ioid)))
	channel.RegisterResponseRequest(r)
	return r
}

func (r *BaseRequest) String() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	state := "  "
	if r.destroyed {
		state = "D "
	}
	if r.remotelyDestroyed {
		state = state[:1] + "R"
	}
	return fmt.Sprintf("[Request %v %v %s]", r.ioid, r.pending, state)
}

// IOID returns the request ID assigned by the Context.
func (r *BaseRequest) IOID() RequestID {
	return r.ioid
}

// Channel returns the channel the request was created on.
func (r *BaseRequest) Channel() RequestChannel {
	return r.channel
}

// Requester returns the application callback target.
func (r *BaseRequest) Requester() Requester {
	return r.requester
}

// Lock takes the send lock. Used by the Transport around Send.
func (r *BaseRequest) Lock() {
	r.sendMu.Lock()
}

// Unlock releases the send lock.
func (r *BaseRequest) Unlock() {
	r.sendMu.Unlock()
}

// IsDestroyed returns true once Destroy has run.
func (r *BaseRequest) IsDestroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.destroyed
}

// IsRemotelyDestroyed returns true if the peer sent a destroy response.
func (r *BaseRequest) IsRemotelyDestroyed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.remotelyDestroyed
}

// StartRequest marks op as pending. It fails if something else is already
// pending, except that PendingPureDestroy always succeeds.
func (r *BaseRequest) StartRequest(op PendingOp) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending != PendingNone && op != PendingPureDestroy {
		return false
	}
	r.pending = op
	return true
}

// StopRequest clears the pending operation.
func (r *BaseRequest) StopRequest() {
	r.mu.Lock()
	r.pending = PendingNone
	r.mu.Unlock()
}

// PendingRequest returns the pending operation, or PendingNone.
func (r *BaseRequest) PendingRequest() PendingOp {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pending
}

// Submit marks op as pending and queues the request with the channel's
// Transport. The pending state is cleared again if it can't be queued.
func (r *BaseRequest) Submit(op PendingOp) error {
	if r.IsDestroyed() {
		return errors.WithStack(ErrRequestDestroyed)
	}
	if !r.StartRequest(op) {
		return errors.WithStack(ErrRequestPending)
	}
	t, err := r.channel.CheckAndGetTransport()
	if err == nil {
		err = t.EnqueueSendRequest(r)
	}
	if err != nil {
		r.StopRequest()
	}
	return err
}

// Response handles a response addressed to this request. The FrameParser
// must be positioned at the QoS byte, after the request ID.
func (r *BaseRequest) Response(t Transport, version byte, fp *FrameParser) {
	b, err := fp.ReadByte()
	if err != nil {
		r.logger.Warn("response missing qos", zap.Error(err))
		return
	}
	qos := QoS(b)
	isDestroy := !qos.IsSet(QoSInit) && qos.IsSet(QoSDestroy)
	if isDestroy {
		r.mu.Lock()
		r.remotelyDestroyed = true
		r.mu.Unlock()
		defer r.Destroy()
	}

	status, err := fp.ReadStatus()
	if err != nil {
		r.logger.Warn("response has bad status", zap.Uint8("qos", b), zap.Error(err))
		return
	}

	if r.handler == nil {
		return
	}

	var hook string
	switch {
	case qos.IsSet(QoSInit):
		hook = "init"
		err = r.invoke(r.handler.InitResponse, t, version, fp, qos, status)
	case isDestroy:
		hook = "destroy"
		err = r.invoke(r.handler.DestroyResponse, t, version, fp, qos, status)
	default:
		hook = "normal"
		err = r.invoke(r.handler.NormalResponse, t, version, fp, qos, status)
	}
	if err != nil {
		r.context.Metrics().hookError(hook)
		r.logger.Warn("response hook failed", zap.String("hook", hook), zap.Stringer("status", status), zap.Error(err))
	}
}

type responseHook func(t Transport, version byte, fp *FrameParser, qos QoS, status Status) error

// invoke calls a hook, turning a panic into an error so that the
// reader goroutine and any deferred destroy survive it.
func (r *BaseRequest) invoke(hook responseHook, t Transport, version byte, fp *FrameParser, qos QoS, status Status) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %v", p)
		}
	}()
	return hook(t, version, fp, qos, status)
}

// Destroy unregisters the request and, unless the peer already destroyed
// it, queues a destroy request frame. Only the first call has any effect.
func (r *BaseRequest) Destroy() {
	r.destroy(false)
}

// DestroyFailedCreate destroys the request without telling the peer,
// for use when the peer rejected its creation.
func (r *BaseRequest) DestroyFailedCreate() {
	r.destroy(true)
}

func (r *BaseRequest) destroy(createRequestFailed bool) {
	r.mu.Lock()
	if r.destroyed {
		r.mu.Unlock()
		return
	}
	r.destroyed = true
	remotelyDestroyed := r.remotelyDestroyed
	r.mu.Unlock()

	r.context.UnregisterResponseRequest(r)
	r.channel.UnregisterResponseRequest(r)

	if remotelyDestroyed || createRequestFailed {
		return
	}

	r.StartRequest(PendingPureDestroy)
	t, err := r.channel.CheckAndGetTransport()
	if err == nil {
		err = t.EnqueueSendRequest(r)
	}
	if err != nil {
		// the peer state does not matter once it is unreachable
		r.logger.Debug("destroy request not sent", zap.Error(err))
		return
	}
	r.context.Metrics().destroyEnqueued()
}

// Cancel is the same as Destroy.
func (r *BaseRequest) Cancel() {
	r.Destroy()
}

// Timeout is the same as Cancel.
func (r *BaseRequest) Timeout() {
	r.Cancel()
}

// ReportStatus is called by the Channel when its connection state changes.
func (r *BaseRequest) ReportStatus(state ConnectionState) {
	switch state {
	case ConnectionDestroyed:
		r.Destroy()
	case ConnectionDisconnected:
		r.StopRequest()
	}
}

// Send is called by the Transport with the send lock held.
func (r *BaseRequest) Send(fd *FrameData, ctl TransportSendControl) (err error) {
	switch op := r.PendingRequest(); op {
	case PendingNone:
	case PendingPureDestroy:
		ctl.StartMessage(CommandDestroyRequest)
		fd.WriteInt32(r.channel.ServerChannelID())
		fd.WriteInt32(int32(r.ioid))
		ctl.EndMessage()
	default:
		if w, ok := r.handler.(OperationWriter); ok {
			err = w.WriteOperation(fd, ctl, op)
		}
	}
	r.StopRequest()
	return
}
