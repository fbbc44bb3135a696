// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// StatsCollector is the interface required to collect statistics
type StatsCollector interface {
	AddBytesWritten(int64)
	AddBytesRead(int64)
}

// ProtocolError is the error type used for reporting protocol errors,
// all of which are fatal to a Muxer.
type ProtocolError struct{}

func (err ProtocolError) Error() string { return "protocol error" }

// ErrTransportClosed is returned when enqueueing on a closed Transport.
var ErrTransportClosed = errors.New("pva: transport closed")

//go:generate mockgen -package=pva -destination=mock_transport.go github.com/linkdata/pva Transport,ResponseHandler,Requester

// Transport is a connection to a server that requests send on.
type Transport interface {
	// EnqueueSendRequest queues sender. Its Send method is called
	// exactly once, with its lock held, when the connection is ready to write.
	EnqueueSendRequest(sender TransportSender) error
	// RemoteAddr returns the peer address, or nil if not known.
	RemoteAddr() net.Addr
	// Version returns the protocol version the peer last announced.
	Version() byte
}

// TransportSender is something that can be queued on a Transport.
type TransportSender interface {
	Lock()
	Unlock()
	Send(fd *FrameData, ctl TransportSendControl) error
}

// TransportSendControl frames the messages a TransportSender writes.
type TransportSendControl interface {
	// StartMessage begins a new message with a header for cmd,
	// ending any message in progress.
	StartMessage(cmd Command)
	// EndMessage sets the payload size of the message in progress.
	EndMessage()
}

type sendControl struct {
	fd    *FrameData
	start int // offset of the open message header, or -1
	err   error
}

func newSendControl(fd *FrameData) *sendControl {
	return &sendControl{fd: fd, start: -1}
}

func (ctl *sendControl) StartMessage(cmd Command) {
	ctl.EndMessage()
	ctl.start = len(*ctl.fd)
	*ctl.fd = AppendFrameHeader(*ctl.fd, cmd)
}

func (ctl *sendControl) EndMessage() {
	if ctl.start < 0 {
		return
	}
	size := len(*ctl.fd) - ctl.start - FrameHeaderSize
	if size > FrameMaxPayloadSize && ctl.err == nil {
		ctl.err = errors.Wrapf(ErrFrameTooBig, "%d bytes", size)
	}
	FrameHeader((*ctl.fd)[ctl.start : ctl.start+FrameHeaderSize]).SetSizeValue(size)
	ctl.start = -1
}

// controlSender writes a single control message.
type controlSender struct {
	cmd   ControlCommand
	value int32
}

func (controlSender) Lock()   {}
func (controlSender) Unlock() {}

func (cs controlSender) Send(fd *FrameData, ctl TransportSendControl) error {
	*fd = append(*fd, FrameMagic, ProtocolVersion, byte(FrameFlagBigEndian|FrameFlagControl), byte(cs.cmd))
	*fd = binary.BigEndian.AppendUint32(*fd, uint32(cs.value))
	return nil
}

type muxerControlHandler func(*Muxer, FrameHeader) error

var muxerControlHandlers = map[ControlCommand]muxerControlHandler{
	ControlSetMarker:    muxerControlIgnoreHandler,
	ControlAckMarker:    muxerControlIgnoreHandler,
	ControlSetByteOrder: muxerControlIgnoreHandler,
	ControlEchoRequest:  muxerControlEchoRequestHandler,
	ControlEchoResponse: muxerControlEchoResponseHandler,
}

// Muxer carries the messages of many requests over one connection.
// Outbound messages are produced by TransportSenders in the order they
// were enqueued, inbound messages are handed to the Context.
type Muxer struct {
	io.ReadWriteCloser // The I/O endpoint
	StatsCollector     // Where to report statistics (optional)
	WriteTimeout       time.Duration
	ctx                *Context
	logger             *zap.Logger
	remoteAddr         net.Addr
	version            uint32
	mu                 sync.Mutex // guards queue and traceSink
	queue              []TransportSender
	traceSink          TraceSink
	signal             chan struct{}
	doneChan           chan struct{}
	lastPingSent       int64 // Unix nanoseconds
	lastPongRcvd       int64 // Unix nanoseconds
	pingSeq            int32
	serialNumber       uint32
}

var muxerNextSerialNumber uint32

var _ Transport = (*Muxer)(nil)

func (mux *Muxer) String() string {
	return fmt.Sprintf("[Muxer %x %s]", mux.serialNumber, addrString(mux.remoteAddr))
}

// NewMuxer creates a new Muxer delivering responses to ctx.
// It does nothing until Serve is called.
func NewMuxer(rwc io.ReadWriteCloser, ctx *Context) *Muxer {
	mux := &Muxer{
		ReadWriteCloser: rwc,
		StatsCollector:  ctx.metrics,
		WriteTimeout:    ctx.opts.WriteTimeout,
		ctx:             ctx,
		version:         uint32(ProtocolVersion),
		traceSink:       ctx.opts.TraceSink,
		signal:          make(chan struct{}, 1),
		doneChan:        make(chan struct{}),
		serialNumber:    atomic.AddUint32(&muxerNextSerialNumber, 1),
	}
	if ra, ok := rwc.(interface{ RemoteAddr() net.Addr }); ok {
		mux.remoteAddr = ra.RemoteAddr()
	}
	mux.logger = ctx.logger.With(zap.Uint32("muxer", mux.serialNumber), zap.String("remote", addrString(mux.remoteAddr)))
	return mux
}

// RemoteAddr returns the peer address, or nil if the connection doesn't have one.
func (mux *Muxer) RemoteAddr() net.Addr {
	return mux.remoteAddr
}

// Version returns the protocol version of the last frame received.
func (mux *Muxer) Version() byte {
	return byte(atomic.LoadUint32(&mux.version))
}

// SetTraceSink replaces the sink inbound frames are traced to. A nil sink disables tracing.
func (mux *Muxer) SetTraceSink(sink TraceSink) {
	mux.mu.Lock()
	mux.traceSink = sink
	mux.mu.Unlock()
}

func (mux *Muxer) getTraceSink() TraceSink {
	mux.mu.Lock()
	defer mux.mu.Unlock()
	return mux.traceSink
}

// EnqueueSendRequest queues sender to be written.
func (mux *Muxer) EnqueueSendRequest(sender TransportSender) error {
	mux.mu.Lock()
	if mux.isClosed() {
		mux.mu.Unlock()
		return errors.WithStack(ErrTransportClosed)
	}
	mux.queue = append(mux.queue, sender)
	mux.mu.Unlock()
	select {
	case mux.signal <- struct{}{}:
	default:
	}
	return nil
}

func (mux *Muxer) takeQueue() (queue []TransportSender) {
	mux.mu.Lock()
	queue, mux.queue = mux.queue, nil
	mux.mu.Unlock()
	return
}

func muxerControlIgnoreHandler(mux *Muxer, fh FrameHeader) error {
	mux.logger.Debug("control", zap.Stringer("command", fh.ControlCommand()), zap.Int("value", fh.SizeValue()))
	return nil
}

func muxerControlEchoRequestHandler(mux *Muxer, fh FrameHeader) error {
	return mux.EnqueueSendRequest(controlSender{cmd: ControlEchoResponse, value: int32(fh.SizeValue())})
}

func muxerControlEchoResponseHandler(mux *Muxer, fh FrameHeader) error {
	atomic.StoreInt64(&mux.lastPongRcvd, time.Now().UnixNano())
	return nil
}

// Ping sends an echo request and returns without waiting for response.
func (mux *Muxer) Ping() error {
	atomic.StoreInt64(&mux.lastPingSent, time.Now().UnixNano())
	return mux.EnqueueSendRequest(controlSender{cmd: ControlEchoRequest, value: atomic.AddInt32(&mux.pingSeq, 1)})
}

// Latency returns the result of the last successful ping/pong measurement,
// or the zero value if there is no current valid measurement.
func (mux *Muxer) Latency() (d time.Duration) {
	ping := atomic.LoadInt64(&mux.lastPingSent)
	if ping > 0 {
		pong := atomic.LoadInt64(&mux.lastPongRcvd)
		if ping <= pong {
			d = time.Nanosecond * time.Duration(pong-ping)
		}
	}
	return
}

// ReadFrom implements io.ReaderFrom. It reads frames from r and dispatches
// them until an error occurs. It never returns a nil error.
func (mux *Muxer) ReadFrom(r io.Reader) (n int64, err error) {
	fd := FrameDataAlloc()
	defer func() { FrameDataFree(fd) }()

	for err == nil {
		var m int64
		m, err = fd.ReadFrom(r)
		n += m
		if mux.StatsCollector != nil && m > 0 {
			mux.StatsCollector.AddBytesRead(m)
		}
		if err != nil {
			break
		}

		fh := fd.Header()
		atomic.StoreUint32(&mux.version, uint32(fh.Version()))
		if fh.IsSegmented() {
			err = errors.Wrapf(ProtocolError{}, "segmented frames not supported: %v", fh)
			break
		}

		if fh.IsControl() {
			if handler, ok := muxerControlHandlers[fh.ControlCommand()]; ok {
				err = handler(mux, fh)
			} else {
				mux.logger.Debug("unknown control frame", zap.Stringer("header", fh))
			}
			continue
		}

		if sink := mux.getTraceSink(); sink != nil {
			sink.TraceFrame(fh.Command(), fh.Version(), mux.remoteAddr, fd.Payload())
		}
		mux.ctx.HandleResponse(mux, fh.Version(), fh.Command(), NewFrameParser(fd))
	}

	if mux.isClosed() && !isClosedError(err) {
		err = errors.WithStack(ErrTransportClosed)
	}
	return
}

type flusher interface {
	Flush() error
}

type writeDeadliner interface {
	SetWriteDeadline(t time.Time) error
}

// WriteTo implements io.WriterTo. Queued senders are asked for their
// messages, which are buffered and written to w until the Muxer is
// closed or an error occurs.
func (mux *Muxer) WriteTo(w io.Writer) (n int64, err error) {
	var written int64
	f, hasFlusher := w.(flusher)
	wd, hasDeadline := mux.ReadWriteCloser.(writeDeadliner)

	for err == nil {
		queue := mux.takeQueue()
		if len(queue) == 0 {
			select {
			case <-mux.signal:
				continue
			case <-mux.doneChan:
				return n, errors.WithStack(ErrTransportClosed)
			}
		}

		if hasDeadline && mux.WriteTimeout > 0 {
			_ = wd.SetWriteDeadline(time.Now().Add(mux.WriteTimeout))
		}

		for _, sender := range queue {
			fd := FrameDataAlloc()
			if sendErr := mux.send(sender, &fd); sendErr != nil {
				mux.logger.Warn("send failed", zap.Stringer("sender", senderStringer{sender}), zap.Error(sendErr))
			} else if len(fd) > 0 {
				written, err = fd.WriteTo(w)
				n += written
				if mux.StatsCollector != nil && written > 0 {
					mux.StatsCollector.AddBytesWritten(written)
				}
			}
			FrameDataFree(fd)
			if err != nil {
				break
			}
		}

		if err == nil && hasFlusher {
			err = f.Flush()
		}
	}
	return
}

// send calls sender.Send with its lock held.
// On error, nothing it wrote is kept.
func (mux *Muxer) send(sender TransportSender, fd *FrameData) (err error) {
	ctl := newSendControl(fd)
	sender.Lock()
	defer sender.Unlock()
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic in Send: %v", r)
		}
		if err != nil {
			fd.Clear()
		}
	}()
	if err = sender.Send(fd, ctl); err == nil {
		ctl.EndMessage()
		err = ctl.err
	}
	return
}

type senderStringer struct{ TransportSender }

func (s senderStringer) String() string {
	if st, ok := s.TransportSender.(fmt.Stringer); ok {
		return st.String()
	}
	return fmt.Sprintf("%T", s.TransportSender)
}

func (mux *Muxer) isClosed() bool {
	select {
	case <-mux.doneChan:
		return true
	default:
		return false
	}
}

// Serve processes incoming and outgoing frames for the Muxer until
// ctx is done, the Muxer is closed or an I/O error occurs.
// Closing is not reported as an error.
func (mux *Muxer) Serve(ctx context.Context) (err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := mux.ReadFrom(bufio.NewReaderSize(mux.ReadWriteCloser, 64*1024))
		return err
	})
	g.Go(func() error {
		_, err := mux.WriteTo(bufio.NewWriterSize(mux.ReadWriteCloser, 64*1024))
		return err
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-mux.doneChan:
		}
		if err := mux.Close(); !isClosedError(err) {
			return err
		}
		return nil
	})
	if err = g.Wait(); isClosedError(err) {
		err = nil
	}
	return
}

// Close closes the Muxer immediately. Queued senders are dropped
// and the Context is told to disconnect the channels using it.
func (mux *Muxer) Close() (err error) {
	mux.mu.Lock()
	closed := false
	if !mux.isClosed() {
		close(mux.doneChan)
		closed = true
	}
	mux.queue = nil
	mux.mu.Unlock()

	if closed {
		err = mux.ReadWriteCloser.Close()
		mux.logger.Debug("transport closed")
		mux.ctx.transportClosed(mux)
	}
	return
}

func isClosedError(err error) bool {
	switch errors.Cause(err) {
	case nil:
		return true
	case ErrTransportClosed:
		return true
	case io.ErrClosedPipe:
		return true
	case io.EOF:
		return true
	}
	return errors.Is(err, net.ErrClosed)
}
