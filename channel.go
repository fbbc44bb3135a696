// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrChannelDisconnected is returned when a Channel has no Transport.
	ErrChannelDisconnected = errors.New("pva: channel disconnected")
	// ErrChannelDestroyed is returned when a Channel has been destroyed.
	ErrChannelDestroyed = errors.New("pva: channel destroyed")
)

// Channel is a named endpoint on a server that requests are directed to.
// It tracks the requests created on it so that they can be told when the
// connection is lost or the Channel is destroyed.
type Channel struct {
	cid    int32
	name   string
	ctx    *Context
	logger *zap.Logger

	mu        sync.Mutex // guards the below
	sid       int32
	state     ConnectionState
	transport Transport
	requests  map[RequestID]ResponseRequest
}

var _ RequestChannel = (*Channel)(nil)

func newChannel(ctx *Context, cid int32, name string) *Channel {
	return &Channel{
		cid:      cid,
		name:     name,
		ctx:      ctx,
		logger:   ctx.logger.With(zap.Int32("cid", cid), zap.String("channel", name)),
		state:    ConnectionNeverConnected,
		requests: make(map[RequestID]ResponseRequest),
	}
}

func (ch *Channel) String() string {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return fmt.Sprintf("[Channel %d %q sid=%d %v (%d)]", ch.cid, ch.name, ch.sid, ch.state, len(ch.requests))
}

// ID returns the client side channel ID.
func (ch *Channel) ID() int32 {
	return ch.cid
}

// Name returns the channel name.
func (ch *Channel) Name() string {
	return ch.name
}

// Context returns the owning Context as a RequestContext.
func (ch *Channel) Context() RequestContext {
	return ch.ctx
}

// ClientContext returns the owning Context.
func (ch *Channel) ClientContext() *Context {
	return ch.ctx
}

// ServerChannelID returns the ID the server assigned to the channel.
func (ch *Channel) ServerChannelID() int32 {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.sid
}

// ConnectionState returns the current connection state.
func (ch *Channel) ConnectionState() ConnectionState {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.state
}

// RegisterResponseRequest adds r to the set of active requests.
func (ch *Channel) RegisterResponseRequest(r ResponseRequest) {
	ch.mu.Lock()
	ch.requests[r.IOID()] = r
	ch.mu.Unlock()
}

// UnregisterResponseRequest removes r from the set of active requests.
func (ch *Channel) UnregisterResponseRequest(r ResponseRequest) {
	ch.mu.Lock()
	if ch.requests[r.IOID()] == r {
		delete(ch.requests, r.IOID())
	}
	ch.mu.Unlock()
}

// ResponseRequestCount returns the number of active requests.
func (ch *Channel) ResponseRequestCount() int {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return len(ch.requests)
}

// CheckAndGetTransport returns the Transport, or an error if there is none.
func (ch *Channel) CheckAndGetTransport() (Transport, error) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.transport == nil {
		if ch.state == ConnectionDestroyed {
			return nil, errors.WithStack(ErrChannelDestroyed)
		}
		return nil, errors.WithStack(ErrChannelDisconnected)
	}
	return ch.transport, nil
}

// ConnectionCompleted binds the channel to a Transport using the
// server assigned channel ID.
func (ch *Channel) ConnectionCompleted(sid int32, t Transport) error {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	if ch.state == ConnectionDestroyed {
		return errors.WithStack(ErrChannelDestroyed)
	}
	ch.sid = sid
	ch.transport = t
	ch.state = ConnectionConnected
	ch.logger.Debug("channel connected", zap.Int32("sid", sid), zap.String("remote", addrString(t.RemoteAddr())))
	return nil
}

// Disconnect drops the Transport. Requests stay registered
// but lose their pending operation.
func (ch *Channel) Disconnect() {
	ch.mu.Lock()
	if ch.state != ConnectionConnected {
		ch.mu.Unlock()
		return
	}
	ch.transport = nil
	ch.state = ConnectionDisconnected
	ch.mu.Unlock()
	ch.logger.Debug("channel disconnected")
	ch.reportStatus(ConnectionDisconnected)
}

func (ch *Channel) transportClosed(t Transport) {
	ch.mu.Lock()
	match := ch.transport == t
	ch.mu.Unlock()
	if match {
		ch.Disconnect()
	}
}

// Destroy destroys all requests on the channel and releases it.
// Destroy requests are still sent if the channel is connected.
func (ch *Channel) Destroy() {
	ch.mu.Lock()
	if ch.state == ConnectionDestroyed {
		ch.mu.Unlock()
		return
	}
	ch.state = ConnectionDestroyed
	ch.mu.Unlock()

	ch.reportStatus(ConnectionDestroyed)

	ch.mu.Lock()
	ch.transport = nil
	ch.mu.Unlock()
	ch.ctx.removeChannel(ch)
	ch.logger.Debug("channel destroyed")
}

// reportStatus notifies a snapshot of the active requests and
// waits until all of them have been told.
func (ch *Channel) reportStatus(state ConnectionState) {
	ch.mu.Lock()
	requests := make([]ResponseRequest, 0, len(ch.requests))
	for _, r := range ch.requests {
		requests = append(requests, r)
	}
	ch.mu.Unlock()

	var wg sync.WaitGroup
	wg.Add(len(requests))
	for _, r := range requests {
		r := r
		ch.ctx.submit(func() {
			defer wg.Done()
			r.ReportStatus(state)
		})
	}
	wg.Wait()
}
