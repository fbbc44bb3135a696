// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// ErrContextClosed is returned when using a closed Context.
var ErrContextClosed = errors.New("pva: context closed")

// Context is the client side owner of requests, channels and transports.
// It assigns request IDs and routes inbound responses to requests.
type Context struct {
	logger    *zap.Logger
	metrics   *Metrics
	pool      *ants.Pool
	opts      *options
	baseCtx   context.Context
	cancel    context.CancelFunc
	serveWait sync.WaitGroup

	mu            sync.Mutex // guards requests and lastRequestID
	requests      *IntMap[ResponseRequest]
	lastRequestID RequestID

	chmu          sync.Mutex // guards the below
	channels      map[int32]*Channel
	lastChannelID int32
	muxers        map[*Muxer]struct{}
	closed        bool

	serialNumber uint32
}

var contextNextSerialNumber uint32

var _ RequestContext = (*Context)(nil)

// NewContext creates a Context.
func NewContext(opts ...Option) (*Context, error) {
	defOpts := defaultOptions()
	for _, f := range opts {
		f(defOpts)
	}
	if defOpts.Logger == nil {
		defOpts.Logger = zap.NewNop()
	}

	metrics, err := NewMetrics(defOpts.Namespace, defOpts.Registerer)
	if err != nil {
		return nil, err
	}
	pool, err := ants.NewPool(defOpts.WorkerPoolSize, ants.WithNonblocking(true))
	if err != nil {
		return nil, errors.WithStack(err)
	}

	c := &Context{
		logger:       defOpts.Logger,
		metrics:      metrics,
		pool:         pool,
		opts:         defOpts,
		requests:     NewIntMapSize[ResponseRequest](defOpts.RegistryCapacity, defOpts.RegistryLoadFactor),
		channels:     make(map[int32]*Channel),
		muxers:       make(map[*Muxer]struct{}),
		serialNumber: atomic.AddUint32(&contextNextSerialNumber, 1),
	}
	c.baseCtx, c.cancel = context.WithCancel(context.Background())
	return c, nil
}

func (c *Context) String() string {
	return fmt.Sprintf("[Context %x]", c.serialNumber)
}

// Logger returns the Context logger.
func (c *Context) Logger() *zap.Logger {
	return c.logger
}

// Metrics returns the Context metrics.
func (c *Context) Metrics() *Metrics {
	return c.metrics
}

// RegisterResponseRequest assigns r an ID not used by any other registered
// request and adds it to the registry.
func (c *Context) RegisterResponseRequest(r ResponseRequest) RequestID {
	c.mu.Lock()
	defer c.mu.Unlock()
	for {
		c.lastRequestID++
		if c.lastRequestID != InvalidRequestID && !c.requests.ContainsKey(int32(c.lastRequestID)) {
			break
		}
	}
	c.requests.Put(int32(c.lastRequestID), r)
	c.metrics.requestRegistered()
	return c.lastRequestID
}

// UnregisterResponseRequest removes r from the registry.
// Nothing happens if its ID now belongs to some other request.
func (c *Context) UnregisterResponseRequest(r ResponseRequest) {
	c.mu.Lock()
	defer c.mu.Unlock()
	id := int32(r.IOID())
	if v, ok := c.requests.Get(id); ok && v == r {
		c.requests.Remove(id)
		c.metrics.requestUnregistered()
	}
}

// GetResponseRequest returns the registered request with the given ID, or nil.
func (c *Context) GetResponseRequest(id RequestID) ResponseRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, _ := c.requests.Get(int32(id))
	return r
}

// ResponseRequestCount returns the number of registered requests.
func (c *Context) ResponseRequestCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests.Size()
}

// CreateChannel creates an unconnected Channel. Resolving the name to a
// server is up to the caller, who completes the connection with
// Channel.ConnectionCompleted.
func (c *Context) CreateChannel(name string) (*Channel, error) {
	c.chmu.Lock()
	defer c.chmu.Unlock()
	if c.closed {
		return nil, errors.WithStack(ErrContextClosed)
	}
	for {
		c.lastChannelID++
		if _, ok := c.channels[c.lastChannelID]; !ok {
			break
		}
	}
	ch := newChannel(c, c.lastChannelID, name)
	c.channels[ch.cid] = ch
	return ch, nil
}

// GetChannel returns the Channel with the given client channel ID, or nil.
func (c *Context) GetChannel(cid int32) *Channel {
	c.chmu.Lock()
	defer c.chmu.Unlock()
	return c.channels[cid]
}

func (c *Context) removeChannel(ch *Channel) {
	c.chmu.Lock()
	defer c.chmu.Unlock()
	if c.channels[ch.cid] == ch {
		delete(c.channels, ch.cid)
	}
}

func (c *Context) channelsSnapshot() []*Channel {
	c.chmu.Lock()
	defer c.chmu.Unlock()
	chs := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		chs = append(chs, ch)
	}
	return chs
}

// addMuxer starts serving mux and tracks it until it closes.
func (c *Context) addMuxer(mux *Muxer) error {
	c.chmu.Lock()
	defer c.chmu.Unlock()
	if c.closed {
		return errors.WithStack(ErrContextClosed)
	}
	c.muxers[mux] = struct{}{}
	c.serveWait.Add(1)
	go func() {
		defer c.serveWait.Done()
		if err := mux.Serve(c.baseCtx); err != nil {
			c.logger.Info("transport stopped", zap.Stringer("muxer", mux), zap.Error(err))
		}
	}()
	return nil
}

// transportClosed disconnects every channel using mux.
func (c *Context) transportClosed(mux *Muxer) {
	c.chmu.Lock()
	delete(c.muxers, mux)
	c.chmu.Unlock()
	for _, ch := range c.channelsSnapshot() {
		ch.transportClosed(mux)
	}
}

// submit runs f on the worker pool, or inline if the pool is saturated.
func (c *Context) submit(f func()) {
	if err := c.pool.Submit(f); err != nil {
		f()
	}
}

// Close destroys all channels, closes all transports and releases the worker pool.
func (c *Context) Close() (err error) {
	c.chmu.Lock()
	if c.closed {
		c.chmu.Unlock()
		return nil
	}
	c.closed = true
	c.chmu.Unlock()

	for _, ch := range c.channelsSnapshot() {
		ch.Destroy()
	}

	c.chmu.Lock()
	muxers := make([]*Muxer, 0, len(c.muxers))
	for mux := range c.muxers {
		muxers = append(muxers, mux)
	}
	c.chmu.Unlock()
	for _, mux := range muxers {
		if closeErr := mux.Close(); err == nil {
			err = closeErr
		}
	}

	c.cancel()
	c.serveWait.Wait()
	c.pool.Release()
	return
}
