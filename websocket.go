// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// wsConn adapts a websocket connection to a byte stream. Each write is
// sent as one binary message, reads continue across message boundaries.
type wsConn struct {
	ws  *websocket.Conn
	rmu sync.Mutex // guards r
	r   io.Reader
	wmu sync.Mutex
}

// NewWebSocketConn wraps ws as an io.ReadWriteCloser suitable for a Muxer.
func NewWebSocketConn(ws *websocket.Conn) io.ReadWriteCloser {
	return &wsConn{ws: ws}
}

func (c *wsConn) Read(p []byte) (n int, err error) {
	c.rmu.Lock()
	defer c.rmu.Unlock()
	for {
		if c.r == nil {
			var mt int
			if mt, c.r, err = c.ws.NextReader(); err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					err = io.EOF
				}
				return
			}
			if mt != websocket.BinaryMessage {
				c.r = nil
				return 0, errors.Wrapf(ProtocolError{}, "unexpected websocket message type %d", mt)
			}
		}
		if n, err = c.r.Read(p); err == io.EOF {
			c.r = nil
			err = nil
			if n == 0 {
				continue
			}
		}
		return
	}
}

func (c *wsConn) Write(p []byte) (n int, err error) {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err = c.ws.WriteMessage(websocket.BinaryMessage, p); err == nil {
		n = len(p)
	}
	return
}

func (c *wsConn) Close() error {
	c.wmu.Lock()
	_ = c.ws.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.wmu.Unlock()
	return c.ws.Close()
}

func (c *wsConn) RemoteAddr() net.Addr {
	return c.ws.RemoteAddr()
}

func (c *wsConn) SetWriteDeadline(t time.Time) error {
	return c.ws.SetWriteDeadline(t)
}

// DialWebSocket connects to a server through a websocket endpoint
// and returns the served Muxer.
func (c *Context) DialWebSocket(ctx context.Context, url string) (*Muxer, error) {
	dialer := websocket.Dialer{
		Proxy:            websocket.DefaultDialer.Proxy,
		HandshakeTimeout: c.opts.DialTimeout,
	}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		c.logger.Info("websocket dial failed", zap.String("url", url), zap.Error(err))
		return nil, errors.Wrap(err, "pva: websocket dial")
	}
	return c.Attach(NewWebSocketConn(ws))
}
