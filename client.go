// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"context"
	"io"
	"net"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// Attach creates a Muxer over rwc and serves it until the Context
// is closed or the connection fails.
func (c *Context) Attach(rwc io.ReadWriteCloser) (*Muxer, error) {
	mux := NewMuxer(rwc, c)
	if err := c.addMuxer(mux); err != nil {
		_ = rwc.Close()
		return nil, err
	}
	mux.logger.Debug("transport attached")
	return mux, nil
}

// Dial connects to a server over TCP and returns the served Muxer.
func (c *Context) Dial(ctx context.Context, addr string) (*Muxer, error) {
	d := net.Dialer{Timeout: c.opts.DialTimeout}
	rwc, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		c.logger.Info("dial failed", zap.String("addr", addr), zap.Error(err))
		return nil, errors.Wrap(err, "pva: dial")
	}
	return c.Attach(rwc)
}
