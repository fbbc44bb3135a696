// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"go.uber.org/zap"
)

// responseHandler handles the payload of one inbound application message.
type responseHandler func(c *Context, t Transport, version byte, cmd Command, fp *FrameParser)

var responseHandlers = map[Command]responseHandler{
	CommandEcho:           noopResponseHandler,
	CommandGet:            dataResponseHandler,
	CommandPut:            dataResponseHandler,
	CommandPutGet:         dataResponseHandler,
	CommandMonitor:        dataResponseHandler,
	CommandArray:          dataResponseHandler,
	CommandDestroyRequest: dataResponseHandler,
	CommandProcess:        dataResponseHandler,
	CommandGetField:       dataResponseHandler,
	CommandMessage:        messageResponseHandler,
	CommandRPC:            dataResponseHandler,
}

// HandleResponse routes an inbound message to the request it is addressed to.
// The FrameParser is positioned at the start of the payload and is only
// valid for the duration of the call.
func (c *Context) HandleResponse(t Transport, version byte, cmd Command, fp *FrameParser) {
	handler, ok := responseHandlers[cmd]
	if !ok {
		c.logger.Debug("unhandled command",
			zap.Stringer("command", cmd),
			zap.String("from", addrString(t.RemoteAddr())),
			zap.Int("size", fp.Remaining()))
		return
	}
	handler(c, t, version, cmd, fp)
}

func noopResponseHandler(c *Context, t Transport, version byte, cmd Command, fp *FrameParser) {}

// lookupResponseRequest reads the request ID and finds the request.
func (c *Context) lookupResponseRequest(cmd Command, fp *FrameParser) ResponseRequest {
	id, err := fp.ReadInt32()
	if err != nil {
		c.logger.Warn("response without request id", zap.Stringer("command", cmd), zap.Error(err))
		return nil
	}
	r := c.GetResponseRequest(RequestID(id))
	if r == nil {
		c.metrics.unknownResponse()
		c.logger.Debug("response for unknown request", zap.Stringer("command", cmd), zap.Int32("ioid", id))
	}
	return r
}

func dataResponseHandler(c *Context, t Transport, version byte, cmd Command, fp *FrameParser) {
	if r := c.lookupResponseRequest(cmd, fp); r != nil {
		r.Response(t, version, fp)
	}
}

func messageResponseHandler(c *Context, t Transport, version byte, cmd Command, fp *FrameParser) {
	r := c.lookupResponseRequest(cmd, fp)
	if r == nil {
		return
	}
	b, err := fp.ReadByte()
	if err == nil {
		var msg string
		if msg, _, err = fp.ReadString(); err == nil {
			if requester := r.Requester(); requester != nil {
				requester.Message(msg, MessageType(b))
			}
			return
		}
	}
	c.logger.Warn("malformed message", zap.Int32("ioid", int32(r.IOID())), zap.Error(err))
}
