// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"encoding/hex"
	"net"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// TraceSink receives every inbound application frame before it is dispatched.
// raw is only valid for the duration of the call.
type TraceSink interface {
	TraceFrame(cmd Command, version byte, from net.Addr, raw []byte)
}

type zapTraceSink struct {
	logger *zap.Logger
}

// NewZapTraceSink returns a TraceSink that hex dumps frames to logger at debug level.
func NewZapTraceSink(logger *zap.Logger) TraceSink {
	return zapTraceSink{logger: logger}
}

func (s zapTraceSink) TraceFrame(cmd Command, version byte, from net.Addr, raw []byte) {
	if ce := s.logger.Check(zapcore.DebugLevel, "READ"); ce != nil {
		ce.Write(
			zap.Stringer("command", cmd),
			zap.Uint8("version", version),
			zap.String("from", addrString(from)),
			zap.Int("size", len(raw)),
			zap.String("dump", hex.Dump(raw)),
		)
	}
}

func addrString(addr net.Addr) string {
	if addr == nil {
		return ""
	}
	return addr.String()
}
