// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import "time"

const (
	// FrameMagic is the first byte of every frame header.
	FrameMagic = byte(0xCA)
	// ProtocolVersion is the protocol revision we announce.
	ProtocolVersion = byte(2)
	// FrameHeaderSize is the number of bytes in a frame header.
	FrameHeaderSize = 8
	// FrameMaxSize is the largest buffer size allowed for a full frame.
	FrameMaxSize = 0x40000
	// FrameMaxPayloadSize is the maximum number of bytes in a frame payload.
	FrameMaxPayloadSize = FrameMaxSize - FrameHeaderSize
	// DestroyRequestPayloadSize is the fixed body size of a destroy request:
	// the server channel ID followed by the request ID.
	DestroyRequestPayloadSize = 8
	// InvalidRequestID is never assigned to a request.
	InvalidRequestID = RequestID(0)
	// DefaultWriteTimeout is how long to wait to send
	DefaultWriteTimeout = time.Second * 5
	// DefaultDialTimeout is how long Dial waits for a connection.
	DefaultDialTimeout = time.Second * 10
)

var (
	// DefaultRegistryCapacity is the initial bucket count of a Context request registry.
	DefaultRegistryCapacity = 11
	// DefaultRegistryLoadFactor is the load factor of a Context request registry.
	DefaultRegistryLoadFactor = float32(0.75)
	// DefaultWorkerPoolSize is the number of goroutines used for cascading channel notifications.
	DefaultWorkerPoolSize = 64
	// FrameDataPoolSize is the number of unused FrameData kept for reuse.
	FrameDataPoolSize = 256
)
