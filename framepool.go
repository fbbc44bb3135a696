// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

// Provides a buffer of allocated but unused FrameData.
var frameDataPool chan FrameData

func init() {
	frameDataPool = make(chan FrameData, FrameDataPoolSize)
}

// FrameDataAlloc allocates an empty FrameData, without a FrameHeader.
func FrameDataAlloc() FrameData {
	select {
	case fd := <-frameDataPool:
		fd.Clear()
		return fd
	default:
		return NewFrameData()
	}
}

// FrameDataAllocCommand allocates a FrameData with a FrameHeader for the given Command.
func FrameDataAllocCommand(cmd Command) FrameData {
	select {
	case fd := <-frameDataPool:
		fd.WriteHeader(cmd)
		return fd
	default:
		return NewFrameDataCommand(cmd)
	}
}

// FrameDataFree releases a FrameData. Buffers that grew
// beyond the initial capacity are left to the garbage collector.
func FrameDataFree(fd FrameData) {
	if fd != nil && cap(fd) <= frameDataInitialCap {
		select {
		case frameDataPool <- fd:
		default:
		}
	}
}
