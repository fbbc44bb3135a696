// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

//go:build race
// +build race

package pva

// sanity check the configuration
func init() {
	if FrameHeaderSize != 8 {
		panic("FrameHeaderSize != 8")
	}
	if FrameMaxSize < FrameHeaderSize+DestroyRequestPayloadSize {
		panic("FrameMaxSize < FrameHeaderSize+DestroyRequestPayloadSize")
	}
	if DefaultRegistryCapacity < 1 {
		panic("DefaultRegistryCapacity < 1")
	}
	if DefaultRegistryLoadFactor <= 0 || DefaultRegistryLoadFactor > 1 {
		panic("DefaultRegistryLoadFactor out of range")
	}
	if DefaultWorkerPoolSize < 1 {
		panic("DefaultWorkerPoolSize < 1")
	}
	if FrameDataPoolSize < 0 {
		panic("FrameDataPoolSize < 0")
	}
}
