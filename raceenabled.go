// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

//go:build race
// +build race

package pva

func init() {
	// race detector can only handle max of 8192 goroutines.
	// a large cascade pool won't improve testing, but it will
	// dump a lot of irrelevant goroutine data on panics and timeouts.
	DefaultWorkerPoolSize = 8
}
