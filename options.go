// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Option configures a Context.
type Option func(opts *options)

type options struct {
	Logger             *zap.Logger           // defaults to a no-op logger
	Registerer         prometheus.Registerer // metrics are not registered if nil
	Namespace          string                // metrics namespace
	WorkerPoolSize     int                   // goroutines for cascading channel notifications
	RegistryCapacity   int                   // initial request registry bucket count
	RegistryLoadFactor float32               // request registry load factor
	TraceSink          TraceSink             // receives every inbound frame if set
	DialTimeout        time.Duration
	WriteTimeout       time.Duration
}

func defaultOptions() *options {
	return &options{
		Logger:             zap.NewNop(),
		Namespace:          "pva",
		WorkerPoolSize:     DefaultWorkerPoolSize,
		RegistryCapacity:   DefaultRegistryCapacity,
		RegistryLoadFactor: DefaultRegistryLoadFactor,
		DialTimeout:        DefaultDialTimeout,
		WriteTimeout:       DefaultWriteTimeout,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.Logger = logger
	}
}

// WithMetrics registers the Context metrics with registerer under namespace.
func WithMetrics(namespace string, registerer prometheus.Registerer) Option {
	return func(opts *options) {
		opts.Namespace = namespace
		opts.Registerer = registerer
	}
}

// WithWorkerPoolSize sets the number of goroutines used to notify
// requests when a channel disconnects or is destroyed.
func WithWorkerPoolSize(n int) Option {
	return func(opts *options) {
		opts.WorkerPoolSize = n
	}
}

// WithRegistrySize sets the initial capacity and load factor of the request registry.
func WithRegistrySize(capacity int, loadFactor float32) Option {
	return func(opts *options) {
		opts.RegistryCapacity = capacity
		opts.RegistryLoadFactor = loadFactor
	}
}

// WithTraceSink enables tracing of inbound frames.
func WithTraceSink(sink TraceSink) Option {
	return func(opts *options) {
		opts.TraceSink = sink
	}
}

// WithDialTimeout sets how long Dial and DialWebSocket wait for a connection.
func WithDialTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.DialTimeout = d
	}
}

// WithWriteTimeout sets the write deadline used on network transports.
// Zero disables write deadlines.
func WithWriteTimeout(d time.Duration) Option {
	return func(opts *options) {
		opts.WriteTimeout = d
	}
}
