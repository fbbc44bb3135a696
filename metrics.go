// Copyright 2018 Johan Lindh. All rights reserved.
// Use of this source code is governed by the MIT license, see the LICENSE file.

package pva

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

func newCounterMetric(namespace, name string) prometheus.Counter {
	return prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      name,
		Help:      fmt.Sprintf("# of times a %s occurred", name),
	})
}

// Metrics collects Context statistics. A nil *Metrics discards everything.
type Metrics struct {
	activeRequests prometheus.Gauge
	registered,
	unregistered,
	destroyEnqueues,
	unknownResponses prometheus.Counter
	hookErrors   *prometheus.CounterVec
	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter
}

// NewMetrics creates the metrics and registers them with registerer.
func NewMetrics(namespace string, registerer prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "# of requests currently registered",
		}),
		registered:       newCounterMetric(namespace, "request_registered"),
		unregistered:     newCounterMetric(namespace, "request_unregistered"),
		destroyEnqueues:  newCounterMetric(namespace, "destroy_request_enqueued"),
		unknownResponses: newCounterMetric(namespace, "unknown_ioid_response"),
		hookErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_hook_errors",
			Help:      "# of response hooks that returned an error",
		}, []string{"hook"}),
		bytesRead: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_read",
			Help:      "# of bytes read from transports",
		}),
		bytesWritten: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bytes_written",
			Help:      "# of bytes written to transports",
		}),
	}
	if registerer != nil {
		for _, c := range []prometheus.Collector{
			m.activeRequests,
			m.registered,
			m.unregistered,
			m.destroyEnqueues,
			m.unknownResponses,
			m.hookErrors,
			m.bytesRead,
			m.bytesWritten,
		} {
			if err := registerer.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) requestRegistered() {
	if m != nil {
		m.registered.Inc()
		m.activeRequests.Inc()
	}
}

func (m *Metrics) requestUnregistered() {
	if m != nil {
		m.unregistered.Inc()
		m.activeRequests.Dec()
	}
}

func (m *Metrics) destroyEnqueued() {
	if m != nil {
		m.destroyEnqueues.Inc()
	}
}

func (m *Metrics) unknownResponse() {
	if m != nil {
		m.unknownResponses.Inc()
	}
}

func (m *Metrics) hookError(hook string) {
	if m != nil {
		m.hookErrors.WithLabelValues(hook).Inc()
	}
}

// AddBytesRead implements StatsCollector.
func (m *Metrics) AddBytesRead(n int64) {
	if m != nil {
		m.bytesRead.Add(float64(n))
	}
}

// AddBytesWritten implements StatsCollector.
func (m *Metrics) AddBytesWritten(n int64) {
	if m != nil {
		m.bytesWritten.Add(float64(n))
	}
}
