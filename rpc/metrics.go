// Copyright 2026 The Courier Authors
// SPDX-License-Identifier: Apache-2.0

package rpc

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Reasons a server drops a frame without answering.
const (
	DropDecode = "decode"
	DropEncode = "encode"
	DropWrite  = "write"
)

// ServerMetrics counts server activity on a private registry.
type ServerMetrics struct {
	registry *prometheus.Registry

	Connections    prometheus.Counter
	FramesReceived prometheus.Counter
	FramesDropped  *prometheus.CounterVec
	ResponsesSent  prometheus.Counter
	ReadRetries    prometheus.Counter
}

// NewServerMetrics creates and registers the counters, plus the Go
// runtime and process collectors.
func NewServerMetrics() *ServerMetrics {
	m := &ServerMetrics{
		registry: prometheus.NewRegistry(),
		Connections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "rpc",
			Name:      "connections_total",
			Help:      "Transport connections accepted.",
		}),
		FramesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "rpc",
			Name:      "frames_received_total",
			Help:      "Request frames read from connections.",
		}),
		FramesDropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "rpc",
			Name:      "frames_dropped_total",
			Help:      "Frames dropped without a response, by reason.",
		}, []string{"reason"}),
		ResponsesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "rpc",
			Name:      "responses_sent_total",
			Help:      "Response frames written.",
		}),
		ReadRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "courier",
			Subsystem: "rpc",
			Name:      "read_retries_total",
			Help:      "Transient read failures followed by a retry.",
		}),
	}
	m.registry.MustRegister(
		m.Connections,
		m.FramesReceived,
		m.FramesDropped,
		m.ResponsesSent,
		m.ReadRetries,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Registry exposes the underlying registry for tests and for callers
// that want to gather directly.
func (m *ServerMetrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *ServerMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
