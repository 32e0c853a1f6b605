// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package metrics implements Prometheus instrumentation for the
// transform service: update/lookup counters and latency histograms,
// exposed via /metrics for Prometheus scraping.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "framebus"

// ServiceMetrics holds every Prometheus metric the service emits.
// Initialize once via NewServiceMetrics().
type ServiceMetrics struct {
	UpdatesTotal    *prometheus.CounterVec
	LookupsTotal    *prometheus.CounterVec
	DecodeErrors    *prometheus.CounterVec
	LookupDuration  *prometheus.HistogramVec
	ActiveSubscribe prometheus.Gauge
}

// NewServiceMetrics registers and returns a ServiceMetrics against reg.
// Pass prometheus.DefaultRegisterer for the global registry.
func NewServiceMetrics(reg prometheus.Registerer) *ServiceMetrics {
	factory := promauto.With(reg)
	return &ServiceMetrics{
		UpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "updates_total",
			Help:      "Count of buffer.Update calls by outcome (ok, invalid_graph, out_of_order).",
		}, []string{"outcome"}),
		LookupsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Count of lookup requests served by outcome (ok, not_found, past, future).",
		}, []string{"outcome"}),
		DecodeErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Count of wire decode failures by topic.",
		}, []string{"topic"}),
		LookupDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "lookup_duration_seconds",
			Help:      "Latency of lookup_at/lookup_latest resolution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"endpoint"}),
		ActiveSubscribe: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_subscriptions",
			Help:      "Number of currently active transforms/new subscriptions.",
		}),
	}
}
