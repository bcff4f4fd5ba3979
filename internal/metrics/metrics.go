// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package metrics exposes engine activity as Prometheus metrics.
//
// A nil *Collector is valid and records nothing, so the engine can always
// call it.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "blockflow"

// Run and step status label values.
const (
	StatusCompleted = "completed"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusSucceeded = "succeeded"
	StatusTolerated = "tolerated"
)

// Collector holds the engine metrics.
type Collector struct {
	runs        *prometheus.CounterVec
	inFlight    prometheus.Gauge
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// New creates the engine metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_total",
			Help:      "Workflow runs by final status.",
		}, []string{"status"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "runs_in_flight",
			Help:      "Workflow runs currently executing.",
		}),
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "step_invocations_total",
			Help:      "Block invocations by block type and outcome.",
		}, []string{"block_type", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "engine",
			Name:      "step_duration_seconds",
			Help:      "Duration of block invocations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"block_type"}),
	}
	for _, col := range []prometheus.Collector{c.runs, c.inFlight, c.invocations, c.duration} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RunStarted records a run entering the Running state.
func (c *Collector) RunStarted() {
	if c == nil {
		return
	}
	c.inFlight.Inc()
}

// RunFinished records the final status of a run.
func (c *Collector) RunFinished(status string) {
	if c == nil {
		return
	}
	c.inFlight.Dec()
	c.runs.WithLabelValues(status).Inc()
}

// StepInvoked records one block invocation.
func (c *Collector) StepInvoked(blockType, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.invocations.WithLabelValues(blockType, status).Inc()
	c.duration.WithLabelValues(blockType).Observe(d.Seconds())
}
