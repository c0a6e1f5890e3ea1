// Copyright (c) 2025 Jeremy Hahn
// Copyright (c) 2025 Automate The Things, LLC
//
// This file is part of go-pqsig.
//
// go-pqsig is dual-licensed:
//
// 1. GNU Affero General Public License v3.0 (AGPL-3.0)
//    See LICENSE file or visit https://www.gnu.org/licenses/agpl-3.0.html
//
// 2. Commercial License
//    Contact licensing@automatethethings.com for commercial licensing options.

// Package metrics provides Prometheus instrumentation for go-pqsig.
// It exposes operation counters, latency histograms, error counters and
// gauges tracking live key contexts and registered algorithms.
package metrics

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	// Namespace is the Prometheus namespace for all go-pqsig metrics
	Namespace = "pqsig"

	// Label names
	LabelOperation = "operation"
	LabelAlgorithm = "algorithm"
	LabelStatus    = "status"
	LabelErrorType = "error_type"

	// Status values
	StatusSuccess = "success"
	StatusError   = "error"

	// Operation names
	OpKeygen        = "keygen"
	OpSign          = "sign"
	OpVerify        = "verify"
	OpEncodePrivate = "encode_private"
	OpEncodePublic  = "encode_public"
	OpDecodePrivate = "decode_private"
	OpDecodePublic  = "decode_public"
)

var (
	// OperationsTotal counts key operations by type, algorithm and status.
	OperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "operations_total",
			Help:      "Total number of key operations by type, algorithm, and status",
		},
		[]string{LabelOperation, LabelAlgorithm, LabelStatus},
	)

	// OperationDuration tracks operation latency in seconds. Post-quantum
	// signing can be slow (Picnic signatures run to tens of milliseconds),
	// so the buckets reach further than for classical schemes.
	OperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: Namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of key operations in seconds",
			Buckets:   []float64{.0001, .0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{LabelOperation, LabelAlgorithm},
	)

	// ErrorsTotal counts failures by operation, algorithm and error type.
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: Namespace,
			Name:      "errors_total",
			Help:      "Total number of errors by operation, algorithm, and error type",
		},
		[]string{LabelOperation, LabelAlgorithm, LabelErrorType},
	)

	// KeyContextsLive is the number of key contexts not yet released.
	KeyContextsLive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "key_contexts_live",
			Help:      "Number of key contexts with a non-zero reference count",
		},
		[]string{LabelAlgorithm},
	)

	// AlgorithmsRegistered is the size of the default algorithm registry.
	AlgorithmsRegistered = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: Namespace,
			Name:      "algorithms_registered",
			Help:      "Number of algorithms in the registry",
		},
	)

	enabled atomic.Bool
)

func init() {
	enabled.Store(true)
}

// RecordOperation records a key operation with its duration and status.
//
// Example:
//
//	start := time.Now()
//	n, err := pkey.Sign(ctx, sig, msg)
//	status := metrics.StatusSuccess
//	if err != nil {
//	    status = metrics.StatusError
//	}
//	metrics.RecordOperation(metrics.OpSign, "ml-dsa-44", status, time.Since(start).Seconds())
func RecordOperation(operation, algorithm, status string, duration float64) {
	if !enabled.Load() {
		return
	}
	OperationsTotal.WithLabelValues(operation, algorithm, status).Inc()
	OperationDuration.WithLabelValues(operation, algorithm).Observe(duration)
}

// RecordError records a failure. errorType should be a short stable
// identifier such as "length_mismatch".
func RecordError(operation, algorithm, errorType string) {
	if !enabled.Load() {
		return
	}
	ErrorsTotal.WithLabelValues(operation, algorithm, errorType).Inc()
}

// KeyContextOpened increments the live key context gauge and reports
// whether it did. The caller passes the result to KeyContextFreed so the
// gauge stays balanced when collection is toggled in between.
func KeyContextOpened(algorithm string) bool {
	if !enabled.Load() {
		return false
	}
	KeyContextsLive.WithLabelValues(algorithm).Inc()
	return true
}

// KeyContextFreed decrements the live key context gauge if the matching
// KeyContextOpened counted the context
func KeyContextFreed(algorithm string, counted bool) {
	if !counted {
		return
	}
	KeyContextsLive.WithLabelValues(algorithm).Dec()
}

// SetAlgorithmsRegistered sets the registered algorithm gauge
func SetAlgorithmsRegistered(n int) {
	if !enabled.Load() {
		return
	}
	AlgorithmsRegistered.Set(float64(n))
}

// Enable enables metrics collection.
func Enable() {
	enabled.Store(true)
}

// Disable disables metrics collection.
func Disable() {
	enabled.Store(false)
}

// IsEnabled returns whether metrics collection is currently enabled.
func IsEnabled() bool {
	return enabled.Load()
}
