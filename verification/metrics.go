// Copyright (C) 2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package verification

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	metricsNamespace = "blsct"
	subsystem        = "verification"
)

var (
	txAccepted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "tx_accepted_total",
			Help:      "Total number of transactions that passed verification",
		},
	)

	txRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "tx_rejected_total",
			Help:      "Total number of transactions rejected, by reason",
		},
		[]string{"reason"},
	)

	// Batch sizes
	signaturePairs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "signature_pairs",
			Help:      "Number of public key and message pairs checked per transaction",
			Buckets:   []float64{2, 4, 8, 16, 32, 64, 128, 256},
		},
	)

	rangeProofs = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "range_proofs",
			Help:      "Number of range proofs batch verified per transaction",
			Buckets:   []float64{1, 2, 4, 8, 16, 32, 64},
		},
	)

	verifyDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: subsystem,
			Name:      "verify_duration_seconds",
			Help:      "Time taken to verify a transaction",
			Buckets:   prometheus.DefBuckets,
		},
	)
)
