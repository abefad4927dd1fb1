/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package snapshotter

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	snapshotDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ybstat_snapshot_duration_seconds",
			Help:    "Time taken to capture a complete snapshot",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	snapshotTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ybstat_snapshot_total",
			Help: "Total number of snapshot capture attempts",
		},
		[]string{"status"}, // success or error
	)

	snapshotKindDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ybstat_snapshot_kind_duration_seconds",
			Help:    "Time taken to collect and store individual endpoint kinds",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30},
		},
		[]string{"kind"},
	)

	snapshotRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ybstat_snapshot_records",
			Help: "Number of records in the last captured snapshot",
		},
	)
)
