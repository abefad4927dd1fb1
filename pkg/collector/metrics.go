/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package collector

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchPassDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ybstat_collect_pass_duration_seconds",
			Help:    "Time taken to collect one endpoint kind from all hosts",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60},
		},
		[]string{"kind"},
	)

	fetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ybstat_fetch_duration_seconds",
			Help:    "Time taken by individual endpoint fetches",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"kind"},
	)

	fetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ybstat_fetch_total",
			Help: "Total number of per-host fetch attempts",
		},
		[]string{"kind", "status"}, // ok, unreachable, or synthetic
	)
)
