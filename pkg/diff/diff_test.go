/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package diff

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ybstat/ybstat/pkg/endpoint"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/record"
)

var (
	t0 = time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	t1 = t0.Add(60 * time.Second)
)

func metricSet(ts time.Time, ms ...record.Metric) *record.Set {
	s := record.NewSet(endpoint.KindMetrics, ts)
	for i := range ms {
		ms[i].HostnamePort = "n1:9000"
		ms[i].Timestamp = ts
		if ms[i].MetricType == "" {
			ms[i].MetricType = "server"
		}
	}
	s.AddMetrics(ms...)
	return s
}

func rowSet(ts time.Time, rs ...record.Row) *record.Set {
	s := record.NewSet(endpoint.KindVars, ts)
	for i := range rs {
		rs[i].HostnamePort = "n1:7000"
		rs[i].Timestamp = ts
	}
	s.AddRows(rs...)
	return s
}

func TestMetricsRate(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 0})
	end := metricSet(t1, record.Metric{Name: "rows_inserted", Value: 120})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)

	d := deltas[0]
	assert.Equal(t, 120.0, d.Delta)
	assert.True(t, d.RateValid)
	assert.Equal(t, 2.0, d.Rate)
	assert.False(t, d.Reset)
}

func TestMetricsSelfDiffIsEmpty(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 500})
	end := metricSet(t1, record.Metric{Name: "rows_inserted", Value: 500})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestMetricsIncludeZero(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 500})
	end := metricSet(t1, record.Metric{Name: "rows_inserted", Value: 500})

	deltas, err := Metrics(begin, end, Options{IncludeZero: true})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 0.0, deltas[0].Delta)
}

func TestMetricsCounterReset(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 100})
	end := metricSet(t1, record.Metric{Name: "rows_inserted", Value: 10})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)

	d := deltas[0]
	assert.True(t, d.Reset)
	assert.Equal(t, 10.0, d.Delta)
	assert.GreaterOrEqual(t, d.Delta, 0.0)
}

func TestMetricsAbsentInBeginReadsAsZero(t *testing.T) {
	begin := metricSet(t0)
	end := metricSet(t1, record.Metric{Name: "compactions", Value: 7})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 7.0, deltas[0].Delta)
	assert.False(t, deltas[0].Reset)
}

func TestMetricsGaugesExcludedByDefault(t *testing.T) {
	begin := metricSet(t0,
		record.Metric{Name: "rows_inserted", Value: 0},
		record.Metric{Name: "mem_tracker_bytes", Value: 100, Gauge: true})
	end := metricSet(t1,
		record.Metric{Name: "rows_inserted", Value: 5},
		record.Metric{Name: "mem_tracker_bytes", Value: 60, Gauge: true})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, "rows_inserted", deltas[0].Name)

	deltas, err = Metrics(begin, end, Options{GaugesEnabled: true})
	require.NoError(t, err)
	require.Len(t, deltas, 2)
}

func TestMetricsGaugeNegativeDeltaPassesThrough(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "mem_tracker_bytes", Value: 100, Gauge: true})
	end := metricSet(t1, record.Metric{Name: "mem_tracker_bytes", Value: 60, Gauge: true})

	deltas, err := Metrics(begin, end, Options{GaugesEnabled: true})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, -40.0, deltas[0].Delta)
	assert.False(t, deltas[0].Reset)
}

func TestMetricsSwapNegatesGaugeDeltas(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "mem_tracker_bytes", Value: 100, Gauge: true})
	end := metricSet(t1, record.Metric{Name: "mem_tracker_bytes", Value: 160, Gauge: true})

	forward, err := Metrics(begin, end, Options{GaugesEnabled: true})
	require.NoError(t, err)
	backward, err := Metrics(end, begin, Options{GaugesEnabled: true})
	require.NoError(t, err)

	require.Len(t, forward, 1)
	require.Len(t, backward, 1)
	assert.Equal(t, forward[0].Delta, -backward[0].Delta)
}

func TestMetricsAggregateSumsAcrossEntities(t *testing.T) {
	begin := metricSet(t0,
		record.Metric{MetricType: "tablet", EntityID: "t1", Name: "rows_inserted", Value: 10},
		record.Metric{MetricType: "tablet", EntityID: "t2", Name: "rows_inserted", Value: 20})
	end := metricSet(t1,
		record.Metric{MetricType: "tablet", EntityID: "t1", Name: "rows_inserted", Value: 15},
		record.Metric{MetricType: "tablet", EntityID: "t2", Name: "rows_inserted", Value: 40})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.Equal(t, 25.0, deltas[0].Delta)
	assert.Equal(t, "", deltas[0].EntityID)

	deltas, err = Metrics(begin, end, Options{Details: true})
	require.NoError(t, err)
	require.Len(t, deltas, 2)
	assert.Equal(t, "t1", deltas[0].EntityID)
	assert.Equal(t, 5.0, deltas[0].Delta)
	assert.Equal(t, "t2", deltas[1].EntityID)
	assert.Equal(t, 20.0, deltas[1].Delta)
}

func TestMetricsZeroElapsedSuppressesRate(t *testing.T) {
	begin := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 0})
	end := metricSet(t0, record.Metric{Name: "rows_inserted", Value: 10})

	deltas, err := Metrics(begin, end, Options{})
	require.NoError(t, err)
	require.Len(t, deltas, 1)
	assert.False(t, deltas[0].RateValid)
}

func TestMetricsSyntheticRecordsIgnored(t *testing.T) {
	begin := metricSet(t0)
	begin.AddMetrics(record.SyntheticMetric("n2:9000", t0))
	end := metricSet(t1)
	end.AddMetrics(record.SyntheticMetric("n2:9000", t1))

	deltas, err := Metrics(begin, end, Options{IncludeZero: true})
	require.NoError(t, err)
	assert.Empty(t, deltas)
}

func TestMetricsKindMismatch(t *testing.T) {
	begin := record.NewSet(endpoint.KindMetrics, t0)
	end := record.NewSet(endpoint.KindNodeExporter, t1)

	_, err := Metrics(begin, end, Options{})
	require.Error(t, err)
	assert.True(t, yberrors.HasCode(err, yberrors.ErrCodeInvalidRequest))
}

func TestRowsAddedRemovedChanged(t *testing.T) {
	begin := rowSet(t0,
		record.Row{Key: "log_dir", Fields: map[string]string{"name": "log_dir", "value": "/a"}},
		record.Row{Key: "max_clock_skew_usec", Fields: map[string]string{"name": "max_clock_skew_usec", "value": "500000"}},
		record.Row{Key: "stable", Fields: map[string]string{"name": "stable", "value": "1"}})
	end := rowSet(t1,
		record.Row{Key: "log_dir", Fields: map[string]string{"name": "log_dir", "value": "/b"}},
		record.Row{Key: "new_flag", Fields: map[string]string{"name": "new_flag", "value": "true"}},
		record.Row{Key: "stable", Fields: map[string]string{"name": "stable", "value": "1"}})

	changes, err := Rows(begin, end)
	require.NoError(t, err)
	require.Len(t, changes, 3)

	byKey := map[string]RowChange{}
	for _, c := range changes {
		byKey[c.Key] = c
	}

	assert.Equal(t, ChangeChanged, byKey["log_dir"].Change)
	assert.Equal(t, "/a", byKey["log_dir"].Before["value"])
	assert.Equal(t, "/b", byKey["log_dir"].After["value"])

	assert.Equal(t, ChangeAdded, byKey["new_flag"].Change)
	assert.Nil(t, byKey["new_flag"].Before)

	assert.Equal(t, ChangeRemoved, byKey["max_clock_skew_usec"].Change)
	assert.Nil(t, byKey["max_clock_skew_usec"].After)
}

func TestRowsSwapSwapsAddedAndRemoved(t *testing.T) {
	begin := rowSet(t0, record.Row{Key: "a", Fields: map[string]string{"name": "a"}})
	end := rowSet(t1, record.Row{Key: "b", Fields: map[string]string{"name": "b"}})

	forward, err := Rows(begin, end)
	require.NoError(t, err)
	backward, err := Rows(end, begin)
	require.NoError(t, err)

	require.Len(t, forward, 2)
	require.Len(t, backward, 2)
	assert.Equal(t, ChangeAdded, forward[1].Change)
	assert.Equal(t, ChangeRemoved, backward[1].Change)
}

func TestRowsSelfDiffIsEmpty(t *testing.T) {
	rows := []record.Row{
		{Key: "a", Fields: map[string]string{"name": "a", "value": "1"}},
		{Key: "b", Fields: map[string]string{"name": "b", "value": "2"}},
	}
	begin := rowSet(t0, rows...)
	end := rowSet(t1, rows...)

	changes, err := Rows(begin, end)
	require.NoError(t, err)
	assert.Empty(t, changes)
}

func TestValidateOrder(t *testing.T) {
	assert.NoError(t, ValidateOrder(1, 2))
	assert.True(t, yberrors.HasCode(ValidateOrder(2, 2), yberrors.ErrCodeInvalidRequest))
	assert.True(t, yberrors.HasCode(ValidateOrder(3, 1), yberrors.ErrCodeInvalidRequest))
}

func TestValidateRange(t *testing.T) {
	available := []int{1, 2, 5}

	tests := []struct {
		name     string
		begin    int
		end      int
		wantCode yberrors.ErrorCode
	}{
		{"valid", 1, 5, ""},
		{"equal", 2, 2, yberrors.ErrCodeInvalidRequest},
		{"inverted", 5, 1, yberrors.ErrCodeInvalidRequest},
		{"missing begin", 3, 5, yberrors.ErrCodeNotFound},
		{"missing end", 1, 4, yberrors.ErrCodeNotFound},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateRange(tc.begin, tc.end, available)
			if tc.wantCode == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, yberrors.HasCode(err, tc.wantCode))
		})
	}
}
