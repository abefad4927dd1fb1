/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package diff derives change records from two captures of the same
// endpoint kind. Results are computed on demand and never persisted.
package diff

import (
	"fmt"
	"sort"
	"time"

	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/record"
)

// Options controls which metric deltas survive into the result.
type Options struct {
	// GaugesEnabled includes gauge metrics, which are excluded by
	// default because their deltas are rarely meaningful.
	GaugesEnabled bool

	// Details keeps per-entity granularity. When false, values are
	// summed across entities per hostname and metric name before
	// differencing.
	Details bool

	// IncludeZero keeps rows whose delta is exactly zero.
	IncludeZero bool
}

// MetricDelta is one differenced metric.
type MetricDelta struct {
	HostnamePort string  `json:"hostname_port" yaml:"hostname_port"`
	MetricType   string  `json:"metric_type,omitempty" yaml:"metric_type,omitempty"`
	EntityID     string  `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`
	Name         string  `json:"name" yaml:"name"`
	Begin        float64 `json:"begin" yaml:"begin"`
	End          float64 `json:"end" yaml:"end"`
	Delta        float64 `json:"delta" yaml:"delta"`
	// Rate is Delta per elapsed second. It is only meaningful when
	// RateValid is set; a non-positive capture interval suppresses it.
	Rate      float64 `json:"rate,omitempty" yaml:"rate,omitempty"`
	RateValid bool    `json:"rate_valid,omitempty" yaml:"rate_valid,omitempty"`
	// Reset marks a counter observed lower at the end than at the
	// begin: the process restarted in between, and Delta carries the
	// end value rather than a negative difference.
	Reset bool `json:"reset,omitempty" yaml:"reset,omitempty"`
	Gauge bool `json:"gauge,omitempty" yaml:"gauge,omitempty"`
}

// Change classifies a structured record difference.
type Change string

const (
	ChangeAdded   Change = "added"
	ChangeRemoved Change = "removed"
	ChangeChanged Change = "changed"
)

// RowChange is one structured record difference. Before is nil for
// added records, After is nil for removed ones.
type RowChange struct {
	HostnamePort string            `json:"hostname_port" yaml:"hostname_port"`
	Key          string            `json:"key,omitempty" yaml:"key,omitempty"`
	Change       Change            `json:"change" yaml:"change"`
	Before       map[string]string `json:"before,omitempty" yaml:"before,omitempty"`
	After        map[string]string `json:"after,omitempty" yaml:"after,omitempty"`
}

// ValidateOrder rejects a begin number that does not strictly precede
// the end number. It needs no catalog, so callers run it before any
// file I/O.
func ValidateOrder(begin, end int) error {
	if begin >= end {
		return yberrors.New(yberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("begin snapshot %d must be lower than end snapshot %d", begin, end))
	}
	return nil
}

// ValidateRange checks a snapshot number pair against the catalog.
func ValidateRange(begin, end int, available []int) error {
	if err := ValidateOrder(begin, end); err != nil {
		return err
	}
	have := make(map[int]bool, len(available))
	for _, n := range available {
		have[n] = true
	}
	for _, n := range []int{begin, end} {
		if !have[n] {
			return yberrors.New(yberrors.ErrCodeNotFound,
				fmt.Sprintf("snapshot %d not found in catalog", n))
		}
	}
	return nil
}

// Metrics differences two metric-shaped sets of the same kind.
func Metrics(begin, end *record.Set, opts Options) ([]MetricDelta, error) {
	if err := compatible(begin, end); err != nil {
		return nil, err
	}
	elapsed := end.CapturedAt.Sub(begin.CapturedAt)

	beginVals := accumulate(begin.Metrics, opts.Details)
	endVals := accumulate(end.Metrics, opts.Details)
	endMeta := make(map[string]record.Metric, len(end.Metrics))
	for _, m := range end.Metrics {
		if m.Name == "" {
			continue
		}
		endMeta[metricKey(m, opts.Details)] = m
	}

	keys := make([]string, 0, len(endVals))
	for k := range endVals {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var out []MetricDelta
	for _, key := range keys {
		meta := endMeta[key]
		if meta.Gauge && !opts.GaugesEnabled {
			continue
		}

		endVal := endVals[key]
		beginVal := beginVals[key] // absent in begin reads as zero

		d := MetricDelta{
			HostnamePort: meta.HostnamePort,
			MetricType:   meta.MetricType,
			EntityID:     entityID(meta, opts.Details),
			Name:         meta.Name,
			Begin:        beginVal,
			End:          endVal,
			Delta:        endVal - beginVal,
			Gauge:        meta.Gauge,
		}
		if !meta.Gauge && d.Delta < 0 {
			// Counter went backwards: the process restarted and the
			// end value is the whole observed increase.
			d.Reset = true
			d.Delta = endVal
		}
		if d.Delta == 0 && !opts.IncludeZero {
			continue
		}
		if elapsed > 0 {
			d.Rate = d.Delta / elapsed.Seconds()
			d.RateValid = true
		}
		out = append(out, d)
	}
	return out, nil
}

// Rows differences two structured sets of the same kind.
func Rows(begin, end *record.Set) ([]RowChange, error) {
	if err := compatible(begin, end); err != nil {
		return nil, err
	}

	beginRows := make(map[string]record.Row, len(begin.Rows))
	for _, r := range begin.Rows {
		beginRows[r.Identity()] = r
	}

	var out []RowChange
	seen := make(map[string]bool, len(end.Rows))
	for _, r := range end.Rows {
		seen[r.Identity()] = true
		before, exists := beginRows[r.Identity()]
		switch {
		case !exists:
			out = append(out, RowChange{
				HostnamePort: r.HostnamePort,
				Key:          r.Key,
				Change:       ChangeAdded,
				After:        r.Fields,
			})
		case !equalFields(before.Fields, r.Fields):
			out = append(out, RowChange{
				HostnamePort: r.HostnamePort,
				Key:          r.Key,
				Change:       ChangeChanged,
				Before:       before.Fields,
				After:        r.Fields,
			})
		}
	}
	for _, r := range begin.Rows {
		if !seen[r.Identity()] {
			out = append(out, RowChange{
				HostnamePort: r.HostnamePort,
				Key:          r.Key,
				Change:       ChangeRemoved,
				Before:       r.Fields,
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].HostnamePort != out[j].HostnamePort {
			return out[i].HostnamePort < out[j].HostnamePort
		}
		return out[i].Key < out[j].Key
	})
	return out, nil
}

// FilterMetrics returns the deltas passing the display filters, in
// input order.
func FilterMetrics(ds []MetricDelta, f record.Filters) []MetricDelta {
	out := make([]MetricDelta, 0, len(ds))
	for _, d := range ds {
		if f.MatchMetric(record.Metric{
			HostnamePort: d.HostnamePort,
			MetricType:   d.MetricType,
			EntityID:     d.EntityID,
			Name:         d.Name,
		}) {
			out = append(out, d)
		}
	}
	return out
}

// FilterRows returns the changes passing the display filters, in input
// order. Only the hostname pattern applies to structured records.
func FilterRows(cs []RowChange, f record.Filters) []RowChange {
	out := make([]RowChange, 0, len(cs))
	for _, c := range cs {
		if f.MatchRow(record.Row{HostnamePort: c.HostnamePort}) {
			out = append(out, c)
		}
	}
	return out
}

// Elapsed reports the capture interval between two sets.
func Elapsed(begin, end *record.Set) time.Duration {
	return end.CapturedAt.Sub(begin.CapturedAt)
}

func compatible(begin, end *record.Set) error {
	if begin == nil || end == nil {
		return yberrors.New(yberrors.ErrCodeInvalidRequest, "both captures are required")
	}
	if begin.Kind != end.Kind {
		return yberrors.New(yberrors.ErrCodeInvalidRequest,
			fmt.Sprintf("cannot compare different kinds: %q vs %q", begin.Kind, end.Kind))
	}
	return nil
}

// accumulate folds metrics into an identity-keyed value map. Synthetic
// placeholders carry no name and are dropped here.
func accumulate(ms []record.Metric, details bool) map[string]float64 {
	out := make(map[string]float64, len(ms))
	for _, m := range ms {
		if m.Name == "" {
			continue
		}
		out[metricKey(m, details)] += m.Value
	}
	return out
}

func metricKey(m record.Metric, details bool) string {
	if details {
		return m.HostnamePort + "|" + m.Identity()
	}
	return m.HostnamePort + "|" + m.AggregateIdentity()
}

func entityID(m record.Metric, details bool) string {
	if details {
		return m.EntityID
	}
	return ""
}

func equalFields(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		if b[k] != v {
			return false
		}
	}
	return true
}
