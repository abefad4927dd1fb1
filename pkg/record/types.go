/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package record defines the stored record model shared by the collector,
// snapshot store, diff engine, and report renderer.
//
// Two record shapes exist. Metric records carry rate-normalized counter
// and gauge samples. Row records carry key-identified structured data
// (servers, variables, versions, entities). Both share the same envelope:
// the source hostname_port, the capture timestamp of the pass, and an
// explicit synthetic flag marking records substituted for unreachable or
// unparseable hosts — so a consumer can always distinguish "value is
// zero" from "no data available".
package record

import (
	"fmt"
	"sort"
	"time"

	"github.com/ybstat/ybstat/pkg/endpoint"
)

// Metric is one stored counter or gauge sample from one host.
type Metric struct {
	HostnamePort string    `json:"hostname_port" yaml:"hostname_port"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Synthetic    bool      `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`

	// MetricType is the entity category reported by the endpoint
	// (e.g. server, table, tablet). EntityID identifies the entity
	// within that category; empty for host-level aggregates.
	MetricType string `json:"metric_type,omitempty" yaml:"metric_type,omitempty"`
	EntityID   string `json:"entity_id,omitempty" yaml:"entity_id,omitempty"`

	Name  string  `json:"name" yaml:"name"`
	Value float64 `json:"value" yaml:"value"`

	// Gauge marks a metric that may legitimately decrease. Counters are
	// monotonic except for resets.
	Gauge bool `json:"gauge,omitempty" yaml:"gauge,omitempty"`
}

// Identity returns the diff identity of the metric within one host,
// including the entity context used by detail mode.
func (m Metric) Identity() string {
	return m.MetricType + "|" + m.EntityID + "|" + m.Name
}

// AggregateIdentity returns the diff identity with the entity context
// collapsed, used when per-entity detail is not requested.
func (m Metric) AggregateIdentity() string {
	return m.MetricType + "||" + m.Name
}

// Row is one stored structured record from one host, flattened to the
// kind's row schema.
type Row struct {
	HostnamePort string    `json:"hostname_port" yaml:"hostname_port"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
	Synthetic    bool      `json:"synthetic,omitempty" yaml:"synthetic,omitempty"`

	// Key is the kind-specific natural key of the row within one host.
	// Empty for kinds that yield a single row per host.
	Key string `json:"key,omitempty" yaml:"key,omitempty"`

	Fields map[string]string `json:"fields" yaml:"fields"`
}

// Identity returns the full diff identity of the row: host plus natural key.
func (r Row) Identity() string {
	return r.HostnamePort + "|" + r.Key
}

// Set holds one kind's stored records for one collection pass. Exactly
// one of Metrics or Rows is populated, matching the kind's shape.
type Set struct {
	Kind       endpoint.Kind `json:"kind" yaml:"kind"`
	CapturedAt time.Time     `json:"captured_at" yaml:"captured_at"`

	Metrics []Metric `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Rows    []Row    `json:"rows,omitempty" yaml:"rows,omitempty"`
}

// NewSet creates an empty Set for the kind, stamped with the shared
// capture timestamp of the pass.
func NewSet(kind endpoint.Kind, capturedAt time.Time) *Set {
	return &Set{Kind: kind, CapturedAt: capturedAt}
}

// Len returns the number of stored records in the set.
func (s *Set) Len() int {
	if s.Kind.IsMetric() {
		return len(s.Metrics)
	}
	return len(s.Rows)
}

// AddMetrics appends metric records, keeping at most one record per
// (host, identity) pair. Later records win, matching the unordered
// arrival of per-host fetches within a pass.
func (s *Set) AddMetrics(ms ...Metric) {
	s.Metrics = append(s.Metrics, ms...)
}

// AddRows appends row records.
func (s *Set) AddRows(rs ...Row) {
	s.Rows = append(s.Rows, rs...)
}

// Dedupe drops all but the last record for each (host, identity) pair,
// enforcing the at-most-one-record-per-key invariant of a snapshot.
func (s *Set) Dedupe() {
	if s.Kind.IsMetric() {
		seen := make(map[string]int, len(s.Metrics))
		out := s.Metrics[:0]
		for _, m := range s.Metrics {
			id := m.HostnamePort + "|" + m.Identity()
			if i, ok := seen[id]; ok {
				out[i] = m
				continue
			}
			seen[id] = len(out)
			out = append(out, m)
		}
		s.Metrics = out
		return
	}
	seen := make(map[string]int, len(s.Rows))
	out := s.Rows[:0]
	for _, r := range s.Rows {
		if i, ok := seen[r.Identity()]; ok {
			out[i] = r
			continue
		}
		seen[r.Identity()] = len(out)
		out = append(out, r)
	}
	s.Rows = out
}

// FieldNames returns the row schema of the set: the kind's fixed schema
// when one exists, otherwise the sorted union of field names across all
// rows (dynamic kinds).
func (s *Set) FieldNames() []string {
	if spec := s.Kind.Spec(); spec.Fields != nil {
		return spec.Fields
	}
	union := make(map[string]struct{})
	for _, r := range s.Rows {
		for name := range r.Fields {
			union[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(union))
	for name := range union {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SyntheticRow builds the default empty-valued row substituted when a
// host is unreachable or its payload cannot be parsed. Every schema
// field is present and blank.
func SyntheticRow(kind endpoint.Kind, hostPort string, ts time.Time) Row {
	fields := make(map[string]string, len(kind.Spec().Fields))
	for _, name := range kind.Spec().Fields {
		fields[name] = ""
	}
	return Row{
		HostnamePort: hostPort,
		Timestamp:    ts,
		Synthetic:    true,
		Fields:       fields,
	}
}

// SyntheticMetric builds the default metric record substituted when a
// metric-shaped host fetch fails.
func SyntheticMetric(hostPort string, ts time.Time) Metric {
	return Metric{
		HostnamePort: hostPort,
		Timestamp:    ts,
		Synthetic:    true,
	}
}

// Validate checks internal consistency of the set against its kind's shape.
func (s *Set) Validate() error {
	if s.Kind.IsMetric() && len(s.Rows) > 0 {
		return fmt.Errorf("metric kind %s carries structured rows", s.Kind)
	}
	if !s.Kind.IsMetric() && len(s.Metrics) > 0 {
		return fmt.Errorf("structured kind %s carries metric records", s.Kind)
	}
	return nil
}
