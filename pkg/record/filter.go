/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package record

import "regexp"

// Filters narrows displayed output. Filtering never affects what is
// fetched or stored; it is applied only when records or diff results are
// rendered. A nil pattern matches everything.
type Filters struct {
	// StatName filters metric names (metric kinds only).
	StatName *regexp.Regexp

	// TableName filters the entity identity of per-table and per-tablet
	// metrics; only meaningful together with detail mode.
	TableName *regexp.Regexp

	// Hostname filters the hostname_port envelope field of both shapes.
	Hostname *regexp.Regexp
}

// MatchMetric reports whether the metric passes every configured pattern.
func (f Filters) MatchMetric(m Metric) bool {
	if f.Hostname != nil && !f.Hostname.MatchString(m.HostnamePort) {
		return false
	}
	if f.StatName != nil && !f.StatName.MatchString(m.Name) {
		return false
	}
	if f.TableName != nil && !f.TableName.MatchString(m.EntityID) {
		return false
	}
	return true
}

// MatchRow reports whether the row passes the hostname pattern.
func (f Filters) MatchRow(r Row) bool {
	return f.Hostname == nil || f.Hostname.MatchString(r.HostnamePort)
}

// Metrics returns the subset of ms passing the filters, in input order.
func (f Filters) Metrics(ms []Metric) []Metric {
	out := make([]Metric, 0, len(ms))
	for _, m := range ms {
		if f.MatchMetric(m) {
			out = append(out, m)
		}
	}
	return out
}

// Rows returns the subset of rs passing the filters, in input order.
func (f Filters) Rows(rs []Row) []Row {
	out := make([]Row, 0, len(rs))
	for _, r := range rs {
		if f.MatchRow(r) {
			out = append(out, r)
		}
	}
	return out
}
