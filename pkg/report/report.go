/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

// Package report renders diff results and point-in-time captures as
// fixed-width aligned text tables. Rendering is the only place display
// filters apply; it never mutates its inputs and writes nothing beyond
// the supplied io.Writer.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/ybstat/ybstat/pkg/diff"
	"github.com/ybstat/ybstat/pkg/endpoint"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/store"
)

// displayColumns narrows wide schemas to the columns worth reading in a
// terminal. Kinds without an entry show every schema field.
var displayColumns = map[endpoint.Kind][]string{
	endpoint.KindVersions: {
		"version_number", "build_number", "build_type", "build_timestamp", "git_hash",
	},
}

// Renderer writes tables to one destination with one filter set.
type Renderer struct {
	out     io.Writer
	printer *message.Printer
	filters record.Filters
	details bool
}

// New creates a Renderer. Numbers are printed with thousands separators.
func New(out io.Writer, filters record.Filters, details bool) *Renderer {
	return &Renderer{
		out:     out,
		printer: message.NewPrinter(language.English),
		filters: filters,
		details: details,
	}
}

// MetricDiff renders one differenced metric kind. Deltas arrive sorted
// from the diff engine; filters narrow them here.
func (r *Renderer) MetricDiff(deltas []diff.MetricDelta, elapsed time.Duration) error {
	kept := diff.FilterMetrics(deltas, r.filters)
	if len(kept) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	if r.details {
		fmt.Fprintln(tw, "HOSTNAME:PORT\tTYPE\tID\tMETRIC\tBEGIN\tEND\tDELTA\tPER SEC\tNOTE\t")
	} else {
		fmt.Fprintln(tw, "HOSTNAME:PORT\tTYPE\tMETRIC\tBEGIN\tEND\tDELTA\tPER SEC\tNOTE\t")
	}
	for _, d := range kept {
		note := ""
		if d.Reset {
			note = "reset"
		}
		rate := "-"
		if d.RateValid {
			rate = r.printer.Sprintf("%.3f", d.Rate)
		}
		if r.details {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				d.HostnamePort, d.MetricType, d.EntityID, d.Name,
				r.number(d.Begin), r.number(d.End), r.number(d.Delta), rate, note)
		} else {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
				d.HostnamePort, d.MetricType, d.Name,
				r.number(d.Begin), r.number(d.End), r.number(d.Delta), rate, note)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if elapsed > 0 {
		fmt.Fprintf(r.out, "interval: %s\n", elapsed.Round(time.Millisecond))
	}
	return nil
}

// RowDiff renders one differenced structured kind. Changed records show
// the before and after value of every field that differs.
func (r *Renderer) RowDiff(changes []diff.RowChange) error {
	kept := diff.FilterRows(changes, r.filters)
	if len(kept) == 0 {
		return nil
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "HOSTNAME:PORT\tKEY\tCHANGE\tFIELD\tBEGIN\tEND")
	for _, c := range kept {
		switch c.Change {
		case diff.ChangeAdded:
			fmt.Fprintf(tw, "%s\t%s\t+\t%s\t\t%s\n",
				c.HostnamePort, c.Key, "", summarize(c.After))
		case diff.ChangeRemoved:
			fmt.Fprintf(tw, "%s\t%s\t-\t%s\t%s\t\n",
				c.HostnamePort, c.Key, "", summarize(c.Before))
		case diff.ChangeChanged:
			for _, field := range changedFields(c.Before, c.After) {
				fmt.Fprintf(tw, "%s\t%s\t=\t%s\t%s\t%s\n",
					c.HostnamePort, c.Key, field, c.Before[field], c.After[field])
			}
		}
	}
	return tw.Flush()
}

// Set renders one point-in-time capture.
func (r *Renderer) Set(set *record.Set) error {
	if set.Kind.IsMetric() {
		return r.metricSet(set)
	}
	return r.rowSet(set)
}

func (r *Renderer) metricSet(set *record.Set) error {
	metrics := r.filters.Metrics(set.Metrics)
	if len(metrics) == 0 {
		return nil
	}
	sort.Slice(metrics, func(i, j int) bool {
		if metrics[i].HostnamePort != metrics[j].HostnamePort {
			return metrics[i].HostnamePort < metrics[j].HostnamePort
		}
		return metrics[i].Identity() < metrics[j].Identity()
	})

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "HOSTNAME:PORT\tTYPE\tID\tMETRIC\tVALUE\t")
	for _, m := range metrics {
		if m.Synthetic {
			continue
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n",
			m.HostnamePort, m.MetricType, m.EntityID, m.Name, r.number(m.Value))
	}
	return tw.Flush()
}

func (r *Renderer) rowSet(set *record.Set) error {
	rows := r.filters.Rows(set.Rows)
	if len(rows) == 0 {
		return nil
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].Identity() < rows[j].Identity()
	})
	fields := set.FieldNames()
	if cols, ok := displayColumns[set.Kind]; ok {
		fields = cols
	}

	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	header := append([]string{"HOSTNAME:PORT"}, fields...)
	fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	for _, row := range rows {
		cols := make([]string, 0, len(fields)+1)
		cols = append(cols, row.HostnamePort)
		for _, f := range fields {
			cols = append(cols, row.Fields[f])
		}
		fmt.Fprintln(tw, strings.Join(cols, "\t"))
	}
	return tw.Flush()
}

// Catalog renders the snapshot catalog listing.
func (r *Renderer) Catalog(entries []store.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(r.out, "no snapshots found")
		return nil
	}
	tw := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tTIMESTAMP\tCOMMENT")
	for _, e := range entries {
		fmt.Fprintf(tw, "%d\t%s\t%s\n",
			e.Number, e.Timestamp.Format("2006-01-02 15:04:05"), e.Comment)
	}
	return tw.Flush()
}

// number formats a value with thousands separators, dropping the
// fraction for whole values so counters read as integers.
func (r *Renderer) number(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return r.printer.Sprintf("%d", int64(v))
	}
	return r.printer.Sprintf("%.3f", v)
}

// summarize joins a whole row into one cell for added and removed rows.
func summarize(fields map[string]string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if v == "" {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+fields[k])
	}
	return strings.Join(parts, " ")
}

func changedFields(before, after map[string]string) []string {
	set := make(map[string]bool, len(before)+len(after))
	for k := range before {
		set[k] = true
	}
	for k := range after {
		set[k] = true
	}
	var out []string
	for k := range set {
		if before[k] != after[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
