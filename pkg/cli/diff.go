/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/diff"
	"github.com/ybstat/ybstat/pkg/endpoint"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/report"
	"github.com/ybstat/ybstat/pkg/serializer"
	"github.com/ybstat/ybstat/pkg/store"
)

// kindResult is the diff of one endpoint kind, shaped for both table
// rendering and machine-readable serialization.
type kindResult struct {
	Kind           endpoint.Kind      `json:"kind" yaml:"kind"`
	ElapsedSeconds float64            `json:"elapsed_seconds,omitempty" yaml:"elapsed_seconds,omitempty"`
	Metrics        []diff.MetricDelta `json:"metrics,omitempty" yaml:"metrics,omitempty"`
	Rows           []diff.RowChange   `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func diffCmd() *cli.Command {
	return &cli.Command{
		Name:                  "diff",
		EnableShellCompletion: true,
		Usage:                 "Report the differences between two stored snapshots",
		Description: `Compare two stored snapshots and report what changed in between.

Counter metrics are reported as begin value, end value, delta, and
per-second rate over the capture interval. A counter observed lower at
the end than at the begin is treated as a restart and reports the end
value. Structured records (versions, variables, topology) are reported
as added, removed, or changed.

A kind missing from either snapshot (for example after a capture was
interrupted) is skipped rather than failing the whole diff.

# Examples

  ybstat diff --begin 1 --end 2
  ybstat diff --begin 1 --end 2 --kind metrics --stat-match '^rows_'
  ybstat diff --begin 1 --end 2 --gauges-enable --details-enable`,
		Flags: append(filterFlags(),
			&cli.IntFlag{
				Name:     "begin",
				Aliases:  []string{"b"},
				Usage:    "begin snapshot number",
				Required: true,
			},
			&cli.IntFlag{
				Name:     "end",
				Aliases:  []string{"e"},
				Usage:    "end snapshot number",
				Required: true,
			},
			kindFlag,
			gaugesEnableFlag,
			detailsEnableFlag,
			dataDirFlag,
			formatFlag,
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			begin := int(cmd.Int("begin"))
			end := int(cmd.Int("end"))
			if err := diff.ValidateOrder(begin, end); err != nil {
				return err
			}

			st := store.New(cmd.String("data-dir"))
			entries, err := st.List()
			if err != nil {
				return err
			}
			numbers := make([]int, 0, len(entries))
			for _, e := range entries {
				numbers = append(numbers, e.Number)
			}
			if err := diff.ValidateRange(begin, end, numbers); err != nil {
				return err
			}

			kinds, err := parseKinds(cmd)
			if err != nil {
				return err
			}
			opts := diffOptions(cmd)

			explicit := cmd.String("kind") != ""
			var results []kindResult
			for _, kind := range kinds {
				bset, err := st.Load(begin, kind)
				if skippable(err, explicit) {
					continue
				} else if err != nil {
					return err
				}
				eset, err := st.Load(end, kind)
				if skippable(err, explicit) {
					continue
				} else if err != nil {
					return err
				}

				res, err := diffSets(kind, bset, eset, opts)
				if err != nil {
					return err
				}
				results = append(results, res)
			}

			return renderResults(cmd, results)
		},
	}
}

func diffOptions(cmd *cli.Command) diff.Options {
	return diff.Options{
		GaugesEnabled: cmd.Bool("gauges-enable"),
		Details:       cmd.Bool("details-enable"),
	}
}

// skippable reports whether a missing kind should be silently skipped.
// A kind the user asked for by name is never skipped.
func skippable(err error, explicit bool) bool {
	return err != nil && !explicit && yberrors.HasCode(err, yberrors.ErrCodeNotFound)
}

func diffSets(kind endpoint.Kind, bset, eset *record.Set, opts diff.Options) (kindResult, error) {
	res := kindResult{
		Kind:           kind,
		ElapsedSeconds: diff.Elapsed(bset, eset).Seconds(),
	}
	if kind.IsMetric() {
		deltas, err := diff.Metrics(bset, eset, opts)
		if err != nil {
			return kindResult{}, err
		}
		res.Metrics = deltas
		return res, nil
	}
	changes, err := diff.Rows(bset, eset)
	if err != nil {
		return kindResult{}, err
	}
	res.Rows = changes
	return res, nil
}

// renderResults writes kind results in the requested format. In table
// mode, kinds with nothing to report are omitted entirely.
func renderResults(cmd *cli.Command, results []kindResult) error {
	format, err := parseOutputFormat(cmd)
	if err != nil {
		return err
	}
	filters, err := parseFilters(cmd)
	if err != nil {
		return err
	}

	if format == serializer.FormatTable {
		return renderResultTables(stdout(cmd), results, filters, cmd.Bool("details-enable"))
	}

	filtered := make([]kindResult, 0, len(results))
	for _, res := range results {
		res.Metrics = diff.FilterMetrics(res.Metrics, filters)
		res.Rows = diff.FilterRows(res.Rows, filters)
		if len(res.Metrics) == 0 && len(res.Rows) == 0 {
			continue
		}
		filtered = append(filtered, res)
	}
	return serializer.NewWriter(format, stdout(cmd)).Serialize(filtered)
}

func renderResultTables(w io.Writer, results []kindResult, filters record.Filters, details bool) error {
	for _, res := range results {
		var buf bytes.Buffer
		r := report.New(&buf, filters, details)

		var err error
		if res.Kind.IsMetric() {
			elapsed := time.Duration(res.ElapsedSeconds * float64(time.Second))
			err = r.MetricDiff(res.Metrics, elapsed)
		} else {
			err = r.RowDiff(res.Rows)
		}
		if err != nil {
			return err
		}
		if buf.Len() == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n[%s]\n", res.Kind); err != nil {
			return err
		}
		if _, err := w.Write(buf.Bytes()); err != nil {
			return err
		}
	}
	return nil
}
