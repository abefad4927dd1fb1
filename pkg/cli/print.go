/*
Copyright © 2026 ybstat authors
SPDX-License-Identifier: Apache-2.0
*/

package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/ybstat/ybstat/pkg/endpoint"
	yberrors "github.com/ybstat/ybstat/pkg/errors"
	"github.com/ybstat/ybstat/pkg/record"
	"github.com/ybstat/ybstat/pkg/report"
	"github.com/ybstat/ybstat/pkg/serializer"
	"github.com/ybstat/ybstat/pkg/store"
)

func printCmd() *cli.Command {
	return &cli.Command{
		Name:                  "print",
		EnableShellCompletion: true,
		Usage:                 "Render one endpoint kind from a snapshot or a live pass",
		Description: `Render the records of one endpoint kind as a point-in-time table.
With --snapshot the records come from the store; without it a live
collection pass runs first.

# Examples

Versions across the cluster, live:
  ybstat print --kind versions

Server variables from snapshot 2 as JSON:
  ybstat print --kind vars --snapshot 2 --format json`,
		Flags: append(collectionFlags(),
			append(filterFlags(),
				&cli.StringFlag{
					Name:     "kind",
					Usage:    "endpoint kind to render (e.g. metrics, versions, vars)",
					Required: true,
				},
				&cli.IntFlag{
					Name:    "snapshot",
					Aliases: []string{"s"},
					Usage:   "stored snapshot number (omit for a live pass)",
					Value:   -1,
				},
				dataDirFlag,
				formatFlag,
			)...,
		),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			kind, ok := endpoint.ParseKind(cmd.String("kind"))
			if !ok {
				return yberrors.New(yberrors.ErrCodeInvalidRequest,
					fmt.Sprintf("unknown endpoint kind %q", cmd.String("kind")))
			}
			format, err := parseOutputFormat(cmd)
			if err != nil {
				return err
			}
			filters, err := parseFilters(cmd)
			if err != nil {
				return err
			}

			set, err := loadOrCollect(ctx, cmd, kind)
			if err != nil {
				return err
			}

			if format == serializer.FormatTable {
				return report.New(stdout(cmd), filters, false).Set(set)
			}
			filtered := record.NewSet(set.Kind, set.CapturedAt)
			filtered.AddMetrics(filters.Metrics(set.Metrics)...)
			filtered.AddRows(filters.Rows(set.Rows)...)
			return serializer.NewWriter(format, stdout(cmd)).Serialize(filtered)
		},
	}
}

func loadOrCollect(ctx context.Context, cmd *cli.Command, kind endpoint.Kind) (*record.Set, error) {
	if number := int(cmd.Int("snapshot")); number >= 0 {
		return store.New(cmd.String("data-dir")).Load(number, kind)
	}

	cfg, err := resolveConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newCollector(cmd).Collect(ctx, kind, cfg.Targets(), cfg.Parallel)
}
